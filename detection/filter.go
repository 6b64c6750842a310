// go-st25r
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-st25r.
//
// go-st25r is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-st25r is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-st25r; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package detection

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBlocklist returns USB serial adapters that must not be opened
// during detection. Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets on open
		"2341:0042", // Arduino Mega 2560, resets on open
		"1366:0105", // SEGGER J-Link CDC, a debug probe console
	}
}

// IsBlocked checks if a USB device is in the blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	if vidpid == "" {
		return false
	}
	for _, blocked := range blocklist {
		if strings.ToUpper(strings.TrimSpace(blocked)) == vidpid {
			return true
		}
	}
	return false
}

// FormatVIDPID renders hexadecimal vendor and product ids as VID:PID. It
// returns an empty string when either id does not parse.
func FormatVIDPID(vid, pid string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(vid), "0x"), 16, 16)
	if err != nil {
		return ""
	}
	p, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(pid), "0x"), 16, 16)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04X:%04X", v, p)
}

// ParseVIDPID extracts VID:PID from the descriptor formats reported by
// the various port enumerators: "VID:1234 PID:5678", "vendor=1234
// product=5678", "USB\VID_1234&PID_5678" and plain "1234:5678".
func ParseVIDPID(descriptor string) string {
	d := strings.ToUpper(descriptor)

	vid := valueAfter(d, "VID:", "VID_", "VID=", "VENDOR=")
	pid := valueAfter(d, "PID:", "PID_", "PID=", "PRODUCT=")
	if vid != "" && pid != "" {
		return FormatVIDPID(vid, pid)
	}

	if parts := strings.Split(strings.TrimSpace(d), ":"); len(parts) == 2 {
		return FormatVIDPID(parts[0], parts[1])
	}
	return ""
}

// valueAfter returns the hex digits following the first key found in s
func valueAfter(s string, keys ...string) string {
	for _, key := range keys {
		idx := strings.Index(s, key)
		if idx < 0 {
			continue
		}
		rest := s[idx+len(key):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return (r < '0' || r > '9') && (r < 'A' || r > 'F')
		})
		if end < 0 {
			end = len(rest)
		}
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}

// IsPathIgnored checks if a device path should be ignored. Paths are
// compared after cleaning and case folding.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore == "" {
			continue
		}
		if ignore == devicePath || normalizedPath(ignore) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
