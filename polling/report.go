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

package polling

import (
	"fmt"
	"io"
	"strings"
	"sync"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/hsanjuan/go-ndef"
)

// Reporter receives the devices found in each cycle
type Reporter interface {
	// DeviceFound is called once per enumerated device, in resolution
	// order. dump holds the memory read from the device, if any.
	DeviceFound(index int, dev *st25r.DeviceRecord, dump MemoryDump)
}

// MemoryDump is the memory read from a device during its report
type MemoryDump struct {
	// Data is nil when nothing was read
	Data []byte
	// FirstPage is the page Data starts at
	FirstPage int
}

// ErrorEvent describes a reported protocol error
type ErrorEvent struct {
	Err    error
	Device *st25r.DeviceRecord
	Stage  Stage
	Family st25r.Family
}

// TextReporter writes human-readable device reports
type TextReporter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTextReporter creates a reporter writing to w
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// DeviceFound writes the device block
func (r *TextReporter) DeviceFound(index int, dev *st25r.DeviceRecord, dump MemoryDump) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.w, "\n=== Device %d ===\n", index+1)
	_, _ = fmt.Fprintf(r.w, "UID: %s\n", dev.UIDString())
	_, _ = fmt.Fprintf(r.w, "Type: %s\n", dev.Type.Label())
	_, _ = fmt.Fprintf(r.w, "%s: 0x%02X\n", statusLabel(dev.Family), dev.StatusByte())

	if len(dump.Data) == 0 {
		return
	}
	_, _ = io.WriteString(r.w, FormatPages(dump.Data, dump.FirstPage))
	if text, ok := DecodeNDEF(dump.Data); ok {
		_, _ = fmt.Fprintf(r.w, "NDEF: %s\n", text)
	}
}

func statusLabel(f st25r.Family) string {
	if f == st25r.FamilyNFCV {
		return "DSFID"
	}
	return "SAK"
}

// FormatPages renders dump as rows of four hex bytes labelled with page
// numbers counting from firstPage. A short final row is printed as is.
func FormatPages(dump []byte, firstPage int) string {
	var b strings.Builder
	for off := 0; off < len(dump); off += st25r.T2TPageSize {
		end := off + st25r.T2TPageSize
		if end > len(dump) {
			end = len(dump)
		}
		_, _ = fmt.Fprintf(&b, "Page %d: % X\n", firstPage+off/st25r.T2TPageSize, dump[off:end])
	}
	return b.String()
}

// TLV types found in Type 2 tag memory
const (
	tlvNull       = 0x00
	tlvLockCtrl   = 0x01
	tlvMemoryCtrl = 0x02
	tlvNDEF       = 0x03
	tlvTerminator = 0xFE
)

// DecodeNDEF looks for an NDEF message TLV at the start of a Type 2 user
// memory dump and returns its text form. A message that does not fit
// entirely inside dump is not decoded.
func DecodeNDEF(dump []byte) (string, bool) {
	off := 0
	for off < len(dump) {
		switch dump[off] {
		case tlvNull:
			off++
			continue
		case tlvTerminator:
			return "", false
		}
		if off+1 >= len(dump) {
			return "", false
		}
		typ, length := dump[off], int(dump[off+1])
		if length == 0xFF {
			// three-byte length format never fits in a single read
			return "", false
		}
		start := off + 2
		if start+length > len(dump) {
			return "", false
		}
		switch typ {
		case tlvLockCtrl, tlvMemoryCtrl:
			off = start + length
			continue
		case tlvNDEF:
			if length == 0 {
				return "", false
			}
			msg := &ndef.Message{}
			if _, err := msg.Unmarshal(dump[start : start+length]); err != nil {
				return "", false
			}
			return strings.TrimSpace(msg.String()), true
		default:
			return "", false
		}
	}
	return "", false
}
