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

// Package detection finds buses that may have a reader attached. Transport
// specific detectors register themselves on import.
package detection

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no devices found")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	ErrDetectionTimeout    = errors.New("detection timed out")
	ErrNoDetectors         = errors.New("no detectors registered")
)

// Mode controls how intrusive detection is allowed to be
type Mode int

const (
	// Passive only lists candidate buses without opening them
	Passive Mode = iota
	// Safe opens candidates but sends nothing
	Safe
	// Full opens candidates and reads the reader's identity
	Full
)

// DeviceInfo describes a candidate bus
type DeviceInfo struct {
	Metadata  map[string]string
	Transport string
	Path      string
	Name      string
}

// Options configures detection
type Options struct {
	Blocklist   []string // VID:PID pairs never opened
	IgnorePaths []string // Device paths skipped entirely
	Timeout     time.Duration
	Mode        Mode
}

// DefaultOptions returns options for a quick, non-probing scan
func DefaultOptions() Options {
	return Options{
		Mode:      Passive,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds candidate devices on one transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registry   = make(map[string]Detector)
	registryMu sync.RWMutex
)

// RegisterDetector adds d to the registry, replacing any detector for the
// same transport
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Transports returns the registered transport names in sorted order
func Transports() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectAll runs every registered detector. Detectors that fail are skipped
// unless all of them fail, in which case the first error is returned.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	names := Transports()
	if len(names) == 0 {
		return nil, ErrNoDetectors
	}

	var (
		all      []DeviceInfo
		firstErr error
	)
	for _, name := range names {
		registryMu.RLock()
		d := registry[name]
		registryMu.RUnlock()

		devices, err := d.Detect(ctx, opts)
		if err != nil {
			if firstErr == nil && !errors.Is(err, ErrNoDevicesFound) {
				firstErr = err
			}
			if ctx.Err() != nil {
				return all, ErrDetectionTimeout
			}
			continue
		}
		all = append(all, devices...)
	}

	if len(all) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, ErrNoDevicesFound
	}
	return all, nil
}

// DetectByTransport runs only the detector registered for transport
func DetectByTransport(ctx context.Context, transport string, opts *Options) ([]DeviceInfo, error) {
	registryMu.RLock()
	d, ok := registry[transport]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrNoDetectors
	}
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	return d.Detect(ctx, opts)
}
