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

// Package spi detects spidev nodes a reader may be attached to
package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/detection"
	spitransport "github.com/ZaparooProject/go-st25r/transport/spi"
)

// detector implements the Detector interface for spidev nodes
type detector struct {
	access func(path string) error
	probe  func(ctx context.Context, path string) (st25r.Identity, error)
	devDir string
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{
		devDir: "/dev",
		access: accessReadWrite,
		probe:  probeIdentity,
	}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(st25r.TransportSPI)
}

// Detect lists spidev nodes the current user can open for reading and
// writing. In Full mode each node is probed for an ST25R3911 identity and
// only matching nodes are returned.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if d.access == nil {
		return nil, detection.ErrUnsupportedPlatform
	}

	paths, err := filepath.Glob(filepath.Join(d.devDir, "spidev*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list spidev nodes: %w", err)
	}
	sort.Strings(paths)

	var devices []detection.DeviceInfo
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}
		if err := d.access(path); err != nil {
			continue
		}

		info, ok := nodeInfo(path)
		if !ok {
			continue
		}

		if opts.Mode == detection.Full {
			id, err := d.probe(ctx, path)
			if err != nil || !id.IsST25R3911() {
				continue
			}
			info.Metadata["ic_revision"] = fmt.Sprintf("%d", id.Revision)
			info.Metadata["identity"] = id.String()
		}
		devices = append(devices, info)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// nodeInfo parses /dev/spidevB.C into a device description
func nodeInfo(path string) (detection.DeviceInfo, bool) {
	var bus, cs int
	base := filepath.Base(path)
	if n, err := fmt.Sscanf(base, "spidev%d.%d", &bus, &cs); err != nil || n != 2 {
		return detection.DeviceInfo{}, false
	}
	if strings.Count(base, ".") != 1 {
		return detection.DeviceInfo{}, false
	}
	return detection.DeviceInfo{
		Transport: string(st25r.TransportSPI),
		Path:      path,
		Name:      fmt.Sprintf("SPI%d.%d", bus, cs),
		Metadata: map[string]string{
			"bus":         fmt.Sprintf("%d", bus),
			"chip_select": fmt.Sprintf("%d", cs),
		},
	}, true
}

// probeIdentity opens the node with the default wiring and reads the IC
// identity register
func probeIdentity(_ context.Context, path string) (st25r.Identity, error) {
	cfg := spitransport.DefaultConfig()
	cfg.Port = path
	cfg.IRQPin = ""

	bus, err := spitransport.New(cfg)
	if err != nil {
		return st25r.Identity{}, err
	}
	p, err := st25r.NewPlatform(bus, st25r.WithPin(st25r.PinCS, bus.CS()))
	if err != nil {
		_ = bus.Close()
		return st25r.Identity{}, err
	}
	defer func() { _ = p.Close() }()

	return st25r.ReadIdentity(p)
}
