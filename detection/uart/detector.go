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

// Package uart detects USB serial ports with a Bus Pirate bridge attached
package uart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/detection"
	uarttransport "github.com/ZaparooProject/go-st25r/transport/uart"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// knownBridges maps VID:PID pairs of Bus Pirate hardware to a model name
var knownBridges = map[string]string{
	"0403:6001": "Bus Pirate v3 (FT232R)",
	"04D8:FB00": "Bus Pirate v4",
	"1209:7331": "Bus Pirate 5",
}

// detector implements the Detector interface for USB serial ports
type detector struct {
	list  func() ([]*enumerator.PortDetails, error)
	open  func(path string) error
	probe func(path string) error
}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{
		list:  enumerator.GetDetailedPortsList,
		open:  openPort,
		probe: probeBridge,
	}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(st25r.TransportUART)
}

// Detect lists USB serial ports. Blocklisted adapters are never returned.
// Safe mode additionally checks the port can be opened; Full mode puts
// the bridge into binary SPI mode and back.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	ports = preferCallout(ports)

	var devices []detection.DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if !port.IsUSB || detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
			continue
		}
		vidpid := detection.FormatVIDPID(port.VID, port.PID)
		if detection.IsBlocked(vidpid, opts.Blocklist) {
			continue
		}

		switch opts.Mode {
		case detection.Safe:
			if err := d.open(port.Name); err != nil {
				continue
			}
		case detection.Full:
			if err := d.probe(port.Name); err != nil {
				continue
			}
		}
		devices = append(devices, portInfo(port, vidpid))
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	// Known bridges first, then by path
	sort.SliceStable(devices, func(i, j int) bool {
		ki := devices[i].Metadata["known_bridge"] == "true"
		kj := devices[j].Metadata["known_bridge"] == "true"
		if ki != kj {
			return ki
		}
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

func portInfo(port *enumerator.PortDetails, vidpid string) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport: string(st25r.TransportUART),
		Path:      port.Name,
		Name:      port.Product,
		Metadata: map[string]string{
			"vid_pid": vidpid,
		},
	}
	if port.SerialNumber != "" {
		info.Metadata["serial"] = port.SerialNumber
	}
	if model, ok := knownBridges[vidpid]; ok {
		info.Metadata["known_bridge"] = "true"
		if info.Name == "" {
			info.Name = model
		}
	}
	if info.Name == "" {
		info.Name = port.Name
	}
	return info
}

// preferCallout drops macOS /dev/tty.* entries that have a /dev/cu.*
// twin. Opening the tty side blocks waiting for carrier detect.
func preferCallout(ports []*enumerator.PortDetails) []*enumerator.PortDetails {
	callout := make(map[string]bool)
	for _, p := range ports {
		if rest, ok := strings.CutPrefix(p.Name, "/dev/cu."); ok {
			callout[rest] = true
		}
	}

	out := ports[:0:0]
	for _, p := range ports {
		if rest, ok := strings.CutPrefix(p.Name, "/dev/tty."); ok && callout[rest] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func openPort(path string) error {
	port, err := serial.Open(path, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return err
	}
	return port.Close()
}

func probeBridge(path string) error {
	t, err := uarttransport.New(path)
	if err != nil {
		return err
	}
	return t.Close()
}
