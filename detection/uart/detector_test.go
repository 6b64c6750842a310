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

package uart

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-st25r/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func testPorts() []*enumerator.PortDetails {
	return []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "2341", PID: "0043", Product: "Arduino Uno"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
		{Name: "/dev/ttyUSB2", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A10KZP45"},
	}
}

func newTestDetector(ports []*enumerator.PortDetails) *detector {
	return &detector{
		list:  func() ([]*enumerator.PortDetails, error) { return ports, nil },
		open:  func(string) error { return nil },
		probe: func(string) error { return errors.New("no bridge") },
	}
}

func TestDetect_Passive(t *testing.T) {
	t.Parallel()
	d := newTestDetector(testPorts())
	opts := detection.DefaultOptions()

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	// Known bridge sorts first and gets a model name
	assert.Equal(t, "/dev/ttyUSB2", devices[0].Path)
	assert.Equal(t, "Bus Pirate v3 (FT232R)", devices[0].Name)
	assert.Equal(t, "0403:6001", devices[0].Metadata["vid_pid"])
	assert.Equal(t, "A10KZP45", devices[0].Metadata["serial"])
	assert.Equal(t, "true", devices[0].Metadata["known_bridge"])

	assert.Equal(t, "/dev/ttyUSB0", devices[1].Path)
	assert.Equal(t, "USB Serial", devices[1].Name)
	assert.Equal(t, "uart", devices[1].Transport)
}

func TestDetect_IgnorePaths(t *testing.T) {
	t.Parallel()
	d := newTestDetector(testPorts())
	opts := detection.DefaultOptions()
	opts.IgnorePaths = []string{"/dev/ttyUSB2"}

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/ttyUSB0", devices[0].Path)
}

func TestDetect_SafeModeSkipsUnopenable(t *testing.T) {
	t.Parallel()
	d := newTestDetector(testPorts())
	d.open = func(path string) error {
		if path == "/dev/ttyUSB0" {
			return errors.New("busy")
		}
		return nil
	}
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/ttyUSB2", devices[0].Path)
}

func TestDetect_FullModeRequiresBridge(t *testing.T) {
	t.Parallel()
	d := newTestDetector(testPorts())
	var probed []string
	d.probe = func(path string) error {
		probed = append(probed, path)
		if path == "/dev/ttyUSB2" {
			return nil
		}
		return errors.New("no bridge")
	}
	opts := detection.DefaultOptions()
	opts.Mode = detection.Full

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/ttyUSB2", devices[0].Path)
	// Blocklisted and non-USB ports are never opened
	assert.ElementsMatch(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB2"}, probed)
}

func TestDetect_Errors(t *testing.T) {
	t.Parallel()

	t.Run("EnumeratorFails", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("no sysfs")
		d := newTestDetector(nil)
		d.list = func() ([]*enumerator.PortDetails, error) { return nil, boom }
		opts := detection.DefaultOptions()

		_, err := d.Detect(context.Background(), &opts)
		require.ErrorIs(t, err, boom)
	})

	t.Run("NothingFound", func(t *testing.T) {
		t.Parallel()
		d := newTestDetector([]*enumerator.PortDetails{{Name: "/dev/ttyS0"}})
		opts := detection.DefaultOptions()

		_, err := d.Detect(context.Background(), &opts)
		require.ErrorIs(t, err, detection.ErrNoDevicesFound)
	})

	t.Run("Cancelled", func(t *testing.T) {
		t.Parallel()
		d := newTestDetector(testPorts())
		opts := detection.DefaultOptions()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := d.Detect(ctx, &opts)
		require.ErrorIs(t, err, detection.ErrDetectionTimeout)
	})
}

func TestPreferCallout(t *testing.T) {
	t.Parallel()
	ports := []*enumerator.PortDetails{
		{Name: "/dev/tty.usbserial-A10KZP45"},
		{Name: "/dev/cu.usbserial-A10KZP45"},
		{Name: "/dev/tty.Bluetooth-Incoming-Port"},
	}

	got := preferCallout(ports)
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"/dev/cu.usbserial-A10KZP45", "/dev/tty.Bluetooth-Incoming-Port"}, names)
	assert.Len(t, ports, 3)
}

func TestRegistered(t *testing.T) {
	t.Parallel()
	assert.Contains(t, detection.Transports(), "uart")
}
