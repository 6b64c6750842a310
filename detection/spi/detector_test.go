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

package spi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T, nodes ...string) (*detector, string) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range nodes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o600))
	}
	return &detector{
		devDir: dir,
		access: func(string) error { return nil },
		probe: func(context.Context, string) (st25r.Identity, error) {
			return st25r.Identity{}, errors.New("no probe")
		},
	}, dir
}

func TestDetect_ListsAccessibleNodes(t *testing.T) {
	t.Parallel()
	d, dir := newTestDetector(t, "spidev0.0", "spidev0.1", "spidev1.0", "spidevfoo", "ttyS0")
	d.access = func(path string) error {
		if filepath.Base(path) == "spidev0.1" {
			return os.ErrPermission
		}
		return nil
	}

	opts := detection.DefaultOptions()
	opts.IgnorePaths = []string{filepath.Join(dir, "spidev1.0")}

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, filepath.Join(dir, "spidev0.0"), devices[0].Path)
	assert.Equal(t, "SPI0.0", devices[0].Name)
	assert.Equal(t, "spi", devices[0].Transport)
	assert.Equal(t, "0", devices[0].Metadata["chip_select"])
}

func TestDetect_FullModeProbes(t *testing.T) {
	t.Parallel()
	d, dir := newTestDetector(t, "spidev0.0", "spidev0.1")
	d.probe = func(_ context.Context, path string) (st25r.Identity, error) {
		if filepath.Base(path) == "spidev0.1" {
			// Something else answers on this chip select
			return st25r.Identity{Raw: 0x2A, Type: 5, Revision: 2}, nil
		}
		return st25r.Identity{Raw: 0x0A, Type: 1, Revision: 2}, nil
	}

	opts := detection.DefaultOptions()
	opts.Mode = detection.Full

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, filepath.Join(dir, "spidev0.0"), devices[0].Path)
	assert.Equal(t, "2", devices[0].Metadata["ic_revision"])
}

func TestDetect_NothingFound(t *testing.T) {
	t.Parallel()
	d, _ := newTestDetector(t)
	opts := detection.DefaultOptions()

	_, err := d.Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetect_Cancelled(t *testing.T) {
	t.Parallel()
	d, _ := newTestDetector(t, "spidev0.0")
	opts := detection.DefaultOptions()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, &opts)
	require.ErrorIs(t, err, detection.ErrDetectionTimeout)
}

func TestDetect_Unsupported(t *testing.T) {
	t.Parallel()
	d := &detector{devDir: t.TempDir()}
	opts := detection.DefaultOptions()

	_, err := d.Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrUnsupportedPlatform)
}

func TestNodeInfo(t *testing.T) {
	t.Parallel()

	info, ok := nodeInfo("/dev/spidev3.1")
	require.True(t, ok)
	assert.Equal(t, "SPI3.1", info.Name)
	assert.Equal(t, "3", info.Metadata["bus"])

	_, ok = nodeInfo("/dev/spidev3")
	assert.False(t, ok)
	_, ok = nodeInfo("/dev/spidev0.0.old")
	assert.False(t, ok)
}

func TestRegistered(t *testing.T) {
	t.Parallel()
	assert.Contains(t, detection.Transports(), "spi")
}
