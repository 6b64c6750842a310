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

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/polling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReporter struct {
	uids []string
}

func (c *countingReporter) DeviceFound(_ int, dev *st25r.DeviceRecord, _ polling.MemoryDump) {
	c.uids = append(c.uids, dev.UIDString())
}

func newSimulatedPoller(rep polling.Reporter) *polling.Poller {
	cfg := polling.DefaultConfig()
	cfg.Reporter = rep
	cfg.Sleep = func(time.Duration) {}
	cfg.Wait = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return polling.New(newSimulatedEngine(), cfg)
}

func TestSimulatedEngine_Cycles(t *testing.T) {
	t.Parallel()
	rep := &countingReporter{}
	p := newSimulatedPoller(rep)
	require.NoError(t, p.Bringup())

	require.NoError(t, p.RunCycles(context.Background(), 2))

	assert.Equal(t, int64(2), p.Metrics().Cycles)
	// One NFC-A and one NFC-V device per cycle
	assert.Len(t, rep.uids, 4)
	assert.Equal(t, int64(0), p.Metrics().ErrorsReported)
}

func TestSimulatedEngine_Cancelled(t *testing.T) {
	t.Parallel()
	p := newSimulatedPoller(&countingReporter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.RunCycles(ctx, 3)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), p.Metrics().Cycles)
}

func TestRun_SimulatedSingleCycle(t *testing.T) {
	t.Parallel()
	simulate, list, debug := true, false, false
	cycles := 1
	empty := ""
	cfg := &config{
		devicePath: &empty,
		csPin:      &empty,
		irqPin:     &empty,
		simulate:   &simulate,
		debug:      &debug,
		list:       &list,
		cycles:     &cycles,
	}

	err := run(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
}
