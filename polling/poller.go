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
	"context"
	"fmt"
	"sync/atomic"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
)

// Metrics tracks poll loop activity
type Metrics struct {
	Cycles            int64         // Completed cycles
	Attempts          int64         // Family attempts started
	DevicesFound      int64         // Devices enumerated across all cycles
	ErrorsReported    int64         // Protocol errors that were reported
	RoutineSuppressed int64         // Timeout/busy results that were not reported
	LastCycleLatency  time.Duration // Duration of the last cycle, pauses excluded
}

// Poller drives the protocol engine through detection cycles. Each cycle
// attempts every configured family in order; each attempt runs
// field-on, guard wait, detection, collision resolution, per-device reads
// and field-off. Nothing is remembered between cycles.
type Poller struct {
	engine st25r.Engine
	config *Config
	state  atomic.Int32
	// Atomic counters for metrics
	cycles            int64
	attempts          int64
	devicesFound      int64
	errorsReported    int64
	routineSuppressed int64
	lastCycleLatency  int64 // in nanoseconds
}

// New creates a poller over engine. A nil config uses DefaultConfig.
func New(engine st25r.Engine, config *Config) *Poller {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.Clone()
	cfg.fill()
	return &Poller{
		engine: engine,
		config: cfg,
	}
}

// Bringup initializes the engine. A failure here is fatal: it is logged
// once and the poll loop must not be started.
func (p *Poller) Bringup() error {
	if err := p.engine.Initialize(); err != nil {
		p.config.Logger.Error("engine initialization failed", "error", err)
		return fmt.Errorf("%w: %w", st25r.ErrEngineInit, err)
	}
	p.config.Logger.Info("engine initialized")
	return nil
}

// Run executes cycles until ctx is done. Cancellation is only observed
// between cycles; a cycle in progress always runs to completion.
func (p *Poller) Run(ctx context.Context) error {
	return p.RunCycles(ctx, 0)
}

// RunCycles executes n cycles separated by the cycle pause, or cycles until
// ctx is done when n is not positive. It returns nil once n cycles have run.
func (p *Poller) RunCycles(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if i > 0 {
			if err := p.config.Wait(ctx, p.config.CyclePause); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.RunCycle()
	}
	return nil
}

// RunCycle performs one full cycle over all configured families
func (p *Poller) RunCycle() {
	start := time.Now()
	p.engine.Worker()

	var paused time.Duration
	for i, family := range p.config.Families {
		if i > 0 {
			pauseStart := time.Now()
			p.config.Sleep(p.config.FamilyPause)
			paused += time.Since(pauseStart)
		}
		p.attempt(family)
	}

	atomic.AddInt64(&p.cycles, 1)
	atomic.StoreInt64(&p.lastCycleLatency, (time.Since(start) - paused).Nanoseconds())
}

// State returns the current attempt state
func (p *Poller) State() AttemptState {
	return AttemptState(p.state.Load())
}

// Metrics returns a snapshot of the poll counters
func (p *Poller) Metrics() Metrics {
	return Metrics{
		Cycles:            atomic.LoadInt64(&p.cycles),
		Attempts:          atomic.LoadInt64(&p.attempts),
		DevicesFound:      atomic.LoadInt64(&p.devicesFound),
		ErrorsReported:    atomic.LoadInt64(&p.errorsReported),
		RoutineSuppressed: atomic.LoadInt64(&p.routineSuppressed),
		LastCycleLatency:  time.Duration(atomic.LoadInt64(&p.lastCycleLatency)),
	}
}

func (p *Poller) setState(s AttemptState) {
	p.state.Store(int32(s))
}

// attempt runs one family through the detection state machine
func (p *Poller) attempt(family st25r.Family) {
	atomic.AddInt64(&p.attempts, 1)
	p.setState(StateIdle)

	if err := p.engine.PollerInitialize(family); err != nil {
		p.report(ErrorEvent{Family: family, Stage: StageInit, Err: err}, false)
		return
	}

	p.setState(StateFieldOn)
	if err := p.engine.FieldOnAndStartGT(); err != nil {
		p.report(ErrorEvent{Family: family, Stage: StageFieldOn, Err: err}, false)
		p.fieldOff(family)
		return
	}

	p.setState(StateGuardWait)
	for !p.engine.IsGTExpired() {
		p.config.Sleep(p.config.GuardPollInterval)
	}

	p.setState(StateDetecting)
	if err := p.engine.TechnologyDetection(family); err != nil {
		p.report(ErrorEvent{Family: family, Stage: StageDetect, Err: err}, true)
		p.fieldOff(family)
		return
	}

	p.setState(StateResolving)
	devices, err := p.engine.CollisionResolution(family, p.config.MaxDevices)
	if err != nil {
		p.report(ErrorEvent{Family: family, Stage: StageResolve, Err: err}, true)
		p.fieldOff(family)
		return
	}
	if len(devices) > p.config.MaxDevices {
		devices = devices[:p.config.MaxDevices]
	}

	if len(devices) > 0 {
		p.setState(StateReading)
		atomic.AddInt64(&p.devicesFound, int64(len(devices)))
		for i := range devices {
			devices[i].Family = family
			p.readDevice(i, &devices[i])
		}
	}

	p.fieldOff(family)
}

// readDevice reads the memory dump a device type supports and reports it
func (p *Poller) readDevice(index int, dev *st25r.DeviceRecord) {
	dump := MemoryDump{FirstPage: int(p.config.T2TReadBlock)}
	var readErr error

	if dev.Type == st25r.SubTypeT2T && st25r.FeatureT2T {
		buf := make([]byte, st25r.T2TReadLen)
		n, err := p.engine.ReadBlock(dev, p.config.T2TReadBlock, buf)
		if err != nil {
			readErr = err
		} else {
			dump.Data = buf[:n]
		}
	}

	p.config.Reporter.DeviceFound(index, dev, dump)

	if readErr != nil {
		p.report(ErrorEvent{Family: dev.Family, Stage: StageRead, Device: dev, Err: readErr}, false)
	}
}

func (p *Poller) fieldOff(family st25r.Family) {
	p.setState(StateFieldOff)
	if err := p.engine.FieldOff(); err != nil {
		p.report(ErrorEvent{Family: family, Stage: StageFieldOff, Err: err}, false)
	}
	p.setState(StateIdle)
}

// report logs a protocol error. When suppressRoutine is set, timeout and
// busy results are counted but not reported.
func (p *Poller) report(ev ErrorEvent, suppressRoutine bool) {
	if suppressRoutine && st25r.IsRoutine(ev.Err) {
		atomic.AddInt64(&p.routineSuppressed, 1)
		return
	}
	atomic.AddInt64(&p.errorsReported, 1)

	attrs := []any{
		"family", ev.Family.String(),
		"stage", string(ev.Stage),
		"code", uint16(st25r.CodeOf(ev.Err)),
		"error", ev.Err,
	}
	if ev.Device != nil {
		attrs = append(attrs, "uid", ev.Device.UIDString())
	}
	p.config.Logger.Warn("poll error", attrs...)

	if p.config.OnError != nil {
		p.config.OnError(ev)
	}
}
