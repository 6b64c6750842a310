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

package st25r

import (
	"fmt"
	"log/slog"
	"time"
)

// Platform is the context object the protocol engine runs on. It owns the
// bus, both guard domains, the interrupt bridge with its callback, the tick
// clock and the GPIO lines, and is shared by reference between the
// interrupt dispatcher and the poll loop.
type Platform struct {
	bus    Bus
	guards *Guards
	bridge *Bridge
	clock  *Clock
	pins   map[string]Pin
	sleep  func(time.Duration)
	logger *slog.Logger
}

// NewPlatform creates a platform over bus with the given options
func NewPlatform(bus Bus, opts ...Option) (*Platform, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: %w", ErrBusInit, ErrNotConnected)
	}

	p := &Platform{
		bus:    bus,
		guards: NewGuards(),
		bridge: NewBridge(),
		pins:   make(map[string]Pin),
		sleep:  time.Sleep,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.clock == nil {
		p.clock = NewClock(nil, TickPeriod)
	}
	if p.logger == nil {
		p.logger = Logger()
	}
	return p, nil
}

// Bus returns the underlying transport
func (p *Platform) Bus() Bus {
	return p.bus
}

// Guards returns the two guard domains
func (p *Platform) Guards() *Guards {
	return p.guards
}

// Bridge returns the interrupt bridge
func (p *Platform) Bridge() *Bridge {
	return p.bridge
}

// Clock returns the tick clock
func (p *Platform) Clock() *Clock {
	return p.clock
}

// Log returns the platform logger
func (p *Platform) Log() *slog.Logger {
	return p.logger
}

// SpiSelect asserts chip select
func (p *Platform) SpiSelect() error {
	return p.bus.Select()
}

// SpiDeselect releases chip select
func (p *Platform) SpiDeselect() error {
	return p.bus.Deselect()
}

// SpiTxRx exchanges length bytes in both directions. The caller must hold
// the bus guard.
func (p *Platform) SpiTxRx(tx, rx []byte, length int) error {
	if err := CheckTransfer(tx, rx, length); err != nil {
		return err
	}
	debugf(p.logger, "spi tx: % X", tx[:length])
	if err := p.bus.Transceive(tx, rx, length); err != nil {
		return err
	}
	debugf(p.logger, "spi rx: % X", rx[:length])
	return nil
}

// Exchange runs one complete guarded transaction: acquire the bus guard,
// select, transceive tx, deselect and release. It returns the received
// bytes.
func (p *Platform) Exchange(tx []byte) (rx []byte, err error) {
	p.ProtectComm()
	defer p.UnprotectComm()

	if err := p.bus.Select(); err != nil {
		return nil, err
	}
	defer func() {
		if derr := p.bus.Deselect(); derr != nil && err == nil {
			err = derr
		}
	}()

	rx = make([]byte, len(tx))
	if err := p.SpiTxRx(tx, rx, len(tx)); err != nil {
		return nil, err
	}
	return rx, nil
}

// ProtectComm acquires the bus guard
func (p *Platform) ProtectComm() {
	p.guards.Bus.Acquire()
}

// UnprotectComm releases the bus guard
func (p *Platform) UnprotectComm() {
	p.guards.Bus.Release()
}

// ProtectIrqStatus acquires the status guard
func (p *Platform) ProtectIrqStatus() {
	p.guards.Status.Acquire()
}

// UnprotectIrqStatus releases the status guard
func (p *Platform) UnprotectIrqStatus() {
	p.guards.Status.Release()
}

// TimerCreate returns a deadline d from now
func (p *Platform) TimerCreate(d time.Duration) Timer {
	return p.clock.Create(d)
}

// TimerIsExpired reports whether t has passed
func (p *Platform) TimerIsExpired(t Timer) bool {
	return p.clock.IsExpired(t)
}

// TimerDestroy releases t
func (p *Platform) TimerDestroy(t Timer) {
	p.clock.Destroy(t)
}

// TimerWait sleeps once for the time remaining until t expires
func (p *Platform) TimerWait(t Timer) {
	if d := p.clock.Remaining(t); d > 0 {
		p.sleep(d)
	}
}

// IrqSetCallback registers the function run for each dispatched interrupt
func (p *Platform) IrqSetCallback(cb func()) {
	p.bridge.RegisterCallback(cb)
}

// IrqInitialize starts the interrupt dispatcher
func (p *Platform) IrqInitialize() error {
	if err := p.bridge.Start(); err != nil {
		return err
	}
	debugf(p.logger, "interrupt dispatcher started")
	return nil
}

// Edge forwards an interrupt line edge to the bridge
func (p *Platform) Edge() {
	p.bridge.Edge()
}

// Ticks returns the current tick count
func (p *Platform) Ticks() uint32 {
	return p.clock.Now()
}

// Delay sleeps for d, rounding a nonzero duration up to one tick
func (p *Platform) Delay(d time.Duration) {
	ticks := p.clock.DurationToTicks(d)
	p.sleep(time.Duration(ticks) * p.clock.Period())
}

func (p *Platform) pin(name string) (Pin, error) {
	pin, ok := p.pins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPin, name)
	}
	return pin, nil
}

// GpioSet drives the named pin high
func (p *Platform) GpioSet(name string) error {
	pin, err := p.pin(name)
	if err != nil {
		return err
	}
	return pin.Set(true)
}

// GpioClear drives the named pin low
func (p *Platform) GpioClear(name string) error {
	pin, err := p.pin(name)
	if err != nil {
		return err
	}
	return pin.Set(false)
}

// GpioToggle inverts the named pin
func (p *Platform) GpioToggle(name string) error {
	pin, err := p.pin(name)
	if err != nil {
		return err
	}
	return pin.Set(!pin.IsHigh())
}

// GpioIsHigh samples the named pin. Unknown pins read low.
func (p *Platform) GpioIsHigh(name string) bool {
	pin, err := p.pin(name)
	if err != nil {
		return false
	}
	return pin.IsHigh()
}

// GpioIsLow samples the named pin. Unknown pins read low.
func (p *Platform) GpioIsLow(name string) bool {
	return !p.GpioIsHigh(name)
}

// Close stops the interrupt dispatcher and closes the bus
func (p *Platform) Close() error {
	p.bridge.Stop()
	if err := p.bus.Close(); err != nil {
		return fmt.Errorf("failed to close bus: %w", err)
	}
	return nil
}
