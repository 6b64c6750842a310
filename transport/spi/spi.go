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

// Package spi provides the bus transport over a native SPI controller
package spi

import (
	"context"
	"fmt"
	"sync"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// irqPollTimeout bounds each edge wait so WatchIRQ notices cancellation
const irqPollTimeout = 100 * time.Millisecond

// Config selects the port and pins of the reader
type Config struct {
	Port   string // spireg port name; empty opens the first available port
	CSPin  string // gpioreg name of the chip select line
	IRQPin string // gpioreg name of the interrupt line; empty disables WatchIRQ
	Clock  physic.Frequency
	Mode   spi.Mode
}

// DefaultConfig returns the reference board wiring at 5 MHz, mode 0
func DefaultConfig() Config {
	return Config{
		CSPin:  st25r.PinCS,
		IRQPin: st25r.PinIRQ,
		Clock:  physic.Frequency(st25r.MaxClockHz) * physic.Hertz,
		Mode:   spi.Mode(st25r.SPIMode),
	}
}

// Transport implements st25r.Bus over a periph SPI port with a
// software-driven chip select
type Transport struct {
	port   spi.PortCloser
	conn   spi.Conn
	cs     gpio.PinIO
	irq    gpio.PinIO
	name   string
	mu     sync.Mutex
	closed bool
}

// New initializes the host drivers and opens the port and pins named by cfg
func New(cfg Config) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, st25r.NewBusError("open", cfg.Port, fmt.Errorf("%w: %w", st25r.ErrBusInit, err))
	}

	cs := gpioreg.ByName(cfg.CSPin)
	if cs == nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: chip select %q", st25r.ErrUnknownPin, cfg.CSPin)
	}

	var irq gpio.PinIO
	if cfg.IRQPin != "" {
		if irq = gpioreg.ByName(cfg.IRQPin); irq == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: interrupt %q", st25r.ErrUnknownPin, cfg.IRQPin)
		}
	}

	t, err := NewFromPort(port, cs, irq, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewFromPort builds a transport from an already opened port and pins.
// irq may be nil.
func NewFromPort(port spi.PortCloser, cs, irq gpio.PinIO, cfg Config) (*Transport, error) {
	name := cfg.Port
	if name == "" {
		name = port.String()
	}

	clock := cfg.Clock
	if clock == 0 {
		clock = physic.Frequency(st25r.MaxClockHz) * physic.Hertz
	}
	conn, err := port.Connect(clock, cfg.Mode|spi.NoCS, 8)
	if err != nil {
		return nil, st25r.NewBusError("connect", name, fmt.Errorf("%w: %w", st25r.ErrBusInit, err))
	}

	// Chip select idles high
	if err := cs.Out(gpio.High); err != nil {
		return nil, st25r.NewBusError("cs init", name, err)
	}
	if irq != nil {
		if err := irq.In(gpio.PullDown, gpio.RisingEdge); err != nil {
			return nil, st25r.NewBusError("irq init", name, err)
		}
	}

	return &Transport{
		port: port,
		conn: conn,
		cs:   cs,
		irq:  irq,
		name: name,
	}, nil
}

// Select implements st25r.Bus
func (t *Transport) Select() error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.cs.Out(gpio.Low); err != nil {
		return st25r.NewBusError("select", t.name, err)
	}
	return nil
}

// Deselect implements st25r.Bus
func (t *Transport) Deselect() error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := t.cs.Out(gpio.High); err != nil {
		return st25r.NewBusError("deselect", t.name, err)
	}
	return nil
}

// Transceive implements st25r.Bus
func (t *Transport) Transceive(tx, rx []byte, length int) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := st25r.CheckTransfer(tx, rx, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	if err := t.conn.Tx(tx[:length], rx[:length]); err != nil {
		return st25r.NewBusError("transceive", t.name, err)
	}
	return nil
}

// CS returns the chip select line as a platform pin
func (t *Transport) CS() st25r.Pin {
	return Pin(t.cs)
}

// IRQ returns the interrupt line as a platform pin, or nil if none is wired
func (t *Transport) IRQ() st25r.Pin {
	if t.irq == nil {
		return nil
	}
	return Pin(t.irq)
}

// WatchIRQ calls edge for every rising edge of the interrupt line until
// ctx is done. edge must not block; Platform.Edge is the intended target.
func (t *Transport) WatchIRQ(ctx context.Context, edge func()) error {
	if t.irq == nil {
		return fmt.Errorf("%w: no interrupt line configured", st25r.ErrUnknownPin)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if t.irq.WaitForEdge(irqPollTimeout) {
			edge()
		}
	}
}

// Close releases the port. Further calls fail with ErrNotConnected.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.cs.Out(gpio.High)
	if t.irq != nil {
		_ = t.irq.Halt()
	}
	if err := t.port.Close(); err != nil {
		return st25r.NewBusError("close", t.name, err)
	}
	return nil
}

// Type implements st25r.Bus
func (*Transport) Type() st25r.TransportType {
	return st25r.TransportSPI
}

// String returns the port name
func (t *Transport) String() string {
	return t.name
}

func (t *Transport) checkOpen() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return st25r.NewBusError("io", t.name, st25r.ErrNotConnected)
	}
	return nil
}

// pin adapts a periph GPIO to st25r.Pin
type pin struct {
	p gpio.PinIO
}

// Pin adapts a periph GPIO to st25r.Pin
func Pin(p gpio.PinIO) st25r.Pin {
	return pin{p: p}
}

// PinByName looks up a GPIO in the periph registry
func PinByName(name string) (st25r.Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", st25r.ErrUnknownPin, name)
	}
	return Pin(p), nil
}

func (p pin) Set(high bool) error {
	l := gpio.Low
	if high {
		l = gpio.High
	}
	if err := p.p.Out(l); err != nil {
		return fmt.Errorf("set %s: %w", p.p.Name(), err)
	}
	return nil
}

func (p pin) IsHigh() bool {
	return p.p.Read() == gpio.High
}
