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

// Package uart provides the bus transport over a Bus Pirate USB serial to
// SPI bridge running its binary SPI mode
package uart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/internal/transport"
	"go.bug.st/serial"
)

// Bus Pirate binary mode commands
const (
	cmdReset        = 0x00 // In raw bitbang: enter/answer BBIO1. In SPI: back to BBIO.
	cmdEnterSPI     = 0x01
	cmdCSLow        = 0x02
	cmdCSHigh       = 0x03
	cmdExitBinary   = 0x0F
	cmdBulkTransfer = 0x10 // 0001xxxx, xxxx = byte count - 1
	cmdPeripherals  = 0x40 // 0100wxyz: power, pull-ups, AUX, CS
	cmdSpeed        = 0x60 // 01100xxx
	cmdSPIConfig    = 0x80 // 1000wxyz: 3v3 output, idle clock, edge, sample

	ack = 0x01

	// maxBulk is the largest bulk transfer the firmware accepts
	maxBulk = 16

	// bbioAttempts is how many reset bytes the firmware may need before it
	// leaves the user terminal
	bbioAttempts = 20
)

const (
	peripheralPower = 0x08
	peripheralCS    = 0x01

	speed4MHz = 0x06

	configOutput3V3 = 0x08
	configClockEdge = 0x02 // active to idle, together with idle low gives mode 0
)

var (
	bbioBanner = []byte("BBIO1")
	spiBanner  = []byte("SPI1")
)

// Transport errors
var (
	ErrNoBridge = errors.New("bus pirate did not enter binary mode")
	ErrNoAck    = errors.New("bus pirate did not acknowledge command")
)

// Port is the subset of serial.Port the transport uses
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements st25r.Bus over a Bus Pirate
type Transport struct {
	port        Port
	portName    string
	readTimeout time.Duration
	mu          sync.Mutex
	closed      bool
}

// Option configures a Transport
type Option func(*Transport)

// WithReadTimeout sets how long to wait for each bridge response
func WithReadTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.readTimeout = d
	}
}

// New opens the serial port at 115200 8N1 and puts the bridge into SPI
// mode with 3.3 V outputs, mode 0 and a 4 MHz clock
func New(portName string, opts ...Option) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, st25r.NewBusError("open", portName, fmt.Errorf("%w: %w", st25r.ErrBusInit, err))
	}

	t, err := NewFromPort(port, portName, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewFromPort runs the bridge bring-up over an already open port
func NewFromPort(port Port, portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		port:        port,
		portName:    portName,
		readTimeout: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := port.SetReadTimeout(t.readTimeout); err != nil {
		return nil, st25r.NewBusError("configure", portName, err)
	}
	if err := t.enterSPI(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transport) enterSPI() error {
	_, err := transport.WithRetry(transport.RetryConfig{
		Description: "binary mode entry",
		MaxRetries:  bbioAttempts - 1,
		OnRetry:     t.port.ResetInputBuffer,
	}, func() (struct{}, bool, error) {
		if _, err := t.port.Write([]byte{cmdReset}); err != nil {
			return struct{}{}, false, err
		}
		resp, err := t.readExact(len(bbioBanner))
		if errors.Is(err, transport.ErrTimeout) {
			return struct{}{}, true, nil
		}
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, !bytes.Equal(resp, bbioBanner), nil
	})
	if err != nil {
		return st25r.NewBusError("bbio", t.portName, fmt.Errorf("%w: %w", ErrNoBridge, err))
	}

	if _, err := t.port.Write([]byte{cmdEnterSPI}); err != nil {
		return st25r.NewBusError("spi mode", t.portName, err)
	}
	resp, err := t.readExact(len(spiBanner))
	if err != nil || !bytes.Equal(resp, spiBanner) {
		return st25r.NewBusError("spi mode", t.portName, fmt.Errorf("%w: got %q", ErrNoBridge, resp))
	}

	for _, step := range []struct {
		op  string
		cmd byte
	}{
		{"speed", cmdSpeed | speed4MHz},
		{"spi config", cmdSPIConfig | configOutput3V3 | configClockEdge},
		{"peripherals", cmdPeripherals | peripheralPower | peripheralCS},
	} {
		if err := t.command(step.op, step.cmd); err != nil {
			return err
		}
	}
	return nil
}

// command sends a single byte command and waits for its acknowledgement
func (t *Transport) command(op string, cmd byte) error {
	if _, err := t.port.Write([]byte{cmd}); err != nil {
		return st25r.NewBusError(op, t.portName, err)
	}
	resp, err := t.readExact(1)
	if err != nil {
		return st25r.NewBusError(op, t.portName, err)
	}
	if resp[0] != ack {
		return st25r.NewBusError(op, t.portName, fmt.Errorf("%w: 0x%02X", ErrNoAck, resp[0]))
	}
	return nil
}

// readExact reads n bytes, failing with transport.ErrTimeout if the bridge
// goes quiet for longer than the read timeout
func (t *Transport) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	return transport.TimeoutRetry(t.readTimeout, 0, func() ([]byte, bool, error) {
		m, err := t.port.Read(buf[got:])
		if err != nil {
			return nil, false, err
		}
		got += m
		return buf[:got], got < n, nil
	})
}

// Select implements st25r.Bus
func (t *Transport) Select() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	return t.command("select", cmdCSLow)
}

// Deselect implements st25r.Bus
func (t *Transport) Deselect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	return t.command("deselect", cmdCSHigh)
}

// Transceive implements st25r.Bus. Transfers longer than 16 bytes are split
// into bulk transfers without releasing chip select.
func (t *Transport) Transceive(tx, rx []byte, length int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if err := st25r.CheckTransfer(tx, rx, length); err != nil {
		return err
	}

	// Copy out first so tx and rx may alias
	out := append([]byte(nil), tx[:length]...)
	for off := 0; off < length; off += maxBulk {
		n := length - off
		if n > maxBulk {
			n = maxBulk
		}
		pkt := make([]byte, 0, n+1)
		pkt = append(pkt, cmdBulkTransfer|byte(n-1))
		pkt = append(pkt, out[off:off+n]...)
		if _, err := t.port.Write(pkt); err != nil {
			return st25r.NewBusError("transceive", t.portName, err)
		}

		resp, err := t.readExact(n + 1)
		if err != nil {
			return st25r.NewBusError("transceive", t.portName, err)
		}
		if resp[0] != ack {
			return st25r.NewBusError("transceive", t.portName, fmt.Errorf("%w: 0x%02X", ErrNoAck, resp[0]))
		}
		copy(rx[off:off+n], resp[1:])
	}
	return nil
}

// Close returns the bridge to its user terminal and closes the port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	// Best effort: SPI -> BBIO -> terminal
	_, _ = t.port.Write([]byte{cmdReset, cmdExitBinary})
	if err := t.port.Close(); err != nil {
		return st25r.NewBusError("close", t.portName, err)
	}
	return nil
}

// Type implements st25r.Bus
func (*Transport) Type() st25r.TransportType {
	return st25r.TransportUART
}

// String returns the serial port name
func (t *Transport) String() string {
	return t.portName
}

// IsConnected returns true until the transport is closed
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil && !t.closed
}

func (t *Transport) checkOpen() error {
	if t.closed || t.port == nil {
		return st25r.NewBusError("io", t.portName, st25r.ErrNotConnected)
	}
	return nil
}
