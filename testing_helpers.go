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
	"sync"
	"sync/atomic"
	"time"
)

// MockBus is an in-memory Bus that records every operation. Tests can
// script responses, inject failures and slow transfers down to observe
// how many callers are inside an exchange at once.
type MockBus struct {
	ResponseFunc func(tx []byte) []byte
	err          error
	ops          []string
	delay        time.Duration
	mu           sync.Mutex
	active       int32
	maxActive    int32
	selected     bool
	closed       bool
}

// NewMockBus creates a mock bus that echoes zeros
func NewMockBus() *MockBus {
	return &MockBus{}
}

// Select records a select
func (m *MockBus) Select() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrNotConnected
	}
	m.selected = true
	m.ops = append(m.ops, "select")
	return nil
}

// Deselect records a deselect
func (m *MockBus) Deselect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = false
	m.ops = append(m.ops, "deselect")
	return nil
}

// Transceive fills rx from ResponseFunc, or with zeros
func (m *MockBus) Transceive(tx, rx []byte, length int) error {
	active := atomic.AddInt32(&m.active, 1)
	defer atomic.AddInt32(&m.active, -1)
	for {
		peak := atomic.LoadInt32(&m.maxActive)
		if active <= peak || atomic.CompareAndSwapInt32(&m.maxActive, peak, active) {
			break
		}
	}

	m.mu.Lock()
	err := m.err
	delay := m.delay
	responseFunc := m.ResponseFunc
	closed := m.closed
	m.ops = append(m.ops, "transceive")
	m.mu.Unlock()

	if closed {
		return ErrNotConnected
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}

	out := make([]byte, length)
	copy(out, tx[:length])
	var resp []byte
	if responseFunc != nil {
		resp = responseFunc(out)
	}
	for i := 0; i < length; i++ {
		rx[i] = 0
		if i < len(resp) {
			rx[i] = resp[i]
		}
	}
	return nil
}

// Close marks the bus closed
func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns TransportMock
func (*MockBus) Type() TransportType {
	return TransportMock
}

// SetError makes every following Transceive fail with err
func (m *MockBus) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes every Transceive take at least d
func (m *MockBus) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetResponseFunc configures the function that produces received bytes
func (m *MockBus) SetResponseFunc(fn func(tx []byte) []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseFunc = fn
}

// Ops returns a copy of the recorded operation log
func (m *MockBus) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// Selected reports whether chip select is currently asserted
func (m *MockBus) Selected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// MaxConcurrent returns the highest number of overlapping Transceive calls
func (m *MockBus) MaxConcurrent() int {
	return int(atomic.LoadInt32(&m.maxActive))
}

// ManualTicks is a TickSource whose value is set by the test
type ManualTicks struct {
	ticks atomic.Uint32
}

// NewManualTicks creates a tick source starting at start
func NewManualTicks(start uint32) *ManualTicks {
	m := &ManualTicks{}
	m.ticks.Store(start)
	return m
}

// Ticks returns the current value
func (m *ManualTicks) Ticks() uint32 {
	return m.ticks.Load()
}

// Set replaces the current value
func (m *ManualTicks) Set(v uint32) {
	m.ticks.Store(v)
}

// Advance moves the counter forward by n, wrapping at 2^32
func (m *ManualTicks) Advance(n uint32) {
	m.ticks.Add(n)
}

// MockPin is an in-memory GPIO line
type MockPin struct {
	high atomic.Bool
}

// Set drives the line
func (m *MockPin) Set(high bool) error {
	m.high.Store(high)
	return nil
}

// IsHigh samples the line
func (m *MockPin) IsHigh() bool {
	return m.high.Load()
}
