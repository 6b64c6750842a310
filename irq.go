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
)

// BridgeMetrics tracks interrupt bridge activity
type BridgeMetrics struct {
	Edges      int64 // Edges posted by the interrupt handler
	Dispatches int64 // Callback invocations
	Discarded  int64 // Wakes dropped because no callback was registered
}

// Bridge turns interrupt edges into callback invocations on a dispatcher
// goroutine. The pending signal saturates at one: edges that arrive before
// the dispatcher drains it collapse into a single dispatch.
type Bridge struct {
	callback atomic.Pointer[func()]
	signal   chan struct{}
	stopChan chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	// Atomic counters for metrics
	edges      int64
	dispatches int64
	discarded  int64
}

// NewBridge creates an idle bridge with no callback registered
func NewBridge() *Bridge {
	return &Bridge{
		signal: make(chan struct{}, 1),
	}
}

// RegisterCallback stores cb, replacing any earlier registration. It is
// meant to be called once before the dispatcher starts.
func (b *Bridge) RegisterCallback(cb func()) {
	if cb == nil {
		b.callback.Store(nil)
		return
	}
	b.callback.Store(&cb)
}

// Edge posts a wake to the dispatcher. It never blocks or allocates and is
// safe to call from an edge-detection goroutine.
func (b *Bridge) Edge() {
	atomic.AddInt64(&b.edges, 1)
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Start launches the dispatcher goroutine
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopChan != nil {
		return ErrBridgeRunning
	}
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.dispatchLoop(b.stopChan, b.done)
	return nil
}

// Stop halts the dispatcher and waits for a running callback to return.
// Pending wakes stay pending for the next Start.
func (b *Bridge) Stop() {
	b.mu.Lock()
	stop, done := b.stopChan, b.done
	b.stopChan, b.done = nil, nil
	b.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the dispatcher goroutine is active
func (b *Bridge) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopChan != nil
}

// Metrics returns a snapshot of the bridge counters
func (b *Bridge) Metrics() BridgeMetrics {
	return BridgeMetrics{
		Edges:      atomic.LoadInt64(&b.edges),
		Dispatches: atomic.LoadInt64(&b.dispatches),
		Discarded:  atomic.LoadInt64(&b.discarded),
	}
}

func (b *Bridge) dispatchLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-b.signal:
			b.dispatch()
		}
	}
}

// dispatch runs the callback once for one drained wake
func (b *Bridge) dispatch() {
	cb := b.callback.Load()
	if cb == nil {
		atomic.AddInt64(&b.discarded, 1)
		return
	}
	atomic.AddInt64(&b.dispatches, 1)
	(*cb)()
}
