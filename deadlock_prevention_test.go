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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGuard_LazyCreation(t *testing.T) {
	t.Parallel()
	g := NewGuard("bus")

	assert.Equal(t, "bus", g.Name())
	assert.False(t, g.Created())

	// Releasing before the lock exists must not panic
	assert.NotPanics(t, func() { assert.False(t, g.Release()) })
	assert.False(t, g.Created())

	g.Acquire()
	assert.True(t, g.Created())
	assert.True(t, g.Release())
}

func TestGuard_ReleaseWhenNotHeld(t *testing.T) {
	t.Parallel()
	g := NewGuard("status")

	g.Acquire()
	assert.True(t, g.Held())
	assert.True(t, g.Release())
	assert.False(t, g.Held())

	// A second release of a created guard is a no-op
	assert.NotPanics(t, func() { assert.False(t, g.Release()) })
	assert.False(t, g.Held())

	// The guard stays usable and exclusive afterwards
	g.Acquire()
	acquired := make(chan struct{})
	go func() {
		g.Acquire()
		close(acquired)
		g.Release()
	}()
	select {
	case <-acquired:
		t.Fatal("guard acquired twice after a spurious release")
	case <-time.After(20 * time.Millisecond):
	}
	g.Release()
	<-acquired
}

// runContended has workers goroutines enter the guarded section rounds
// times each and returns the highest number seen inside at once.
func runContended(g *Guard, workers, rounds int) int32 {
	var inSection, peak int32
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				g.Acquire()
				n := atomic.AddInt32(&inSection, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(50 * time.Microsecond)
				atomic.AddInt32(&inSection, -1)
				g.Release()
			}
		}()
	}

	wg.Wait()
	return atomic.LoadInt32(&peak)
}

func TestGuards_MutualExclusion(t *testing.T) {
	t.Parallel()
	guards := NewGuards()

	tests := []struct {
		guard *Guard
		name  string
	}{
		{name: "bus", guard: guards.Bus},
		{name: "status", guard: guards.Status},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			peak := runContended(tt.guard, 8, 20)
			assert.Equal(t, int32(1), peak, "more than one caller inside the guarded section")
		})
	}
}

func TestGuards_DomainsAreIndependent(t *testing.T) {
	t.Parallel()
	guards := NewGuards()

	guards.Bus.Acquire()
	defer guards.Bus.Release()

	acquired := make(chan struct{})
	go func() {
		guards.Status.Acquire()
		guards.Status.Release()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("status guard blocked while only the bus guard was held")
	}
}

func TestGuard_AcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()
	g := NewGuard("status")
	g.Acquire()

	var entered atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Acquire()
		entered.Store(true)
		g.Release()
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, entered.Load(), "second acquire must wait")

	g.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the guard")
	}
	assert.True(t, entered.Load())
}

func TestPlatform_ConcurrentExchangesAreSerialized(t *testing.T) {
	t.Parallel()
	bus := NewMockBus()
	bus.SetDelay(200 * time.Microsecond)
	p, err := NewPlatform(bus)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			for r := 0; r < 5; r++ {
				_, exErr := p.Exchange([]byte{byte(id), byte(r)})
				assert.NoError(t, exErr)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("exchanges did not complete")
	}

	assert.Equal(t, 1, bus.MaxConcurrent())
	assert.False(t, bus.Selected(), "chip select left asserted")
}
