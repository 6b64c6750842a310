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

// Guard is a non-reentrant mutual exclusion domain whose lock is created
// on first acquisition. Acquire blocks without a timeout.
//
// A goroutine must not acquire a Guard it already holds, and no code path
// holds two Guards at the same time.
type Guard struct {
	sem  atomic.Pointer[chan struct{}]
	once sync.Once
	name string
}

// NewGuard creates a named guard. The lock itself is allocated lazily.
func NewGuard(name string) *Guard {
	return &Guard{name: name}
}

// Name returns the guard's domain name
func (g *Guard) Name() string {
	return g.name
}

// Acquire blocks until the guard is held by the caller
func (g *Guard) Acquire() {
	g.once.Do(func() {
		sem := make(chan struct{}, 1)
		g.sem.Store(&sem)
	})
	*g.sem.Load() <- struct{}{}
}

// Release gives the guard up and reports whether it was held. Releasing a
// guard that was never acquired, or is not currently held, is a no-op.
func (g *Guard) Release() bool {
	sem := g.sem.Load()
	if sem == nil {
		return false
	}
	select {
	case <-*sem:
		return true
	default:
		return false
	}
}

// Held reports whether the guard is currently acquired
func (g *Guard) Held() bool {
	sem := g.sem.Load()
	return sem != nil && len(*sem) == 1
}

// Created reports whether the underlying lock has been allocated yet
func (g *Guard) Created() bool {
	return g.sem.Load() != nil
}

// Guards holds the two independent domains shared between the interrupt
// dispatcher and the poll loop.
type Guards struct {
	// Bus serializes every select/transceive/deselect exchange.
	Bus *Guard
	// Status serializes access to the interrupt status bits.
	Status *Guard
}

// NewGuards creates both domains
func NewGuards() *Guards {
	return &Guards{
		Bus:    NewGuard("bus"),
		Status: NewGuard("status"),
	}
}
