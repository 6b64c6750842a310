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
	"time"
)

// TickSource is a fixed-width tick counter that wraps at 2^32.
type TickSource interface {
	Ticks() uint32
}

// SystemTicks counts elapsed periods since it was created.
type SystemTicks struct {
	start  time.Time
	period time.Duration
}

// NewSystemTicks creates a tick source backed by the monotonic clock
func NewSystemTicks(period time.Duration) *SystemTicks {
	if period <= 0 {
		period = TickPeriod
	}
	return &SystemTicks{start: time.Now(), period: period}
}

// Ticks returns the number of whole periods elapsed, truncated to 32 bits
func (s *SystemTicks) Ticks() uint32 {
	return uint32(time.Since(s.start) / s.period)
}

// Timer is a deadline expressed in ticks. It owns no resources and is
// compared by value.
type Timer uint32

// Clock converts durations into tick deadlines over a TickSource.
type Clock struct {
	src    TickSource
	period time.Duration
}

// NewClock creates a clock over src whose ticks last period each
func NewClock(src TickSource, period time.Duration) *Clock {
	if period <= 0 {
		period = TickPeriod
	}
	if src == nil {
		src = NewSystemTicks(period)
	}
	return &Clock{src: src, period: period}
}

// Period returns the duration of one tick
func (c *Clock) Period() time.Duration {
	return c.period
}

// Now returns the current tick count
func (c *Clock) Now() uint32 {
	return c.src.Ticks()
}

// DurationToTicks converts d to whole ticks, rounding up so a nonzero
// duration never becomes zero ticks.
func (c *Clock) DurationToTicks(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32((d + c.period - 1) / c.period)
}

// Create returns a deadline at least d in the future. One extra tick is
// added because the current tick may be about to roll over.
func (c *Clock) Create(d time.Duration) Timer {
	ticks := c.DurationToTicks(d) + 1
	return Timer(c.src.Ticks() + ticks)
}

// IsExpired reports whether the deadline has passed. The difference is
// taken in signed 32-bit arithmetic so it stays correct across a wrap.
func (c *Clock) IsExpired(t Timer) bool {
	return int32(c.src.Ticks()-uint32(t)) >= 0
}

// Remaining returns how long until t expires, or zero if it already has
func (c *Clock) Remaining(t Timer) time.Duration {
	diff := int32(uint32(t) - c.src.Ticks())
	if diff <= 0 {
		return 0
	}
	return time.Duration(diff) * c.period
}

// Destroy releases t. Timers are plain values so this does nothing.
func (*Clock) Destroy(Timer) {}
