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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_DurationToTicks(t *testing.T) {
	t.Parallel()
	clock := NewClock(NewManualTicks(0), 10*time.Millisecond)

	tests := []struct {
		name string
		d    time.Duration
		want uint32
	}{
		{name: "zero", d: 0, want: 0},
		{name: "negative", d: -time.Second, want: 0},
		{name: "below one tick", d: time.Millisecond, want: 1},
		{name: "exactly one tick", d: 10 * time.Millisecond, want: 1},
		{name: "partial tick rounds up", d: 25 * time.Millisecond, want: 3},
		{name: "one second", d: time.Second, want: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, clock.DurationToTicks(tt.d))
		})
	}
}

func TestClock_CreateNotExpiredUntilDurationElapsed(t *testing.T) {
	t.Parallel()
	const period = 10 * time.Millisecond

	durations := []time.Duration{
		time.Nanosecond,
		time.Millisecond,
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		300 * time.Millisecond,
	}

	for _, d := range durations {
		d := d
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()
			ticks := NewManualTicks(1000)
			clock := NewClock(ticks, period)

			timer := clock.Create(d)
			require.False(t, clock.IsExpired(timer), "fresh timer must not be expired")

			var advanced uint32
			for !clock.IsExpired(timer) {
				ticks.Advance(1)
				advanced++
				require.Less(t, advanced, uint32(1000), "timer never expired")
			}

			// The start may have been sampled just before a tick boundary,
			// so only advanced-1 whole periods are guaranteed to have passed.
			guaranteed := time.Duration(advanced-1) * period
			assert.GreaterOrEqual(t, guaranteed, d)
		})
	}
}

func TestClock_IsExpiredAcrossWraparound(t *testing.T) {
	t.Parallel()
	ticks := NewManualTicks(0xFFFFFFF0)
	clock := NewClock(ticks, 10*time.Millisecond)

	timer := clock.Create(time.Second) // 100 ticks + 1 margin
	assert.Equal(t, Timer(0x55), timer)
	assert.Less(t, uint32(timer), uint32(0xFFFFFFF0), "deadline should have wrapped")
	assert.False(t, clock.IsExpired(timer))

	ticks.Advance(50) // counter wraps past zero
	assert.Less(t, ticks.Ticks(), uint32(0xFFFFFFF0))
	assert.False(t, clock.IsExpired(timer))

	ticks.Advance(50)
	assert.False(t, clock.IsExpired(timer))

	ticks.Advance(1)
	assert.True(t, clock.IsExpired(timer))

	ticks.Advance(1 << 20)
	assert.True(t, clock.IsExpired(timer))
}

func TestClock_Remaining(t *testing.T) {
	t.Parallel()
	ticks := NewManualTicks(0xFFFFFFFE)
	clock := NewClock(ticks, 10*time.Millisecond)

	timer := clock.Create(20 * time.Millisecond) // 2 ticks + 1
	assert.Equal(t, 30*time.Millisecond, clock.Remaining(timer))

	ticks.Advance(2)
	assert.Equal(t, 10*time.Millisecond, clock.Remaining(timer))

	ticks.Advance(5)
	assert.Equal(t, time.Duration(0), clock.Remaining(timer))

	clock.Destroy(timer)
}

func TestSystemTicks_Advances(t *testing.T) {
	t.Parallel()
	src := NewSystemTicks(time.Millisecond)
	start := src.Ticks()

	assert.Eventually(t, func() bool {
		return src.Ticks() > start
	}, time.Second, time.Millisecond)
}

func TestNewClock_Defaults(t *testing.T) {
	t.Parallel()
	clock := NewClock(nil, 0)
	assert.Equal(t, TickPeriod, clock.Period())
	assert.False(t, clock.IsExpired(clock.Create(time.Minute)))
}
