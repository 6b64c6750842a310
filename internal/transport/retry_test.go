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

package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		t.Parallel()
		attempts, retries := 0, 0
		var slept []time.Duration

		got, err := WithRetry(RetryConfig{
			Description: "bbio entry",
			MaxRetries:  5,
			RetryDelay:  time.Millisecond,
			Sleep:       func(d time.Duration) { slept = append(slept, d) },
			OnRetry: func() error {
				retries++
				return nil
			},
		}, func() (string, bool, error) {
			attempts++
			if attempts < 3 {
				return "", true, nil
			}
			return "BBIO1", false, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "BBIO1", got)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 2, retries)
		assert.Len(t, slept, 2)
	})

	t.Run("Exhausted", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		_, err := WithRetry(RetryConfig{Description: "bbio entry", MaxRetries: 2},
			func() (int, bool, error) {
				attempts++
				return 0, true, nil
			})

		require.ErrorIs(t, err, ErrRetriesExhausted)
		assert.Contains(t, err.Error(), "bbio entry")
		assert.Equal(t, 3, attempts)
	})

	t.Run("PermanentError", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("port closed")
		attempts := 0
		_, err := WithRetry(RetryConfig{MaxRetries: 10}, func() (int, bool, error) {
			attempts++
			return 0, false, boom
		})

		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, attempts)
	})

	t.Run("OnRetryError", func(t *testing.T) {
		t.Parallel()
		flushErr := errors.New("flush failed")
		_, err := WithRetry(RetryConfig{
			MaxRetries: 3,
			OnRetry:    func() error { return flushErr },
		}, func() (int, bool, error) {
			return 0, true, nil
		})

		require.ErrorIs(t, err, flushErr)
	})
}

func TestTimeoutRetry(t *testing.T) {
	t.Parallel()

	t.Run("CompletesBeforeDeadline", func(t *testing.T) {
		t.Parallel()
		calls := 0
		got, err := TimeoutRetry(time.Second, 0, func() (int, bool, error) {
			calls++
			return calls, calls < 4, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 4, got)
	})

	t.Run("TimesOut", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		_, err := TimeoutRetry(20*time.Millisecond, time.Millisecond, func() (int, bool, error) {
			return 0, true, nil
		})

		require.ErrorIs(t, err, ErrTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("ZeroTimeoutRunsOnce", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, err := TimeoutRetry(0, 0, func() (int, bool, error) {
			calls++
			return 0, true, nil
		})

		require.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, 1, calls)
	})
}
