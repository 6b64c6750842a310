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

// Package transport provides helpers shared by the bus transports
package transport

import (
	"errors"
	"fmt"
	"time"
)

// Retry errors
var (
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrTimeout          = errors.New("operation timed out")
)

// RetryOperation represents a function that can be retried
// Returns: data, shouldRetry, error
// - data: the result if successful
// - shouldRetry: true if the operation should be retried
// - error: any permanent error that should stop retries
type RetryOperation[T any] func() (T, bool, error)

// RetryConfig configures retry behavior
type RetryConfig struct {
	OnRetry     func() error
	Sleep       func(time.Duration)
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry runs operation until it stops asking for a retry, fails, or
// MaxRetries additional attempts have been made
func WithRetry[T any](config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T
	sleep := config.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if attempt == config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}
		if config.RetryDelay > 0 {
			sleep(config.RetryDelay)
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts", config.Description, ErrRetriesExhausted, config.MaxRetries+1)
}

// TimeoutRetry runs operation until it stops asking for a retry, fails, or
// timeout elapses. The operation always runs at least once.
func TimeoutRetry[T any](timeout, interval time.Duration, operation RetryOperation[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return zero, ErrTimeout
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}
