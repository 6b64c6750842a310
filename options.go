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
	"errors"
	"log/slog"
	"time"
)

// Option is a functional option for configuring a Platform
type Option func(*Platform) error

// WithTickSource sets the tick counter and the duration of one tick
func WithTickSource(src TickSource, period time.Duration) Option {
	return func(p *Platform) error {
		if src == nil {
			return errors.New("tick source cannot be nil")
		}
		p.clock = NewClock(src, period)
		return nil
	}
}

// WithSleeper replaces the function used for cooperative sleeps
func WithSleeper(sleep func(time.Duration)) Option {
	return func(p *Platform) error {
		if sleep == nil {
			return errors.New("sleeper cannot be nil")
		}
		p.sleep = sleep
		return nil
	}
}

// WithLogger sets the logger used by the platform
func WithLogger(logger *slog.Logger) Option {
	return func(p *Platform) error {
		p.logger = logger
		return nil
	}
}

// WithPin registers a GPIO line under name
func WithPin(name string, pin Pin) Option {
	return func(p *Platform) error {
		if pin == nil {
			return errors.New("pin cannot be nil")
		}
		p.pins[name] = pin
		return nil
	}
}
