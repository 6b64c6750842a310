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
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

var (
	debugEnabled  atomic.Bool
	packageLogger atomic.Pointer[slog.Logger]
)

// SetDebugEnabled turns verbose bus and interrupt tracing on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether verbose tracing is on
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// SetLogger replaces the logger used when no component-specific logger
// is configured. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	packageLogger.Store(l)
}

// Logger returns the package logger
func Logger() *slog.Logger {
	if l := packageLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func debugf(l *slog.Logger, format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	if l == nil {
		l = Logger()
	}
	l.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}
