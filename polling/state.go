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

package polling

import "fmt"

// AttemptState is the state of one family attempt within a cycle
type AttemptState int32

const (
	StateIdle AttemptState = iota
	StateFieldOn
	StateGuardWait
	StateDetecting
	StateResolving
	StateReading
	StateFieldOff
)

// String returns the state name
func (s AttemptState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateFieldOn:
		return "FieldOn"
	case StateGuardWait:
		return "GuardWait"
	case StateDetecting:
		return "Detecting"
	case StateResolving:
		return "Resolving"
	case StateReading:
		return "PerDeviceRead"
	case StateFieldOff:
		return "FieldOff"
	default:
		return fmt.Sprintf("AttemptState(%d)", int32(s))
	}
}

// Stage names the engine call that produced a reported error
type Stage string

const (
	StageInit     Stage = "init"
	StageFieldOn  Stage = "field-on"
	StageDetect   Stage = "detect"
	StageResolve  Stage = "resolve"
	StageRead     Stage = "read"
	StageFieldOff Stage = "field-off"
)
