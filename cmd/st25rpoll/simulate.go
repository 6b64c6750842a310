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

package main

import (
	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/internal/sim"
)

// newSimulatedEngine returns an engine with an NTAG213 holding a text
// record and an ICODE transponder in the field
func newSimulatedEngine() st25r.Engine {
	ntag := sim.NewVirtualNTAG213(nil)
	_ = ntag.SetNDEFText("Hello from st25rpoll")

	engine := sim.NewVirtualEngine(ntag, sim.NewVirtualICODE(nil))
	engine.SetGuardPolls(1)
	engine.SetCallLogging(false)
	return engine
}
