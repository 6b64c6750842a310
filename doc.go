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

/*
Package st25r provides the platform layer that an ST25R391x protocol engine
runs on: a framed SPI bus, two guard domains, a wrapping tick clock and an
interrupt bridge that moves IRQ line edges onto a dispatcher goroutine.

The engine itself (field control, anticollision, CRCs) is an external
collaborator reached through the Engine interface. The polling package
drives it through repeated NFC-A and NFC-V detection cycles.

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-st25r"
	    "github.com/ZaparooProject/go-st25r/polling"
	    "github.com/ZaparooProject/go-st25r/transport/spi"
	)

	bus, err := spi.New(spi.DefaultConfig())
	if err != nil {
	    log.Fatal(err)
	}

	platform, err := st25r.NewPlatform(bus, st25r.WithPin(st25r.PinCS, bus.CS()))
	if err != nil {
	    log.Fatal(err)
	}
	defer platform.Close()

	engine := newEngine(platform) // protocol stack bound to the platform
	platform.IrqSetCallback(engine.Isr)
	if err := platform.IrqInitialize(); err != nil {
	    log.Fatal(err)
	}
	go bus.WatchIRQ(ctx, platform.Edge)

	poller := polling.New(engine, polling.DefaultConfig())
	if err := poller.Bringup(); err != nil {
	    log.Fatal(err)
	}
	poller.Run(ctx)

Concurrency:

Exactly two goroutines run inside this layer: the interrupt dispatcher and
the poll loop. The bus guard must be held for every select/transceive/
deselect sequence and the status guard for every access to interrupt status
bits. The two guards are never held together.

Error Handling:

Engine calls return nil or a ReturnCode. Timeout and busy are routine
outcomes of a poll and can be recognised with IsRoutine:

	if err := engine.TechnologyDetection(st25r.FamilyNFCA); st25r.IsRoutine(err) {
	    // nothing in the field
	}
*/
package st25r
