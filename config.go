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

import "time"

// Pin assignments for the reference board (ESP32-S3 with an ST25R3911B
// front end wired to SPI2). Names follow the periph.io gpioreg convention
// so the Linux transports can resolve the same wiring by name.
const (
	PinMOSI = "GPIO11"
	PinMISO = "GPIO13"
	PinSCLK = "GPIO12"
	PinCS   = "GPIO10"
	PinIRQ  = "GPIO38"
)

// Bus parameters
const (
	// MaxClockHz is the SPI clock. The chip accepts up to 6 MHz but 5 MHz
	// is stable on long jumper wires.
	MaxClockHz = 5 * 1000 * 1000
	// SPIMode is the clock polarity/phase pair (mode 0: CPOL=0, CPHA=0).
	SPIMode = 0
	// BusQueueSize is the number of in-flight transactions the driver keeps.
	BusQueueSize = 1
	// MaxTransferSize bounds a single Transceive call.
	MaxTransferSize = 256
)

// Poll loop parameters
const (
	// MaxDevices caps how many devices collision resolution enumerates per cycle.
	MaxDevices = 5

	GuardPollInterval = 10 * time.Millisecond
	FamilyPause       = 100 * time.Millisecond
	CyclePause        = 500 * time.Millisecond

	// TickPeriod is the resolution of the monotonic tick counter.
	TickPeriod = 10 * time.Millisecond
)

// Protocol features compiled into the engine. The poll loop attempts the
// enabled families and reads memory only from enabled tag types.
const (
	FeatureNFCA = true
	FeatureT2T  = true
	FeatureNFCV = true
)

// Buffer sizes
const (
	// T2TReadLen is the size of one T2T READ response: four 4-byte pages.
	T2TReadLen = 16
	// T2TPageSize is the size of a single T2T page.
	T2TPageSize = 4
)
