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

import "fmt"

// Bus is a synchronous full-duplex link to the reader chip, framed by an
// active-low chip select. Callers decide the transaction boundaries: any
// number of Transceive calls may happen between Select and Deselect.
//
// A Bus does not detect or recover from transmission faults on its own.
// Callers serialize access with the platform's bus Guard.
type Bus interface {
	// Select asserts the chip select line (drives it low)
	Select() error

	// Deselect releases the chip select line (drives it high)
	Deselect() error

	// Transceive clocks out tx[:length] while clocking in rx[:length].
	// tx and rx may alias.
	Transceive(tx, rx []byte, length int) error

	// Close releases the underlying port
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// Pin is a single digital line
type Pin interface {
	// Set drives the pin high or low
	Set(high bool) error

	// IsHigh samples the pin level
	IsHigh() bool
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents a native SPI controller.
	TransportSPI TransportType = "spi"
	// TransportUART represents a USB serial to SPI bridge.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// CheckTransfer validates buffer sizes for a Transceive of length bytes
func CheckTransfer(tx, rx []byte, length int) error {
	if length < 0 || length > MaxTransferSize {
		return fmt.Errorf("%w: length %d outside 0..%d", ErrInvalidLength, length, MaxTransferSize)
	}
	if len(tx) < length || len(rx) < length {
		return fmt.Errorf("%w: tx=%d rx=%d length=%d", ErrInvalidLength, len(tx), len(rx), length)
	}
	return nil
}
