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

// Package frame provides SPI operation framing for ST25R391x reader chips
package frame

// Operation mode bits, carried in the top two bits of the first byte
const (
	ModeRegisterRead = 0x40 // Read register at address

	AddressMask = 0x3F
)

// RegICIdentity holds the chip type and silicon revision
const RegICIdentity = 0x3F

// IC identity layout
const (
	ICTypeMask     = 0xF8
	ICTypeShift    = 3
	ICRevisionMask = 0x07

	ICTypeST25R3911 = 0x01
)

// ReadRegister builds a two-byte exchange that reads addr. The register
// value arrives in the second received byte.
func ReadRegister(addr byte) []byte {
	return []byte{ModeRegisterRead | (addr & AddressMask), 0x00}
}

// ParseIdentity splits the IC identity register into chip type and revision
func ParseIdentity(reg byte) (icType, revision byte) {
	return (reg & ICTypeMask) >> ICTypeShift, reg & ICRevisionMask
}
