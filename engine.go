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
	"fmt"
	"strings"
)

// Family is one of the contactless air interfaces the poll loop cycles
type Family int

const (
	// FamilyNFCA is ISO14443A (NTAG, MIFARE, DESFire).
	FamilyNFCA Family = iota
	// FamilyNFCV is ISO15693 (ICODE and friends).
	FamilyNFCV
)

// String returns the family name
func (f Family) String() string {
	switch f {
	case FamilyNFCA:
		return "NFC-A"
	case FamilyNFCV:
		return "NFC-V"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// SubType identifies the tag platform reported by collision resolution
type SubType uint8

// NFC-A listen device types, as reported by the engine, plus a local value
// for ISO15693 transponders.
const (
	SubTypeT2T       SubType = 0x00
	SubTypeT4T       SubType = 0x01
	SubTypeNFCDEP    SubType = 0x02
	SubTypeT4TNFCDEP SubType = 0x03
	SubTypeT1T       SubType = 0x20
	SubTypeISO15693  SubType = 0x80
)

// Label returns the human-readable subtype name used in device reports
func (s SubType) Label() string {
	switch s {
	case SubTypeT1T:
		return "T1T (Topaz)"
	case SubTypeT2T:
		return "T2T (NTAG/MIFARE Ultralight)"
	case SubTypeT4T:
		return "T4T (MIFARE DESFire)"
	case SubTypeNFCDEP:
		return "NFC-DEP (P2P)"
	case SubTypeISO15693:
		return "ISO15693 (NFC-V)"
	default:
		return fmt.Sprintf("Unknown (0x%02X)", uint8(s))
	}
}

// MaxUIDLen is the longest identifier collision resolution can return
const MaxUIDLen = 10

// DeviceRecord describes one device found by collision resolution. It is
// only valid for the cycle that produced it.
type DeviceRecord struct {
	UID    []byte
	Status []byte // SAK for NFC-A, DSFID for NFC-V
	Family Family
	Type   SubType
}

// UIDString formats the identifier as colon separated upper-case hex pairs
func (d *DeviceRecord) UIDString() string {
	return FormatUID(d.UID)
}

// StatusByte returns the first status byte, or zero if none was reported
func (d *DeviceRecord) StatusByte() byte {
	if len(d.Status) == 0 {
		return 0
	}
	return d.Status[0]
}

// FormatUID formats an identifier as colon separated upper-case hex pairs
func FormatUID(uid []byte) string {
	var b strings.Builder
	for i, v := range uid {
		if i > 0 {
			_ = b.WriteByte(':')
		}
		_, _ = fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// Engine is the protocol stack that drives the reader chip. Every method
// returns nil on success or a ReturnCode describing the failure.
type Engine interface {
	// Initialize brings the chip and the stack up
	Initialize() error

	// PollerInitialize configures the analog front end for a family
	PollerInitialize(f Family) error

	// FieldOnAndStartGT switches the field on and starts the guard timer
	FieldOnAndStartGT() error

	// IsGTExpired reports whether the guard time has elapsed
	IsGTExpired() bool

	// TechnologyDetection checks whether any device of family f answers
	TechnologyDetection(f Family) error

	// CollisionResolution enumerates up to maxDevices devices in the field
	CollisionResolution(f Family, maxDevices int) ([]DeviceRecord, error)

	// ReadBlock reads from dev starting at block into buf and returns the
	// number of bytes received
	ReadBlock(dev *DeviceRecord, block byte, buf []byte) (int, error)

	// FieldOff switches the field off
	FieldOff() error

	// Worker runs the stack's background state machines once
	Worker()
}
