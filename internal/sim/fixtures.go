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

package sim

// BuildNDEFTextTLV creates an NDEF message TLV holding one well-known text
// record, followed by a terminator TLV
func BuildNDEFTextTLV(text, lang string) []byte {
	payload := append([]byte{byte(len(lang))}, lang...)
	payload = append(payload, text...)

	record := []byte{
		0xD1,               // MB=1, ME=1, SR=1, TNF=well known
		0x01,               // Type length
		byte(len(payload)), // Payload length
		'T',
	}
	record = append(record, payload...)

	tlv := []byte{0x03, byte(len(record))}
	tlv = append(tlv, record...)
	return append(tlv, 0xFE)
}

// BuildIdentityResponse creates the bytes received while reading the IC
// identity register: a dummy byte followed by the register value
func BuildIdentityResponse(icType, revision byte) []byte {
	return []byte{0x00, icType<<3 | revision&0x07}
}

// Common UIDs for testing
var (
	// TestNTAG213UID is a sample NTAG213 UID
	TestNTAG213UID = []byte{0x04, 0xD1, 0x3A, 0x2C, 0x91, 0x00, 0x00}

	// TestNTAG215UID is a second NTAG UID using the ISO15693-style prefix
	// seen on some multi-protocol cards
	TestNTAG215UID = []byte{0xE0, 0x04, 0x01, 0x00, 0x12, 0x34, 0x56, 0x78}

	// TestICODEUID is a sample ISO15693 UID
	TestICODEUID = []byte{0xE0, 0x04, 0x01, 0x50, 0x11, 0x22, 0x33, 0x44}

	// TestDESFireUID is a sample DESFire UID
	TestDESFireUID = []byte{0x04, 0x52, 0x7A, 0x12, 0xB3, 0x5C, 0x80}
)

// Status bytes reported by collision resolution
const (
	SAKNTAG    = 0x00
	SAKDESFire = 0x20
	DSFIDICODE = 0x00
)
