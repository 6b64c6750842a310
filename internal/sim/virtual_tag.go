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

import (
	"errors"

	st25r "github.com/ZaparooProject/go-st25r"
)

const pageSize = 4

// VirtualTag represents a simulated NFC tag for testing
type VirtualTag struct {
	UID     []byte
	Status  []byte
	Memory  [][]byte // Page-based memory layout
	Family  st25r.Family
	Type    st25r.SubType
	Present bool // Whether the tag is currently in the field
}

// NewVirtualNTAG213 creates a virtual NTAG213 with an empty NDEF message
func NewVirtualNTAG213(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestNTAG213UID
	}

	tag := &VirtualTag{
		UID:     uid,
		Status:  []byte{SAKNTAG},
		Memory:  make([][]byte, 45), // NTAG213 has 45 pages (180 bytes)
		Family:  st25r.FamilyNFCA,
		Type:    st25r.SubTypeT2T,
		Present: true,
	}
	tag.initNTAG213Memory()
	return tag
}

// NewVirtualDESFire creates a virtual T4T device. It exposes no T2T memory.
func NewVirtualDESFire(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestDESFireUID
	}
	return &VirtualTag{
		UID:     uid,
		Status:  []byte{SAKDESFire},
		Family:  st25r.FamilyNFCA,
		Type:    st25r.SubTypeT4T,
		Present: true,
	}
}

// NewVirtualICODE creates a virtual ISO15693 transponder
func NewVirtualICODE(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestICODEUID
	}
	return &VirtualTag{
		UID:     uid,
		Status:  []byte{DSFIDICODE},
		Memory:  make([][]byte, 28),
		Family:  st25r.FamilyNFCV,
		Type:    st25r.SubTypeISO15693,
		Present: true,
	}
}

// Record returns the collision resolution record for the tag
func (v *VirtualTag) Record() st25r.DeviceRecord {
	return st25r.DeviceRecord{
		UID:    append([]byte(nil), v.UID...),
		Status: append([]byte(nil), v.Status...),
		Family: v.Family,
		Type:   v.Type,
	}
}

// ReadPages returns four consecutive pages starting at page, wrapping to
// page 0 past the end of memory like a T2T READ command
func (v *VirtualTag) ReadPages(page int) ([]byte, error) {
	if !v.Present {
		return nil, errors.New("tag not present")
	}
	if len(v.Memory) == 0 {
		return nil, errors.New("tag has no page memory")
	}
	if page < 0 || page >= len(v.Memory) {
		return nil, errors.New("page out of range")
	}

	data := make([]byte, 0, 4*pageSize)
	for i := 0; i < 4; i++ {
		p := v.Memory[(page+i)%len(v.Memory)]
		if p == nil {
			p = make([]byte, pageSize)
		}
		data = append(data, p...)
	}
	return data, nil
}

// WritePage writes one page of user memory
func (v *VirtualTag) WritePage(page int, data []byte) error {
	if !v.Present {
		return errors.New("tag not present")
	}
	if page < 0 || page >= len(v.Memory) {
		return errors.New("page out of range")
	}
	if v.isPageWriteProtected(page) {
		return errors.New("page is write protected")
	}
	if len(data) != pageSize {
		return errors.New("data must be exactly 4 bytes")
	}
	v.Memory[page] = append([]byte(nil), data...)
	return nil
}

// SetNDEFText stores a single text record starting at page 4
func (v *VirtualTag) SetNDEFText(text string) error {
	return v.writeUserData(BuildNDEFTextTLV(text, "en"))
}

// Remove sets the tag as not present
func (v *VirtualTag) Remove() {
	v.Present = false
}

// Insert sets the tag as present
func (v *VirtualTag) Insert() {
	v.Present = true
}

func (v *VirtualTag) initNTAG213Memory() {
	for i := range v.Memory {
		v.Memory[i] = make([]byte, pageSize)
	}
	// Pages 0-1: UID with check bytes
	copy(v.Memory[0], v.UID[:3])
	copy(v.Memory[1], v.UID[3:])
	// Page 3: capability container for 144 bytes of NDEF memory
	copy(v.Memory[3], []byte{0xE1, 0x10, 0x12, 0x00})
	// Page 4: empty NDEF message
	copy(v.Memory[4], []byte{0x03, 0x00, 0xFE, 0x00})
}

func (v *VirtualTag) isPageWriteProtected(page int) bool {
	if v.Type == st25r.SubTypeT2T {
		// Pages 0-3 are UID, lock and CC; 40-44 are configuration
		return page < 4 || page >= 40
	}
	return false
}

func (v *VirtualTag) writeUserData(data []byte) error {
	if len(data) > 36*pageSize {
		return errors.New("data too large for user memory")
	}
	for off := 0; off < len(data); off += pageSize {
		page := make([]byte, pageSize)
		copy(page, data[off:])
		if err := v.WritePage(4+off/pageSize, page); err != nil {
			return err
		}
	}
	return nil
}
