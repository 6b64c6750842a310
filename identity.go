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

	"github.com/ZaparooProject/go-st25r/internal/frame"
)

// Identity is the content of the chip's IC identity register
type Identity struct {
	Raw      byte
	Type     byte
	Revision byte
}

// IsST25R3911 reports whether the identity matches the ST25R3911 family
func (id Identity) IsST25R3911() bool {
	return id.Type == frame.ICTypeST25R3911
}

// String returns a readable description of the identity
func (id Identity) String() string {
	return fmt.Sprintf("type 0x%02X rev %d (raw 0x%02X)", id.Type, id.Revision, id.Raw)
}

// ReadIdentity reads the IC identity register over the bus. It is used
// during bring-up to check that the chip answers before the engine starts.
func ReadIdentity(p *Platform) (Identity, error) {
	rx, err := p.Exchange(frame.ReadRegister(frame.RegICIdentity))
	if err != nil {
		return Identity{}, fmt.Errorf("identity read failed: %w", err)
	}
	icType, rev := frame.ParseIdentity(rx[1])
	id := Identity{Raw: rx[1], Type: icType, Revision: rev}
	debugf(p.logger, "chip identity: %s", id)
	return id, nil
}
