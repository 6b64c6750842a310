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
	"testing"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualEngine_DetectionFollowsField(t *testing.T) {
	t.Parallel()

	engine := NewVirtualEngine(NewVirtualICODE(nil))

	assert.ErrorIs(t, engine.TechnologyDetection(st25r.FamilyNFCA), st25r.CodeTimeout)
	assert.NoError(t, engine.TechnologyDetection(st25r.FamilyNFCV))
}

func TestVirtualEngine_ScriptedDetectionOverridesField(t *testing.T) {
	t.Parallel()

	engine := NewVirtualEngine()
	engine.SetFamilyError(CallDetect, st25r.FamilyNFCA, nil)

	require.NoError(t, engine.TechnologyDetection(st25r.FamilyNFCA))
	assert.ErrorIs(t, engine.TechnologyDetection(st25r.FamilyNFCV), st25r.CodeTimeout)

	devices, err := engine.CollisionResolution(st25r.FamilyNFCA, st25r.MaxDevices)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestVirtualEngine_FamilyErrorTakesPrecedence(t *testing.T) {
	t.Parallel()

	engine := NewVirtualEngine(NewVirtualNTAG213(nil))
	engine.SetError(CallDetect, st25r.CodeIO)
	engine.SetFamilyError(CallDetect, st25r.FamilyNFCV, st25r.CodeCRC)

	assert.ErrorIs(t, engine.TechnologyDetection(st25r.FamilyNFCA), st25r.CodeIO)
	assert.ErrorIs(t, engine.TechnologyDetection(st25r.FamilyNFCV), st25r.CodeCRC)
}
