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

package polling

import (
	"testing"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate  func(c *Config)
		name    string
		wantErr bool
	}{
		{name: "Default", mutate: func(*Config) {}},
		{name: "ZeroValue", mutate: func(c *Config) { *c = Config{} }},
		{name: "SingleFamily", mutate: func(c *Config) { c.Families = []st25r.Family{st25r.FamilyNFCV} }},
		{name: "NegativePause", mutate: func(c *Config) { c.FamilyPause = -time.Millisecond }, wantErr: true},
		{name: "NegativeGuardPoll", mutate: func(c *Config) { c.GuardPollInterval = -1 }, wantErr: true},
		{name: "NegativeMaxDevices", mutate: func(c *Config) { c.MaxDevices = -1 }, wantErr: true},
		{name: "EmptyFamilies", mutate: func(c *Config) { c.Families = []st25r.Family{} }, wantErr: true},
		{name: "UnknownFamily", mutate: func(c *Config) { c.Families = []st25r.Family{st25r.Family(7)} }, wantErr: true},
		{
			name:    "DuplicateFamily",
			mutate:  func(c *Config) { c.Families = []st25r.Family{st25r.FamilyNFCA, st25r.FamilyNFCA} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Families[0] = st25r.FamilyNFCV
	clone.MaxDevices = 1

	assert.Equal(t, st25r.FamilyNFCA, cfg.Families[0])
	assert.Equal(t, st25r.MaxDevices, cfg.MaxDevices)
}

func TestDefaultConfig_MatchesReferenceTimings(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Millisecond, cfg.GuardPollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.FamilyPause)
	assert.Equal(t, 500*time.Millisecond, cfg.CyclePause)
	assert.Equal(t, 5, cfg.MaxDevices)
	assert.Equal(t, byte(4), cfg.T2TReadBlock)
	assert.Equal(t, []st25r.Family{st25r.FamilyNFCA, st25r.FamilyNFCV}, cfg.Families)
}

func TestEnabledFamilies_FollowFeatureFlags(t *testing.T) {
	t.Parallel()

	var want []st25r.Family
	if st25r.FeatureNFCA {
		want = append(want, st25r.FamilyNFCA)
	}
	if st25r.FeatureNFCV {
		want = append(want, st25r.FamilyNFCV)
	}
	assert.Equal(t, want, EnabledFamilies())
	assert.Equal(t, want, DefaultConfig().Families)
}
