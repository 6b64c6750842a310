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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	st25r "github.com/ZaparooProject/go-st25r"
)

// Config holds the poll loop parameters. The defaults come from the
// build-time constants in the st25r package.
type Config struct {
	// Reporter receives one report per discovered device
	Reporter Reporter
	// OnError is called for every protocol error that is reported
	OnError func(ErrorEvent)
	// Logger receives reported protocol errors
	Logger *slog.Logger
	// Sleep performs the cooperative waits inside a cycle
	Sleep func(time.Duration)
	// Wait performs the pause between cycles. It returns ctx.Err() when ctx
	// ends first.
	Wait func(ctx context.Context, d time.Duration) error
	// Families are attempted in this order every cycle
	Families []st25r.Family

	GuardPollInterval time.Duration
	FamilyPause       time.Duration
	CyclePause        time.Duration

	// MaxDevices caps collision resolution per family attempt
	MaxDevices int
	// T2TReadBlock is the first page of the T2T memory dump. Zero selects
	// DefaultT2TReadBlock.
	T2TReadBlock byte
}

// DefaultT2TReadBlock is the first user memory page of a Type 2 tag
const DefaultT2TReadBlock = 4

// DefaultConfig returns the reference firmware's timings, reporting to stdout
func DefaultConfig() *Config {
	return &Config{
		Reporter:          NewTextReporter(os.Stdout),
		Families:          EnabledFamilies(),
		GuardPollInterval: st25r.GuardPollInterval,
		FamilyPause:       st25r.FamilyPause,
		CyclePause:        st25r.CyclePause,
		MaxDevices:        st25r.MaxDevices,
		T2TReadBlock:      DefaultT2TReadBlock,
	}
}

// EnabledFamilies returns the families compiled into the engine, in poll
// order
func EnabledFamilies() []st25r.Family {
	var families []st25r.Family
	if st25r.FeatureNFCA {
		families = append(families, st25r.FamilyNFCA)
	}
	if st25r.FeatureNFCV {
		families = append(families, st25r.FamilyNFCV)
	}
	return families
}

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid poll configuration")

// Validate checks if the configuration is usable. Zero values are valid;
// New replaces every zero wait, count and block with its default.
func (c *Config) Validate() error {
	if c.GuardPollInterval < 0 || c.FamilyPause < 0 || c.CyclePause < 0 {
		return fmt.Errorf("%w: negative wait", ErrInvalidConfig)
	}
	if c.MaxDevices < 0 {
		return fmt.Errorf("%w: max devices %d", ErrInvalidConfig, c.MaxDevices)
	}
	if c.Families != nil && len(c.Families) == 0 {
		return fmt.Errorf("%w: no families", ErrInvalidConfig)
	}
	seen := make(map[st25r.Family]bool, len(c.Families))
	for _, f := range c.Families {
		if f != st25r.FamilyNFCA && f != st25r.FamilyNFCV {
			return fmt.Errorf("%w: unknown family %s", ErrInvalidConfig, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidConfig, f)
		}
		seen[f] = true
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if c.Families != nil {
		clone.Families = make([]st25r.Family, len(c.Families))
		copy(clone.Families, c.Families)
	}
	return &clone
}

// fill replaces unset fields with defaults
func (c *Config) fill() {
	if c.Reporter == nil {
		c.Reporter = NewTextReporter(io.Discard)
	}
	if c.Logger == nil {
		c.Logger = st25r.Logger()
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	if c.Wait == nil {
		c.Wait = waitContext
	}
	if c.Families == nil {
		c.Families = EnabledFamilies()
	}
	if c.GuardPollInterval <= 0 {
		c.GuardPollInterval = st25r.GuardPollInterval
	}
	if c.FamilyPause <= 0 {
		c.FamilyPause = st25r.FamilyPause
	}
	if c.CyclePause <= 0 {
		c.CyclePause = st25r.CyclePause
	}
	if c.MaxDevices <= 0 {
		c.MaxDevices = st25r.MaxDevices
	}
	if c.T2TReadBlock == 0 {
		c.T2TReadBlock = DefaultT2TReadBlock
	}
}

func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
