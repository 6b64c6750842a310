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

// Package sim provides a simulated protocol engine over virtual tags. It
// backs the poll tests and the -simulate mode of st25rpoll.
package sim

import (
	"fmt"
	"sync"

	st25r "github.com/ZaparooProject/go-st25r"
)

// Engine stage names used for call logging and error scripting
const (
	CallInitialize   = "Initialize"
	CallPollerInit   = "PollerInitialize"
	CallFieldOn      = "FieldOnAndStartGT"
	CallGTExpired    = "IsGTExpired"
	CallDetect       = "TechnologyDetection"
	CallResolve      = "CollisionResolution"
	CallReadBlock    = "ReadBlock"
	CallFieldOff     = "FieldOff"
	CallWorker       = "Worker"
	callKeySeparator = ":"
)

// VirtualEngine simulates the protocol stack over a set of virtual tags.
// Errors can be scripted per stage and family, and per UID for reads.
type VirtualEngine struct {
	stageErrs  map[string]error
	readErrs   map[string]error
	calls      []string
	tags       []*VirtualTag
	gtPolls    int
	gtLeft     int
	mu         sync.Mutex
	fieldOn    bool
	noLog      bool
	maxReached int
}

// NewVirtualEngine creates an engine with the given tags in the field
func NewVirtualEngine(tags ...*VirtualTag) *VirtualEngine {
	return &VirtualEngine{
		tags:      tags,
		stageErrs: make(map[string]error),
		readErrs:  make(map[string]error),
	}
}

// AddTag places another tag in the field
func (e *VirtualEngine) AddTag(tag *VirtualTag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tags = append(e.tags, tag)
}

// Tags returns the tags known to the engine
func (e *VirtualEngine) Tags() []*VirtualTag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*VirtualTag(nil), e.tags...)
}

// SetGuardPolls sets how many times IsGTExpired reports false after each
// field on
func (e *VirtualEngine) SetGuardPolls(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gtPolls = n
}

// SetError scripts err for every call of stage. Family specific errors set
// with SetFamilyError take precedence.
func (e *VirtualEngine) SetError(stage string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stageErrs[stage] = err
}

// SetFamilyError scripts err for stage when called for family
func (e *VirtualEngine) SetFamilyError(stage string, family st25r.Family, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stageErrs[stage+callKeySeparator+family.String()] = err
}

// SetReadError scripts err for block reads from the device with uid
func (e *VirtualEngine) SetReadError(uid []byte, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readErrs[st25r.FormatUID(uid)] = err
}

// Calls returns the log of engine calls. Calls taking a family are logged
// as "Stage:Family".
func (e *VirtualEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// CallCount returns how many logged calls equal name
func (e *VirtualEngine) CallCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c == name {
			n++
		}
	}
	return n
}

// SetCallLogging turns the call log on or off. Long running simulations
// turn it off to keep memory flat.
func (e *VirtualEngine) SetCallLogging(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noLog = !enabled
}

// ResetCalls clears the call log
func (e *VirtualEngine) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// FieldOn reports whether the simulated field is currently on
func (e *VirtualEngine) FieldOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fieldOn
}

// MaxDevicesRequested returns the last limit passed to CollisionResolution
func (e *VirtualEngine) MaxDevicesRequested() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxReached
}

// Initialize implements st25r.Engine
func (e *VirtualEngine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log(CallInitialize)
	return e.stageErrs[CallInitialize]
}

// PollerInitialize implements st25r.Engine
func (e *VirtualEngine) PollerInitialize(f st25r.Family) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.record(CallPollerInit, f)
	return err
}

// FieldOnAndStartGT implements st25r.Engine
func (e *VirtualEngine) FieldOnAndStartGT() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log(CallFieldOn)
	if err := e.stageErrs[CallFieldOn]; err != nil {
		return err
	}
	e.fieldOn = true
	e.gtLeft = e.gtPolls
	return nil
}

// IsGTExpired implements st25r.Engine
func (e *VirtualEngine) IsGTExpired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log(CallGTExpired)
	if e.gtLeft > 0 {
		e.gtLeft--
		return false
	}
	return true
}

// TechnologyDetection implements st25r.Engine. Unless a result was scripted
// for the stage, it fails with a timeout when no present tag of family f is
// in the field.
func (e *VirtualEngine) TechnologyDetection(f st25r.Family) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scripted, err := e.record(CallDetect, f); scripted {
		return err
	}
	if len(e.present(f)) == 0 {
		return st25r.CodeTimeout
	}
	return nil
}

// CollisionResolution implements st25r.Engine
func (e *VirtualEngine) CollisionResolution(f st25r.Family, maxDevices int) ([]st25r.DeviceRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxReached = maxDevices
	if _, err := e.record(CallResolve, f); err != nil {
		return nil, err
	}

	var out []st25r.DeviceRecord
	for _, tag := range e.present(f) {
		if len(out) == maxDevices {
			break
		}
		out = append(out, tag.Record())
	}
	return out, nil
}

// ReadBlock implements st25r.Engine
func (e *VirtualEngine) ReadBlock(dev *st25r.DeviceRecord, block byte, buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	uid := dev.UIDString()
	e.log(CallReadBlock+callKeySeparator+uid)

	if err := e.stageErrs[CallReadBlock]; err != nil {
		return 0, err
	}
	if err := e.readErrs[uid]; err != nil {
		return 0, err
	}
	if !e.fieldOn {
		return 0, st25r.CodeTimeout
	}

	for _, tag := range e.tags {
		if st25r.FormatUID(tag.UID) != uid {
			continue
		}
		data, err := tag.ReadPages(int(block))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", st25r.CodeTimeout, err)
		}
		return copy(buf, data), nil
	}
	return 0, st25r.CodeTimeout
}

// FieldOff implements st25r.Engine
func (e *VirtualEngine) FieldOff() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log(CallFieldOff)
	e.fieldOn = false
	return e.stageErrs[CallFieldOff]
}

// Worker implements st25r.Engine
func (e *VirtualEngine) Worker() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log(CallWorker)
}

// record logs a family call and returns whether a result was scripted for
// it, and that result. Callers hold mu.
func (e *VirtualEngine) record(stage string, f st25r.Family) (bool, error) {
	key := stage + callKeySeparator + f.String()
	e.log(key)
	if err, ok := e.stageErrs[key]; ok {
		return true, err
	}
	err, ok := e.stageErrs[stage]
	return ok, err
}

func (e *VirtualEngine) log(call string) {
	if !e.noLog {
		e.calls = append(e.calls, call)
	}
}

func (e *VirtualEngine) present(f st25r.Family) []*VirtualTag {
	var out []*VirtualTag
	for _, tag := range e.tags {
		if tag.Present && tag.Family == f {
			out = append(out, tag)
		}
	}
	return out
}
