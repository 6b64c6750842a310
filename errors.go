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
	"errors"
	"fmt"
)

// Platform errors
var (
	ErrBusInit       = errors.New("bus initialization failed")
	ErrEngineInit    = errors.New("engine initialization failed")
	ErrNotConnected  = errors.New("bus not connected")
	ErrInvalidLength = errors.New("buffer shorter than transfer length")
	ErrBridgeRunning = errors.New("interrupt dispatcher already running")
	ErrUnknownPin    = errors.New("pin not registered")
)

// ReturnCode is the fixed result enumeration reported by the protocol
// engine. The zero value means success and is never returned as an error.
type ReturnCode uint16

const (
	CodeNone           ReturnCode = 0
	CodeNoMem          ReturnCode = 1
	CodeBusy           ReturnCode = 2
	CodeIO             ReturnCode = 3
	CodeTimeout        ReturnCode = 4
	CodeRequest        ReturnCode = 5
	CodeNoMsg          ReturnCode = 6
	CodeParam          ReturnCode = 7
	CodeSystem         ReturnCode = 8
	CodeFraming        ReturnCode = 9
	CodeOverrun        ReturnCode = 10
	CodeProto          ReturnCode = 11
	CodeInternal       ReturnCode = 12
	CodeAgain          ReturnCode = 13
	CodeNotImplemented ReturnCode = 15
	CodeSend           ReturnCode = 17
	CodeIgnore         ReturnCode = 18
	CodeSemantic       ReturnCode = 19
	CodeSyntax         ReturnCode = 20
	CodeCRC            ReturnCode = 21
	CodeNotFound       ReturnCode = 22
	CodeNotUnique      ReturnCode = 23
	CodeNotSupported   ReturnCode = 24
	CodeWrite          ReturnCode = 25
	CodeFIFO           ReturnCode = 26
	CodePar            ReturnCode = 27
	CodeDone           ReturnCode = 28
	CodeRFCollision    ReturnCode = 29
	CodeIncompleteByte ReturnCode = 40
)

var returnCodeNames = map[ReturnCode]string{
	CodeNone:           "none",
	CodeNoMem:          "out of memory",
	CodeBusy:           "busy",
	CodeIO:             "i/o error",
	CodeTimeout:        "timeout",
	CodeRequest:        "request error",
	CodeNoMsg:          "no message",
	CodeParam:          "invalid parameter",
	CodeSystem:         "system error",
	CodeFraming:        "framing error",
	CodeOverrun:        "overrun",
	CodeProto:          "protocol error",
	CodeInternal:       "internal error",
	CodeAgain:          "try again",
	CodeNotImplemented: "not implemented",
	CodeSend:           "send error",
	CodeIgnore:         "ignored",
	CodeSemantic:       "semantic error",
	CodeSyntax:         "syntax error",
	CodeCRC:            "crc error",
	CodeNotFound:       "not found",
	CodeNotUnique:      "not unique",
	CodeNotSupported:   "not supported",
	CodeWrite:          "write error",
	CodeFIFO:           "fifo error",
	CodePar:            "parity error",
	CodeDone:           "done",
	CodeRFCollision:    "rf collision",
	CodeIncompleteByte: "incomplete byte",
}

// Error implements the error interface
func (c ReturnCode) Error() string {
	if name, ok := returnCodeNames[c]; ok {
		return fmt.Sprintf("engine: %s (%d)", name, uint16(c))
	}
	return fmt.Sprintf("engine: code %d", uint16(c))
}

// CodeOf extracts the engine result code from err. A nil error maps to
// CodeNone and an error that carries no code maps to CodeInternal.
func CodeOf(err error) ReturnCode {
	if err == nil {
		return CodeNone
	}
	var code ReturnCode
	if errors.As(err, &code) {
		return code
	}
	return CodeInternal
}

// IsRoutine reports whether err is one of the codes the poll loop treats
// as an expected outcome (nothing in the field, engine still busy).
func IsRoutine(err error) bool {
	if err == nil {
		return false
	}
	var code ReturnCode
	if !errors.As(err, &code) {
		return false
	}
	return code == CodeTimeout || code == CodeBusy
}

// BusError wraps a driver failure with the operation and port it happened on
type BusError struct {
	Err  error
	Op   string
	Port string
}

// Error implements the error interface
func (e *BusError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *BusError) Unwrap() error {
	return e.Err
}

// NewBusError creates a new bus error
func NewBusError(op, port string, err error) *BusError {
	return &BusError{Op: op, Port: port, Err: err}
}
