// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEnumValue is returned when register bits do not map to any
	// value of the target enumeration, or when an out-of-range enumeration
	// value is passed in.
	ErrInvalidEnumValue = errors.New("ilps22qs: invalid enum value")
	ErrBufferTooSmall   = errors.New("ilps22qs: output buffer too small")
	ErrInvalidWatermark = errors.New("ilps22qs: watermark out of range 0..127")
	ErrInvalidThreshold = errors.New("ilps22qs: threshold out of range 0..32767")
	ErrReadOnly         = errors.New("ilps22qs: register is read-only")
)

// TransportError wraps a bus failure with the operation and register that
// triggered it. The driver does not retry.
type TransportError struct {
	Op  string // "read" or "write"
	Reg Reg
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ilps22qs: %s %s: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
