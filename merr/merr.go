// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package merr implements the structured error kinds surfaced by the
// migration/mass-transfer core.
package merr

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// Kind identifies the structured error category a caller can switch on.
type Kind int

const (
	// InvalidInput flags a non-positive thickness/D/k, an empty multilayer,
	// or a non-finite value.
	InvalidInput Kind = iota

	// IncompatibleComposition flags concatenating Results with mismatched
	// mesh geometry or species.
	IncompatibleComposition

	// IntegrationFailure flags a solver unable to meet tolerance.
	IntegrationFailure

	// Cancelled flags a step-count budget or deadline exceeded.
	Cancelled

	// MassBalanceViolation flags an end-of-run mass-balance check outside
	// tolerance.
	MassBalanceViolation
)

// String names the kind for logging.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case IncompatibleComposition:
		return "IncompatibleComposition"
	case IntegrationFailure:
		return "IntegrationFailure"
	case Cancelled:
		return "Cancelled"
	case MassBalanceViolation:
		return "MassBalanceViolation"
	default:
		return "Unknown"
	}
}

// Error is the error type returned across component boundaries. It wraps
// gosl/chk's own formatted-error helper for message texture while still
// being switchable on Kind.
type Error struct {
	Kind Kind
	Err  error

	// LastTime and Residual are populated for IntegrationFailure.
	LastTime float64
	Residual float64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a plain Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: chk.Err(format, args...)}
}

// Invalid is a convenience constructor for InvalidInput errors.
func Invalid(format string, args ...interface{}) *Error {
	return New(InvalidInput, format, args...)
}

// Incompatible is a convenience constructor for IncompatibleComposition errors.
func Incompatible(format string, args ...interface{}) *Error {
	return New(IncompatibleComposition, format, args...)
}

// IntegFailure builds an IntegrationFailure error carrying the last
// converged time and the residual observed at failure.
func IntegFailure(lastTime, residual float64, format string, args ...interface{}) *Error {
	e := New(IntegrationFailure, format, args...)
	e.LastTime = lastTime
	e.Residual = residual
	return e
}

// CancelledErr builds a Cancelled error.
func CancelledErr(format string, args ...interface{}) *Error {
	return New(Cancelled, format, args...)
}

// MassBalance builds a MassBalanceViolation error.
func MassBalance(format string, args ...interface{}) *Error {
	return New(MassBalanceViolation, format, args...)
}
