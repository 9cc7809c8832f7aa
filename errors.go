// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"errors"
	"fmt"
	"reflect"
)

// Static errors for codec operations.
var (
	// ErrWriterState is returned when Writer methods are called in a
	// grammatically invalid sequence, such as writing a value inside an
	// object without a preceding Name, or closing an array while inside
	// an object.
	ErrWriterState = errors.New("invalid writer state")

	// ErrNonFiniteNumber is returned when writing NaN or an infinity
	// without WithNonFiniteNumbers enabled.
	ErrNonFiniteNumber = errors.New("non-finite number not allowed")

	// ErrOutMustBePointer is returned by Unmarshal and Decode when the
	// destination is not a non-nil pointer.
	ErrOutMustBePointer = errors.New("out must be a non-nil pointer")
)

// SyntaxError reports malformed input encountered while reading. It is
// always surfaced to the caller, never silently recovered, and carries
// the offending location.
//
// Use [errors.As] to check for SyntaxError:
//
//	var syntaxErr *codec.SyntaxError
//	if errors.As(err, &syntaxErr) {
//	    fmt.Printf("bad input at line %d: %s\n", syntaxErr.Line, syntaxErr.Msg)
//	}
type SyntaxError struct {
	Msg    string // What was malformed
	Line   int    // 1-based line of the offending character
	Column int    // 1-based column of the offending character
	Path   string // JSONPath-style location, e.g. "$.users[2].name"
}

// Error returns a formatted error message with the offending location.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d column %d path %s: %s",
		e.Line, e.Column, e.Path, e.Msg)
}

// TransportError wraps a failure of the underlying byte stream. It is
// surfaced distinctly from SyntaxError so callers can tell bad data from
// bad transport.
type TransportError struct {
	Op  string // "read" or "write"
	Err error  // The underlying stream error
}

// Error returns a formatted error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("stream %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResolutionError is returned when no registered factory can produce an
// adapter for a descriptor, or when Resolution.Delegate is given a
// factory that is not registered on the engine. It always indicates a
// programming or setup mistake, never a function of input data.
type ResolutionError struct {
	Descriptor Descriptor // The descriptor no factory could handle
	Reason     string     // Optional extra context
}

// Error returns a formatted error message naming the descriptor.
func (e *ResolutionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot handle type %s: %s", e.Descriptor, e.Reason)
	}
	return fmt.Sprintf("cannot handle type %s: no factory matched", e.Descriptor)
}

// ConflictError is returned at bind time when two visible fields across
// a struct's embedding chain map to the same wire name. The error is
// deterministic: the same struct produces the same conflict report on
// every invocation.
type ConflictError struct {
	Name   string       // The conflicting wire name
	First  reflect.Type // Declaring type of the first field
	Second reflect.Type // Declaring type of the second field
}

// Error returns a formatted error message naming both declaring types.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate field name %q declared by both %s and %s",
		e.Name, e.First, e.Second)
}

// ConstructionError is returned when an instance creator fails while
// allocating a value during read. The failing type is identified and the
// original failure is preserved as the cause.
type ConstructionError struct {
	Type reflect.Type // The type that could not be constructed
	Err  error        // The creator's failure
}

// Error returns a formatted error message.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// transportErr wraps err as a TransportError unless it already is one.
func transportErr(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
