// Copyright 2026 The go-epochfeed Authors
// This file is part of the go-epochfeed library.
//
// The go-epochfeed library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-epochfeed library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-epochfeed library. If not, see <http://www.gnu.org/licenses/>.

package feed

import (
	"errors"
	"fmt"
)

const (
	ErrInit = iota
	ErrNotFound
	ErrIO
	ErrInvalidValue
	ErrCorruptData
	ErrLookupDepth
	ErrCnt
)

var (
	// ErrInvalidArgument matches, with errors.Is, every validation error.
	ErrInvalidArgument = NewError(ErrInvalidValue, "invalid argument")
	// ErrLookupExhausted matches lookups that exceeded their probe budget.
	ErrLookupExhausted = NewError(ErrLookupDepth, "lookup exhausted")
	// ErrNoUpdates matches Handler lookups that found nothing.
	ErrNoUpdates = NewError(ErrNotFound, "no updates found")
)

// Error is the typed error object used for feeds
type Error struct {
	code  int
	err   string
	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.err
}

// Code returns the error code
// Error codes are enumerated in the error.go file within the feed package
func (e *Error) Code() int {
	return e.code
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a feed error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// NewError creates a new feed Error object with the specified code and custom error message
func NewError(code int, s string) error {
	if code < 0 || code >= ErrCnt {
		panic("no such error code!")
	}
	return &Error{
		code: code,
		err:  s,
	}
}

// NewErrorf is a convenience version of NewError that incorporates formatting
func NewErrorf(code int, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// wrapError creates an Error with code that unwraps to cause.
func wrapError(code int, cause error, format string, args ...interface{}) error {
	err := NewErrorf(code, format, args...).(*Error)
	err.err = fmt.Sprintf("%s: %v", err.err, cause)
	err.cause = cause
	return err
}
