// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package blued

import "fmt"

// ErrorKind classifies load failures.
type ErrorKind string

const (
	KindStructure    ErrorKind = "STRUCTURE"     // A required marker is missing
	KindParse        ErrorKind = "PARSE"         // A date/time or numeric field is malformed
	KindSchema       ErrorKind = "SCHEMA"        // A required column is missing
	KindInvalidPhase ErrorKind = "INVALID_PHASE" // The requested phase does not exist
)

// Sentinels for use with errors.Is. Any *Error of the same kind matches.
var (
	ErrStructure    error = &Error{Kind: KindStructure}
	ErrParse        error = &Error{Kind: KindParse}
	ErrSchema       error = &Error{Kind: KindSchema}
	ErrInvalidPhase error = &Error{Kind: KindInvalidPhase}
)

// Error is returned by the loaders for malformed input.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
