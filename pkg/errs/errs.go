// Copyright 2025 walteh LLC
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

// Package errs holds the error kinds an action can fail with.
package errs

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🚨 Error kinds. Every failure surfaced to the host wraps exactly one of these.
var (
	ErrInvalidInput           = errors.Base("invalid input")
	ErrArchiveFormat          = errors.Base("archive format")
	ErrDestinationUnavailable = errors.Base("destination unavailable")
	ErrConflict               = errors.Base("conflict")
	ErrHook                   = errors.Base("hook failed")
)

var kinds = []error{
	ErrInvalidInput,
	ErrArchiveFormat,
	ErrDestinationUnavailable,
	ErrConflict,
	ErrHook,
}

// 📦 kindError ties a kind to an optional underlying cause
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.msg, e.cause)
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// 🏭 New returns an error of the given kind
func New(kind error, format string, args ...any) error {
	return errors.WithStack(&kindError{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// 🔗 Wrap returns an error of the given kind caused by err
func Wrap(kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: err})
}

// InvalidInput is shorthand for New(ErrInvalidInput, ...)
func InvalidInput(format string, args ...any) error {
	return New(ErrInvalidInput, format, args...)
}

// Conflict is shorthand for New(ErrConflict, ...)
func Conflict(format string, args ...any) error {
	return New(ErrConflict, format, args...)
}

// 🔍 KindOf returns the kind err wraps, or nil
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// 🚪 ExitCode maps an error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case ErrInvalidInput:
		return 2
	case ErrArchiveFormat:
		return 3
	case ErrDestinationUnavailable:
		return 4
	case ErrConflict:
		return 5
	case ErrHook:
		return 6
	default:
		return 1
	}
}
