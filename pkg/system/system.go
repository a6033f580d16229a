// Zaparoo USB Observer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo USB Observer.
//
// Zaparoo USB Observer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo USB Observer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo USB Observer.  If not, see <http://www.gnu.org/licenses/>.

// Package system answers one-shot OS queries for a host application: the
// mounted filesystem table, moving files to the trash, and the user's
// locale and short date format.
package system

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrNotSupported is returned by queries that have no implementation on
// the running platform.
var ErrNotSupported = errors.New("not supported on this platform")

// OSError is a failed OS operation on a path. Message is the
// human-readable text the OS gave for Code (an errno or OSStatus).
type OSError struct {
	Err     error
	Op      string
	Path    string
	Message string
	Code    int
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Message)
}

func (e *OSError) Unwrap() error {
	return e.Err
}

// newOSError converts a Go error from a filesystem call into an OSError,
// keeping the errno when there is one.
func newOSError(op, path string, err error) *OSError {
	oe := &OSError{Op: op, Path: path, Err: err, Message: err.Error()}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		oe.Code = int(errno)
		oe.Message = errno.Error()
		return oe
	}

	var pe *fs.PathError
	if errors.As(err, &pe) {
		oe.Message = pe.Err.Error()
	}
	return oe
}
