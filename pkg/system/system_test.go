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

package system

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOSError_Errno(t *testing.T) {
	t.Parallel()

	err := newOSError("rename", "/a", &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.ENOENT})

	assert.Equal(t, int(syscall.ENOENT), err.Code)
	assert.Equal(t, syscall.ENOENT.Error(), err.Message)
	assert.Equal(t, "rename /a: "+syscall.ENOENT.Error(), err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewOSError_PathError(t *testing.T) {
	t.Parallel()

	err := newOSError("trash", "/x", &fs.PathError{Op: "lstat", Path: "/x", Err: fs.ErrPermission})

	assert.Zero(t, err.Code)
	assert.Equal(t, fs.ErrPermission.Error(), err.Message)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestNewOSError_Plain(t *testing.T) {
	t.Parallel()

	err := newOSError("write", "/y", errors.New("disk full"))
	assert.Equal(t, "write /y: disk full", err.Error())
}
