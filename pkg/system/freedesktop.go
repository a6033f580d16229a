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
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	trashInfoExt      = ".trashinfo"
	trashDateLayout   = "2006-01-02T15:04:05"
	maxTrashNameTries = 10000
)

// Trasher moves files into a freedesktop.org home trash directory
// (files/ and info/ under dir).
type Trasher struct {
	fs    afero.Fs
	clock clockwork.Clock
	dir   string
}

// NewTrasher returns a Trasher rooted at dir.
func NewTrasher(fsys afero.Fs, clock clockwork.Clock, dir string) *Trasher {
	return &Trasher{fs: fsys, clock: clock, dir: dir}
}

// Trash moves path into the trash and records where it came from. The
// path is checked with lstat, so a symlink is trashed and its target left
// in place. Nothing is created in the trash if path does not exist, and
// the info file is removed again if the move fails. An entry that appears
// under the reserved name before the move is never overwritten; the next
// free name is used instead.
func (t *Trasher) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return newOSError("trash", path, err)
	}

	if _, err = t.lstat(abs); err != nil {
		return newOSError("trash", path, err)
	}

	filesDir := filepath.Join(t.dir, "files")
	infoDir := filepath.Join(t.dir, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err = t.fs.MkdirAll(d, 0o700); err != nil {
			return newOSError("mkdir", d, err)
		}
	}

	for start := 0; ; {
		name, infoPath, attempt, err := t.reserve(abs, filesDir, infoDir, start)
		if err != nil {
			return err
		}

		dest := filepath.Join(filesDir, name)
		err = t.rename(abs, dest)
		if err == nil {
			log.Debug().Str("path", abs).Str("dest", dest).Msg("moved to trash")
			return nil
		}

		if rmErr := t.fs.Remove(infoPath); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", infoPath).Msg("failed to remove trash info")
		}
		if !errors.Is(err, fs.ErrExist) {
			return newOSError("rename", path, err)
		}
		log.Debug().Str("dest", dest).Msg("trash name taken during move, retrying")
		start = attempt + 1
	}
}

// rename moves oldpath to newpath and fails with fs.ErrExist rather than
// replace an existing newpath.
func (t *Trasher) rename(oldpath, newpath string) error {
	if _, ok := t.fs.(*afero.OsFs); ok {
		return renameNoReplace(oldpath, newpath)
	}
	if _, err := t.lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	return t.fs.Rename(oldpath, newpath) //nolint:wrapcheck // converted to OSError by Trash
}

// renameChecked is the os rename used where the kernel cannot refuse to
// replace: the destination is checked first, leaving a small window.
func renameChecked(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	return os.Rename(oldpath, newpath) //nolint:wrapcheck // converted to OSError by Trash
}

// reserve claims a unique name by creating its .trashinfo file with
// O_EXCL, then writes the original path and deletion date into it. Names
// are tried from attempt start on; the attempt used is returned.
func (t *Trasher) reserve(
	abs, filesDir, infoDir string,
	start int,
) (name, infoPath string, attempt int, err error) {
	base := filepath.Base(abs)
	deleted := t.clock.Now().Format(trashDateLayout)

	for i := start; i < maxTrashNameTries; i++ {
		name = trashName(base, i)
		infoPath = filepath.Join(infoDir, name+trashInfoExt)

		f, openErr := t.fs.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if errors.Is(openErr, fs.ErrExist) {
			continue
		} else if openErr != nil {
			return "", "", 0, newOSError("open", infoPath, openErr)
		}

		if _, statErr := t.lstat(filepath.Join(filesDir, name)); statErr == nil {
			_ = f.Close()
			_ = t.fs.Remove(infoPath)
			continue
		}

		_, writeErr := f.WriteString(trashInfo(abs, deleted))
		closeErr := f.Close()
		if writeErr = errors.Join(writeErr, closeErr); writeErr != nil {
			_ = t.fs.Remove(infoPath)
			return "", "", 0, newOSError("write", infoPath, writeErr)
		}
		return name, infoPath, i, nil
	}

	return "", "", 0, &OSError{
		Op:      "trash",
		Path:    abs,
		Message: "no free name in trash",
		Err:     fs.ErrExist,
	}
}

func (t *Trasher) lstat(path string) (os.FileInfo, error) {
	if l, ok := t.fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(path)
		return fi, err //nolint:wrapcheck // converted to OSError by callers
	}
	return t.fs.Stat(path) //nolint:wrapcheck // converted to OSError by callers
}

// trashName returns base for the first attempt and base.N.ext after.
func trashName(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	return stem + "." + strconv.Itoa(attempt) + ext
}

func trashInfo(abs, deleted string) string {
	escaped := (&url.URL{Path: abs}).EscapedPath()
	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", escaped, deleted)
}
