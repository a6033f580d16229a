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

//go:build darwin

package system

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// getfsstat reads the table with getfsstat(2) and MNT_NOWAIT, so stale
// network mounts never block the call.
type getfsstat struct{}

func (getfsstat) count() (int, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return 0, fmt.Errorf("getfsstat: %w", err)
	}
	return n, nil
}

func (getfsstat) fetch(capacity int) ([]mountEntry, error) {
	buf := make([]unix.Statfs_t, capacity)
	n, err := unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil, fmt.Errorf("getfsstat: %w", err)
	}

	entries := make([]mountEntry, 0, n)
	for i := range buf[:n] {
		entries = append(entries, mountEntry{
			source: cString(buf[i].Mntfromname[:]),
			target: cString(buf[i].Mntonname[:]),
		})
	}
	return entries, nil
}

func cString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return bytes.Clone(b)
}

func mountedFilesystems() (map[string]string, error) {
	return snapshot(getfsstat{})
}
