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

	"github.com/rs/zerolog/log"
)

// ErrMountTableChanged is returned when filesystems were mounted between
// sizing the mount table and reading it.
var ErrMountTableChanged = errors.New("mount table grew while it was being read")

// MountedFilesystems returns the current mount table as a map from source
// device to mount point. On macOS and Linux both sides are the exact bytes
// the OS reports; nothing is decoded or unescaped, so they may not be valid
// UTF-8. Other platforms read the table through gopsutil, which may
// normalize the paths it returns. If a source appears twice, the later
// entry wins.
func MountedFilesystems() (map[string]string, error) {
	return mountedFilesystems()
}

type mountEntry struct {
	source []byte
	target []byte
}

// fsStatSource is a mount table read with a size-then-fetch protocol.
type fsStatSource interface {
	// count returns how many filesystems are mounted right now.
	count() (int, error)
	// fetch reads at most capacity entries.
	fetch(capacity int) ([]mountEntry, error)
}

// snapshot sizes the table, then fetches it into one spare slot more than
// it was told about. Filling the spare slot means the table grew in
// between, and the read is rejected instead of silently truncated. A
// table that shrank is returned as fetched.
func snapshot(src fsStatSource) (map[string]string, error) {
	n, err := src.count()
	if err != nil {
		return nil, fmt.Errorf("failed to size mount table: %w", err)
	}

	entries, err := src.fetch(n + 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read mount table: %w", err)
	}
	if len(entries) > n {
		log.Warn().
			Int("expected", n).
			Int("got", len(entries)).
			Msg("mount table changed during read")
		return nil, ErrMountTableChanged
	}

	return mountMap(entries), nil
}

func mountMap(entries []mountEntry) map[string]string {
	mounts := make(map[string]string, len(entries))
	for _, e := range entries {
		mounts[string(e.source)] = string(e.target)
	}
	return mounts
}
