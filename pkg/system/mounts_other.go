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

//go:build !darwin && !linux

package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

func mountedFilesystems() (map[string]string, error) {
	parts, err := disk.Partitions(true)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	entries := make([]mountEntry, 0, len(parts))
	for _, p := range parts {
		entries = append(entries, mountEntry{source: []byte(p.Device), target: []byte(p.Mountpoint)})
	}
	return mountMap(entries), nil
}
