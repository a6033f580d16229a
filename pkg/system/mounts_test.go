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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatSource struct {
	countErr error
	fetchErr error
	table    []mountEntry
	n        int
	capSeen  int
}

func (f *fakeStatSource) count() (int, error) {
	return f.n, f.countErr
}

func (f *fakeStatSource) fetch(capacity int) ([]mountEntry, error) {
	f.capSeen = capacity
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.table) > capacity {
		return f.table[:capacity], nil
	}
	return f.table, nil
}

func entry(source, target string) mountEntry {
	return mountEntry{source: []byte(source), target: []byte(target)}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	src := &fakeStatSource{
		n: 2,
		table: []mountEntry{
			entry("/dev/disk3s1s1", "/"),
			entry("/dev/disk4s1", "/Volumes/KINDLE"),
		},
	}

	mounts, err := snapshot(src)
	require.NoError(t, err)
	assert.Equal(t, 3, src.capSeen, "one spare slot")
	assert.Equal(t, map[string]string{
		"/dev/disk3s1s1": "/",
		"/dev/disk4s1":   "/Volumes/KINDLE",
	}, mounts)
}

func TestSnapshot_RawBytes(t *testing.T) {
	t.Parallel()

	// Latin-1 "é" is not valid UTF-8 and must come back unchanged.
	src := &fakeStatSource{
		n:     1,
		table: []mountEntry{{source: []byte("//bob@nas/caf\xe9"), target: []byte("/Volumes/caf\xe9")}},
	}

	mounts, err := snapshot(src)
	require.NoError(t, err)
	assert.Equal(t, "/Volumes/caf\xe9", mounts["//bob@nas/caf\xe9"])
}

func TestSnapshot_DuplicateSourceLastWins(t *testing.T) {
	t.Parallel()

	src := &fakeStatSource{
		n:     2,
		table: []mountEntry{entry("map auto_home", "/System/Volumes/Data/home"), entry("map auto_home", "/home")},
	}

	mounts, err := snapshot(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"map auto_home": "/home"}, mounts)
}

func TestSnapshot_Grew(t *testing.T) {
	t.Parallel()

	src := &fakeStatSource{
		n:     1,
		table: []mountEntry{entry("/dev/disk1", "/"), entry("/dev/disk4s1", "/Volumes/NEW")},
	}

	mounts, err := snapshot(src)
	require.ErrorIs(t, err, ErrMountTableChanged)
	assert.Nil(t, mounts)
}

func TestSnapshot_Shrank(t *testing.T) {
	t.Parallel()

	src := &fakeStatSource{n: 3, table: []mountEntry{entry("/dev/disk1", "/")}}

	mounts, err := snapshot(src)
	require.NoError(t, err)
	assert.Len(t, mounts, 1)
}

func TestSnapshot_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := snapshot(&fakeStatSource{countErr: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "size mount table")

	_, err = snapshot(&fakeStatSource{n: 1, fetchErr: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read mount table")
}

func TestSnapshot_Empty(t *testing.T) {
	t.Parallel()

	mounts, err := snapshot(&fakeStatSource{})
	require.NoError(t, err)
	assert.NotNil(t, mounts)
	assert.Empty(t, mounts)
}

func TestReadMountsFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	table := "/dev/sda2 / ext4 rw,relatime 0 0\n" +
		"proc /proc proc rw,nosuid 0 0\n" +
		"\n" +
		"/dev/sdb1 /media/user/MY\\040BOOK vfat rw 0 0\n"
	require.NoError(t, afero.WriteFile(fs, "/proc/self/mounts", []byte(table), 0o444))

	mounts, err := readMountsFile(fs, "/proc/self/mounts")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"/dev/sda2": "/",
		"proc":      "/proc",
		"/dev/sdb1": `/media/user/MY\040BOOK`,
	}, mounts)
}

func TestReadMountsFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := readMountsFile(afero.NewMemMapFs(), "/proc/self/mounts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read mount table")
}
