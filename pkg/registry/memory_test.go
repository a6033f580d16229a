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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(t *testing.T, reg Registry, m Matcher) []string {
	t.Helper()
	it, err := reg.Match(m)
	require.NoError(t, err)
	defer it.Release()

	var out []string
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e.(*memEntry).node.Name)
		e.Release()
	}
	return out
}

func TestMemoryMatchClass(t *testing.T) {
	t.Parallel()

	root := NewNode("Root", "IORegistryEntry")
	hub := root.AddChild(NewNode("hub", "IOUSBHostDevice", "IOUSBDevice"))
	hub.AddChild(NewNode("stick", "IOUSBHostDevice", "IOUSBDevice"))
	root.AddChild(NewNode("legacy", "IOUSBDevice"))
	root.AddChild(NewNode("bluetooth", "IOBluetoothDevice"))
	reg := NewMemory(root)

	assert.Equal(t, []string{"hub", "stick", "legacy"}, names(t, reg, MatchClass(ClassUSBDevice)))
	assert.Equal(t, []string{"hub", "stick"}, names(t, reg, MatchClass("IOUSBHostDevice")))
	assert.Empty(t, names(t, reg, MatchClass(ClassMedia)))
	assert.Zero(t, reg.OpenHandles())
}

func TestMemoryMatchProperties(t *testing.T) {
	t.Parallel()

	root := NewNode("Root", "IORegistryEntry")
	whole := root.AddChild(NewNode("disk4", ClassMedia).
		Set(KeyMediaLeaf, BoolValue(false)).
		Set(KeyMediaWritable, BoolValue(true)).
		Set(KeyMediaEjectable, BoolValue(true)))
	whole.AddChild(NewNode("disk4s1", ClassMedia).
		Set(KeyMediaLeaf, BoolValue(true)).
		Set(KeyMediaWritable, BoolValue(true)).
		Set(KeyMediaEjectable, BoolValue(true)))
	root.AddChild(NewNode("disk0s2", ClassMedia).
		Set(KeyMediaLeaf, BoolValue(true)).
		Set(KeyMediaWritable, BoolValue(true)).
		Set(KeyMediaEjectable, BoolValue(false)))
	root.AddChild(NewNode("disk5", ClassMedia).
		Set(KeyMediaLeaf, BoolValue(true)).
		Set(KeyMediaEjectable, BoolValue(true)))
	reg := NewMemory(root)

	m := MatchClass(ClassMedia).
		With(KeyMediaLeaf, true).
		With(KeyMediaWritable, true).
		With(KeyMediaEjectable, true)

	assert.Equal(t, []string{"disk4s1"}, names(t, reg, m))
}

func TestMatcherWithDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := MatchClass(ClassMedia).With(KeyMediaLeaf, true)
	a := base.With(KeyMediaWritable, true)
	b := base.With(KeyMediaWritable, false)

	assert.Len(t, base.Properties, 1)
	assert.True(t, a.Properties[KeyMediaWritable])
	assert.False(t, b.Properties[KeyMediaWritable])
}

func TestMemoryMatchErrors(t *testing.T) {
	t.Parallel()

	reg := NewMemory(NewNode("Root", "IORegistryEntry"))

	_, err := reg.Match(Matcher{})
	require.ErrorIs(t, err, ErrSetup)

	reg.FailMatches(0x10000003)
	_, err = reg.Match(MatchClass(ClassUSBDevice))
	require.ErrorIs(t, err, ErrSetup)
	var regErr *Error
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, 0x10000003, regErr.Code)
	assert.Contains(t, err.Error(), "0x10000003")

	reg.FailMatches(0)
	it, err := reg.Match(MatchClass(ClassUSBDevice))
	require.NoError(t, err)
	it.Release()
}

func TestMemoryHandleAccounting(t *testing.T) {
	t.Parallel()

	root := NewNode("Root", "IORegistryEntry")
	root.AddChild(NewNode("a", ClassUSBDevice))
	reg := NewMemory(root)

	it, err := reg.Match(MatchClass(ClassUSBDevice))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.OpenHandles())

	e, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 2, reg.OpenHandles())

	p, ok := e.Parent()
	require.True(t, ok)
	assert.Equal(t, 3, reg.OpenHandles())

	_, ok = p.Parent()
	assert.False(t, ok, "root has no parent")

	p.Release()
	p.Release()
	e.Release()
	it.Release()
	it.Release()
	assert.Zero(t, reg.OpenHandles())

	_, ok = it.Next()
	assert.False(t, ok, "released iterator yields nothing")
}
