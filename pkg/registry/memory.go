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
	"slices"

	"github.com/ZaparooProject/usbobserver/pkg/helpers/syncutil"
)

// Node is one entry of an in-memory registry tree.
type Node struct {
	Props    map[string]Value
	Parent   *Node
	Name     string
	Class    string
	Classes  []string
	Children []*Node
}

// NewNode creates a detached node. superclasses lists the classes the node
// also answers to when matching.
func NewNode(name, class string, superclasses ...string) *Node {
	return &Node{
		Name:    name,
		Class:   class,
		Classes: superclasses,
		Props:   make(map[string]Value),
	}
}

// Set stores a property and returns n for chaining.
func (n *Node) Set(key string, v Value) *Node {
	n.Props[key] = v
	return n
}

// AddChild attaches child under n and returns the child.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// IsA reports whether n is an instance of class or one of its subclasses.
func (n *Node) IsA(class string) bool {
	return n.Class == class || slices.Contains(n.Classes, class)
}

func (n *Node) matches(m Matcher) bool {
	if !n.IsA(m.Class) {
		return false
	}
	for key, want := range m.Properties {
		v, ok := n.Props[key]
		if !ok || !v.Valid || v.Kind != KindBool {
			return false
		}
		if (v.Num != 0) != want {
			return false
		}
	}
	return true
}

// Memory is a Registry over an in-process tree. It counts live handles so
// tests can check that callers release everything they acquire.
type Memory struct {
	matchErr error
	roots    []*Node
	open     int
	mu       syncutil.Mutex
}

// NewMemory returns a registry whose trees are rooted at roots.
func NewMemory(roots ...*Node) *Memory {
	return &Memory{roots: roots}
}

// Roots returns the top-level nodes of the registry.
func (m *Memory) Roots() []*Node {
	return m.roots
}

// FailMatches makes every subsequent Match call fail with a setup error
// carrying code. A zero code restores normal behaviour.
func (m *Memory) FailMatches(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code == 0 {
		m.matchErr = nil
		return
	}
	m.matchErr = setupError("IOServiceGetMatchingServices", code)
}

// OpenHandles returns the number of iterators and entries acquired and not
// yet released.
func (m *Memory) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *Memory) acquire() {
	m.mu.Lock()
	m.open++
	m.mu.Unlock()
}

func (m *Memory) release() {
	m.mu.Lock()
	m.open--
	m.mu.Unlock()
}

// Match walks every tree depth-first and yields the matching nodes in that
// order.
//
//nolint:gocritic // Matcher passed by value to satisfy Registry
func (m *Memory) Match(matcher Matcher) (Iterator, error) {
	if matcher.Class == "" {
		return nil, setupError("IOServiceMatching", 0)
	}

	m.mu.Lock()
	err := m.matchErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var found []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.matches(matcher) {
			found = append(found, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range m.roots {
		walk(r)
	}

	m.acquire()
	return &memIterator{reg: m, nodes: found}, nil
}

type memIterator struct {
	reg      *Memory
	nodes    []*Node
	pos      int
	released bool
}

func (it *memIterator) Next() (Entry, bool) {
	if it.released || it.pos >= len(it.nodes) {
		return nil, false
	}
	n := it.nodes[it.pos]
	it.pos++
	return it.reg.entry(n), true
}

func (it *memIterator) Release() {
	if it.released {
		return
	}
	it.released = true
	it.reg.release()
}

func (m *Memory) entry(n *Node) *memEntry {
	m.acquire()
	return &memEntry{reg: m, node: n}
}

type memEntry struct {
	reg      *Memory
	node     *Node
	released bool
}

func (e *memEntry) Property(key string) (Value, bool) {
	v, ok := e.node.Props[key]
	return v, ok
}

func (e *memEntry) Parent() (Entry, bool) {
	if e.node.Parent == nil {
		return nil, false
	}
	return e.reg.entry(e.node.Parent), true
}

func (e *memEntry) Release() {
	if e.released {
		return
	}
	e.released = true
	e.reg.release()
}
