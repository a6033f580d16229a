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

// Package registry models the macOS I/O Registry: a tree of service nodes
// carrying typed properties, queried through class matching. The live
// backend talks to IOKit through cgo; Memory provides the same surface over
// an in-process tree for tests and recorded ioreg dumps.
package registry

import (
	"errors"
	"fmt"
)

// IOKit class names used for matching.
const (
	ClassUSBDevice = "IOUSBDevice"
	ClassMedia     = "IOMedia"
)

// Property keys read off registry entries.
const (
	KeyVendorID      = "idVendor"
	KeyProductID     = "idProduct"
	KeyReleaseNumber = "bcdDevice"
	KeyVendorName    = "USB Vendor Name"
	KeyProductName   = "USB Product Name"
	KeySerialNumber  = "USB Serial Number"
	KeyBSDName       = "BSD Name"

	KeyMediaLeaf      = "Leaf"
	KeyMediaWritable  = "Writable"
	KeyMediaEjectable = "Ejectable"
)

var (
	// ErrSetup is wrapped by every failure to build a matcher or start a
	// registry query.
	ErrSetup = errors.New("registry setup failed")

	// ErrNotSupported is returned by Default on platforms without an
	// I/O Registry.
	ErrNotSupported = errors.New("device registry not supported on this platform")
)

// Error describes a failed registry operation. Code carries the kernel
// return value when the backend has one.
type Error struct {
	Err  error
	Op   string
	Code int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %v (0x%08x)", e.Op, e.Err, uint32(e.Code))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func setupError(op string, code int) error {
	return &Error{Op: op, Code: code, Err: ErrSetup}
}

// Matcher selects registry entries by class (including subclasses) and by
// exact boolean property values, mirroring an IOKit matching dictionary.
type Matcher struct {
	Properties map[string]bool
	Class      string
}

// MatchClass returns a matcher for class and all of its subclasses.
func MatchClass(class string) Matcher {
	return Matcher{Class: class}
}

// With returns a copy of m that additionally requires key to equal value.
//
//nolint:gocritic // matcher is small and copied for immutability
func (m Matcher) With(key string, value bool) Matcher {
	props := make(map[string]bool, len(m.Properties)+1)
	for k, v := range m.Properties {
		props[k] = v
	}
	props[key] = value
	m.Properties = props
	return m
}

// Registry is a handle on a device registry. Implementations must be safe
// for concurrent use.
type Registry interface {
	// Match starts an iteration over every entry matching m. The caller
	// owns the returned Iterator and must release it.
	Match(m Matcher) (Iterator, error)
}

// Iterator walks the entries produced by a Match call.
type Iterator interface {
	// Next returns the next entry, or false when the iteration is done.
	// The caller owns the returned Entry and must release it.
	Next() (Entry, bool)
	Release()
}

// Entry is a single registry node.
type Entry interface {
	// Property returns the named property of this node only.
	Property(key string) (Value, bool)
	// Parent returns the node's parent in the service plane, or false at
	// the root. The caller owns the returned Entry.
	Parent() (Entry, bool)
	Release()
}

// Searcher is implemented by entries whose backend can search ancestors
// natively. PropertyReader prefers it over walking Parent.
type Searcher interface {
	SearchProperty(key string) (Value, bool)
}

// Kind tags the type of a property Value.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindNumber
	KindData
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindData:
		return "data"
	case KindBool:
		return "bool"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded property. Only the field matching Kind is set; Valid
// is false when the backend found the property but could not convert it
// (a lossy CFNumber, a CFString that failed to encode).
type Value struct {
	Str   string
	Data  []byte
	Num   int64
	Kind  Kind
	Valid bool
}

// StringValue builds a valid string Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s, Valid: true}
}

// NumberValue builds a valid number Value.
func NumberValue(n int64) Value {
	return Value{Kind: KindNumber, Num: n, Valid: true}
}

// DataValue builds a valid raw-bytes Value.
func DataValue(b []byte) Value {
	return Value{Kind: KindData, Data: b, Valid: true}
}

// BoolValue builds a boolean Value with Num set to 0 or 1. Booleans only
// take part in matching.
func BoolValue(b bool) Value {
	v := Value{Kind: KindBool, Valid: true}
	if b {
		v.Num = 1
	}
	return v
}
