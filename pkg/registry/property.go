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
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
)

// Status is the outcome of reading one property.
type Status int

const (
	// Absent means no node consulted carried the key.
	Absent Status = iota
	// Present means the key was found and decoded.
	Present
	// DecodeFailed means the key was found with a value of the wrong type
	// or one that could not be converted.
	DecodeFailed
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case DecodeFailed:
		return "decode-failed"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Lookup is a property read that keeps the three-way outcome so callers can
// tell a missing key from an undecodable one.
type Lookup[T any] struct {
	Value  T
	Status Status
}

// Get collapses the lookup to the ancestor-search policy: anything other
// than Present is "not found".
func (l Lookup[T]) Get() (T, bool) {
	if l.Status != Present {
		var zero T
		return zero, false
	}
	return l.Value, true
}

// OrZero collapses the lookup to the direct-read policy: anything other
// than Present yields the zero value.
func (l Lookup[T]) OrZero() T {
	if l.Status != Present {
		var zero T
		return zero
	}
	return l.Value
}

// LookupString reads key from e alone. Invalid UTF-8 is replaced with
// U+FFFD rather than rejected.
func LookupString(e Entry, key string) Lookup[string] {
	v, ok := e.Property(key)
	if !ok {
		return Lookup[string]{Status: Absent}
	}
	return decodeString(key, v)
}

// LookupInt reads key from e alone as an integer.
func LookupInt(e Entry, key string) Lookup[int64] {
	v, ok := e.Property(key)
	if !ok {
		return Lookup[int64]{Status: Absent}
	}
	return decodeInt(key, v)
}

// ReadString returns the string value of key on e, or "" when the property
// is missing or undecodable.
func ReadString(e Entry, key string) string {
	return LookupString(e, key).OrZero()
}

// ReadInt returns the integer value of key on e, or 0 when the property is
// missing or undecodable.
func ReadInt(e Entry, key string) int64 {
	return LookupInt(e, key).OrZero()
}

// SearchString looks for key on e and then on each ancestor in the
// service plane, returning the nearest hit.
func SearchString(e Entry, key string) Lookup[string] {
	v, ok := search(e, key)
	if !ok {
		return Lookup[string]{Status: Absent}
	}
	return decodeString(key, v)
}

// SearchInt is SearchString for integer properties.
func SearchInt(e Entry, key string) Lookup[int64] {
	v, ok := search(e, key)
	if !ok {
		return Lookup[int64]{Status: Absent}
	}
	return decodeInt(key, v)
}

func search(e Entry, key string) (Value, bool) {
	if s, ok := e.(Searcher); ok {
		return s.SearchProperty(key)
	}

	if v, ok := e.Property(key); ok {
		return v, true
	}

	cur, ok := e.Parent()
	for ok {
		v, found := cur.Property(key)
		if found {
			cur.Release()
			return v, true
		}
		next, more := cur.Parent()
		cur.Release()
		cur, ok = next, more
	}
	return Value{}, false
}

func decodeString(key string, v Value) Lookup[string] {
	if !v.Valid {
		return Lookup[string]{Status: DecodeFailed}
	}

	var raw string
	switch v.Kind {
	case KindString:
		raw = v.Str
	case KindData:
		raw = string(v.Data)
	default:
		log.Debug().Str("key", key).Stringer("kind", v.Kind).Msg("property is not a string")
		return Lookup[string]{Status: DecodeFailed}
	}

	s, err := unicode.UTF8.NewDecoder().String(raw)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("failed to decode string property")
		return Lookup[string]{Status: DecodeFailed}
	}
	return Lookup[string]{Value: s, Status: Present}
}

func decodeInt(key string, v Value) Lookup[int64] {
	if !v.Valid || v.Kind != KindNumber {
		log.Debug().Str("key", key).Stringer("kind", v.Kind).Msg("property is not a number")
		return Lookup[int64]{Status: DecodeFailed}
	}
	return Lookup[int64]{Value: v.Num, Status: Present}
}
