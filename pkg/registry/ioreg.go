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
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"howett.net/plist"
)

const (
	ioregChildrenKey = "IORegistryEntryChildren"
	ioregClassKey    = "IOObjectClass"
	ioregNameKey     = "IORegistryEntryName"
)

// ioreg only records an entry's concrete class, so matching by superclass
// needs the hierarchy supplied from outside.
var defaultSuperclasses = map[string][]string{
	"IOUSBHostDevice":    {"IOUSBDevice", "IOService"},
	"IOUSBDevice":        {"IOService"},
	"IOMedia":            {"IOStorage", "IOService"},
	"AppleAPFSVolume":    {"IOMedia", "IOStorage", "IOService"},
	"AppleAPFSContainer": {"IOMedia", "IOStorage", "IOService"},
}

// ErrEmptyDump is returned when an ioreg dump holds no registry entries.
var ErrEmptyDump = errors.New("ioreg dump contains no entries")

type ioregOptions struct {
	superclasses map[string][]string
}

// IoregOption configures ParseIoreg and LoadIoreg.
type IoregOption func(*ioregOptions)

// WithSuperclasses adds class hierarchy entries on top of the built-in
// table, so nodes of class c also match every class in classes[c].
func WithSuperclasses(classes map[string][]string) IoregOption {
	return func(o *ioregOptions) {
		for k, v := range classes {
			o.superclasses[k] = v
		}
	}
}

// LoadIoreg reads a dump produced by `ioreg -a -l` (or `ioreg -a -l -r -c
// Class`) from fs and returns it as a Memory registry.
func LoadIoreg(fs afero.Fs, path string, opts ...IoregOption) (*Memory, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ioreg dump: %w", err)
	}
	return ParseIoreg(data, opts...)
}

// ParseIoreg decodes an ioreg plist dump. A top-level dictionary becomes
// a single root; a top-level array (as produced by -r) becomes one root per
// element.
func ParseIoreg(data []byte, opts ...IoregOption) (*Memory, error) {
	o := ioregOptions{superclasses: make(map[string][]string, len(defaultSuperclasses))}
	for k, v := range defaultSuperclasses {
		o.superclasses[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}

	var doc any
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ioreg plist: %w", err)
	}

	var roots []*Node
	switch v := doc.(type) {
	case map[string]any:
		roots = append(roots, o.node(v))
	case []any:
		for _, item := range v {
			dict, ok := item.(map[string]any)
			if !ok {
				continue
			}
			roots = append(roots, o.node(dict))
		}
	default:
		return nil, fmt.Errorf("unexpected ioreg root type %T", doc)
	}

	if len(roots) == 0 {
		return nil, ErrEmptyDump
	}

	log.Debug().Int("roots", len(roots)).Msg("loaded ioreg dump")
	return NewMemory(roots...), nil
}

func (o *ioregOptions) node(dict map[string]any) *Node {
	class, _ := dict[ioregClassKey].(string)
	name, _ := dict[ioregNameKey].(string)
	n := NewNode(name, class, o.superclasses[class]...)

	for key, raw := range dict {
		switch key {
		case ioregChildrenKey:
			children, ok := raw.([]any)
			if !ok {
				continue
			}
			for _, c := range children {
				cd, ok := c.(map[string]any)
				if !ok {
					continue
				}
				n.AddChild(o.node(cd))
			}
		case ioregClassKey, ioregNameKey:
		default:
			n.Set(key, plistValue(raw))
		}
	}
	return n
}

func plistValue(raw any) Value {
	switch v := raw.(type) {
	case string:
		return StringValue(v)
	case bool:
		return BoolValue(v)
	case []byte:
		return DataValue(v)
	case uint64:
		if v > math.MaxInt64 {
			return Value{Kind: KindNumber}
		}
		return NumberValue(int64(v))
	case int64:
		return NumberValue(v)
	case float64:
		// a real number does not convert losslessly to an integer
		return Value{Kind: KindNumber}
	default:
		return Value{Kind: KindOther}
	}
}
