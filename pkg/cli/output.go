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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/ZaparooProject/usbobserver/pkg/config"
	"github.com/ZaparooProject/usbobserver/pkg/devices"
	"github.com/jedib0t/go-pretty/v6/table"
)

type printer struct {
	w     io.Writer
	table bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case config.FormatJSON:
		return &printer{w: w}, nil
	case config.FormatTable:
		return &printer{w: w, table: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func (p *printer) render(t table.Writer) error {
	if _, err := fmt.Fprintln(p.w, t.Render()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (p *printer) devices(records []devices.DeviceRecord) error {
	if !p.table {
		return p.json(records)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Vendor", "Product", "Release", "Manufacturer", "Product Name", "Serial"})
	for i := range records {
		r := &records[i]
		t.AppendRow(table.Row{
			hex4(r.VendorID), hex4(r.ProductID), hex4(r.ReleaseNumber),
			text(r.Manufacturer), text(r.Product), text(r.Serial),
		})
	}
	return p.render(t)
}

func (p *printer) volumes(records []devices.VolumeRecord) error {
	if !p.table {
		return p.json(records)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Device", "Vendor", "Product", "Manufacturer", "Product Name", "Serial"})
	for i := range records {
		r := &records[i]
		t.AppendRow(table.Row{
			r.DevicePath, hex4(r.VendorID), hex4(r.ProductID),
			text(r.Manufacturer), text(r.Product), text(r.Serial),
		})
	}
	return p.render(t)
}

// mounts prints the table. JSON output replaces bytes that are not valid
// UTF-8; the table prints them as they are.
func (p *printer) mounts(mounts map[string]string) error {
	if !p.table {
		return p.json(mounts)
	}

	sources := make([]string, 0, len(mounts))
	for src := range mounts {
		sources = append(sources, src)
	}
	slices.Sort(sources)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "Mount Point"})
	for _, src := range sources {
		t.AppendRow(table.Row{src, mounts[src]})
	}
	return p.render(t)
}

func (p *printer) optional(key string, v *string) error {
	if !p.table {
		return p.json(map[string]*string{key: v})
	}
	if _, err := fmt.Fprintln(p.w, text(v)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func hex4(n int64) string {
	return fmt.Sprintf("0x%04x", n)
}

func text(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
