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
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestStrftimeToLDML_Edges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "100%%", want: "100%", ok: true},
		{in: "it's %Y", want: "'it''s' y", ok: true},
		{in: "%d'%m", want: "dd''MM", ok: true},
		{in: "%D", want: "MM/dd/yy", ok: true},
		{in: "%a %e %b", want: "EEE d MMM", ok: true},
		{in: "%Ey", want: "yy", ok: true},
		{in: "%", ok: false},
		{in: "%-", ok: false},
		{in: "%-Y", ok: false},
	}

	for _, tt := range tests {
		got, ok := strftimeToLDML(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStrftimeToLDML_LiteralsNeverLeakAsFields(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		lit := rapid.StringMatching(`[a-zA-Z ./-]{0,12}`).Draw(t, "literal")

		got, ok := strftimeToLDML(lit + "%d")
		if !ok {
			t.Fatalf("literal %q rejected", lit)
		}

		// Outside quotes only punctuation and the converted field remain.
		inQuote := false
		var bare []rune
		for _, r := range got {
			if r == '\'' {
				inQuote = !inQuote
				continue
			}
			if !inQuote {
				bare = append(bare, r)
			}
		}
		for _, r := range bare[:len(bare)-2] {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				t.Fatalf("unquoted letter %q in %q", r, got)
			}
		}
		if string(bare[len(bare)-2:]) != "dd" {
			t.Fatalf("field lost in %q", got)
		}
	})
}
