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
	"context"
	"strings"
	"time"

	"github.com/ZaparooProject/usbobserver/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

const localeCmdTimeout = 2 * time.Second

// EnvLocaleProvider derives locale settings from the POSIX locale
// environment and the locale(1) tool.
type EnvLocaleProvider struct {
	Getenv func(string) string
	Exec   command.Executor
}

// glibc locale modifiers that select a script.
var localeScriptModifiers = map[string]string{
	"latin":      "Latn",
	"cyrillic":   "Cyrl",
	"devanagari": "Deva",
}

// LocaleIdentifier canonicalizes LC_ALL or LANG ("de_DE.UTF-8@euro") into
// an identifier such as "de_DE". An explicit script, either as a subtag or
// a modifier like "@latin", is kept in CFLocale form ("sr-Latn_RS"). The C
// and POSIX locales have none.
func (p *EnvLocaleProvider) LocaleIdentifier() (string, bool) {
	raw, modifier, _ := strings.Cut(p.firstEnv("LC_ALL", "LANG"), "@")
	raw, _, _ = strings.Cut(raw, ".")
	if raw == "" || raw == "C" || raw == "POSIX" {
		return "", false
	}

	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		log.Debug().Err(err).Str("locale", raw).Msg("unparseable locale")
		return "", false
	}

	base, _ := tag.Base()
	id := base.String()
	if script, ok := localeScriptModifiers[strings.ToLower(modifier)]; ok {
		id += "-" + script
	} else if script, conf := tag.Script(); conf == language.Exact {
		id += "-" + script.String()
	}
	if region, conf := tag.Region(); conf == language.Exact {
		id += "_" + region.String()
	}
	return id, true
}

// ShortDateFormat asks locale(1) for d_fmt and converts the strftime
// pattern to LDML.
func (p *EnvLocaleProvider) ShortDateFormat() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), localeCmdTimeout)
	defer cancel()

	out, err := p.Exec.Output(ctx, "locale", "d_fmt")
	if err != nil {
		log.Debug().Err(err).Msg("locale d_fmt failed")
		return "", false
	}

	f := strings.TrimSpace(string(out))
	if f == "" {
		return "", false
	}
	return strftimeToLDML(f)
}

func (p *EnvLocaleProvider) firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := p.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

var strftimeFields = map[byte]string{
	'd': "dd",
	'e': "d",
	'm': "MM",
	'y': "yy",
	'Y': "y",
	'b': "MMM",
	'h': "MMM",
	'B': "MMMM",
	'a': "EEE",
	'A': "EEEE",
	'D': "MM/dd/yy",
	'F': "y-MM-dd",
}

var strftimeUnpadded = map[byte]string{
	'd': "d",
	'e': "d",
	'm': "M",
}

// strftimeToLDML converts a strftime date pattern to an LDML pattern.
// ASCII letters outside directives are quoted. Patterns using a
// directive with no date meaning are rejected.
func strftimeToLDML(f string) (string, bool) {
	var out, lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out.WriteByte('\'')
			out.WriteString(lit.String())
			out.WriteByte('\'')
			lit.Reset()
		}
	}

	for i := 0; i < len(f); i++ {
		c := f[i]
		switch {
		case c == '%':
			i++
			if i >= len(f) {
				return "", false
			}
			d := f[i]
			if d == '%' {
				flush()
				out.WriteByte('%')
				continue
			}
			table := strftimeFields
			if d == '-' || d == 'E' || d == 'O' {
				if d == '-' {
					table = strftimeUnpadded
				}
				i++
				if i >= len(f) {
					return "", false
				}
				d = f[i]
			}
			field, ok := table[d]
			if !ok {
				return "", false
			}
			flush()
			out.WriteString(field)
		case c == '\'':
			if lit.Len() > 0 {
				lit.WriteString("''")
			} else {
				out.WriteString("''")
			}
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			lit.WriteByte(c)
		default:
			flush()
			out.WriteByte(c)
		}
	}
	flush()
	return out.String(), true
}
