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

// LocaleProvider reports the current user's locale settings. Either
// method returns false when the OS has no answer.
type LocaleProvider interface {
	LocaleIdentifier() (string, bool)
	ShortDateFormat() (string, bool)
}

// UserLocale returns the user's locale identifier (such as "en_US"), or
// nil when it cannot be determined.
func UserLocale(p LocaleProvider) *string {
	id, ok := p.LocaleIdentifier()
	if !ok {
		return nil
	}
	return &id
}

// DateFormat returns the short date pattern of the user's locale as a
// Unicode LDML pattern (such as "M/d/yy"), or nil when it cannot be
// determined.
func DateFormat(p LocaleProvider) *string {
	f, ok := p.ShortDateFormat()
	if !ok {
		return nil
	}
	return &f
}
