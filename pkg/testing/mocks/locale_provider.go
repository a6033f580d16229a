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

package mocks

import "github.com/stretchr/testify/mock"

// MockLocaleProvider is a testify mock for system.LocaleProvider.
type MockLocaleProvider struct {
	mock.Mock
}

func (m *MockLocaleProvider) LocaleIdentifier() (string, bool) {
	called := m.Called()
	return called.String(0), called.Bool(1)
}

func (m *MockLocaleProvider) ShortDateFormat() (string, bool) {
	called := m.Called()
	return called.String(0), called.Bool(1)
}
