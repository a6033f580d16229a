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

//go:build darwin

package system

/*
#cgo LDFLAGS: -framework CoreFoundation
#include <CoreFoundation/CoreFoundation.h>
#include <stdlib.h>

static char *uo_cstring(CFStringRef s) {
	if (s == NULL) {
		return NULL;
	}
	CFIndex size = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(size);
	if (buf == NULL) {
		return NULL;
	}
	if (!CFStringGetCString(s, buf, size, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static char *uo_locale_identifier(void) {
	CFLocaleRef loc = CFLocaleCopyCurrent();
	if (loc == NULL) {
		return NULL;
	}
	char *id = uo_cstring(CFLocaleGetIdentifier(loc));
	CFRelease(loc);
	return id;
}

static char *uo_short_date_format(void) {
	CFLocaleRef loc = CFLocaleCopyCurrent();
	if (loc == NULL) {
		return NULL;
	}
	CFDateFormatterRef f = CFDateFormatterCreate(kCFAllocatorDefault, loc,
		kCFDateFormatterShortStyle, kCFDateFormatterNoStyle);
	CFRelease(loc);
	if (f == NULL) {
		return NULL;
	}
	char *fmt = uo_cstring(CFDateFormatterGetFormat(f));
	CFRelease(f);
	return fmt;
}
*/
import "C" //nolint:gocritic // cgo requires separate import block

import "unsafe"

// CFLocaleProvider reads the current CFLocale, which follows the user's
// System Settings rather than the process environment.
type CFLocaleProvider struct{}

func (CFLocaleProvider) LocaleIdentifier() (string, bool) {
	return takeCString(C.uo_locale_identifier())
}

func (CFLocaleProvider) ShortDateFormat() (string, bool) {
	return takeCString(C.uo_short_date_format())
}

func takeCString(c *C.char) (string, bool) {
	if c == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(c))
	return C.GoString(c), true
}

// DefaultLocaleProvider returns the provider for the running platform.
func DefaultLocaleProvider() LocaleProvider {
	return CFLocaleProvider{}
}
