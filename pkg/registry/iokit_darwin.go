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

package registry

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <stdlib.h>
#include <string.h>
#include <IOKit/IOKitLib.h>
#include <CoreFoundation/CoreFoundation.h>

enum {
    UO_ABSENT = 0,
    UO_STRING = 1,
    UO_NUMBER = 2,
    UO_DATA   = 3,
    UO_BOOL   = 4,
    UO_OTHER  = 5
};

typedef struct {
    int kind;
    int valid;
    long long num;
    char *buf;
    long len;
} uo_value;

static CFStringRef uo_cfstr(const char *s) {
    return CFStringCreateWithCString(kCFAllocatorDefault, s, kCFStringEncodingUTF8);
}

// uo_convert copies ref into out and releases ref. out->buf is malloc'd
// and must be freed by the caller.
static void uo_convert(CFTypeRef ref, uo_value *out) {
    memset(out, 0, sizeof(*out));
    if (!ref) {
        return;
    }

    CFTypeID t = CFGetTypeID(ref);
    if (t == CFStringGetTypeID()) {
        out->kind = UO_STRING;
        CFIndex n = CFStringGetLength((CFStringRef)ref);
        CFIndex max = CFStringGetMaximumSizeForEncoding(n, kCFStringEncodingUTF8) + 1;
        char *buf = malloc(max);
        if (buf && CFStringGetCString((CFStringRef)ref, buf, max, kCFStringEncodingUTF8)) {
            out->valid = 1;
            out->buf = buf;
            out->len = (long)strlen(buf);
        } else {
            free(buf);
        }
    } else if (t == CFNumberGetTypeID()) {
        out->kind = UO_NUMBER;
        long long v = 0;
        if (CFNumberGetValue((CFNumberRef)ref, kCFNumberLongLongType, &v)) {
            out->valid = 1;
            out->num = v;
        }
    } else if (t == CFDataGetTypeID()) {
        out->kind = UO_DATA;
        CFIndex n = CFDataGetLength((CFDataRef)ref);
        char *buf = malloc(n > 0 ? n : 1);
        if (buf) {
            CFDataGetBytes((CFDataRef)ref, CFRangeMake(0, n), (UInt8 *)buf);
            out->valid = 1;
            out->buf = buf;
            out->len = (long)n;
        }
    } else if (t == CFBooleanGetTypeID()) {
        out->kind = UO_BOOL;
        out->valid = 1;
        out->num = CFBooleanGetValue((CFBooleanRef)ref) ? 1 : 0;
    } else {
        out->kind = UO_OTHER;
    }

    CFRelease(ref);
}

static void uo_property(io_registry_entry_t e, const char *key, uo_value *out) {
    CFStringRef k = uo_cfstr(key);
    if (!k) {
        memset(out, 0, sizeof(*out));
        return;
    }
    CFTypeRef ref = IORegistryEntryCreateCFProperty(e, k, kCFAllocatorDefault, 0);
    CFRelease(k);
    uo_convert(ref, out);
}

static void uo_search(io_registry_entry_t e, const char *key, uo_value *out) {
    CFStringRef k = uo_cfstr(key);
    if (!k) {
        memset(out, 0, sizeof(*out));
        return;
    }
    CFTypeRef ref = IORegistryEntrySearchCFProperty(
        e,
        kIOServicePlane,
        k,
        kCFAllocatorDefault,
        kIORegistryIterateRecursively | kIORegistryIterateParents
    );
    CFRelease(k);
    uo_convert(ref, out);
}

static kern_return_t uo_parent(io_registry_entry_t e, io_registry_entry_t *parent) {
    return IORegistryEntryGetParentEntry(e, kIOServicePlane, parent);
}

static int uo_match_bool(CFMutableDictionaryRef d, const char *key, int v) {
    CFStringRef k = uo_cfstr(key);
    if (!k) {
        return 0;
    }
    CFDictionarySetValue(d, k, v ? kCFBooleanTrue : kCFBooleanFalse);
    CFRelease(k);
    return 1;
}

static void uo_release_dict(CFMutableDictionaryRef d) {
    CFRelease(d);
}

// uo_matching_services consumes d whether or not the call succeeds.
static kern_return_t uo_matching_services(mach_port_t port, CFMutableDictionaryRef d, io_iterator_t *it) {
    return IOServiceGetMatchingServices(port, d, it);
}
*/
import "C" //nolint:gocritic // cgo requires separate import block

import (
	"unsafe" //nolint:gocritic // required for C.free

	"github.com/rs/zerolog/log"
)

// IOKit is the live I/O Registry, reached through the default main port.
type IOKit struct {
	port C.mach_port_t
}

// NewIOKit returns a registry bound to the default main port.
func NewIOKit() *IOKit {
	return &IOKit{port: C.kIOMainPortDefault}
}

// Default returns the live IOKit registry.
func Default() (Registry, error) {
	return NewIOKit(), nil
}

//nolint:gocritic // Matcher passed by value to satisfy Registry
func (r *IOKit) Match(m Matcher) (Iterator, error) {
	cls := C.CString(m.Class)
	defer C.free(unsafe.Pointer(cls))

	dict := C.IOServiceMatching(cls)
	if dict == 0 {
		return nil, setupError("IOServiceMatching", 0)
	}

	for key, want := range m.Properties {
		ck := C.CString(key)
		v := C.int(0)
		if want {
			v = 1
		}
		ok := C.uo_match_bool(dict, ck, v)
		C.free(unsafe.Pointer(ck))
		if ok == 0 {
			C.uo_release_dict(dict)
			return nil, setupError("CFDictionarySetValue", 0)
		}
	}

	var it C.io_iterator_t
	kr := C.uo_matching_services(r.port, dict, &it)
	if kr != C.KERN_SUCCESS {
		log.Error().
			Str("class", m.Class).
			Msgf("IOServiceGetMatchingServices returned 0x%08x", uint32(kr))
		return nil, setupError("IOServiceGetMatchingServices", int(kr))
	}

	return &iokitIterator{it: it}, nil
}

type iokitIterator struct {
	it       C.io_iterator_t
	released bool
}

func (i *iokitIterator) Next() (Entry, bool) {
	if i.released {
		return nil, false
	}
	obj := C.IOIteratorNext(i.it)
	if obj == 0 {
		return nil, false
	}
	return &iokitEntry{obj: C.io_registry_entry_t(obj)}, true
}

func (i *iokitIterator) Release() {
	if i.released {
		return
	}
	i.released = true
	C.IOObjectRelease(C.io_object_t(i.it))
}

type iokitEntry struct {
	obj      C.io_registry_entry_t
	released bool
}

func (e *iokitEntry) Property(key string) (Value, bool) {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))

	var out C.uo_value
	C.uo_property(e.obj, ck, &out)
	return fromC(&out)
}

func (e *iokitEntry) SearchProperty(key string) (Value, bool) {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))

	var out C.uo_value
	C.uo_search(e.obj, ck, &out)
	return fromC(&out)
}

func (e *iokitEntry) Parent() (Entry, bool) {
	var parent C.io_registry_entry_t
	if kr := C.uo_parent(e.obj, &parent); kr != C.KERN_SUCCESS {
		return nil, false
	}
	return &iokitEntry{obj: parent}, true
}

func (e *iokitEntry) Release() {
	if e.released {
		return
	}
	e.released = true
	C.IOObjectRelease(C.io_object_t(e.obj))
}

func fromC(out *C.uo_value) (Value, bool) {
	if out.buf != nil {
		defer C.free(unsafe.Pointer(out.buf))
	}

	v := Value{Valid: out.valid != 0}
	switch out.kind {
	case C.UO_ABSENT:
		return Value{}, false
	case C.UO_STRING:
		v.Kind = KindString
		if v.Valid {
			v.Str = C.GoStringN(out.buf, C.int(out.len))
		}
	case C.UO_NUMBER:
		v.Kind = KindNumber
		v.Num = int64(out.num)
	case C.UO_DATA:
		v.Kind = KindData
		if v.Valid {
			v.Data = C.GoBytes(unsafe.Pointer(out.buf), C.int(out.len))
		}
	case C.UO_BOOL:
		v.Kind = KindBool
		v.Num = int64(out.num)
	default:
		v.Kind = KindOther
	}
	return v, true
}
