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

// Package devices lists attached USB devices and the removable volumes
// they expose, as plain records read from the device registry.
package devices

import (
	"github.com/ZaparooProject/usbobserver/pkg/registry"
)

// DeviceRecord identifies one USB device. The numeric fields are always
// set; a nil string field means the device did not report it.
type DeviceRecord struct {
	Manufacturer  *string `json:"manufacturer"`
	Product       *string `json:"product"`
	Serial        *string `json:"serial"`
	VendorID      int64   `json:"vendor_id"`
	ProductID     int64   `json:"product_id"`
	ReleaseNumber int64   `json:"release_number"`
}

// VolumeRecord is a writable, ejectable leaf storage volume together with
// the identity of the USB device it lives on.
type VolumeRecord struct {
	DevicePath string `json:"device_path"`
	DeviceRecord
}

// directInt applies the single-node read policy to a required numeric
// field: an undecodable value reads as zero, only a missing key fails.
func directInt(l registry.Lookup[int64]) (int64, bool) {
	switch l.Status {
	case registry.Present:
		return l.Value, true
	case registry.DecodeFailed:
		return 0, true
	case registry.Absent:
		return 0, false
	default:
		return 0, false
	}
}

// directString applies the single-node read policy to an optional string:
// an undecodable value reads as "", a missing key is nil.
func directString(l registry.Lookup[string]) *string {
	switch l.Status {
	case registry.Present:
		return &l.Value
	case registry.DecodeFailed:
		empty := ""
		return &empty
	case registry.Absent:
		return nil
	default:
		return nil
	}
}

// searchedString applies the ancestor-search policy: anything short of a
// decoded value is nil.
func searchedString(l registry.Lookup[string]) *string {
	s, ok := l.Get()
	if !ok {
		return nil
	}
	return &s
}
