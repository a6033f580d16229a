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

package devices

import (
	"fmt"

	"github.com/ZaparooProject/usbobserver/pkg/registry"
	"github.com/rs/zerolog/log"
)

// ListUSBDevices returns one record per USB device in reg, in registry
// iteration order. Devices that do not report a vendor ID, product ID and
// release number are left out. Only a failure to start the registry query
// is returned as an error.
func ListUSBDevices(reg registry.Registry) ([]DeviceRecord, error) {
	it, err := reg.Match(registry.MatchClass(registry.ClassUSBDevice))
	if err != nil {
		return nil, fmt.Errorf("failed to match USB devices: %w", err)
	}
	defer it.Release()

	devices := make([]DeviceRecord, 0)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		if rec, ok := readDevice(e); ok {
			devices = append(devices, rec)
		}
	}

	log.Debug().Int("count", len(devices)).Msg("enumerated USB devices")
	return devices, nil
}

func readDevice(e registry.Entry) (DeviceRecord, bool) {
	defer e.Release()

	vid, vidOK := directInt(registry.LookupInt(e, registry.KeyVendorID))
	pid, pidOK := directInt(registry.LookupInt(e, registry.KeyProductID))
	bcd, bcdOK := directInt(registry.LookupInt(e, registry.KeyReleaseNumber))
	if !vidOK || !pidOK || !bcdOK {
		log.Debug().
			Bool("vendor_id", vidOK).
			Bool("product_id", pidOK).
			Bool("release_number", bcdOK).
			Msg("skipping USB device with incomplete identity")
		return DeviceRecord{}, false
	}

	return DeviceRecord{
		VendorID:      vid,
		ProductID:     pid,
		ReleaseNumber: bcd,
		Manufacturer:  directString(registry.LookupString(e, registry.KeyVendorName)),
		Product:       directString(registry.LookupString(e, registry.KeyProductName)),
		Serial:        directString(registry.LookupString(e, registry.KeySerialNumber)),
	}, true
}
