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
	"path/filepath"

	"github.com/ZaparooProject/usbobserver/pkg/registry"
	"github.com/rs/zerolog/log"
)

// DefaultDevDir is where BSD device special files live.
const DefaultDevDir = "/dev"

type volumeOptions struct {
	devDir string
}

// VolumeOption configures ListUSBVolumes.
type VolumeOption func(*volumeOptions)

// WithDevDir overrides the directory BSD names are resolved against.
func WithDevDir(dir string) VolumeOption {
	return func(o *volumeOptions) {
		o.devDir = dir
	}
}

// usbVolumeMatcher selects leaf media that are both writable and ejectable:
// partitions that hold no further partitions, on removable drives.
func usbVolumeMatcher() registry.Matcher {
	return registry.MatchClass(registry.ClassMedia).
		With(registry.KeyMediaWritable, true).
		With(registry.KeyMediaLeaf, true).
		With(registry.KeyMediaEjectable, true)
}

// ListUSBVolumes returns one record per writable, ejectable leaf volume in
// reg whose device file and USB identity can both be resolved. Storage
// nodes carry no USB properties themselves, so the identity is taken from
// the nearest ancestor that has it.
func ListUSBVolumes(reg registry.Registry, opts ...VolumeOption) ([]VolumeRecord, error) {
	o := volumeOptions{devDir: DefaultDevDir}
	for _, opt := range opts {
		opt(&o)
	}

	it, err := reg.Match(usbVolumeMatcher())
	if err != nil {
		return nil, fmt.Errorf("failed to match USB volumes: %w", err)
	}
	defer it.Release()

	volumes := make([]VolumeRecord, 0)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		if rec, ok := readVolume(e, o.devDir); ok {
			volumes = append(volumes, rec)
		}
	}

	log.Debug().Int("count", len(volumes)).Msg("enumerated USB volumes")
	return volumes, nil
}

func readVolume(e registry.Entry, devDir string) (VolumeRecord, bool) {
	defer e.Release()

	path, ok := devicePath(e, devDir)
	if !ok {
		log.Debug().Msg("skipping volume without a BSD name")
		return VolumeRecord{}, false
	}

	vid, vidOK := registry.SearchInt(e, registry.KeyVendorID).Get()
	pid, pidOK := registry.SearchInt(e, registry.KeyProductID).Get()
	bcd, bcdOK := registry.SearchInt(e, registry.KeyReleaseNumber).Get()
	if !vidOK || !pidOK || !bcdOK {
		log.Debug().
			Str("path", path).
			Msg("skipping volume with no USB ancestor")
		return VolumeRecord{}, false
	}

	return VolumeRecord{
		DevicePath: path,
		DeviceRecord: DeviceRecord{
			VendorID:      vid,
			ProductID:     pid,
			ReleaseNumber: bcd,
			Manufacturer:  searchedString(registry.SearchString(e, registry.KeyVendorName)),
			Product:       searchedString(registry.SearchString(e, registry.KeyProductName)),
			Serial:        searchedString(registry.SearchString(e, registry.KeySerialNumber)),
		},
	}, true
}

// devicePath maps the entry's BSD name (e.g. "disk4s1") to its device
// special file. An empty name resolves to nothing.
func devicePath(e registry.Entry, devDir string) (string, bool) {
	name, ok := registry.LookupString(e, registry.KeyBSDName).Get()
	if !ok || name == "" {
		return "", false
	}
	return filepath.Join(devDir, name), true
}
