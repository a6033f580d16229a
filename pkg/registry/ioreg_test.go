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

package registry

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trimmed from `ioreg -a -l -r -c IOUSBHostDevice` with a flash drive attached
const ioregDump = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>IOObjectClass</key>
		<string>IOUSBHostDevice</string>
		<key>IORegistryEntryName</key>
		<string>Ultra Fit</string>
		<key>idVendor</key>
		<integer>1921</integer>
		<key>idProduct</key>
		<integer>21889</integer>
		<key>bcdDevice</key>
		<integer>256</integer>
		<key>USB Vendor Name</key>
		<string>SanDisk</string>
		<key>USB Product Name</key>
		<string>Ultra Fit</string>
		<key>USB Serial Number</key>
		<string>4C530001131212104155</string>
		<key>kUSBContainerID</key>
		<data>AAECAw==</data>
		<key>IOPowerManagement</key>
		<dict>
			<key>PowerOverrideOn</key>
			<true/>
		</dict>
		<key>IORegistryEntryChildren</key>
		<array>
			<dict>
				<key>IOObjectClass</key>
				<string>IOMedia</string>
				<key>IORegistryEntryName</key>
				<string>SanDisk Ultra Fit Media</string>
				<key>BSD Name</key>
				<string>disk4</string>
				<key>Leaf</key>
				<false/>
				<key>Writable</key>
				<true/>
				<key>Ejectable</key>
				<true/>
				<key>IORegistryEntryChildren</key>
				<array>
					<dict>
						<key>IOObjectClass</key>
						<string>IOMedia</string>
						<key>IORegistryEntryName</key>
						<string>Untitled 1</string>
						<key>BSD Name</key>
						<string>disk4s1</string>
						<key>Leaf</key>
						<true/>
						<key>Writable</key>
						<true/>
						<key>Ejectable</key>
						<true/>
						<key>Size</key>
						<real>31.5</real>
					</dict>
				</array>
			</dict>
		</array>
	</dict>
</array>
</plist>
`

func TestParseIoreg(t *testing.T) {
	t.Parallel()

	reg, err := ParseIoreg([]byte(ioregDump))
	require.NoError(t, err)
	require.Len(t, reg.Roots(), 1)

	dev := reg.Roots()[0]
	assert.Equal(t, "Ultra Fit", dev.Name)
	assert.True(t, dev.IsA(ClassUSBDevice))
	assert.Equal(t, NumberValue(1921), dev.Props[KeyVendorID])
	assert.Equal(t, StringValue("SanDisk"), dev.Props[KeyVendorName])
	assert.Equal(t, DataValue([]byte{0, 1, 2, 3}), dev.Props["kUSBContainerID"])
	assert.Equal(t, KindOther, dev.Props["IOPowerManagement"].Kind)
	assert.NotContains(t, dev.Props, "IORegistryEntryChildren")
	assert.NotContains(t, dev.Props, "IOObjectClass")

	require.Len(t, dev.Children, 1)
	whole := dev.Children[0]
	assert.Same(t, dev, whole.Parent)
	require.Len(t, whole.Children, 1)

	part := whole.Children[0]
	assert.Equal(t, BoolValue(true), part.Props[KeyMediaLeaf])
	size := part.Props["Size"]
	assert.Equal(t, KindNumber, size.Kind)
	assert.False(t, size.Valid)
}

func TestParseIoregMatching(t *testing.T) {
	t.Parallel()

	reg, err := ParseIoreg([]byte(ioregDump))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ultra Fit"}, names(t, reg, MatchClass(ClassUSBDevice)))

	leaves := MatchClass(ClassMedia).
		With(KeyMediaLeaf, true).
		With(KeyMediaWritable, true).
		With(KeyMediaEjectable, true)
	assert.Equal(t, []string{"Untitled 1"}, names(t, reg, leaves))
}

func TestParseIoregCustomSuperclasses(t *testing.T) {
	t.Parallel()

	dump := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>IOObjectClass</key>
	<string>AppleUSBLegacyDevice</string>
	<key>IORegistryEntryName</key>
	<string>old</string>
</dict>
</plist>`

	reg, err := ParseIoreg([]byte(dump))
	require.NoError(t, err)
	assert.Empty(t, names(t, reg, MatchClass(ClassUSBDevice)))

	reg, err = ParseIoreg([]byte(dump), WithSuperclasses(map[string][]string{
		"AppleUSBLegacyDevice": {ClassUSBDevice},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, names(t, reg, MatchClass(ClassUSBDevice)))
}

func TestParseIoregErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseIoreg([]byte("not a plist"))
	require.Error(t, err)

	empty := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><array></array></plist>`
	_, err = ParseIoreg([]byte(empty))
	require.ErrorIs(t, err, ErrEmptyDump)

	scalar := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><string>hello</string></plist>`
	_, err = ParseIoreg([]byte(scalar))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected ioreg root type")
}

func TestLoadIoreg(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fixtures/usb.plist", []byte(ioregDump), 0o600))

	reg, err := LoadIoreg(fs, "/fixtures/usb.plist")
	require.NoError(t, err)
	assert.Len(t, reg.Roots(), 1)

	_, err = LoadIoreg(fs, "/fixtures/missing.plist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read ioreg dump")
}
