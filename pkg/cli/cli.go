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

// Package cli wires the command-line flags to the device and system
// queries and prints their results.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ZaparooProject/usbobserver/pkg/config"
	"github.com/ZaparooProject/usbobserver/pkg/devices"
	"github.com/ZaparooProject/usbobserver/pkg/registry"
	"github.com/ZaparooProject/usbobserver/pkg/system"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNoAction       = errors.New("no action given")
	ErrTooManyActions = errors.New("only one action may be given")
)

type Flags struct {
	Devices    *bool
	Volumes    *bool
	Mounts     *bool
	Trash      *string
	Locale     *bool
	DateFormat *bool
	Fixture    *string
	Format     *string
	Version    *bool
	Debug      *bool
	set        *flag.FlagSet
}

// SetupFlags defines all flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set: fs,
		Devices: fs.Bool(
			"devices",
			false,
			"list connected USB devices",
		),
		Volumes: fs.Bool(
			"volumes",
			false,
			"list writable, ejectable USB storage volumes",
		),
		Mounts: fs.Bool(
			"mounts",
			false,
			"print the mounted filesystem table",
		),
		Trash: fs.String(
			"trash",
			"",
			"move `path` to the trash",
		),
		Locale: fs.Bool(
			"locale",
			false,
			"print the user's locale identifier",
		),
		DateFormat: fs.Bool(
			"date-format",
			false,
			"print the user's short date format",
		),
		Fixture: fs.String(
			"fixture",
			"",
			"read devices from an `ioreg -a -l` plist dump instead of the live registry",
		),
		Format: fs.String(
			"format",
			"",
			"output format: json or table (default from config)",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"log debug output to stderr",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Env carries the collaborators an action needs.
type Env struct {
	Out         io.Writer
	Fs          afero.Fs
	Locale      system.LocaleProvider
	Registry    func() (registry.Registry, error)
	Mounts      func() (map[string]string, error)
	MoveToTrash func(path string) error
}

// DefaultEnv returns an Env backed by the live OS.
func DefaultEnv(out io.Writer) *Env {
	return &Env{
		Out:         out,
		Fs:          afero.NewOsFs(),
		Locale:      system.DefaultLocaleProvider(),
		Registry:    registry.Default,
		Mounts:      system.MountedFilesystems,
		MoveToTrash: system.MoveToTrash,
	}
}

func (f *Flags) actions() []string {
	var names []string
	for _, name := range []string{"devices", "volumes", "mounts", "trash", "locale", "date-format"} {
		if f.isFlagPassed(name) {
			names = append(names, name)
		}
	}
	return names
}

// Run performs the single action selected on the command line.
func (f *Flags) Run(env *Env, cfg *config.Instance) error {
	actions := f.actions()
	switch len(actions) {
	case 0:
		return ErrNoAction
	case 1:
	default:
		return fmt.Errorf("%w: %v", ErrTooManyActions, actions)
	}

	format := cfg.OutputFormat()
	if *f.Format != "" {
		format = *f.Format
	}
	out, err := newPrinter(env.Out, format)
	if err != nil {
		return err
	}

	log.Debug().Str("action", actions[0]).Str("format", format).Msg("running")

	switch actions[0] {
	case "devices":
		reg, err := f.registry(env, cfg)
		if err != nil {
			return err
		}
		records, err := devices.ListUSBDevices(reg)
		if err != nil {
			return fmt.Errorf("failed to list USB devices: %w", err)
		}
		return out.devices(records)
	case "volumes":
		reg, err := f.registry(env, cfg)
		if err != nil {
			return err
		}
		var opts []devices.VolumeOption
		if dir := cfg.DevDir(); dir != "" {
			opts = append(opts, devices.WithDevDir(dir))
		}
		records, err := devices.ListUSBVolumes(reg, opts...)
		if err != nil {
			return fmt.Errorf("failed to list USB volumes: %w", err)
		}
		return out.volumes(records)
	case "mounts":
		mounts, err := env.Mounts()
		if err != nil {
			return fmt.Errorf("failed to read mounts: %w", err)
		}
		return out.mounts(mounts)
	case "trash":
		if *f.Trash == "" {
			return errors.New("trash flag requires a path")
		}
		if err := env.MoveToTrash(*f.Trash); err != nil {
			log.Error().Err(err).Str("path", *f.Trash).Msg("failed to move to trash")
			return err //nolint:wrapcheck // OSError already names the op and path
		}
		return nil
	case "locale":
		return out.optional("locale", system.UserLocale(env.Locale))
	default:
		return out.optional("date_format", system.DateFormat(env.Locale))
	}
}

// registry picks the fixture from the flag, then config, then falls back
// to the live registry.
func (f *Flags) registry(env *Env, cfg *config.Instance) (registry.Registry, error) {
	fixture := cfg.RegistryFixture()
	if *f.Fixture != "" {
		fixture = *f.Fixture
	}
	if fixture == "" {
		reg, err := env.Registry()
		if err != nil {
			return nil, fmt.Errorf("failed to open device registry: %w", err)
		}
		return reg, nil
	}

	log.Info().Str("fixture", fixture).Msg("using registry fixture")
	reg, err := registry.LoadIoreg(env.Fs, fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	return reg, nil
}
