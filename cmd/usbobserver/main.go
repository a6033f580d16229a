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

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/ZaparooProject/usbobserver/internal/telemetry"
	"github.com/ZaparooProject/usbobserver/pkg/cli"
	"github.com/ZaparooProject/usbobserver/pkg/config"
	"github.com/ZaparooProject/usbobserver/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if *flags.Version {
		_, _ = fmt.Printf("usbobserver v%s (%s/%s)\n", config.AppVersion, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	os.Exit(run(flags))
}

func run(flags *cli.Flags) int {
	cfg, err := config.NewConfig(config.ConfigDir(), config.BaseDefaults)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}
	err = helpers.InitLogging(config.LogDir(), *flags.Debug || cfg.DebugLogging(), logWriters)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return 1
	}

	if err := telemetry.Init(cfg.TelemetryDSN(), config.AppVersion); err != nil {
		log.Warn().Err(err).Msg("error reporting unavailable")
	}
	defer telemetry.Close()

	log.Debug().Str("config", cfg.Path()).Msg("starting")

	err = flags.Run(cli.DefaultEnv(os.Stdout), cfg)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrNoAction):
		_, _ = fmt.Fprintln(os.Stderr, "Error: no action given")
		flag.Usage()
		return 2
	default:
		log.Error().Err(err).Msg("command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
