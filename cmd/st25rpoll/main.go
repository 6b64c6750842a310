// go-st25r
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-st25r.
//
// go-st25r is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-st25r is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-st25r; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Command st25rpoll runs the NFC-A / NFC-V poll loop and prints every
// device it finds
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/polling"
)

type config struct {
	devicePath *string
	csPin      *string
	irqPin     *string
	simulate   *bool
	debug      *bool
	list       *bool
	cycles     *int
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"SPI port (e.g. /dev/spidev0.0) or Bus Pirate serial port. Leave empty for auto-detection."),
		csPin:    flag.String("cs", st25r.PinCS, "Chip select GPIO name (SPI only)"),
		irqPin:   flag.String("irq", st25r.PinIRQ, "Interrupt GPIO name (SPI only, empty to disable)"),
		simulate: flag.Bool("simulate", false, "Run against simulated tags instead of hardware"),
		debug:    flag.Bool("debug", false, "Enable debug output"),
		list:     flag.Bool("list", false, "List candidate devices and exit"),
		cycles:   flag.Int("cycles", 0, "Number of poll cycles to run (0 = until interrupted)"),
	}
	flag.Parse()
	return cfg
}

func setupLogging(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
		st25r.SetDebugEnabled(true)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	st25r.SetLogger(logger)
	return logger
}

func main() {
	cfg := parseFlags()
	logger := setupLogging(*cfg.debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("st25rpoll failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, logger *slog.Logger) error {
	if *cfg.list {
		return listDevices(ctx)
	}

	var (
		engine  st25r.Engine
		cleanup func()
		err     error
	)
	if *cfg.simulate {
		engine = newSimulatedEngine()
		cleanup = func() {}
		_, _ = fmt.Println("Running against simulated tags")
	} else {
		engine, cleanup, err = bringUpHardware(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}
	defer cleanup()

	pollCfg := polling.DefaultConfig()
	pollCfg.Logger = logger
	if err := pollCfg.Validate(); err != nil {
		return err
	}
	poller := polling.New(engine, pollCfg)
	if err := poller.Bringup(); err != nil {
		return err
	}

	err = poller.RunCycles(ctx, *cfg.cycles)

	m := poller.Metrics()
	logger.Info("poll loop stopped",
		"cycles", m.Cycles,
		"devices", m.DevicesFound,
		"errors", m.ErrorsReported,
		"routine", m.RoutineSuppressed)
	return err
}
