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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	st25r "github.com/ZaparooProject/go-st25r"
	"github.com/ZaparooProject/go-st25r/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-st25r/detection/spi"
	_ "github.com/ZaparooProject/go-st25r/detection/uart"
	"github.com/ZaparooProject/go-st25r/transport/spi"
	"github.com/ZaparooProject/go-st25r/transport/uart"
)

// errNoEngine is returned when the binary was built without a protocol stack
var errNoEngine = errors.New("no protocol engine linked into this build; use -simulate")

// engineFactory builds the protocol engine on top of a platform. Builds
// that link a protocol stack set it from an init function.
var engineFactory func(p *st25r.Platform) (st25r.Engine, error)

// isrEngine is implemented by engines that service chip interrupts
type isrEngine interface {
	Isr()
}

func listDevices(ctx context.Context) error {
	opts := detection.DefaultOptions()
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	for _, d := range devices {
		_, _ = fmt.Printf("%-5s %-24s %s\n", d.Transport, d.Path, d.Name)
	}
	return nil
}

// spiBus is the extra surface the native SPI transport offers
type spiBus interface {
	st25r.Bus
	CS() st25r.Pin
	IRQ() st25r.Pin
	WatchIRQ(ctx context.Context, edge func()) error
}

// newBus creates a bus from a device path
func newBus(path string, cfg *config) (st25r.Bus, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}

	if strings.Contains(strings.ToLower(path), "spi") {
		spiCfg := spi.DefaultConfig()
		spiCfg.Port = path
		spiCfg.CSPin = *cfg.csPin
		spiCfg.IRQPin = *cfg.irqPin
		bus, err := spi.New(spiCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return bus, nil
	}

	// Default to a Bus Pirate on a serial port
	bus, err := uart.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create UART transport: %w", err)
	}
	return bus, nil
}

// resolvePath returns the configured device, or the first detected one
func resolvePath(ctx context.Context, cfg *config) (string, error) {
	if *cfg.devicePath != "" {
		_, _ = fmt.Printf("Opening device: %s\n", *cfg.devicePath)
		return *cfg.devicePath, nil
	}

	_, _ = fmt.Println("Auto-detecting ST25R devices...")
	opts := detection.DefaultOptions()
	opts.Mode = detection.Full
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return "", fmt.Errorf("auto-detection failed: %w", err)
	}
	_, _ = fmt.Printf("Found %s device: %s\n", devices[0].Transport, devices[0].Path)
	return devices[0].Path, nil
}

// bringUpHardware opens the bus, starts the interrupt path and checks the
// chip identity before handing the platform to the protocol engine
func bringUpHardware(ctx context.Context, cfg *config, logger *slog.Logger) (st25r.Engine, func(), error) {
	path, err := resolvePath(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	bus, err := newBus(path, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []st25r.Option{st25r.WithLogger(logger)}
	sb, native := bus.(spiBus)
	if native {
		opts = append(opts, st25r.WithPin(st25r.PinCS, sb.CS()))
		if irq := sb.IRQ(); irq != nil {
			opts = append(opts, st25r.WithPin(st25r.PinIRQ, irq))
		}
	}
	platform, err := st25r.NewPlatform(bus, opts...)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	cleanup := func() {
		cancelWatch()
		<-watchDone
		if err := platform.Close(); err != nil {
			logger.Warn("failed to close platform", "error", err)
		}
	}

	id, err := st25r.ReadIdentity(platform)
	if err != nil {
		close(watchDone)
		cleanup()
		return nil, nil, err
	}
	logger.Info("reader found", "identity", id.String(), "transport", string(bus.Type()))
	if !id.IsST25R3911() {
		logger.Warn("unexpected IC type, continuing anyway", "type", id.Type)
	}

	if engineFactory == nil {
		close(watchDone)
		cleanup()
		return nil, nil, errNoEngine
	}
	engine, err := engineFactory(platform)
	if err != nil {
		close(watchDone)
		cleanup()
		return nil, nil, fmt.Errorf("%w: %w", st25r.ErrEngineInit, err)
	}

	if isr, ok := engine.(isrEngine); ok {
		platform.IrqSetCallback(isr.Isr)
	}
	if err := platform.IrqInitialize(); err != nil {
		close(watchDone)
		cleanup()
		return nil, nil, err
	}

	if native && sb.IRQ() != nil {
		go func() {
			defer close(watchDone)
			if err := sb.WatchIRQ(watchCtx, platform.Edge); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("interrupt watcher stopped", "error", err)
			}
		}()
	} else {
		close(watchDone)
	}
	return engine, cleanup, nil
}
