// Command macrokey-host runs one activation of the macro device on a Linux
// desktop: keystrokes go through a virtual uhid keyboard and answers come
// back over a serial line, typically one end of a pty pair or a USB-serial
// adapter looped to the device glob.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macrokey/core"
	"macrokey/host/button"
	"macrokey/host/config"
	"macrokey/host/hid"
	"macrokey/host/serial"
	"macrokey/protocol"
	"macrokey/storage"
	"macrokey/workflow"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	dryRun     = flag.Bool("dry-run", false, "Simulate the desktop: log keystrokes, answer queries from dry_run.responses")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	core.SetDebugWriter(func(msg string) { logger.Debug(msg) })
	core.SetDebugEnabled(cfg.LogLevel() <= slog.LevelDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timings := cfg.CoreTimings()

	var (
		inj    core.Injector
		clock  core.Clock
		stream protocol.ByteStream
		port   *protocol.PortStream
		loop   *protocol.Loopback
	)

	if *dryRun {
		loop = protocol.NewLoopback(cfg.DryRun.Responses...)
		inj = loop.Recorder
		clock = core.NewSimClock()
		stream = loop.Stream
	} else {
		clock = core.NewSystemClock()

		kb, closeKeyboard, err := openKeyboard(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeKeyboard()
		inj = kb

		if port = openStream(cfg, logger); port != nil {
			defer port.Close()
			stream = port
		}
	}

	kbd := core.NewKeyboard(inj, clock, timings)

	// Let the keyboard enumerate before the first keystroke
	kbd.Settle(timings.StartupSettle)

	if stream != nil {
		if n := protocol.DrainStream(stream, clock, timings); n > 0 {
			logger.Info("drained stale serial bytes", "count", n)
		}
	}

	querier := protocol.NewQuerier(kbd, stream)
	querier.DeviceGlob = cfg.Query.DeviceGlob

	input, err := buttonInput(cfg)
	if err != nil {
		return err
	}

	machine := workflow.NewMachine(workflow.Env{
		Keyboard:  kbd,
		Querier:   querier,
		Store:     storage.NewFileStore(cfg.Store.Dir),
		Button:    core.NewSelectButton(input, cfg.ActiveLevel()),
		Indicator: &logIndicator{logger: logger},
	})

	id := machine.Activate()
	logger.Info(fmt.Sprintf("Workflow %d completed", id), "name", id.String())

	if port != nil && port.Dropped() > 0 {
		logger.Warn("serial receive buffer overflowed", "dropped", port.Dropped())
	}

	if loop != nil {
		for _, e := range loop.Recorder.Events {
			logger.Info("dry-run", "event", e.String())
		}
		for _, p := range loop.Prompts() {
			logger.Info("dry-run", "prompt", p)
		}
	}

	if err := kbd.Err(); err != nil {
		return fmt.Errorf("keystroke injection: %w", err)
	}
	return nil
}

func openKeyboard(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Injector, func(), error) {
	if cfg.Keyboard.Backend == config.BackendLog {
		return &logInjector{logger: logger}, func() {}, nil
	}

	dev, err := hid.Open(ctx, hid.Config{
		Name:      cfg.Keyboard.Name,
		VendorID:  cfg.Keyboard.VendorID,
		ProductID: cfg.Keyboard.ProductID,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("virtual keyboard registered", "name", cfg.Keyboard.Name)

	return hid.NewKeyboard(dev), func() {
		if err := dev.Close(); err != nil {
			logger.Warn("close virtual keyboard", "err", err)
		}
	}, nil
}

// openStream connects the data channel. Without one the device still types;
// every query then times out to the no-response sentinel.
func openStream(cfg *config.Config, logger *slog.Logger) *protocol.PortStream {
	if cfg.Serial.Device == "" {
		logger.Warn("no serial device configured, queries will time out")
		return nil
	}

	port, err := serial.Open(serialConfig(cfg))
	if err != nil {
		logger.Warn("serial unavailable, queries will time out", "device", cfg.Serial.Device, "err", err)
		return nil
	}
	// Answers left over from an earlier run must not be taken for ours
	if err := port.Flush(); err != nil {
		logger.Warn("serial flush failed", "err", err)
	}
	logger.Info("serial connected", "device", cfg.Serial.Device)

	return protocol.NewPortStream(port, 1024)
}

// serialConfig applies the configured overrides to the port defaults
func serialConfig(cfg *config.Config) serial.Config {
	sc := serial.DefaultConfig(cfg.Serial.Device)
	if cfg.Serial.Baud > 0 {
		sc.Baud = cfg.Serial.Baud
	}
	if cfg.Serial.ReadTimeoutMS > 0 {
		sc.ReadTimeout = time.Duration(cfg.Serial.ReadTimeoutMS) * time.Millisecond
	}
	return sc
}

func buttonInput(cfg *config.Config) (core.DigitalInput, error) {
	switch cfg.Button.Mode {
	case config.ButtonPressed:
		return button.Fixed(true, cfg.ActiveLevel()), nil
	case config.ButtonReleased:
		return button.Fixed(false, cfg.ActiveLevel()), nil
	case config.ButtonEvdev:
		return button.NewEvdevInput(cfg.Button.Path, cfg.Button.Key, cfg.ActiveLevel())
	default:
		return button.NewTTYInput(cfg.Button.Path, cfg.ButtonWindow(), cfg.ActiveLevel()), nil
	}
}
