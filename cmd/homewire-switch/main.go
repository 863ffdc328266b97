// Command homewire-switch runs a multi-channel switch actuator node.
//
// The node answers configuration requests from its central, switches its
// channels on SET commands and remote button events, and reports channel
// changes. Lists are kept in a JSON image file or an SQLite database; the
// radio is an in-process loopback, a TCP gateway or an MQTT gateway.
//
// Usage:
//
//	homewire-switch [flags]
//
// Flags:
//
//	-config string      Configuration file path
//	-log-level string   Override logging.level
//	-interactive        Start the interactive console
//	-pair               Announce the device for pairing after start
//	-reset              Restore factory defaults before start
//
// Examples:
//
//	# Run with a config file and the console
//	homewire-switch -config /etc/homewire/switch.yaml -interactive
//
//	# Start over and pair with a new central
//	homewire-switch -config switch.yaml -reset -pair
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/homewire/homewire-go/cmd/homewire-switch/interactive"
	"github.com/homewire/homewire-go/internal/config"
	"github.com/homewire/homewire-go/internal/logging"
)

// version is set at build time.
var version = "dev"

type options struct {
	configFile  string
	logLevel    string
	interactive bool
	pair        bool
	reset       bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("homewire-switch", flag.ContinueOnError)
	fs.StringVar(&o.configFile, "config", "", "Configuration file path")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&o.interactive, "interactive", false, "Start the interactive console")
	fs.BoolVar(&o.pair, "pair", false, "Announce the device for pairing after start")
	fs.BoolVar(&o.reset, "reset", false, "Restore factory defaults before start")
	err := fs.Parse(args)
	return o, err
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "homewire-switch: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var console *interactive.Console
	logOut := logging.Output(cfg.Logging)
	if opts.interactive {
		if console, err = interactive.New(); err != nil {
			return err
		}
		// Logs go through the console so they do not garble the prompt.
		logOut = console.Stdout()
	}
	logger := logging.NewWithWriter(cfg.Logging, version, logOut)
	slog.SetDefault(logger)

	app, err := newApp(ctx, cfg, logger, openRadio)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("homewire switch starting",
		"id", cfg.Device.ID,
		"channels", cfg.Device.Channels,
		"storage", cfg.Storage.Backend,
		"transport", cfg.Transport.Backend,
		"session_id", app.sessionID)

	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()

	if opts.reset {
		var resetErr error
		if err := app.Do(func() {
			if resetErr = app.Device().Reset(); resetErr == nil {
				app.persist()
			}
		}); err != nil {
			return err
		}
		if resetErr != nil {
			return fmt.Errorf("reset: %w", resetErr)
		}
	}
	if opts.pair {
		if err := app.Do(func() { app.Device().StartPairing() }); err != nil {
			return err
		}
	}

	if console != nil {
		console.Attach(app)
		go console.Run(ctx, cancel)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return <-errc
	case err := <-errc:
		return err
	}
}
