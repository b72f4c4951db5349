// Command notifywatch follows a user's notification stream and prints every
// notification it receives. It can also send notifications and dump history
// through the REST gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/notifykit/pkg/config"
)

var version = "dev"

type flags struct {
	ConfigPath  string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := &flags{}

	app := &cli.Command{
		Name:    "notifywatch",
		Usage:   "Follow and manage real-time notifications",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML config file (environment variables override it)",
				Sources:     cli.EnvVars("NOTIFY_CONFIG"),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (json, text)",
				Destination: &f.LogFormat,
			},
		},
		Commands: []*cli.Command{
			watchCommand(f),
			historyCommand(f),
			sendCommand(f),
		},
		DefaultCommand: "watch",
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the YAML file when one is given and the environment
// otherwise; explicit log flags win over both.
func loadConfig(f *flags) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if f.ConfigPath != "" {
		cfg, err = config.LoadFile(f.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogFormat != "" {
		cfg.LogFormat = f.LogFormat
	}
	return cfg, nil
}
