//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"errors"
	"fmt"

	"github.com/himanishpuri/BatLog/internal/config"
	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("invalid arguments")

// app carries the loaded settings and the lazily opened service shared by
// every command.
type app struct {
	loader     *config.Loader
	configFile string
	settings   *config.Settings
	log        *logger.Logger
	svc        batlog.Service
}

func newApp(log *logger.Logger) *app {
	return &app{loader: config.NewLoader(), log: log}
}

// service opens the database on first use so commands that only touch audio
// files never create one.
func (a *app) service() (batlog.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	s := a.settings
	provider, err := s.GPSProvider()
	if err != nil {
		return nil, err
	}
	svc, err := batlog.NewService(
		batlog.WithDBPath(s.DBPath),
		batlog.WithLogger(a.log.Module("batlog")),
		batlog.WithWorkers(s.Workers),
		batlog.WithLegacyPositionCheck(s.LegacyPositionCheck),
		batlog.WithMatcherTTL(s.MatcherTTL),
		batlog.WithMinPeakHz(s.MinPeakHz),
		batlog.WithGPSMaxGap(s.GPS.MaxGap),
		batlog.WithGPS(provider),
	)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.DBPath, err)
	}
	a.svc = svc
	return svc, nil
}

func (a *app) close() {
	if a.svc == nil {
		return
	}
	if err := a.svc.Close(); err != nil {
		a.log.Warnf("Closing service: %v", err)
	}
	a.svc = nil
}

func rootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "batlog",
		Short:         "Catalogue bat passes from labelled recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to batlog.yaml")
	flags.String("db-path", "batlog.sqlite3", "Path to SQLite database (env: BATLOG_DB_PATH)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Int("workers", 0, "Files summarized in parallel (0 = one per CPU)")
	flags.Bool("legacy-position-check", false, "Ignore tags found at the very start of a comment")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := a.loader.BindFlags(cmd.Flags()); err != nil {
			return err
		}
		settings, err := a.loader.Load(a.configFile)
		if err != nil {
			return err
		}
		a.settings = settings
		if level, ok := logger.ParseLevel(settings.LogLevel); ok {
			a.log.SetLevel(level)
		}
		if used := a.loader.ConfigFile(); used != "" {
			a.log.Debugf("Using config %s", used)
		}
		return nil
	}

	root.AddCommand(
		speciesCommand(a),
		referenceCommand(a),
		matchCommand(a),
		summarizeCommand(a),
		sessionCommand(a),
		recordingCommand(a),
		spectrogramCommand(),
		clipCommand(),
	)
	return root
}
