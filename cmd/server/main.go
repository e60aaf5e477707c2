//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/himanishpuri/BatLog/internal/config"
	"github.com/himanishpuri/BatLog/internal/metrics"
	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	log := logger.GetLogger()

	flags := pflag.NewFlagSet("batlog-server", pflag.ExitOnError)
	configFile := flags.String("config", "", "Path to batlog.yaml")
	flags.Int("server-port", 8080, "HTTP server port")
	flags.String("db-path", "batlog.sqlite3", "Path to SQLite database")
	flags.StringSlice("server-origins", []string{"*"}, "Allowed CORS origins (use * for all)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	tempDir := flags.String("temp", os.TempDir(), "Scratch directory for uploaded files")
	_ = flags.Parse(os.Args[1:])

	loader := config.NewLoader()
	if err := loader.BindFlags(flags); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}
	settings, err := loader.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if level, ok := logger.ParseLevel(settings.LogLevel); ok {
		log.SetLevel(level)
	}

	m, err := metrics.New(nil)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	provider, err := settings.GPSProvider()
	if err != nil {
		log.Fatalf("Failed to load GPS track: %v", err)
	}

	service, err := batlog.NewService(
		batlog.WithDBPath(settings.DBPath),
		batlog.WithWorkers(settings.Workers),
		batlog.WithLegacyPositionCheck(settings.LegacyPositionCheck),
		batlog.WithMatcherTTL(settings.MatcherTTL),
		batlog.WithMinPeakHz(settings.MinPeakHz),
		batlog.WithGPSMaxGap(settings.GPS.MaxGap),
		batlog.WithGPS(provider),
		batlog.WithObserver(m),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           settings.Server.Port,
		DBPath:         settings.DBPath,
		TempDir:        *tempDir,
		AllowedOrigins: settings.Server.Origins,
	}, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}
