//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/batlog/reference"
	"github.com/himanishpuri/BatLog/pkg/batlog/storage"
	"github.com/himanishpuri/BatLog/pkg/logger"
)

// Exit codes
const (
	exitError    = 1
	exitInvalid  = 2
	exitNotFound = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(logger.GetLogger())
	err := rootCommand(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return exitNotFound
	case errors.Is(err, storage.ErrInvalidSpecies),
		errors.Is(err, storage.ErrInvalidSession),
		errors.Is(err, reference.ErrInvalid),
		errors.Is(err, batlog.ErrSkippedFile),
		errors.Is(err, errUsage):
		return exitInvalid
	default:
		return exitError
	}
}
