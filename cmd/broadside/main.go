// Package main provides the broadside maintenance and demo CLI.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/mverberg/broadside/internal/platform/cmd"
	"github.com/mverberg/broadside/internal/platform/config"
	"github.com/mverberg/broadside/internal/tools/broadside"
)

func main() {
	cfg, err := broadside.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBroadside, func(ctx context.Context) error {
		return broadside.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
