// Package main provides the CLI entrypoint for the signature scanner.
// It wires subcommands (scan, hash, serve, jwt), loads configuration, and initializes logging.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sigscan/internal/config"
	"sigscan/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// exit codes
const (
	exitFailure  = 1
	exitDetected = 3
)

// errDetected is returned by commands that found blocklisted files and were
// asked to fail on detection.
var errDetected = errors.New("malware detected")

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:           "sigscan",
		Short:         "Scans directory trees for files whose digest is on a blocklist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	if err := logger.SetupWithLevel(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("could not setup logger: ", err)
	}

	ctx := context.Background()

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(ctx, fmt.Sprintf(format, args...))
	}))

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		scanCommand(cfg),
		hashCommand(cfg),
		serveCommand(cfg),
		JWTCommand(cfg),
	)

	err = rootCmd.ExecuteContext(ctx)
	logger.Sync()
	switch {
	case errors.Is(err, errDetected):
		os.Exit(exitDetected) //nolint: gocritic
	case err != nil:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailure)
	}
}
