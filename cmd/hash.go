package main

import (
	"fmt"
	"sigscan/internal/config"
	"sigscan/internal/scan"
	"sigscan/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// hashCommand prints digests in the format blocklists are built from.
func hashCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash FILE...",
		Short: "Prints the digest of each file, for building blocklists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			engine, err := scan.NewEngine(newNativeFS(), cfg)
			if err != nil {
				return err
			}

			var failed int
			out := cmd.OutOrStdout()
			for _, path := range args {
				sum, err := engine.Digest(ctx, path)
				if err != nil {
					failed++
					logger.Error(ctx, "could not digest file", zap.String("path", path), zap.Error(err))

					continue
				}
				_, _ = fmt.Fprintf(out, "%s  %s\n", sum, path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be digested", failed, len(args))
			}

			return nil
		},
	}

	return cmd
}
