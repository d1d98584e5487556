package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"sigscan/internal/config"
	"sigscan/internal/scan"
	"sigscan/pkg/logger"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve %s: %w", path, err)
	}

	return abs, nil
}

func scanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scans a folder once and prints one line per candidate file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			hashes, _ := cmd.Flags().GetString("hashes")
			sorted, _ := cmd.Flags().GetBool("sorted")
			failOnDetect, _ := cmd.Flags().GetBool("fail-on-detect")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			folder, err := absPath(folder)
			if err != nil {
				return err
			}
			if hashes, err = absPath(hashes); err != nil {
				return err
			}

			s, err := scan.NewFromConfig(newNativeFS(), cfg, nil)
			if err != nil {
				return fmt.Errorf("could not create scanner: %w", err)
			}

			res := <-scan.ScanFolder(ctx, s, folder, hashes)
			if res.Err != nil {
				return res.Err
			}

			lines := res.Lines
			if sorted {
				sort.Strings(lines)
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				_, _ = fmt.Fprintln(out, line)
			}

			logger.Info(ctx, "scan summary",
				zap.String("folder", folder),
				zap.Int("clean", res.Summary.Clean),
				zap.Int("flagged", res.Summary.Flagged),
				zap.Int("errors", res.Summary.Errors))

			if failOnDetect && res.Summary.Flagged > 0 {
				return errDetected
			}

			return nil
		},
	}

	cmd.Flags().String("folder", "", "Directory to scan")
	cmd.Flags().String("hashes", "", "Blocklist file (defaults to scanner.blocklistPath)")
	cmd.Flags().Bool("sorted", false, "Sort output lines")
	cmd.Flags().Bool("fail-on-detect", false, "Exit with status 3 when a file is flagged")
	_ = cmd.MarkFlagRequired("folder")

	return cmd
}
