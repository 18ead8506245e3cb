package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"takesort/internal/config"
	"takesort/internal/logging"
	"takesort/internal/pipeline"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var (
		workers      int
		logLevel     string
		logFormat    string
		noProgress   bool
		skipExiftool bool
	)

	cmd := &cobra.Command{
		Use:   "run <input-dir> <output-dir>",
		Short: "Organize an extracted Takeout archive into the output directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, found, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Run.Workers = workers
			}
			if logLevel != "" {
				cfg.Logging.Level = strings.ToLower(strings.TrimSpace(logLevel))
			}
			if logFormat != "" {
				cfg.Logging.Format = strings.ToLower(strings.TrimSpace(logFormat))
			}
			if noProgress {
				cfg.Run.Progress = false
			}
			if skipExiftool {
				cfg.Exiftool.Disabled = true
			}
			// Flag overrides land after Load's validation pass.
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if found {
				logger.Debug("configuration loaded", logging.String("path", cfgPath))
			}

			input, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			output, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := pipeline.New(cfg, input, output, logger).Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker pool size (default: one per CPU)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&skipExiftool, "skip-exiftool", false, "Skip metadata application entirely")
	return cmd
}
