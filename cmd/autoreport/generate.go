package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/autoreport/internal/config"
	"github.com/nao1215/autoreport/internal/log"
	"github.com/nao1215/autoreport/internal/pipeline"
)

// runRootCmd generates the report for the given result files.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg.Inputs = args

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generate(ctx, cfg, logger, cmd.OutOrStdout())
}

// generate writes the report for cfg.Inputs and prints where it went.
func generate(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	if cfg.ConfigFilePath != "" {
		logger.Debug("using configuration file", "config", cfg.ConfigFilePath)
	}

	g, err := pipeline.NewGenerator(cfg, pipeline.WithGeneratorLogger(logger))
	if err != nil {
		return err
	}

	if _, err := g.Run(ctx, cfg.Inputs); err != nil {
		return err
	}

	fmt.Fprintf(out, "Report written to %s\n", cfg.OutputPath)
	return nil
}

// setupLogger creates the logger selected by the configuration.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}
