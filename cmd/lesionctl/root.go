package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesionctl",
		Short: "Local skin lesion analysis against a model server",
		Long: `lesionctl runs the lesion analysis pipeline on a local image file.

Configuration is read from the environment and an optional .env file,
the same way the Telegram bot reads it.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newRulesCmd())

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
