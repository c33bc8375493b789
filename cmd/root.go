// Package cmd implements the pustaka command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "pustaka",
	Short: i18n.T("app.description"),
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	logger := initLogger()
	slog.SetDefault(logger)
	return rootCmd.Execute()
}

// initLogger builds the process logger. DEBUG in the environment enables
// debug level.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}
