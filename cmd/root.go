// Package cmd provides the CLI commands for the immigration assistant.
//
// Commands:
//   - serve: HTTP API server backing the web frontend
//   - ingest: index a document into the knowledge base
//   - version: show version information
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "immigration-assistant",
	Short: "RAG-backed immigration Q&A service",
	Long: `Immigration AI Assistant answers US immigration questions grounded in
official USCIS and Department of State guidance, retrieved from a
pgvector knowledge base.`,
	SilenceUsage: true,
}

// Execute is the main entry point for the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger initializes the structured logger shared by all commands.
// DEBUG in the environment lowers the level to debug.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)
	return logger
}
