// Package cli defines the nettf command tree. Commands translate flags and
// arguments into calls on the client, server, discovery, watcher and daemon
// packages; this is the only layer that exits the process.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/config"
	"github.com/nettf/nettf/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "nettf",
	Short:         "point-to-point file and directory transfer over TCP",
	Long:          `nettf sends files and directory trees between two machines over a single TCP connection, sizing its chunks to the measured link speed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree with the loaded configuration and decides
// the process exit code.
func Execute(c *config.Config) {
	cfg = c
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
