// Package utils provides utility functions for CLI commands.
package utils

import (
	"log/slog"

	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/spf13/cobra"
)

// HandleCommandError provides consistent error reporting for CLI commands. It
// returns err so RunE can hand it back to cobra, which makes the process exit
// non-zero.
func HandleCommandError(cmd *cobra.Command, operation string, err error, context ...any) error {
	slog.Error("Command failed", append([]any{"operation", operation, "error", err}, context...)...)
	_ = output.FprintError(cmd, "Error: %s failed: %v", operation, err)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return err
}
