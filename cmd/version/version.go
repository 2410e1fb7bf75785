// Package version provides the version command.
package version

import (
	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/spf13/cobra"
)

// NewCmdVersion creates the version command
func NewCmdVersion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for sc-app-deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.FprintPlain(cmd, "%s", app.Version)
		},
	}

	return cmd
}
