// Package config implements the command that prints the effective configuration.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/utils"
	appconfig "github.com/hpi-schul-cloud/sc-app-deploy/config"
	"github.com/spf13/cobra"
)

func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(NewCmdConfigShow())
	return cmd
}

func NewCmdConfigShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after applying defaults, the .env file of the data
directory, environment variables and command line flags. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.GetConfig()
			if cfg == nil {
				return utils.HandleCommandError(cmd, "show config", errors.New("configuration not loaded"))
			}

			table, err := output.PrintTable([]string{"Setting", "Value"}, rows(cfg))
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			return output.FprintPlain(cmd, "%s", table)
		},
	}
}

func rows(cfg *appconfig.Config) [][]string {
	return [][]string{
		{"Data Dir", cfg.DataDir},
		{"Database", cfg.DatabasePath},
		{"History", strconv.FormatBool(cfg.HistoryEnabled)},
		{"Log Level", cfg.LogLevel},
		{"Log Dir", orNone(cfg.LogDir)},
		{"Catalog File", orNone(cfg.CatalogFile)},
		{"Namespace", orNone(cfg.Namespace)},
		{"Registry Backend", cfg.RegistryBackend},
		{"Registry URL", cfg.RegistryURL},
		{"Registry Timeout", cfg.RegistryTimeout.String()},
		{"Registry User", orNone(cfg.RegistryUsername)},
		{"Registry Token", output.MaskSecret(cfg.RegistryToken)},
		{"Encrypted Token", output.MaskSecret(cfg.RegistryTokenEncrypted)},
		{"Encryption Key", output.MaskSecret(cfg.EncryptionKey)},
		{"Key Passphrase", output.MaskSecret(cfg.KeyPassphrase)},
		{"Key File", cfg.KeyFile},
		{"Remote User", cfg.RemoteUser},
		{"SSH Command", cfg.SSHCommand},
		{"Remote Timeout", cfg.RemoteTimeout.String()},
		{"Team Hosts", fmt.Sprintf("%s<N>.%s", cfg.TeamHostPrefix, cfg.TeamDomain)},
		{"Test Host", fmt.Sprintf("%s.%s", cfg.TestHostname, cfg.TestDomain)},
		{"Skip Unavailable", strconv.FormatBool(cfg.SkipUnavailable)},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
