// Package root implements the command line interface for sc-app-deploy.
package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	cmdconfig "github.com/hpi-schul-cloud/sc-app-deploy/cmd/config"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/deploy"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/history"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/token"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/version"
	"github.com/hpi-schul-cloud/sc-app-deploy/config"
	"github.com/hpi-schul-cloud/sc-app-deploy/logging"
	"github.com/spf13/cobra"
)

// initLevel says how much of the application a command needs.
type initLevel int

const (
	initFull initLevel = iota
	initConfig
	initNone
)

// Commands not listed here get a full initialization.
var commandInitLevels = map[string]initLevel{
	"version":    initNone,
	"help":       initNone,
	"completion": initNone,
	"token":      initConfig,
	"config":     initConfig,
}

var logFile *os.File

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewCmdRoot(config.GetDefaultDataDir()).ExecuteContext(ctx)

	stop()
	app.Shutdown()
	closeLogFile()
	if err != nil {
		os.Exit(1)
	}
}

func NewCmdRoot(defaultDataDir string) *cobra.Command {
	var overrides config.Overrides

	cmd := &cobra.Command{
		Use:   "sc-app-deploy",
		Short: "Deploy Schul-Cloud application images to Docker Swarm hosts",
		Long: `sc-app-deploy resolves the image tag of a branch, checks which applications
have that tag in the registry and updates their services on a team or test host
over ssh. Every run is recorded in a local history.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := commandInitLevel(cmd)
			if level == initNone {
				output.InitColors(output.NoColor.IsSet())
				return nil
			}

			cfg, err := config.NewConfigForCLI(overrides)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// CLI flags override config
			colorDisabled := !cfg.ColorEnabled
			if output.NoColor.IsSet() {
				colorDisabled = true
			}
			output.InitColors(colorDisabled)

			if logging.LogLevel.IsSet() {
				cfg.LogLevel = logging.LogLevel.String()
			}
			if err := initLogging(cfg.LogLevel, cfg.LogDir, cmd.CommandPath()); err != nil {
				return err
			}

			if level == initConfig {
				app.SetConfig(cfg)
				return nil
			}

			if err := app.InitializeWithConfig(cfg); err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().
		StringVarP(&overrides.DataDir, "data-dir", "d", defaultDataDir, "Data directory for configuration and deployment history")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")
	cmd.PersistentFlags().StringVar(&overrides.LogDir, "log-dir", "", "Also write a debug log file per run to this directory")
	cmd.PersistentFlags().StringVar(&overrides.CatalogFile, "catalog", "", "YAML file listing the applications to deploy")

	cmd.AddCommand(deploy.NewCmdDeploy())
	cmd.AddCommand(history.NewCmdHistory())
	cmd.AddCommand(token.NewCmdToken())
	cmd.AddCommand(cmdconfig.NewCmdConfig())
	cmd.AddCommand(version.NewCmdVersion())
	return cmd
}

// commandInitLevel looks up the top-level command below root.
func commandInitLevel(cmd *cobra.Command) initLevel {
	top := cmd
	for top.HasParent() && top.Parent().HasParent() {
		top = top.Parent()
	}
	if !top.HasParent() {
		return initNone
	}
	if level, ok := commandInitLevels[top.Name()]; ok {
		return level
	}
	return initFull
}

func initLogging(level, logDir, commandPath string) error {
	closeLogFile()
	if logDir == "" {
		logging.InitLogging(level, nil)
		return nil
	}

	f, err := logging.OpenLogFile(logDir, commandPath)
	if err != nil {
		return err
	}
	logFile = f
	logging.InitLogging(level, f)
	return nil
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
