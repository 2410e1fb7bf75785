// Package history implements the commands that inspect recorded deployment runs.
package history

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/utils"
	"github.com/hpi-schul-cloud/sc-app-deploy/repository"
	"github.com/spf13/cobra"
)

const defaultListLimit = 20

var errHistoryDisabled = errors.New("deployment history is disabled (SCDEPLOY_HISTORY_ENABLED=false)")

func NewCmdHistory() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past deployment runs",
		Long:  `List recorded deployment runs and show the outcome of every application in a run.`,
	}

	cmd.AddCommand(NewCmdHistoryList())
	cmd.AddCommand(NewCmdHistoryShow())
	return cmd
}

func NewCmdHistoryList() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent deployment runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := runRepository()
			if err != nil {
				return utils.HandleCommandError(cmd, "list runs", err)
			}

			runs, err := repo.List(limit)
			if err != nil {
				return utils.HandleCommandError(cmd, "list runs", err, "limit", limit)
			}

			table, err := output.PrintRunList(runs)
			if err != nil {
				return fmt.Errorf("failed to format runs: %w", err)
			}
			return output.FprintPlain(cmd, "%s", table)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum number of runs to show, 0 for all")
	return cmd
}

func NewCmdHistoryShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show details of a deployment run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return utils.HandleCommandError(cmd, "show run", fmt.Errorf("invalid run ID %q: %w", args[0], err))
			}

			repo, err := runRepository()
			if err != nil {
				return utils.HandleCommandError(cmd, "show run", err)
			}

			run, err := repo.FindByID(id)
			if err != nil {
				return utils.HandleCommandError(cmd, "show run", err, "run_id", id)
			}

			details, err := output.PrintRunDetails(run)
			if err != nil {
				return fmt.Errorf("failed to format run: %w", err)
			}
			return output.FprintPlain(cmd, "%s", details)
		},
	}
}

func runRepository() (repository.RunRepository, error) {
	repo := app.GetRunRepository()
	if repo == nil {
		return nil, errHistoryDisabled
	}
	return repo, nil
}
