// Package deploy implements the deploy commands, one per branch family.
package deploy

import (
	"fmt"

	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/utils"
	"github.com/hpi-schul-cloud/sc-app-deploy/deploy"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/spf13/cobra"
)

// runFlags are shared by every deploy subcommand.
type runFlags struct {
	target          string
	team            int
	ticket          string
	imageVersion    string
	dryRun          bool
	skipUnavailable bool
}

func (f *runFlags) register(cmd *cobra.Command, qualifier domain.QualifierKind) {
	cmd.Flags().StringVar(&f.target, "target", domain.TargetTeam.String(), "Destination host: team or test")
	cmd.Flags().IntVarP(&f.team, "team", "t", 0, "Number of the team host, e.g. 6 for hotfix6")
	switch qualifier {
	case domain.QualifierVersion:
		cmd.Flags().StringVarP(&f.imageVersion, "image-version", "v", "", "Release version of the images, e.g. 27.3.0")
	default:
		cmd.Flags().StringVarP(&f.ticket, "ticket", "j", "", "Ticket ID of the branch, e.g. SC-1234")
	}
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Resolve and check tags without deploying")
	cmd.Flags().BoolVar(&f.skipUnavailable, "skip-unavailable", false, "Skip images whose registry check fails")
}

func (f *runFlags) qualifier() string {
	if f.imageVersion != "" {
		return f.imageVersion
	}
	return f.ticket
}

func (f *runFlags) request(branch domain.Branch, qualifier string) (deploy.Request, error) {
	target, err := domain.ParseDeployTarget(f.target)
	if err != nil {
		return deploy.Request{}, err
	}
	return deploy.Request{
		Branch:          branch,
		Qualifier:       qualifier,
		Target:          target,
		TeamNumber:      f.team,
		DryRun:          f.dryRun,
		SkipUnavailable: f.skipUnavailable,
	}, nil
}

func NewCmdDeploy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy branch images to a team or test host",
		Long: `Deploy the images built for a branch to a Docker Swarm host.

The image tag is derived from the branch family and its qualifier:
  develop                     -> develop_latest
  feature --ticket sc-1234    -> feature_SC-1234_latest
  hotfix --ticket sc-99       -> hotfix_SC-99_latest
  release --image-version V27 -> release_v27_latest
  master --image-version 27.3 -> master_27.3_latest

Every application of the catalog whose tag exists in the registry is updated.
The command fails if no application could be deployed.`,
	}

	cmd.AddCommand(newCmdDeployBranch(domain.BranchDevelop,
		"Deploy develop images",
		"Deploy develop_latest images. This is the only branch allowed on the test host."))
	cmd.AddCommand(newCmdDeployBranch(domain.BranchFeature,
		"Deploy feature branch images",
		"Deploy feature_<TICKET>_latest images to a team host."))
	cmd.AddCommand(newCmdDeployBranch(domain.BranchHotfix,
		"Deploy hotfix branch images",
		"Deploy hotfix_<TICKET>_latest images to a team host."))
	cmd.AddCommand(newCmdDeployBranch(domain.BranchRelease,
		"Deploy release images",
		"Deploy release_<version>_latest images to a team host."))
	cmd.AddCommand(newCmdDeployBranch(domain.BranchMaster,
		"Deploy master images",
		"Deploy master_<version>_latest images to a team host."))
	cmd.AddCommand(NewCmdDeployAuto())

	return cmd
}

func newCmdDeployBranch(branch domain.Branch, short, long string) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   branch.String(),
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(branch, flags.qualifier())
			if err != nil {
				return utils.HandleCommandError(cmd, "deploy", err, "branch", branch)
			}
			return runDeploy(cmd, req)
		},
	}

	flags.register(cmd, branch.QualifierKind())
	return cmd
}

// runDeploy runs the orchestrator and prints the run summary.
func runDeploy(cmd *cobra.Command, req deploy.Request) error {
	orch := app.GetOrchestrator()
	if orch == nil {
		return utils.HandleCommandError(cmd, "deploy", fmt.Errorf("application not initialized"))
	}

	run, err := orch.Run(cmd.Context(), req)
	if run != nil {
		summary, printErr := output.PrintRunDetails(run)
		if printErr != nil {
			return fmt.Errorf("failed to format run summary: %w", printErr)
		}
		if printErr := output.FprintPlain(cmd, "%s", summary); printErr != nil {
			return fmt.Errorf("failed to print run summary: %w", printErr)
		}
	}

	if err != nil {
		return utils.HandleCommandError(cmd, "deploy", err,
			"branch", req.Branch,
			"qualifier", req.Qualifier,
			"target", req.Target,
			"team", req.TeamNumber)
	}

	if req.DryRun {
		return output.FprintSuccess(cmd, "Dry run complete: %d of %d applications would be deployed.",
			run.Deployed(), len(run.Outcomes))
	}
	if failed := run.Count(domain.OutcomeFailed); failed > 0 {
		_ = output.FprintWarning(cmd, "%d applications failed to deploy.", failed)
	}
	return output.FprintSuccess(cmd, "Deployed %d of %d applications to %s.",
		run.Deployed(), len(run.Outcomes), run.Host.FQDN())
}
