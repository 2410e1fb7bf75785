package deploy

import (
	"log/slog"

	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/utils"
	"github.com/hpi-schul-cloud/sc-app-deploy/git"
	"github.com/spf13/cobra"
)

func NewCmdDeployAuto() *cobra.Command {
	flags := &runFlags{}
	var dir string

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Deploy the images of the checked out branch",
		Long: `Detect branch family and qualifier from the current branch of a git
checkout and deploy its images.

  feature/SC-1234-fix-login -> feature_SC-1234_latest
  release/27.3.0            -> release_27.3.0_latest
  develop                   -> develop_latest

--ticket or --image-version override the detected qualifier.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := git.DetectBranch(dir)
			if err != nil {
				return utils.HandleCommandError(cmd, "detect branch", err, "dir", dir)
			}

			qualifier := info.Qualifier
			if q := flags.qualifier(); q != "" {
				qualifier = q
			}
			slog.Info("Detected branch", "branch_name", info.Name, "branch", info.Branch, "qualifier", qualifier)
			if err := output.FprintPlain(cmd, "Branch %s (commit %.8s)", info.Name, info.Commit); err != nil {
				return err
			}

			req, err := flags.request(info.Branch, qualifier)
			if err != nil {
				return utils.HandleCommandError(cmd, "deploy", err, "branch", info.Branch)
			}
			return runDeploy(cmd, req)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory inside the git checkout")
	cmd.Flags().StringVarP(&flags.ticket, "ticket", "j", "", "Override the detected ticket ID")
	cmd.Flags().StringVarP(&flags.imageVersion, "image-version", "v", "", "Override the detected release version")
	cmd.Flags().StringVar(&flags.target, "target", "team", "Destination host: team or test")
	cmd.Flags().IntVarP(&flags.team, "team", "t", 0, "Number of the team host, e.g. 6 for hotfix6")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Resolve and check tags without deploying")
	cmd.Flags().BoolVar(&flags.skipUnavailable, "skip-unavailable", false, "Skip images whose registry check fails")
	return cmd
}
