// Package git derives the deployment branch and qualifier from a local checkout.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

var ErrDetachedHead = errors.New("HEAD is not on a branch")

// ticketPattern matches a leading ticket id such as "SC-1234" in "SC-1234-fix-login".
var ticketPattern = regexp.MustCompile(`^[A-Za-z]+-[0-9]+`)

// BranchInfo describes the checked out branch.
type BranchInfo struct {
	// Name is the full branch name, e.g. "feature/SC-1234-fix-login".
	Name      string
	Branch    domain.Branch
	Qualifier string
	Commit    string
}

// DetectBranch opens the repository in workingDir and parses its current branch.
func DetectBranch(workingDir string) (*BranchInfo, error) {
	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_open",
			"working_dir", workingDir,
			"error", err)
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_head",
			"working_dir", workingDir,
			"error", err)
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	if !ref.Name().IsBranch() {
		return nil, fmt.Errorf("%w: %s", ErrDetachedHead, ref.Hash())
	}

	info, err := ParseBranchName(ref.Name().Short())
	if err != nil {
		return nil, err
	}
	info.Commit = ref.Hash().String()

	slog.Debug("Detected branch",
		"working_dir", workingDir,
		"branch_name", info.Name,
		"branch", info.Branch,
		"qualifier", info.Qualifier,
		"commit", info.Commit)
	return info, nil
}

// ParseBranchName splits a git branch name into branch prefix and qualifier:
//
//	develop                   -> develop
//	feature/SC-1234-fix-login -> feature, SC-1234
//	hotfix/SC-99              -> hotfix, SC-99
//	release/27.3.0            -> release, 27.3.0
//
// Feature and hotfix branches without a ticket id use the whole suffix.
func ParseBranchName(name string) (*BranchInfo, error) {
	name = strings.TrimPrefix(name, plumbing.NewBranchReferenceName("").String())
	prefix, rest, _ := strings.Cut(name, "/")

	branch, err := domain.ParseBranch(prefix)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", name, err)
	}

	info := &BranchInfo{Name: name, Branch: branch}
	if branch.QualifierKind() == domain.QualifierTicket {
		if ticket := ticketPattern.FindString(rest); ticket != "" {
			rest = ticket
		}
	}
	info.Qualifier = rest
	return info, nil
}
