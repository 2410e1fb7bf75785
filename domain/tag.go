package domain

import (
	"fmt"
	"strings"
)

// Branch is a git branch prefix that images are built from.
type Branch string

const (
	BranchFeature Branch = "feature"
	BranchDevelop Branch = "develop"
	BranchRelease Branch = "release"
	BranchMaster  Branch = "master"
	BranchHotfix  Branch = "hotfix"
)

// Branches lists every supported branch prefix.
func Branches() []Branch {
	return []Branch{BranchFeature, BranchDevelop, BranchRelease, BranchMaster, BranchHotfix}
}

func (b Branch) String() string {
	return string(b)
}

// ParseBranch parses a branch prefix; the comparison is case-insensitive.
func ParseBranch(s string) (Branch, error) {
	b := Branch(strings.ToLower(s))
	for _, known := range Branches() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBranch, s)
}

// RequiresQualifier reports whether tags of this branch need a ticket id or version.
func (b Branch) RequiresQualifier() bool {
	return b != BranchDevelop
}

// QualifierKind returns the kind of qualifier images of this branch are tagged with.
func (b Branch) QualifierKind() QualifierKind {
	switch b {
	case BranchRelease, BranchMaster:
		return QualifierVersion
	default:
		return QualifierTicket
	}
}

// QualifierKind decides how a qualifier is normalized.
type QualifierKind int

const (
	// QualifierTicket is a ticket id, always upper case ("SC-1234").
	QualifierTicket QualifierKind = iota
	// QualifierVersion is a release version, always lower case ("v27.3.0").
	QualifierVersion
)

func (k QualifierKind) String() string {
	switch k {
	case QualifierVersion:
		return "version"
	default:
		return "ticket"
	}
}

// DeployTarget names the kind of destination host.
type DeployTarget string

const (
	// TargetTest is the shared test host, develop only.
	TargetTest DeployTarget = "test"
	// TargetTeam is a numbered team host.
	TargetTeam DeployTarget = "team"
)

func (t DeployTarget) String() string {
	return string(t)
}

// ParseDeployTarget parses "test" or "team".
func ParseDeployTarget(s string) (DeployTarget, error) {
	switch DeployTarget(strings.ToLower(s)) {
	case TargetTest:
		return TargetTest, nil
	case TargetTeam:
		return TargetTeam, nil
	default:
		return "", fmt.Errorf("%w: %q (must be test or team)", ErrUnsupportedTarget, s)
	}
}

const latestSuffix = "latest"

// ResolveTag computes the image tag to deploy:
//
//	<branch>[_<qualifier>]_latest
//
// The shared test host only runs develop and always gets develop_latest,
// so a qualifier is ignored for TargetTest.
func ResolveTag(branch Branch, qualifier string, kind QualifierKind, target DeployTarget) (string, error) {
	b, err := ParseBranch(string(branch))
	if err != nil {
		return "", err
	}

	if target == TargetTest {
		if b != BranchDevelop {
			return "", fmt.Errorf("%w: only %q can be deployed to the test host, got %q",
				ErrUnsupportedTarget, BranchDevelop, b)
		}
		return joinTag(b, ""), nil
	}

	qualifier = strings.TrimSpace(qualifier)
	if qualifier == "" {
		if b.RequiresQualifier() {
			return "", fmt.Errorf("%w: branch %q needs a %s qualifier", ErrMissingQualifier, b, b.QualifierKind())
		}
		return joinTag(b, ""), nil
	}

	switch kind {
	case QualifierVersion:
		qualifier = strings.ToLower(qualifier)
	default:
		qualifier = strings.ToUpper(qualifier)
	}
	return joinTag(b, qualifier), nil
}

func joinTag(b Branch, qualifier string) string {
	if qualifier == "" {
		return fmt.Sprintf("%s_%s", b, latestSuffix)
	}
	return fmt.Sprintf("%s_%s_%s", b, qualifier, latestSuffix)
}
