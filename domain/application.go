// Package domain provides the core types of a deployment run: applications,
// hosts, tags, the application catalog and run outcomes.
package domain

import (
	"fmt"
	"strings"
)

// Application is one deployable unit with its resolved image tag.
type Application struct {
	// ShortName is used to build the swarm service name, e.g. "server".
	ShortName string
	// ImageRepository is the namespaced repository, e.g. "schulcloud/schulcloud-server".
	ImageRepository string
	// ImageTag is the resolved tag, e.g. "develop_latest".
	ImageTag string
}

// NewApplication validates and builds an Application.
func NewApplication(shortName, imageRepository, imageTag string) (Application, error) {
	if shortName == "" {
		return Application{}, fmt.Errorf("%w: application short name cannot be empty", ErrInvalidArgument)
	}
	if err := validateRepository(imageRepository); err != nil {
		return Application{}, err
	}
	if imageTag == "" {
		return Application{}, fmt.Errorf("%w: image tag cannot be empty", ErrInvalidArgument)
	}
	return Application{
		ShortName:       shortName,
		ImageRepository: imageRepository,
		ImageTag:        imageTag,
	}, nil
}

// Image returns the full image reference, e.g. "schulcloud/schulcloud-server:develop_latest".
func (a Application) Image() string {
	return fmt.Sprintf("%s:%s", a.ImageRepository, a.ImageTag)
}

// Name returns the repository name without its namespace, e.g. "schulcloud-server".
func (a Application) Name() string {
	_, name, _ := strings.Cut(a.ImageRepository, "/")
	return name
}

// ServiceName returns the swarm service name on the given host: <hostname>_<short name>.
func (a Application) ServiceName(host Host) string {
	return fmt.Sprintf("%s_%s", host.Hostname, a.ShortName)
}

func validateRepository(repository string) error {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: image repository %q must be <namespace>/<name>", ErrInvalidArgument, repository)
	}
	return nil
}

// Host is a deployment destination.
type Host struct {
	Hostname     string
	DomainSuffix string
}

// FQDN returns the fully qualified domain name, e.g. "hotfix6.schul-cloud.dev".
func (h Host) FQDN() string {
	return fmt.Sprintf("%s.%s", h.Hostname, h.DomainSuffix)
}

// HostNaming holds the DNS parts used to derive a Host from a deploy target.
type HostNaming struct {
	TeamHostPrefix string
	TeamDomain     string
	TestHostname   string
	TestDomain     string
}

// DefaultHostNaming returns the Schul-Cloud host naming scheme.
func DefaultHostNaming() HostNaming {
	return HostNaming{
		TeamHostPrefix: "hotfix",
		TeamDomain:     "schul-cloud.dev",
		TestHostname:   "test",
		TestDomain:     "schul-cloud.org",
	}
}

// ResolveHost derives the destination host for a deploy target.
// Team hosts are numbered: team 6 deploys to hotfix6.<team domain>.
func (n HostNaming) ResolveHost(target DeployTarget, teamNumber int) (Host, error) {
	switch target {
	case TargetTest:
		return Host{Hostname: n.TestHostname, DomainSuffix: n.TestDomain}, nil
	case TargetTeam:
		if teamNumber <= 0 {
			return Host{}, fmt.Errorf("%w: team number must be positive, got %d", ErrInvalidArgument, teamNumber)
		}
		return Host{
			Hostname:     fmt.Sprintf("%s%d", n.TeamHostPrefix, teamNumber),
			DomainSuffix: n.TeamDomain,
		}, nil
	default:
		return Host{}, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
}
