package deploy

import (
	"context"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/hpi-schul-cloud/sc-app-deploy/registry"
)

// RegistryClient defines the contract for image registry lookups
type RegistryClient interface {
	Login(ctx context.Context) (registry.AuthToken, error)
	TagExists(ctx context.Context, repository, tag string) (domain.TagStatus, error)
}

// SecretProvisioner defines the contract for provisioning the shared deploy key
type SecretProvisioner interface {
	IsConfigured() bool
	Decrypt(outputPath string) error
}

// RemoteExecutor defines the contract for updating a service on a remote host
type RemoteExecutor interface {
	Deploy(ctx context.Context, app domain.Application, host domain.Host, credentialPath string) error
}

// Recorder persists finished runs
type Recorder interface {
	Record(run *domain.Run) error
}
