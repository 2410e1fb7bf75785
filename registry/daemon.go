package registry

import (
	"context"
	"fmt"
	"log/slog"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// DefaultDaemonRegistry is the registry host used to qualify image references.
const DefaultDaemonRegistry = "docker.io"

// distributionAPI is the part of the Docker client DaemonClient needs.
type distributionAPI interface {
	RegistryLogin(ctx context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error)
	DistributionInspect(ctx context.Context, imageRef, encodedRegistryAuth string) (registry.DistributionInspect, error)
	Close() error
}

// DaemonClient checks tags through the local Docker daemon, which resolves
// manifests against any registry the daemon can reach.
type DaemonClient struct {
	cli         distributionAPI
	registry    string
	namespace   string
	credentials Credentials
	encodedAuth string
}

// NewDaemonClient connects to the Docker daemon configured in the environment.
func NewDaemonClient(registryHost, namespace string, credentials Credentials) (*DaemonClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return newDaemonClient(cli, registryHost, namespace, credentials), nil
}

func newDaemonClient(cli distributionAPI, registryHost, namespace string, credentials Credentials) *DaemonClient {
	if registryHost == "" {
		registryHost = DefaultDaemonRegistry
	}
	return &DaemonClient{
		cli:         cli,
		registry:    registryHost,
		namespace:   namespace,
		credentials: credentials,
	}
}

// Close closes the Docker client
func (c *DaemonClient) Close() error {
	if c.cli != nil {
		return c.cli.Close()
	}
	return nil
}

// Login validates the credentials with the daemon and prepares the encoded
// auth header used by TagExists.
func (c *DaemonClient) Login(ctx context.Context) (AuthToken, error) {
	auth := registry.AuthConfig{
		Username:      c.credentials.Username,
		Password:      c.credentials.Token,
		ServerAddress: c.registry,
	}

	slog.Info("Logging into registry through Docker daemon", "registry", c.registry, "username", auth.Username)
	body, err := c.cli.RegistryLogin(ctx, auth)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "registry",
			"operation", "daemon_login",
			"registry", c.registry,
			"error", err)
		if cerrdefs.IsUnavailable(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	if body.IdentityToken != "" {
		auth.IdentityToken = body.IdentityToken
		auth.Password = ""
	}
	encoded, err := registry.EncodeAuthConfig(auth)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode auth: %v", domain.ErrAuthentication, err)
	}
	c.encodedAuth = encoded
	return AuthToken(body.IdentityToken), nil
}

// TagExists inspects the manifest of <registry>/<namespace>/<repository>:<tag>.
// Not-found and unauthorized answers are treated as a missing tag, because
// registries answer unauthorized for repositories that do not exist.
func (c *DaemonClient) TagExists(ctx context.Context, repository, tag string) (domain.TagStatus, error) {
	ref := fmt.Sprintf("%s/%s/%s:%s", c.registry, c.namespace, repository, tag)

	_, err := c.cli.DistributionInspect(ctx, ref, c.encodedAuth)
	if err == nil {
		slog.Info("Tag exists", "image", ref)
		return domain.TagExists, nil
	}
	if cerrdefs.IsNotFound(err) || cerrdefs.IsUnauthorized(err) || cerrdefs.IsPermissionDenied(err) {
		slog.Info("Tag does not exist", "image", ref, "reason", err)
		return domain.TagNotFound, nil
	}

	slog.Error("Service operation failed",
		"layer", "registry",
		"operation", "daemon_check_tag",
		"image", ref,
		"error", err)
	return domain.TagNotFound, fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
}
