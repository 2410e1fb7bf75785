package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/registry"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDistribution struct {
	loginErr   error
	identity   string
	inspectErr map[string]error
	inspected  []string
	auths      []string
	closed     bool
}

func (f *fakeDistribution) RegistryLogin(ctx context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error) {
	if f.loginErr != nil {
		return registry.AuthenticateOKBody{}, f.loginErr
	}
	return registry.AuthenticateOKBody{Status: "Login Succeeded", IdentityToken: f.identity}, nil
}

func (f *fakeDistribution) DistributionInspect(ctx context.Context, imageRef, encodedRegistryAuth string) (registry.DistributionInspect, error) {
	f.inspected = append(f.inspected, imageRef)
	f.auths = append(f.auths, encodedRegistryAuth)
	if err, ok := f.inspectErr[imageRef]; ok {
		return registry.DistributionInspect{}, err
	}
	return registry.DistributionInspect{}, nil
}

func (f *fakeDistribution) Close() error {
	f.closed = true
	return nil
}

func TestDaemonClient_Login(t *testing.T) {
	fake := &fakeDistribution{identity: "identity-token"}
	c := newDaemonClient(fake, "", "schulcloud", Credentials{Username: "deployer", Token: "secret"})

	token, err := c.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuthToken("identity-token"), token)
	assert.NotEmpty(t, c.encodedAuth)
	assert.Equal(t, DefaultDaemonRegistry, c.registry)

	require.NoError(t, c.Close())
	assert.True(t, fake.closed)
}

func TestDaemonClient_Login_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "rejected credentials",
			err:     fmt.Errorf("login: %w", cerrdefs.ErrUnauthenticated),
			wantErr: domain.ErrAuthentication,
		},
		{
			name:    "daemon unavailable",
			err:     fmt.Errorf("dial: %w", cerrdefs.ErrUnavailable),
			wantErr: domain.ErrRegistryUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newDaemonClient(&fakeDistribution{loginErr: tt.err}, "", "schulcloud", Credentials{})
			_, err := c.Login(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDaemonClient_TagExists(t *testing.T) {
	fake := &fakeDistribution{inspectErr: map[string]error{
		"docker.io/schulcloud/schulcloud-client:develop_latest":  fmt.Errorf("manifest: %w", cerrdefs.ErrNotFound),
		"docker.io/schulcloud/schulcloud-private:develop_latest": fmt.Errorf("denied: %w", cerrdefs.ErrUnauthenticated),
		"docker.io/schulcloud/schulcloud-broken:develop_latest":  errors.New("connection reset by peer"),
	}}
	c := newDaemonClient(fake, "docker.io", "schulcloud", Credentials{Username: "deployer", Token: "secret"})
	_, err := c.Login(context.Background())
	require.NoError(t, err)

	status, err := c.TagExists(context.Background(), "schulcloud-server", "develop_latest")
	require.NoError(t, err)
	assert.Equal(t, domain.TagExists, status)

	status, err = c.TagExists(context.Background(), "schulcloud-client", "develop_latest")
	require.NoError(t, err)
	assert.Equal(t, domain.TagNotFound, status)

	status, err = c.TagExists(context.Background(), "schulcloud-private", "develop_latest")
	require.NoError(t, err)
	assert.Equal(t, domain.TagNotFound, status)

	_, err = c.TagExists(context.Background(), "schulcloud-broken", "develop_latest")
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)

	assert.Equal(t, "docker.io/schulcloud/schulcloud-server:develop_latest", fake.inspected[0])
	for _, auth := range fake.auths {
		assert.Equal(t, c.encodedAuth, auth)
	}
}
