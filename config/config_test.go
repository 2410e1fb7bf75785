package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEnvProvider implements EnvProvider for testing
type MockEnvProvider struct {
	envVars map[string]string
	homeDir string
}

func NewMockEnvProvider(homeDir string, envVars map[string]string) *MockEnvProvider {
	if envVars == nil {
		envVars = make(map[string]string)
	}
	return &MockEnvProvider{
		envVars: envVars,
		homeDir: homeDir,
	}
}

func (m *MockEnvProvider) Getenv(key string) string {
	return m.envVars[key]
}

func (m *MockEnvProvider) UserHomeDir() (string, error) {
	return m.homeDir, nil
}

func TestNewConfigWithEnv_Defaults(t *testing.T) {
	env := NewMockEnvProvider("/home/testuser", nil)

	c, err := NewConfigWithEnv(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/home/testuser/.local/share/sc-app-deploy", c.DataDir)
	assert.Equal(t, "/home/testuser/.local/share/sc-app-deploy/sc-app-deploy.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, RegistryBackendHub, c.RegistryBackend)
	assert.Equal(t, DefaultRegistryURL, c.RegistryURL)
	assert.Equal(t, DefaultKeyFile, c.KeyFile)
	assert.Equal(t, DefaultRemoteUser, c.RemoteUser)
	assert.Equal(t, DefaultSSHCommand, c.SSHCommand)
	assert.Equal(t, 15*time.Minute, c.RemoteTimeout)
	assert.False(t, c.HasPassphrase())
	assert.False(t, c.SkipUnavailable)
	assert.True(t, c.HistoryEnabled)
	assert.Equal(t, "hotfix", c.HostNaming().TeamHostPrefix)
}

func TestNewConfigWithEnv_XDGDataHome(t *testing.T) {
	env := NewMockEnvProvider("/home/testuser", map[string]string{
		"XDG_DATA_HOME": "/xdg",
	})

	c, err := NewConfigWithEnv(env, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "/xdg/sc-app-deploy", c.DataDir)
}

func TestNewConfigWithEnv_FromEnvironment(t *testing.T) {
	env := NewMockEnvProvider("/home/testuser", map[string]string{
		"SCDEPLOY_DATA_DIR":         "/data",
		"SCDEPLOY_LOG_LEVEL":        "debug",
		"SCDEPLOY_REGISTRY_BACKEND": "daemon",
		"SCDEPLOY_REMOTE_TIMEOUT":   "2m",
		"SCDEPLOY_SKIP_UNAVAILABLE": "true",
		"SCDEPLOY_HISTORY_ENABLED":  "false",
		"SCDEPLOY_TEAM_DOMAIN":      "example.dev",
		EnvDockerUsername:           "deployer",
		EnvDockerToken:              "secret-token",
		EnvKeyPassphrase:            "passphrase",
	})

	c, err := NewConfigWithEnv(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "/data", c.DataDir)
	assert.Equal(t, "/data/sc-app-deploy.db", c.DatabasePath)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, RegistryBackendDaemon, c.RegistryBackend)
	assert.Equal(t, 2*time.Minute, c.RemoteTimeout)
	assert.True(t, c.SkipUnavailable)
	assert.False(t, c.HistoryEnabled)
	assert.Equal(t, "example.dev", c.TeamDomain)
	assert.Equal(t, "deployer", c.RegistryUsername)
	assert.Equal(t, "secret-token", c.RegistryToken)
	assert.True(t, c.HasPassphrase())
}

func TestNewConfigWithEnv_Overrides(t *testing.T) {
	env := NewMockEnvProvider("/home/testuser", map[string]string{
		"SCDEPLOY_DATA_DIR":     "/data",
		"SCDEPLOY_CATALOG_FILE": "/env/catalog.yaml",
	})

	c, err := NewConfigWithEnv(env, Overrides{
		DataDir:     "/cli",
		CatalogFile: "/cli/catalog.yaml",
		LogDir:      "/cli/log",
	})
	require.NoError(t, err)

	assert.Equal(t, "/cli", c.DataDir)
	assert.Equal(t, "/cli/catalog.yaml", c.CatalogFile)
	assert.Equal(t, "/cli/log", c.LogDir)
}

func TestNewConfigWithEnv_DotEnvFile(t *testing.T) {
	dataDir := t.TempDir()
	content := "DOCKER_USERNAME=from-file\nDOCKER_TOKEN=file-token\nSCDEPLOY_REMOTE_USER=deploy\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ".env"), []byte(content), 0o600))

	env := NewMockEnvProvider("/home/testuser", map[string]string{
		"SCDEPLOY_DATA_DIR": dataDir,
		EnvDockerToken:      "env-token",
	})

	c, err := NewConfigWithEnv(env, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "from-file", c.RegistryUsername)
	assert.Equal(t, "env-token", c.RegistryToken, "process environment wins over .env")
	assert.Equal(t, "deploy", c.RemoteUser)
}

func TestNewConfigWithEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "invalid log level",
			envVars: map[string]string{"SCDEPLOY_LOG_LEVEL": "verbose"},
		},
		{
			name:    "invalid registry backend",
			envVars: map[string]string{"SCDEPLOY_REGISTRY_BACKEND": "quay"},
		},
		{
			name:    "encrypted token without key",
			envVars: map[string]string{"SCDEPLOY_DOCKER_TOKEN_ENCRYPTED": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewMockEnvProvider(t.TempDir(), tt.envVars)
			_, err := NewConfigWithEnv(env, Overrides{})
			assert.Error(t, err)
		})
	}
}

func TestNewConfigWithEnv_UnparsableValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "registry timeout", key: "SCDEPLOY_REGISTRY_TIMEOUT", value: "30", wantErr: "SCDEPLOY_REGISTRY_TIMEOUT: invalid duration"},
		{name: "remote timeout", key: "SCDEPLOY_REMOTE_TIMEOUT", value: "soon", wantErr: "SCDEPLOY_REMOTE_TIMEOUT: invalid duration"},
		{name: "skip unavailable", key: "SCDEPLOY_SKIP_UNAVAILABLE", value: "maybe", wantErr: "SCDEPLOY_SKIP_UNAVAILABLE: invalid boolean"},
		{name: "history enabled", key: "SCDEPLOY_HISTORY_ENABLED", value: "yes please", wantErr: "SCDEPLOY_HISTORY_ENABLED: invalid boolean"},
		{name: "color enabled", key: "SCDEPLOY_COLOR_ENABLED", value: "on", wantErr: "SCDEPLOY_COLOR_ENABLED: invalid boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewMockEnvProvider(t.TempDir(), map[string]string{tt.key: tt.value})

			c, err := NewConfigWithEnv(env, Overrides{})

			assert.Nil(t, c)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewConfigWithEnv_UnparsableDotEnvValue(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ".env"), []byte("SCDEPLOY_REMOTE_TIMEOUT=15\n"), 0o644))
	env := NewMockEnvProvider(t.TempDir(), map[string]string{"SCDEPLOY_DATA_DIR": dataDir})

	_, err := NewConfigWithEnv(env, Overrides{})

	assert.ErrorContains(t, err, "SCDEPLOY_REMOTE_TIMEOUT: invalid duration")
}
