// Package config loads sc-app-deploy configuration from defaults, a .env file
// in the data directory, the process environment and CLI overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/compose-spec/compose-go/v2/dotenv"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

const (
	RegistryBackendHub    = "hub"
	RegistryBackendDaemon = "daemon"

	DefaultRegistryURL = "https://hub.docker.com/v2"
	DefaultKeyFile     = "travisssh"
	DefaultRemoteUser  = "travis"
	DefaultSSHCommand  = "ssh"

	dotEnvFile   = ".env"
	databaseFile = "sc-app-deploy.db"
)

// Environment variable names shared with the CI pipeline.
const (
	EnvDockerUsername = "DOCKER_USERNAME"
	EnvDockerToken    = "DOCKER_TOKEN"
	EnvKeyPassphrase  = "CI_GITHUB_TRAVISUSER_SWARMVM_KEY"
)

// EnvProvider abstracts environment variable access for testing
type EnvProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
}

// DefaultEnvProvider implements EnvProvider using real OS functions
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (p *DefaultEnvProvider) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// GetDefaultDataDir returns the default data directory following XDG Base Directory specification
func GetDefaultDataDir() string {
	return getDefaultDataDirWithEnv(&DefaultEnvProvider{})
}

func getDefaultDataDirWithEnv(env EnvProvider) string {
	xdgDataHome := env.Getenv("XDG_DATA_HOME")
	if xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "sc-app-deploy")
	}

	homeDir, _ := env.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "sc-app-deploy")
}

// Config holds configuration for all services
type Config struct {
	// Core paths
	DataDir      string
	DatabasePath string
	LogDir       string

	// Logging
	LogLevel     string
	ColorEnabled bool

	// Registry
	RegistryBackend        string
	RegistryURL            string
	RegistryTimeout        time.Duration
	Namespace              string
	RegistryUsername       string
	RegistryToken          string
	RegistryTokenEncrypted string
	EncryptionKey          string

	// SSH credential
	KeyPassphrase string
	KeyFile       string

	// Remote execution
	RemoteUser    string
	SSHCommand    string
	RemoteTimeout time.Duration

	// Hosts
	TeamHostPrefix string
	TeamDomain     string
	TestHostname   string
	TestDomain     string

	// Orchestration
	CatalogFile     string
	SkipUnavailable bool
	HistoryEnabled  bool

	env       EnvProvider
	parseErrs []error
}

// Overrides carries values set explicitly on the command line.
type Overrides struct {
	DataDir     string
	CatalogFile string
	LogDir      string
}

// NewConfigForCLI creates a new configuration for CLI usage
func NewConfigForCLI(overrides Overrides) (*Config, error) {
	return NewConfigWithEnv(&DefaultEnvProvider{}, overrides)
}

// NewConfigWithEnv creates a new configuration with custom environment provider (for testing)
func NewConfigWithEnv(env EnvProvider, overrides Overrides) (*Config, error) {
	c := &Config{env: env}

	c.setDefaults()

	// The data directory decides where the .env file is read from.
	if v := env.Getenv("SCDEPLOY_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if overrides.DataDir != "" {
		c.DataDir = overrides.DataDir
	}

	// Process environment wins over the .env file.
	c.loadFromEnv(c.readDotEnv())
	c.loadFromEnv(env.Getenv)

	if overrides.CatalogFile != "" {
		c.CatalogFile = overrides.CatalogFile
	}
	if overrides.LogDir != "" {
		c.LogDir = overrides.LogDir
	}

	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// setDefaults sets sensible default values
func (c *Config) setDefaults() {
	c.DataDir = getDefaultDataDirWithEnv(c.env)
	c.LogLevel = "info"
	c.ColorEnabled = true
	c.RegistryBackend = RegistryBackendHub
	c.RegistryURL = DefaultRegistryURL
	c.RegistryTimeout = 30 * time.Second
	c.KeyFile = DefaultKeyFile
	c.RemoteUser = DefaultRemoteUser
	c.SSHCommand = DefaultSSHCommand
	c.RemoteTimeout = 15 * time.Minute
	c.TeamHostPrefix = "hotfix"
	c.TeamDomain = "schul-cloud.dev"
	c.TestHostname = "test"
	c.TestDomain = "schul-cloud.org"
	c.HistoryEnabled = true
}

// readDotEnv returns a lookup over the .env file in the data directory.
// A missing or unreadable file yields an empty lookup.
func (c *Config) readDotEnv() func(string) string {
	envVars, err := dotenv.Read(filepath.Join(c.DataDir, dotEnvFile))
	if err != nil {
		return func(string) string { return "" }
	}
	return func(key string) string { return envVars[key] }
}

// loadFromEnv applies every non-empty value returned by getenv.
func (c *Config) loadFromEnv(getenv func(string) string) {
	if v := getenv("SCDEPLOY_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := getenv("SCDEPLOY_LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := getenv("SCDEPLOY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.parseBool(getenv, "SCDEPLOY_COLOR_ENABLED", &c.ColorEnabled)
	if v := getenv("SCDEPLOY_REGISTRY_BACKEND"); v != "" {
		c.RegistryBackend = v
	}
	if v := getenv("SCDEPLOY_REGISTRY_URL"); v != "" {
		c.RegistryURL = v
	}
	c.parseDuration(getenv, "SCDEPLOY_REGISTRY_TIMEOUT", &c.RegistryTimeout)
	if v := getenv("SCDEPLOY_NAMESPACE"); v != "" {
		c.Namespace = v
	}
	if v := getenv(EnvDockerUsername); v != "" {
		c.RegistryUsername = v
	}
	if v := getenv(EnvDockerToken); v != "" {
		c.RegistryToken = v
	}
	if v := getenv("SCDEPLOY_DOCKER_TOKEN_ENCRYPTED"); v != "" {
		c.RegistryTokenEncrypted = v
	}
	if v := getenv("SCDEPLOY_ENCRYPTION_KEY"); v != "" {
		c.EncryptionKey = v
	}
	if v := getenv(EnvKeyPassphrase); v != "" {
		c.KeyPassphrase = v
	}
	if v := getenv("SCDEPLOY_KEY_FILE"); v != "" {
		c.KeyFile = v
	}
	if v := getenv("SCDEPLOY_REMOTE_USER"); v != "" {
		c.RemoteUser = v
	}
	if v := getenv("SCDEPLOY_SSH_COMMAND"); v != "" {
		c.SSHCommand = v
	}
	c.parseDuration(getenv, "SCDEPLOY_REMOTE_TIMEOUT", &c.RemoteTimeout)
	if v := getenv("SCDEPLOY_TEAM_HOST_PREFIX"); v != "" {
		c.TeamHostPrefix = v
	}
	if v := getenv("SCDEPLOY_TEAM_DOMAIN"); v != "" {
		c.TeamDomain = v
	}
	if v := getenv("SCDEPLOY_TEST_HOST"); v != "" {
		c.TestHostname = v
	}
	if v := getenv("SCDEPLOY_TEST_DOMAIN"); v != "" {
		c.TestDomain = v
	}
	if v := getenv("SCDEPLOY_CATALOG_FILE"); v != "" {
		c.CatalogFile = v
	}
	c.parseBool(getenv, "SCDEPLOY_SKIP_UNAVAILABLE", &c.SkipUnavailable)
	c.parseBool(getenv, "SCDEPLOY_HISTORY_ENABLED", &c.HistoryEnabled)
}

func (c *Config) parseBool(getenv func(string) string, key string, dst *bool) {
	v := getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return
	}
	*dst = b
}

func (c *Config) parseDuration(getenv func(string) string, key string, dst *time.Duration) {
	v := getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s: invalid duration %q (e.g. 30s, 15m)", key, v))
		return
	}
	*dst = d
}

// derivePaths calculates dependent paths from the base DataDir
func (c *Config) derivePaths() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, databaseFile)
	}
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	if err := errors.Join(c.parseErrs...); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warning": true, "error": true, "silent": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warning, error, or silent)", c.LogLevel)
	}

	switch c.RegistryBackend {
	case RegistryBackendHub, RegistryBackendDaemon:
	default:
		return fmt.Errorf("invalid registry backend: %s (must be %s or %s)",
			c.RegistryBackend, RegistryBackendHub, RegistryBackendDaemon)
	}

	if c.RegistryTimeout <= 0 {
		return fmt.Errorf("registry timeout must be positive, got: %v", c.RegistryTimeout)
	}

	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("remote timeout must be positive, got: %v", c.RemoteTimeout)
	}

	if c.SSHCommand == "" {
		return fmt.Errorf("ssh command cannot be empty")
	}

	if c.RemoteUser == "" {
		return fmt.Errorf("remote user cannot be empty")
	}

	if c.KeyFile == "" {
		return fmt.Errorf("key file cannot be empty")
	}

	if c.RegistryTokenEncrypted != "" && c.EncryptionKey == "" {
		return fmt.Errorf("an encrypted registry token requires SCDEPLOY_ENCRYPTION_KEY")
	}

	return nil
}

// HasPassphrase reports whether a key passphrase is configured.
func (c *Config) HasPassphrase() bool {
	return c.KeyPassphrase != ""
}

// HostNaming returns the DNS parts used to derive destination hosts.
func (c *Config) HostNaming() domain.HostNaming {
	return domain.HostNaming{
		TeamHostPrefix: c.TeamHostPrefix,
		TeamDomain:     c.TeamDomain,
		TestHostname:   c.TestHostname,
		TestDomain:     c.TestDomain,
	}
}
