// Package app wires configuration into the services a deployment run needs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/hpi-schul-cloud/sc-app-deploy/config"
	"github.com/hpi-schul-cloud/sc-app-deploy/db"
	"github.com/hpi-schul-cloud/sc-app-deploy/deploy"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/hpi-schul-cloud/sc-app-deploy/registry"
	"github.com/hpi-schul-cloud/sc-app-deploy/remote"
	"github.com/hpi-schul-cloud/sc-app-deploy/repository"
	"github.com/hpi-schul-cloud/sc-app-deploy/secrets"
	"gorm.io/gorm"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	appConfig     *config.Config
	database      *gorm.DB
	runRepository repository.RunRepository
	registryClose func() error
	orchestrator  Orchestrator
)

// Orchestrator is the deployment entry point used by the CLI.
type Orchestrator interface {
	Run(ctx context.Context, req deploy.Request) (*domain.Run, error)
	Catalog() domain.Catalog
}

// InitializeWithConfig initializes the app with a pre-configured Config
func InitializeWithConfig(cfg *config.Config) error {
	appConfig = cfg

	if err := os.MkdirAll(appConfig.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	credentials, err := registryCredentials(cfg)
	if err != nil {
		return err
	}

	registryClient, err := newRegistryClient(cfg, catalog.Namespace, credentials)
	if err != nil {
		return err
	}

	executor := remote.NewExecutor(cfg.SSHCommand, cfg.RemoteUser, cfg.RemoteTimeout)
	provisioner := secrets.NewProvisioner(cfg.KeyPassphrase)

	orch := deploy.NewOrchestrator(deploy.Options{
		Catalog:         catalog,
		HostNaming:      cfg.HostNaming(),
		KeyFile:         cfg.KeyFile,
		SkipUnavailable: cfg.SkipUnavailable,
	}, registryClient, provisioner, executor)

	if cfg.HistoryEnabled {
		database, err = db.InitDB(cfg.DatabasePath, cfg.LogLevel)
		if err != nil {
			return err
		}
		runRepository = repository.NewRunRepository(database)
		orch.SetRecorder(runRepository)
	} else {
		runRepository = nil
		slog.Debug("Deployment history disabled")
	}

	orchestrator = orch
	return nil
}

// Shutdown releases the database and registry connections.
func Shutdown() {
	if registryClose != nil {
		if err := registryClose(); err != nil {
			slog.Debug("Failed to close registry client", "error", err)
		}
		registryClose = nil
	}
	if database != nil {
		if err := db.Close(database); err != nil {
			slog.Debug("Failed to close database", "error", err)
		}
		database = nil
	}
}

func loadCatalog(cfg *config.Config) (domain.Catalog, error) {
	catalog := domain.DefaultCatalog()
	if cfg.CatalogFile != "" {
		loaded, err := domain.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			slog.Error("Service operation failed",
				"layer", "app",
				"operation", "load_catalog",
				"catalog_file", cfg.CatalogFile,
				"error", err)
			return domain.Catalog{}, err
		}
		catalog = loaded
		slog.Debug("Loaded catalog", "catalog_file", cfg.CatalogFile, "applications", len(catalog.Applications))
	}
	if cfg.Namespace != "" {
		catalog.Namespace = cfg.Namespace
	}
	return catalog, nil
}

// registryCredentials returns the registry login, decrypting the token when it
// is stored encrypted.
func registryCredentials(cfg *config.Config) (registry.Credentials, error) {
	creds := registry.Credentials{Username: cfg.RegistryUsername, Token: cfg.RegistryToken}
	if cfg.RegistryTokenEncrypted == "" {
		return creds, nil
	}

	encryptionSvc, err := secrets.NewEncryptionService(cfg.EncryptionKey)
	if err != nil {
		return registry.Credentials{}, err
	}
	token, err := encryptionSvc.Decrypt(cfg.RegistryTokenEncrypted)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "app",
			"operation", "decrypt_registry_token",
			"error", err)
		return registry.Credentials{}, fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}
	creds.Token = token
	return creds, nil
}

func newRegistryClient(cfg *config.Config, namespace string, creds registry.Credentials) (deploy.RegistryClient, error) {
	switch cfg.RegistryBackend {
	case config.RegistryBackendDaemon:
		client, err := registry.NewDaemonClient(daemonRegistryHost(cfg.RegistryURL), namespace, creds)
		if err != nil {
			return nil, fmt.Errorf("failed to create docker client: %w", err)
		}
		registryClose = client.Close
		return client, nil
	default:
		return registry.NewHubClient(cfg.RegistryURL, namespace, creds, cfg.RegistryTimeout), nil
	}
}

// daemonRegistryHost maps the configured registry URL to the host part of an
// image reference. The Docker Hub API URL maps to docker.io.
func daemonRegistryHost(registryURL string) string {
	if registryURL == "" || registryURL == config.DefaultRegistryURL {
		return registry.DefaultDaemonRegistry
	}
	u, err := url.Parse(registryURL)
	if err != nil || u.Host == "" {
		return registryURL
	}
	return u.Host
}

func GetConfig() *config.Config {
	return appConfig
}

func GetOrchestrator() Orchestrator {
	return orchestrator
}

// GetRunRepository returns nil when history is disabled.
func GetRunRepository() repository.RunRepository {
	return runRepository
}

// SetOrchestratorForTesting allows overriding the orchestrator for testing purposes
func SetOrchestratorForTesting(o Orchestrator) {
	orchestrator = o
}

// SetRunRepositoryForTesting allows overriding the run repository for testing purposes
func SetRunRepositoryForTesting(r repository.RunRepository) {
	runRepository = r
}

// SetConfig stores cfg without building any service. Commands that only read
// configuration use it instead of InitializeWithConfig.
func SetConfig(cfg *config.Config) {
	appConfig = cfg
}
