// Package deploy coordinates tag resolution, credential provisioning, registry
// checks and remote updates for every application in the catalog.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// Request holds the resolved CLI inputs of one run.
type Request struct {
	Branch     domain.Branch
	Qualifier  string
	Target     domain.DeployTarget
	TeamNumber int
	// DryRun resolves and checks tags but neither decrypts the key nor
	// touches remote hosts.
	DryRun bool
	// SkipUnavailable skips images whose registry check fails for this run,
	// in addition to Options.SkipUnavailable.
	SkipUnavailable bool
}

// Options configures an Orchestrator.
type Options struct {
	Catalog    domain.Catalog
	HostNaming domain.HostNaming
	// KeyFile is the decrypted key path; the encrypted key is KeyFile+".gpg".
	KeyFile string
	// SkipUnavailable skips an image whose registry check fails instead of
	// aborting the run.
	SkipUnavailable bool
}

// Orchestrator runs deployments sequentially over the catalog.
type Orchestrator struct {
	options  Options
	registry RegistryClient
	secrets  SecretProvisioner
	executor RemoteExecutor
	recorder Recorder
}

func NewOrchestrator(options Options, registry RegistryClient, secrets SecretProvisioner, executor RemoteExecutor) *Orchestrator {
	return &Orchestrator{
		options:  options,
		registry: registry,
		secrets:  secrets,
		executor: executor,
	}
}

// SetRecorder enables persisting every finished run. A nil recorder disables it.
func (o *Orchestrator) SetRecorder(recorder Recorder) {
	o.recorder = recorder
}

// Catalog returns the catalog the orchestrator iterates.
func (o *Orchestrator) Catalog() domain.Catalog {
	return o.options.Catalog
}

// Run executes one deployment. The returned run is never nil and describes
// how far the run got, also when an error is returned.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*domain.Run, error) {
	run := domain.NewRun(req.Branch, req.Qualifier, req.Target, req.TeamNumber, req.DryRun)
	err := o.run(ctx, req, run)

	run.FinishedAt = time.Now()
	switch {
	case err == nil:
		run.Status = domain.RunStatusSucceeded
	case errors.Is(err, domain.ErrNoImagesDeployed):
		run.Status = domain.RunStatusNoImagesDeployed
		run.Error = err.Error()
	default:
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
	}

	slog.Info("Deployment run finished",
		"run_id", run.ID,
		"status", run.Status,
		"tag", run.Tag,
		"deployed", run.Count(domain.OutcomeSucceeded),
		"planned", run.Count(domain.OutcomePlanned),
		"skipped", run.Count(domain.OutcomeSkipped),
		"failed", run.Count(domain.OutcomeFailed),
		"duration", run.FinishedAt.Sub(run.StartedAt))

	o.record(run)
	return run, err
}

func (o *Orchestrator) run(ctx context.Context, req Request, run *domain.Run) error {
	// Idle -> TagResolved
	tag, err := domain.ResolveTag(req.Branch, req.Qualifier, req.Branch.QualifierKind(), req.Target)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "resolve_tag",
			"branch", req.Branch,
			"qualifier", req.Qualifier,
			"target", req.Target,
			"error", err)
		return fmt.Errorf("failed to resolve tag: %w", err)
	}
	run.Tag = tag

	host, err := o.options.HostNaming.ResolveHost(req.Target, req.TeamNumber)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "resolve_host",
			"target", req.Target,
			"team", req.TeamNumber,
			"error", err)
		return fmt.Errorf("failed to resolve host: %w", err)
	}
	run.Host = host

	apps, err := o.applications(tag)
	if err != nil {
		return err
	}

	slog.Info("Starting deployment",
		"run_id", run.ID,
		"branch", req.Branch,
		"tag", tag,
		"host", host.FQDN(),
		"applications", len(apps),
		"dry_run", req.DryRun)

	// TagResolved -> CredentialReady
	credentialPath, err := o.provisionCredential(req.DryRun)
	if err != nil {
		return err
	}

	if _, err := o.registry.Login(ctx); err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "registry_login",
			"tag", tag,
			"error", err)
		return fmt.Errorf("failed to log in to registry: %w", err)
	}

	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("deployment interrupted before %s: %w", app.ShortName, err)
		}

		outcome, err := o.deployApplication(ctx, app, host, credentialPath, req)
		if err != nil {
			return err
		}
		run.Outcomes = append(run.Outcomes, outcome)
	}

	if run.Deployed() == 0 {
		err := fmt.Errorf("%w: tag %s is not deployable for any of %d applications",
			domain.ErrNoImagesDeployed, tag, len(apps))
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "aggregate_outcomes",
			"tag", tag,
			"host", host.FQDN(),
			"skipped", run.Count(domain.OutcomeSkipped),
			"failed", run.Count(domain.OutcomeFailed),
			"error", err)
		return err
	}
	return nil
}

func (o *Orchestrator) applications(tag string) ([]domain.Application, error) {
	catalog := o.options.Catalog
	apps := make([]domain.Application, 0, len(catalog.Applications))
	for _, entry := range catalog.Applications {
		app, err := domain.NewApplication(entry.Name, catalog.Repository(entry), tag)
		if err != nil {
			slog.Error("Service operation failed",
				"layer", "deploy",
				"operation", "build_application",
				"application", entry.Name,
				"image", entry.Image,
				"error", err)
			return nil, fmt.Errorf("invalid catalog entry %q: %w", entry.Name, err)
		}
		apps = append(apps, app)
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: catalog has no applications", domain.ErrInvalidArgument)
	}
	return apps, nil
}

// provisionCredential decrypts the shared key once per run and returns the
// identity path for the remote command. An empty path means ssh falls back to
// the agent identity.
func (o *Orchestrator) provisionCredential(dryRun bool) (string, error) {
	if !o.secrets.IsConfigured() {
		slog.Warn("No key passphrase configured, relying on an ssh agent identity")
		return "", nil
	}

	if dryRun {
		slog.Info("Dry run, skipping key decryption", "key_file", o.options.KeyFile)
		return o.options.KeyFile, nil
	}

	if err := o.secrets.Decrypt(o.options.KeyFile); err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "decrypt_key",
			"key_file", o.options.KeyFile,
			"error", err)
		return "", fmt.Errorf("failed to provision deploy key: %w", err)
	}
	return o.options.KeyFile, nil
}

// deployApplication checks and deploys one catalog entry. Only errors that
// must abort the whole run are returned; everything else ends up in the outcome.
func (o *Orchestrator) deployApplication(
	ctx context.Context,
	app domain.Application,
	host domain.Host,
	credentialPath string,
	req Request,
) (domain.Outcome, error) {
	outcome := domain.Outcome{
		Application: app,
		Service:     app.ServiceName(host),
	}

	status, err := o.registry.TagExists(ctx, app.Name(), app.ImageTag)
	if err != nil {
		skip := o.options.SkipUnavailable || req.SkipUnavailable
		if skip && errors.Is(err, domain.ErrRegistryUnavailable) {
			slog.Warn("Registry check failed, skipping application",
				"application", app.ShortName,
				"image", app.Image(),
				"error", err)
			outcome.Status = domain.OutcomeSkipped
			outcome.Error = err.Error()
			return outcome, nil
		}
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "check_tag",
			"application", app.ShortName,
			"image", app.Image(),
			"error", err)
		return outcome, fmt.Errorf("failed to check %s: %w", app.Image(), err)
	}

	if status != domain.TagExists {
		slog.Info("Image tag not found, skipping application",
			"application", app.ShortName,
			"image", app.Image())
		outcome.Status = domain.OutcomeSkipped
		return outcome, nil
	}

	if req.DryRun {
		slog.Info("Dry run, would deploy application",
			"application", app.ShortName,
			"image", app.Image(),
			"service", outcome.Service,
			"host", host.FQDN())
		outcome.Status = domain.OutcomePlanned
		return outcome, nil
	}

	if err := o.executor.Deploy(ctx, app, host, credentialPath); err != nil {
		slog.Error("Service operation failed",
			"layer", "deploy",
			"operation", "deploy_application",
			"application", app.ShortName,
			"image", app.Image(),
			"service", outcome.Service,
			"error", err)
		outcome.Status = domain.OutcomeFailed
		outcome.Error = err.Error()
		var rce *domain.RemoteCommandError
		if errors.As(err, &rce) {
			outcome.ExitCode = rce.ExitCode
		}
		return outcome, nil
	}

	slog.Info("Application deployed",
		"application", app.ShortName,
		"image", app.Image(),
		"service", outcome.Service)
	outcome.Status = domain.OutcomeSucceeded
	return outcome, nil
}

func (o *Orchestrator) record(run *domain.Run) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(run); err != nil {
		slog.Warn("Failed to record deployment run", "run_id", run.ID, "error", err)
	}
}
