// Package remote runs the swarm service update on a destination host over ssh.
package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

const (
	maxLineLength = 1 << 20
	waitDelay     = 5 * time.Second
)

// hostKeyOptions disable host key verification; team hosts are recreated
// often and their keys change.
var hostKeyOptions = []string{
	"-o", "StrictHostKeyChecking=no",
	"-o", "UserKnownHostsFile=/dev/null",
}

// OutputFunc receives every output line of a remote command as it arrives.
type OutputFunc func(service, line string)

// Executor runs `ssh <opts> [-i key] user@host <image> <service>`. The remote
// user's forced command performs `docker service update --force --image`.
type Executor struct {
	sshCommand string
	remoteUser string
	timeout    time.Duration
	output     OutputFunc
}

// NewExecutor creates an executor. A zero timeout disables the deadline.
func NewExecutor(sshCommand, remoteUser string, timeout time.Duration) *Executor {
	return &Executor{
		sshCommand: sshCommand,
		remoteUser: remoteUser,
		timeout:    timeout,
		output:     logOutput,
	}
}

// SetOutput replaces the sink remote output lines are sent to.
func (e *Executor) SetOutput(fn OutputFunc) {
	if fn == nil {
		fn = logOutput
	}
	e.output = fn
}

func logOutput(service, line string) {
	slog.Info("Remote output", "service", service, "line", line)
}

// Command returns the argv used to deploy app to host.
func (e *Executor) Command(app domain.Application, host domain.Host, credentialPath string) []string {
	argv := []string{e.sshCommand}
	argv = append(argv, hostKeyOptions...)
	if credentialPath != "" {
		argv = append(argv, "-i", credentialPath)
	}
	argv = append(argv,
		fmt.Sprintf("%s@%s", e.remoteUser, host.FQDN()),
		app.Image(),
		app.ServiceName(host),
	)
	return argv
}

// Deploy runs the remote update and blocks until it exits. Output is
// streamed line by line while the command runs.
func (e *Executor) Deploy(ctx context.Context, app domain.Application, host domain.Host, credentialPath string) error {
	service := app.ServiceName(host)
	argv := e.Command(app, host, credentialPath)

	slog.Info("Deploying application", "service", service, "image", app.Image())
	slog.Debug("Running remote command", "command", strings.Join(argv, " "))

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		slog.Error("Service operation failed",
			"layer", "remote",
			"operation", "start_remote_command",
			"service", service,
			"error", err)
		return &domain.RemoteCommandError{Service: service, ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		done <- err
	}()

	for line := range Lines(pr) {
		e.output(service, line)
	}
	// Keep the writer unblocked if scanning stopped early.
	_, _ = io.Copy(io.Discard, pr)

	err := <-done
	if err == nil {
		slog.Info("Deployment complete", "service", service)
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		slog.Error("Service operation failed",
			"layer", "remote",
			"operation", "remote_command",
			"service", service,
			"timeout", e.timeout,
			"error", err)
		return fmt.Errorf("%w: remote update of %s did not finish within %s", domain.ErrTimeout, service, e.timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("remote update of %s interrupted: %w", service, ctxErr)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	slog.Error("Service operation failed",
		"layer", "remote",
		"operation", "remote_command",
		"service", service,
		"exit_code", exitCode,
		"error", err)
	return &domain.RemoteCommandError{Service: service, ExitCode: exitCode, Err: err}
}

// Lines yields the lines of r as they become available, until EOF. Every
// range over the sequence starts a fresh scan of r.
func Lines(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		for scanner.Scan() {
			if !yield(strings.TrimRight(scanner.Text(), "\r")) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("Stopped reading remote output", "error", err)
		}
	}
}
