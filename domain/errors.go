package domain

import (
	"errors"
	"fmt"
)

// Input validation errors. These abort a run before any I/O happens.
var (
	ErrInvalidBranch     = errors.New("invalid branch prefix")
	ErrMissingQualifier  = errors.New("missing qualifier")
	ErrUnsupportedTarget = errors.New("unsupported deploy target")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// Setup errors. These abort a run before any per-image work.
var (
	ErrAuthentication = errors.New("registry authentication failed")
	ErrDecryption     = errors.New("credential decryption failed")
	ErrPermission     = errors.New("credential permission change failed")
)

// Per-image and aggregate errors.
var (
	ErrRegistryUnavailable = errors.New("registry unavailable")
	ErrRemoteCommand       = errors.New("remote command failed")
	ErrTimeout             = errors.New("operation timed out")
	ErrNoImagesDeployed    = errors.New("no images deployed")
)

// RemoteCommandError reports a remote update that exited with a non-zero status.
type RemoteCommandError struct {
	Service  string
	ExitCode int
	Err      error
}

func (e *RemoteCommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote update of %s exited with code %d: %v", e.Service, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("remote update of %s exited with code %d", e.Service, e.ExitCode)
}

func (e *RemoteCommandError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRemoteCommand) match any RemoteCommandError.
func (e *RemoteCommandError) Is(target error) bool {
	return target == ErrRemoteCommand
}
