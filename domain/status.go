package domain

import "fmt"

// TagStatus is the result of a registry existence check. A missing tag is a
// normal negative result, not an error.
type TagStatus int

const (
	TagNotFound TagStatus = iota
	TagExists
)

func (s TagStatus) String() string {
	switch s {
	case TagExists:
		return "exists"
	default:
		return "not_found"
	}
}

// OutcomeStatus is the final state of one catalog entry within a run.
type OutcomeStatus int

const (
	OutcomeUnknown OutcomeStatus = iota
	OutcomeSkipped
	OutcomeSucceeded
	OutcomeFailed
	// OutcomePlanned marks an entry that would have been deployed in a dry run.
	OutcomePlanned
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomePlanned:
		return "planned"
	case OutcomeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParseOutcomeStatus(s string) (OutcomeStatus, error) {
	switch s {
	case "skipped":
		return OutcomeSkipped, nil
	case "succeeded":
		return OutcomeSucceeded, nil
	case "failed":
		return OutcomeFailed, nil
	case "planned":
		return OutcomePlanned, nil
	case "unknown":
		return OutcomeUnknown, nil
	default:
		return OutcomeUnknown, fmt.Errorf("invalid outcome status: %q", s)
	}
}

// RunStatus is the terminal state of an orchestration run.
type RunStatus int

const (
	RunStatusUnknown RunStatus = iota
	RunStatusSucceeded
	// RunStatusNoImagesDeployed means every entry was skipped or failed.
	RunStatusNoImagesDeployed
	// RunStatusFailed means the run aborted during validation or setup.
	RunStatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusSucceeded:
		return "succeeded"
	case RunStatusNoImagesDeployed:
		return "no_images_deployed"
	case RunStatusFailed:
		return "failed"
	case RunStatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParseRunStatus(s string) (RunStatus, error) {
	switch s {
	case "succeeded":
		return RunStatusSucceeded, nil
	case "no_images_deployed":
		return RunStatusNoImagesDeployed, nil
	case "failed":
		return RunStatusFailed, nil
	case "unknown":
		return RunStatusUnknown, nil
	default:
		return RunStatusUnknown, fmt.Errorf("invalid run status: %q", s)
	}
}
