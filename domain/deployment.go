package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome records what happened to one catalog entry.
type Outcome struct {
	Application Application
	Service     string
	Status      OutcomeStatus
	// ExitCode is set when the remote command ran and exited non-zero.
	ExitCode int
	Error    string
}

// Run records one orchestration run.
type Run struct {
	ID         uuid.UUID
	Branch     Branch
	Qualifier  string
	Target     DeployTarget
	TeamNumber int
	Host       Host
	Tag        string
	DryRun     bool
	Status     RunStatus
	Error      string
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

func NewRun(branch Branch, qualifier string, target DeployTarget, teamNumber int, dryRun bool) *Run {
	return &Run{
		ID:         uuid.New(),
		Branch:     branch,
		Qualifier:  qualifier,
		Target:     target,
		TeamNumber: teamNumber,
		DryRun:     dryRun,
		StartedAt:  time.Now(),
	}
}

// Count returns the number of outcomes with the given status.
func (r *Run) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Deployed returns the number of entries that count towards a successful run.
// Planned entries of a dry run count as deployed.
func (r *Run) Deployed() int {
	return r.Count(OutcomeSucceeded) + r.Count(OutcomePlanned)
}
