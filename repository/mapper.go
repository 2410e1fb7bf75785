// Package repository provides the data access layer for deployment history.
package repository

import (
	"sort"

	"github.com/google/uuid"
	"github.com/hpi-schul-cloud/sc-app-deploy/db"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

type RunMapper struct{}

func (m *RunMapper) ToDomain(r *db.RunModel) *domain.Run {
	status, err := domain.ParseRunStatus(r.Status)
	if err != nil {
		status = domain.RunStatusUnknown
	}

	outcomes := make([]db.OutcomeModel, len(r.Outcomes))
	copy(outcomes, r.Outcomes)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Position < outcomes[j].Position })

	run := &domain.Run{
		ID:         r.ID,
		Branch:     domain.Branch(r.Branch),
		Qualifier:  r.Qualifier,
		Target:     domain.DeployTarget(r.Target),
		TeamNumber: r.TeamNumber,
		Host:       domain.Host{Hostname: r.Hostname, DomainSuffix: r.DomainSuffix},
		Tag:        r.Tag,
		DryRun:     r.DryRun,
		Status:     status,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcomes:   make([]domain.Outcome, 0, len(outcomes)),
	}
	for i := range outcomes {
		run.Outcomes = append(run.Outcomes, m.outcomeToDomain(&outcomes[i]))
	}
	return run
}

func (m *RunMapper) outcomeToDomain(o *db.OutcomeModel) domain.Outcome {
	status, err := domain.ParseOutcomeStatus(o.Status)
	if err != nil {
		status = domain.OutcomeUnknown
	}
	return domain.Outcome{
		Application: domain.Application{
			ShortName:       o.ShortName,
			ImageRepository: o.ImageRepository,
			ImageTag:        o.ImageTag,
		},
		Service:  o.Service,
		Status:   status,
		ExitCode: o.ExitCode,
		Error:    o.Error,
	}
}

func (m *RunMapper) ToModel(r *domain.Run) *db.RunModel {
	model := &db.RunModel{
		BaseModel: db.BaseModel{
			ID: r.ID,
		},
		Branch:       r.Branch.String(),
		Qualifier:    r.Qualifier,
		Target:       r.Target.String(),
		TeamNumber:   r.TeamNumber,
		Hostname:     r.Host.Hostname,
		DomainSuffix: r.Host.DomainSuffix,
		Tag:          r.Tag,
		DryRun:       r.DryRun,
		Status:       r.Status.String(),
		Error:        r.Error,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Outcomes:     make([]db.OutcomeModel, 0, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		model.Outcomes = append(model.Outcomes, db.OutcomeModel{
			BaseModel:       db.BaseModel{ID: uuid.New()},
			RunID:           r.ID,
			Position:        i,
			ShortName:       o.Application.ShortName,
			ImageRepository: o.Application.ImageRepository,
			ImageTag:        o.Application.ImageTag,
			Service:         o.Service,
			Status:          o.Status.String(),
			ExitCode:        o.ExitCode,
			Error:           o.Error,
		})
	}
	return model
}
