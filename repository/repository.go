package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hpi-schul-cloud/sc-app-deploy/db"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

type RunRepository interface {
	Record(run *domain.Run) error
	List(limit int) ([]*domain.Run, error)
	FindByID(id uuid.UUID) (*domain.Run, error)
}

type runRepository struct {
	db     *gorm.DB
	mapper *RunMapper
}

// Record stores a finished run together with its outcomes.
func (r *runRepository) Record(run *domain.Run) error {
	m := r.mapper.ToModel(run)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_run",
			"run_id", run.ID,
			"error", err)
		return err // Pass through as-is
	}
	return nil
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (r *runRepository) List(limit int) ([]*domain.Run, error) {
	query := r.db.Preload("Outcomes").Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []db.RunModel
	if err := query.Find(&models).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "list_runs",
			"error", err)
		return nil, err
	}

	runs := make([]*domain.Run, len(models))
	for i := range models {
		runs[i] = r.mapper.ToDomain(&models[i])
	}
	return runs, nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*domain.Run, error) {
	var m db.RunModel
	if err := r.db.Preload("Outcomes").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_run",
			"run_id", id,
			"error", err)
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{
		db:     db,
		mapper: &RunMapper{},
	}
}
