// Package db provides database models and utilities for the deployment history.
package db

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunModel struct {
	BaseModel
	Branch       string    `gorm:"not null;check:branch <> ''"`
	Qualifier    string    `gorm:"not null"`
	Target       string    `gorm:"not null;check:target <> ''"` // team, test
	TeamNumber   int       `gorm:"not null"`
	Hostname     string    `gorm:"not null"`
	DomainSuffix string    `gorm:"not null"`
	Tag          string    `gorm:"not null"` // empty when tag resolution failed
	DryRun       bool      `gorm:"not null"`
	Status       string    `gorm:"not null;check:status <> ''"` // succeeded, no_images_deployed, failed
	Error        string    `gorm:"type:text"`
	StartedAt    time.Time `gorm:"not null;index"`
	FinishedAt   time.Time

	Outcomes []OutcomeModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (RunModel) TableName() string {
	return "runs"
}

type OutcomeModel struct {
	BaseModel
	RunID           uuid.UUID `gorm:"not null;index"`
	Position        int       `gorm:"not null"` // catalog order
	ShortName       string    `gorm:"not null;check:short_name <> ''"`
	ImageRepository string    `gorm:"not null;check:image_repository <> ''"`
	ImageTag        string    `gorm:"not null"`
	Service         string    `gorm:"not null"`
	Status          string    `gorm:"not null;check:status <> ''"` // skipped, succeeded, failed, planned
	ExitCode        int       `gorm:"not null"`
	Error           string    `gorm:"type:text"`
}

func (OutcomeModel) TableName() string {
	return "outcomes"
}
