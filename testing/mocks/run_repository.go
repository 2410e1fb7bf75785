package mocks

import (
	"github.com/google/uuid"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// MockRunRepository implements the RunRepository interface for testing
type MockRunRepository struct {
	RecordFunc   func(run *domain.Run) error
	ListFunc     func(limit int) ([]*domain.Run, error)
	FindByIDFunc func(id uuid.UUID) (*domain.Run, error)

	Recorded []*domain.Run
}

func (m *MockRunRepository) Record(run *domain.Run) error {
	m.Recorded = append(m.Recorded, run)
	if m.RecordFunc != nil {
		return m.RecordFunc(run)
	}
	return nil
}

func (m *MockRunRepository) List(limit int) ([]*domain.Run, error) {
	if m.ListFunc != nil {
		return m.ListFunc(limit)
	}
	return []*domain.Run{}, nil
}

func (m *MockRunRepository) FindByID(id uuid.UUID) (*domain.Run, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return &domain.Run{ID: id}, nil
}
