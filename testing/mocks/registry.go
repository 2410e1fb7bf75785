package mocks

import (
	"context"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/hpi-schul-cloud/sc-app-deploy/registry"
)

// MockRegistryClient implements the RegistryClient interface for testing
type MockRegistryClient struct {
	LoginFunc     func(ctx context.Context) (registry.AuthToken, error)
	TagExistsFunc func(ctx context.Context, repository, tag string) (domain.TagStatus, error)

	LoginCalls int
	// CheckedRepositories lists the repositories passed to TagExists, in order.
	CheckedRepositories []string
}

func (m *MockRegistryClient) Login(ctx context.Context) (registry.AuthToken, error) {
	m.LoginCalls++
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return "mock-token", nil
}

func (m *MockRegistryClient) TagExists(ctx context.Context, repository, tag string) (domain.TagStatus, error) {
	m.CheckedRepositories = append(m.CheckedRepositories, repository)
	if m.TagExistsFunc != nil {
		return m.TagExistsFunc(ctx, repository, tag)
	}
	return domain.TagExists, nil
}
