package mocks

import (
	"context"

	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// DeployCall captures the arguments of one RemoteExecutor.Deploy call
type DeployCall struct {
	Application    domain.Application
	Host           domain.Host
	CredentialPath string
}

// MockRemoteExecutor implements the RemoteExecutor interface for testing
type MockRemoteExecutor struct {
	DeployFunc func(ctx context.Context, app domain.Application, host domain.Host, credentialPath string) error

	Calls []DeployCall
}

func (m *MockRemoteExecutor) Deploy(ctx context.Context, app domain.Application, host domain.Host, credentialPath string) error {
	m.Calls = append(m.Calls, DeployCall{Application: app, Host: host, CredentialPath: credentialPath})
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, app, host, credentialPath)
	}
	return nil
}
