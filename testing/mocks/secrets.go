package mocks

// MockSecretProvisioner implements the SecretProvisioner interface for testing
type MockSecretProvisioner struct {
	Configured  bool
	DecryptFunc func(outputPath string) error

	DecryptCalls []string
}

func (m *MockSecretProvisioner) IsConfigured() bool {
	return m.Configured
}

func (m *MockSecretProvisioner) Decrypt(outputPath string) error {
	m.DecryptCalls = append(m.DecryptCalls, outputPath)
	if m.DecryptFunc != nil {
		return m.DecryptFunc(outputPath)
	}
	return nil
}
