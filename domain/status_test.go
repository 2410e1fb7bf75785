package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeStatus_RoundTrip(t *testing.T) {
	for _, status := range []OutcomeStatus{OutcomeUnknown, OutcomeSkipped, OutcomeSucceeded, OutcomeFailed, OutcomePlanned} {
		t.Run(status.String(), func(t *testing.T) {
			parsed, err := ParseOutcomeStatus(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		})
	}

	_, err := ParseOutcomeStatus("deployed")
	assert.Error(t, err)
}

func TestRunStatus_RoundTrip(t *testing.T) {
	for _, status := range []RunStatus{RunStatusUnknown, RunStatusSucceeded, RunStatusNoImagesDeployed, RunStatusFailed} {
		t.Run(status.String(), func(t *testing.T) {
			parsed, err := ParseRunStatus(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		})
	}

	_, err := ParseRunStatus("")
	assert.Error(t, err)
}

func TestTagStatus_String(t *testing.T) {
	assert.Equal(t, "exists", TagExists.String())
	assert.Equal(t, "not_found", TagNotFound.String())
}
