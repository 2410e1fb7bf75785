package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun() *domain.Run {
	start := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	return &domain.Run{
		ID:         uuid.MustParse("6f1c2f1e-2b7a-4d1e-9a3c-0d2f4b5c6a7e"),
		Branch:     domain.BranchHotfix,
		Qualifier:  "abc123",
		Target:     domain.TargetTeam,
		TeamNumber: 6,
		Host:       domain.Host{Hostname: "hotfix6", DomainSuffix: "schul-cloud.dev"},
		Tag:        "hotfix_ABC123_latest",
		Status:     domain.RunStatusSucceeded,
		StartedAt:  start,
		FinishedAt: start.Add(95 * time.Second),
		Outcomes: []domain.Outcome{
			{
				Application: domain.Application{ShortName: "server", ImageRepository: "schulcloud/schulcloud-server", ImageTag: "hotfix_ABC123_latest"},
				Service:     "hotfix6_server",
				Status:      domain.OutcomeSucceeded,
			},
			{
				Application: domain.Application{ShortName: "client", ImageRepository: "schulcloud/schulcloud-client", ImageTag: "hotfix_ABC123_latest"},
				Service:     "hotfix6_client",
				Status:      domain.OutcomeFailed,
				ExitCode:    255,
			},
			{
				Application: domain.Application{ShortName: "calendar", ImageRepository: "schulcloud/schulcloud-calendar", ImageTag: "hotfix_ABC123_latest"},
				Service:     "hotfix6_calendar",
				Status:      domain.OutcomeSkipped,
			},
		},
	}
}

func TestColorFunctions(t *testing.T) {
	originalNoColor := color.NoColor
	defer func() {
		color.NoColor = originalNoColor
		maybeColorize = nil
	}()

	color.NoColor = false
	InitColors(true)
	assert.Equal(t, "test message", maybeColorize(Success, "test message"))

	InitColors(false)
	assert.Greater(t, len(maybeColorize(Success, "test message")), len("test message"))
}

func TestPrintMessage(t *testing.T) {
	defer func() { maybeColorize = nil }()
	InitColors(true)

	assert.Equal(t, "hello world\n", PrintMessage(Plain, "hello %s", "world"))
	assert.Equal(t, "failed: boom\n", PrintMessage(Error, "failed: %s", "boom"))
}

func TestFprintHelpers(t *testing.T) {
	defer func() { maybeColorize = nil }()
	InitColors(true)

	cmd := &cobra.Command{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	require.NoError(t, FprintPlain(cmd, "plain %d", 1))
	require.NoError(t, FprintSuccess(cmd, "success"))
	require.NoError(t, FprintWarning(cmd, "warning"))
	require.NoError(t, FprintError(cmd, "error"))

	assert.Equal(t, "plain 1\nsuccess\n", stdout.String())
	assert.Equal(t, "warning\nerror\n", stderr.String())
}

func TestPrintTable(t *testing.T) {
	out, err := PrintTable([]string{"Name", "Value"}, [][]string{{"a", "1"}, {"bb", "22"}})
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "bb")
	assert.Contains(t, out, "22")
}

func TestPrintRunDetails(t *testing.T) {
	out, err := PrintRunDetails(testRun())
	require.NoError(t, err)

	assert.Contains(t, out, "6f1c2f1e-2b7a-4d1e-9a3c-0d2f4b5c6a7e")
	assert.Contains(t, out, "hotfix_ABC123_latest")
	assert.Contains(t, out, "hotfix6.schul-cloud.dev")
	assert.Contains(t, out, "1m35s")
	assert.Contains(t, out, "hotfix6_client")
	assert.Contains(t, out, "exit code 255")
	assert.Contains(t, out, "tag not found")
	assert.NotContains(t, out, "Error")
}

func TestPrintRunDetails_FailedBeforeDeploy(t *testing.T) {
	run := &domain.Run{
		ID:        uuid.New(),
		Branch:    domain.BranchFeature,
		Status:    domain.RunStatusFailed,
		Error:     "failed to resolve tag: missing qualifier",
		StartedAt: time.Now(),
	}

	out, err := PrintRunDetails(run)
	require.NoError(t, err)
	assert.Contains(t, out, "missing qualifier")
	assert.Contains(t, out, "failed")
	assert.NotContains(t, strings.ToUpper(out), "APPLICATION")
}

func TestPrintRunList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out, err := PrintRunList(nil)
		require.NoError(t, err)
		assert.Equal(t, "No deployment runs found.\n", out)
	})

	t.Run("runs", func(t *testing.T) {
		dry := testRun()
		dry.ID = uuid.New()
		dry.DryRun = true

		out, err := PrintRunList([]*domain.Run{testRun(), dry})
		require.NoError(t, err)
		assert.Contains(t, out, "2024-03-05 14:07:09")
		assert.Contains(t, out, "1/3")
		assert.Contains(t, out, "(dry run)")
		assert.Contains(t, out, "succeeded")
	})
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty value", input: "", expected: "(not set)"},
		{name: "single character", input: "a", expected: "*"},
		{name: "two characters", input: "ab", expected: "**"},
		{name: "three characters", input: "abc", expected: "a*c"},
		{name: "exactly 8 characters", input: "password", expected: "p******d"},
		{name: "long value", input: "verylongsecretpassword", expected: "ver****************ord"},
		{name: "docker token", input: "dckr_pat_1234567890", expected: "dck*************890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskSecret(tt.input))
		})
	}
}

func TestNoColorFlag(t *testing.T) {
	f := &noColorFlag{}
	assert.False(t, f.IsSet())
	assert.Equal(t, "false", f.String())
	assert.Equal(t, "bool", f.Type())
	assert.True(t, f.IsBoolFlag())

	require.NoError(t, f.Set(""))
	assert.True(t, f.IsSet())
	assert.Equal(t, "true", f.String())
}
