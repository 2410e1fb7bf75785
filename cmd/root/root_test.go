package root

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SCDEPLOY_DATA_DIR", "")
	t.Setenv("SCDEPLOY_DATABASE_PATH", "")
	t.Setenv("SCDEPLOY_LOG_LEVEL", "")
	t.Setenv("SCDEPLOY_REGISTRY_BACKEND", "")
	t.Setenv("SCDEPLOY_DOCKER_TOKEN_ENCRYPTED", "")
	t.Cleanup(func() {
		app.Shutdown()
		closeLogFile()
	})

	cmd := NewCmdRoot(t.TempDir())
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewCmdRoot(t *testing.T) {
	cmd := NewCmdRoot("/test/data/dir")

	assert.Equal(t, "sc-app-deploy", cmd.Use)
	assert.NotNil(t, cmd.PersistentPreRunE)

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"deploy", "history", "token", "config", "version"} {
		assert.Contains(t, names, expected, "Expected subcommand %s not found", expected)
	}
}

func TestNewCmdRootFlags(t *testing.T) {
	cmd := NewCmdRoot("/test/data/dir")

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "data-dir", shorthand: "d", defValue: "/test/data/dir"},
		{name: "log-level", shorthand: "l", defValue: "info"},
		{name: "no-color", shorthand: "c", defValue: "false"},
		{name: "log-dir"},
		{name: "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestCommandInitLevel(t *testing.T) {
	root := NewCmdRoot("/test/data/dir")

	tests := []struct {
		args []string
		want initLevel
	}{
		{args: []string{"version"}, want: initNone},
		{args: []string{"token", "encrypt"}, want: initConfig},
		{args: []string{"config", "show"}, want: initConfig},
		{args: []string{"deploy", "develop"}, want: initFull},
		{args: []string{"history", "list"}, want: initFull},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			cmd, _, err := root.Find(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, commandInitLevel(cmd))
		})
	}

	assert.Equal(t, initNone, commandInitLevel(root))
}

func TestExecute_Version(t *testing.T) {
	out, err := executeRoot(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestExecute_ConfigOnly(t *testing.T) {
	dataDir := t.TempDir()

	out, err := executeRoot(t, "--data-dir", dataDir, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, dataDir)
	assert.NoFileExists(t, filepath.Join(dataDir, "sc-app-deploy.db"))
}

func TestExecute_FullInitialization(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	logDir := filepath.Join(t.TempDir(), "logs")

	out, err := executeRoot(t, "--data-dir", dataDir, "--log-dir", logDir, "history", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No deployment runs found.")
	assert.FileExists(t, filepath.Join(dataDir, "sc-app-deploy.db"))

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "sc-app-deploy-history-list")
}

func TestExecute_InvalidCatalog(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("applications: [\n"), 0o644))

	_, err := executeRoot(t, "--data-dir", t.TempDir(), "--catalog", catalog, "history", "list")

	assert.ErrorContains(t, err, "failed to initialize application")
}
