package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/github"
	"github.com/agentstation/toolmap/pkg/logging"
	"github.com/agentstation/toolmap/pkg/tagging"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	isolate(t)
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", opts...)
	require.NoError(t, err)
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	assert.Equal(t, "id", app.Settings().IDField)
}

func TestApp_GeneratorRequiresKey(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Generator(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestApp_GeneratorOverride(t *testing.T) {
	gen := tagging.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "[]", nil
	})
	app := newTestApp(t, WithGenerator(gen))

	got, err := app.Generator(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// TestApp_LanguageFetcher_Singleton verifies that LanguageFetcher() returns the same instance.
func TestApp_LanguageFetcher_Singleton(t *testing.T) {
	app := newTestApp(t)
	app.Config().GitHubToken = "ghp_token"

	first := app.LanguageFetcher()
	second := app.LanguageFetcher()
	if first != second {
		t.Error("LanguageFetcher() returned different instances, expected singleton")
	}

	client, ok := first.(*github.Client)
	require.True(t, ok)
	assert.True(t, client.Authenticated())
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecute_Version(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "version")
	require.NoError(t, err)
	assert.Equal(t, "toolmap 1.0.0\n", out)

	out, err = execute(t, app, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:   abc123")
}

func TestExecute_InvalidFormat(t *testing.T) {
	app := newTestApp(t)

	_, err := execute(t, app, "version", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestExecute_CollapseWithConfigFile(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()

	config := filepath.Join(dir, "toolmap.yaml")
	require.NoError(t, os.WriteFile(config, []byte("id_field: slug\nmetadata_field: updated\n"), 0o644))
	input := filepath.Join(dir, "projects.json")
	require.NoError(t, os.WriteFile(input, []byte(`[
		{"slug":"a","updated":1,"name":"x"},
		{"slug":"a","updated":1,"name":"y"}
	]`), 0o644))

	out, err := execute(t, app, "collapse", input, "--config", config, "-o", "yaml", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "unique_ids: 1")
	assert.Contains(t, out, "merged_records: 1")
	assert.Equal(t, "yaml", app.OutputFormat())
	assert.Equal(t, "slug", app.Settings().IDField)
	assert.FileExists(t, filepath.Join(dir, "projects.collapsed.json"))
}

func TestExecute_UnknownCommand(t *testing.T) {
	app := newTestApp(t)

	_, err := execute(t, app, "frobnicate")
	assert.Error(t, err)
}
