package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/pkg/errors"
)

// isolate runs the test from an empty directory with an empty home so no
// .env or .toolmap.yaml file of the developer leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, key := range []string{
		"GITHUB_TOKEN", "GH_TOKEN", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"TOOLMAP_ID_FIELD", "TOOLMAP_REQUEST_DELAY", "TOOLMAP_MAX_RETRIES", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, application.DefaultSettings(), config.Settings())
	assert.Empty(t, config.GitHubToken)
	assert.Empty(t, config.GeminiAPIKey)
	assert.Empty(t, config.ConfigFile)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Empty(t, config.LogLevel)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("TOOLMAP_ID_FIELD", "slug")
	t.Setenv("TOOLMAP_REQUEST_DELAY", "250ms")
	t.Setenv("TOOLMAP_MAX_RETRIES", "5")
	t.Setenv("GOOGLE_API_KEY", " g-key ")
	t.Setenv("GITHUB_TOKEN", "ghp_token")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "slug", config.IDField)
	assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, "g-key", config.GeminiAPIKey)
	assert.Equal(t, "ghp_token", config.GitHubToken)
	assert.Equal(t, "debug", config.EnvLogLevel)
	assert.Empty(t, config.LogLevel)
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("GEMINI_API_KEY") })

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", config.GeminiAPIKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
id_field: slug
metadata_field: updated
request_delay: 2s
checkpoint_path: tags.checkpoint.json
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "slug", config.IDField)
	assert.Equal(t, "updated", config.MetadataField)
	assert.Equal(t, 2*time.Second, config.RequestDelay)
	assert.Equal(t, "tags.checkpoint.json", config.CheckpointPath)
}

func TestLoadConfigSearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".toolmap.yaml"), []byte("tags_field: categories\n"), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "categories", config.TagsField)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_retries: -1\n"), 0o644))
	_, err = LoadConfig(bad)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "max_retries", cfgErr.Component)

	for _, key := range []string{"id_field", "metadata_field", "funding_key", "self_funding_field", "op_rewards_field", "tags_field"} {
		t.Run("empty "+key, func(t *testing.T) {
			path := filepath.Join(dir, key+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(key+": \"  \"\n"), 0o644))

			_, err := LoadConfig(path)
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, key, cfgErr.Component)
		})
	}
}

func TestConfigUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml"}

	config.UpdateFromFlags(true, false, true, "", "trace")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "trace", config.LogLevel)

	config.UpdateFromFlags(false, true, false, "json", "")
	assert.Equal(t, "json", config.Format)
	assert.Empty(t, config.LogLevel)
}
