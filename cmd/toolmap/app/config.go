package app

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
)

// envPrefix namespaces the dataset settings in the environment (TOOLMAP_ID_FIELD).
const envPrefix = "toolmap"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Dataset conventions
	IDField          string
	MetadataField    string
	FundingKey       string
	SelfFundingField string
	OpRewardsField   string
	TagsField        string

	// Tagging
	TaxonomyPath   string
	TagModel       string
	CheckpointPath string

	// Remote requests
	RequestDelay time.Duration
	MaxRetries   int
	GitHubAPIURL string

	// Secrets
	GitHubToken  string
	GeminiAPIKey string

	// Logging configuration. LogLevel is only set by --log-level; the
	// LOG_LEVEL environment variable lands in EnvLogLevel.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.toolmap.yaml / ./.toolmap.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".toolmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file: "+err.Error(), err)
		}
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		IDField:          v.GetString("id_field"),
		MetadataField:    v.GetString("metadata_field"),
		FundingKey:       v.GetString("funding_key"),
		SelfFundingField: v.GetString("self_funding_field"),
		OpRewardsField:   v.GetString("op_rewards_field"),
		TagsField:        v.GetString("tags_field"),

		TaxonomyPath:   v.GetString("taxonomy_path"),
		TagModel:       v.GetString("tag_model"),
		CheckpointPath: v.GetString("checkpoint_path"),

		RequestDelay: v.GetDuration("request_delay"),
		MaxRetries:   v.GetInt("max_retries"),
		GitHubAPIURL: v.GetString("github_api_url"),

		GitHubToken:  strings.TrimSpace(v.GetString("github_token")),
		GeminiAPIKey: strings.TrimSpace(v.GetString("gemini_api_key")),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Settings returns the dataset conventions commands work with.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		IDField:          c.IDField,
		MetadataField:    c.MetadataField,
		FundingKey:       c.FundingKey,
		SelfFundingField: c.SelfFundingField,
		OpRewardsField:   c.OpRewardsField,
		TagsField:        c.TagsField,
		TaxonomyPath:     c.TaxonomyPath,
		TagModel:         c.TagModel,
		CheckpointPath:   c.CheckpointPath,
		RequestDelay:     c.RequestDelay,
		MaxRetries:       c.MaxRetries,
		GitHubAPIURL:     c.GitHubAPIURL,
	}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevel = logLevel
}

func (c *Config) validate() error {
	if c.MaxRetries < 0 {
		return errors.NewConfigError("max_retries", "must not be negative", nil)
	}
	if c.RequestDelay < 0 {
		return errors.NewConfigError("request_delay", "must not be negative", nil)
	}
	fields := []struct{ key, value string }{
		{"id_field", c.IDField},
		{"metadata_field", c.MetadataField},
		{"funding_key", c.FundingKey},
		{"self_funding_field", c.SelfFundingField},
		{"op_rewards_field", c.OpRewardsField},
		{"tags_field", c.TagsField},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.NewConfigError(f.key, "must not be empty", nil)
		}
	}
	return nil
}

// setDefaults registers the built-in values of every config key.
func setDefaults(v *viper.Viper) {
	defaults := application.DefaultSettings()
	v.SetDefault("id_field", defaults.IDField)
	v.SetDefault("metadata_field", defaults.MetadataField)
	v.SetDefault("funding_key", defaults.FundingKey)
	v.SetDefault("self_funding_field", defaults.SelfFundingField)
	v.SetDefault("op_rewards_field", defaults.OpRewardsField)
	v.SetDefault("tags_field", defaults.TagsField)
	v.SetDefault("taxonomy_path", defaults.TaxonomyPath)
	v.SetDefault("tag_model", defaults.TagModel)
	v.SetDefault("checkpoint_path", defaults.CheckpointPath)
	v.SetDefault("request_delay", constants.DefaultRequestDelay)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("github_api_url", defaults.GitHubAPIURL)
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// Try to load .env files in order of precedence
	// .env.local overrides .env
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindSecrets binds API credentials to their conventional, unprefixed
// environment variables. The first variable that is set wins.
func bindSecrets(v *viper.Viper) error {
	secrets := map[string][]string{
		"github_token":   {"GITHUB_TOKEN", "GH_TOKEN"},
		"gemini_api_key": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	for key, envs := range secrets {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return errors.NewConfigError(key, "cannot bind environment variables", err)
		}
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
