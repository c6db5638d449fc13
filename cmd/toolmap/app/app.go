// Package app provides the application context and dependency management
// for the toolmap CLI. It centralizes configuration, logging and the lazily
// created remote clients that commands receive through the
// application.Application interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/github"
	"github.com/agentstation/toolmap/pkg/tagging"
)

// App represents the toolmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Remote clients (lazy-initialized, singletons)
	mu        sync.Mutex
	generator tagging.Generator
	github    github.LanguageFetcher
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the format selected with --format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns the configured dataset conventions.
func (a *App) Settings() application.Settings {
	return a.config.Settings()
}

// Generator returns the Gemini generator, creating it on first use.
// It fails with errors.ErrAPIKeyRequired when no key is configured.
func (a *App) Generator(ctx context.Context) (tagging.Generator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.generator != nil {
		return a.generator, nil
	}

	gen, err := tagging.NewGeminiGenerator(ctx, a.config.GeminiAPIKey, a.config.TagModel)
	if err != nil {
		return nil, err
	}
	a.generator = gen
	return gen, nil
}

// LanguageFetcher returns the GitHub client, creating it on first use.
// Requests are unauthenticated when no token is configured.
func (a *App) LanguageFetcher() github.LanguageFetcher {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.github == nil {
		a.github = github.NewClient(
			github.WithBaseURL(a.config.GitHubAPIURL),
			github.WithToken(a.config.GitHubToken),
		)
	}
	return a.github
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithGenerator sets the tagging model (useful for testing).
func WithGenerator(gen tagging.Generator) Option {
	return func(a *App) error {
		a.generator = gen
		return nil
	}
}

// WithLanguageFetcher sets the GitHub client (useful for testing).
func WithLanguageFetcher(fetcher github.LanguageFetcher) Option {
	return func(a *App) error {
		a.github = fetcher
		return nil
	}
}

var _ application.Application = (*App)(nil)
