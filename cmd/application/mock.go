package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/github"
	"github.com/agentstation/toolmap/pkg/tagging"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    SettingsFunc: func() application.Settings {
//	        s := application.DefaultSettings()
//	        s.IDField = "slug"
//	        return s
//	    },
//	}
//	cmd := collapse.NewCommand(mock)
type Mock struct {
	SettingsFunc        func() Settings
	GeneratorFunc       func(ctx context.Context) (tagging.Generator, error)
	LanguageFetcherFunc func() github.LanguageFetcher
	LoggerFunc          func() *zerolog.Logger
	OutputFormatFunc    func() string
	VersionFunc         func() string
	CommitFunc          func() string
	DateFunc            func() string
	BuiltByFunc         func() string
}

// Settings returns settings using the mock function or the defaults with
// request delays disabled.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	s := DefaultSettings()
	s.RequestDelay = 0
	s.CheckpointPath = ""
	return s
}

// Generator returns a generator using the mock function or a missing-key error.
func (m *Mock) Generator(ctx context.Context) (tagging.Generator, error) {
	if m.GeneratorFunc != nil {
		return m.GeneratorFunc(ctx)
	}
	return nil, &errors.AuthenticationError{
		Service: "gemini",
		Method:  "api_key",
		Message: "not configured",
		Err:     errors.ErrAPIKeyRequired,
	}
}

// LanguageFetcher returns a fetcher using the mock function or nil.
func (m *Mock) LanguageFetcher() github.LanguageFetcher {
	if m.LanguageFetcherFunc != nil {
		return m.LanguageFetcherFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "text".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "text"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
