// Package application provides the application interface for toolmap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            settings := app.Settings()
//	            logger := app.Logger()
//	            // ... read, transform and write the dataset
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    GeneratorFunc: func(ctx context.Context) (tagging.Generator, error) {
//	        return fakeGenerator, nil
//	    },
//	}
//	cmd := tag.NewCommand(mock)
package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/github"
	"github.com/agentstation/toolmap/pkg/tagging"
)

// Settings carries the dataset conventions and request limits commands share.
// Values come from the config file and environment; command flags override them.
type Settings struct {
	IDField          string
	MetadataField    string
	FundingKey       string
	SelfFundingField string
	OpRewardsField   string
	TagsField        string

	TaxonomyPath   string
	TagModel       string
	CheckpointPath string

	RequestDelay time.Duration
	MaxRetries   int
	GitHubAPIURL string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		IDField:          constants.DefaultIDField,
		MetadataField:    constants.DefaultMetadataField,
		FundingKey:       constants.DefaultFundingKeyField,
		SelfFundingField: constants.DefaultSelfFundingField,
		OpRewardsField:   constants.DefaultOpRewardsField,
		TagsField:        constants.DefaultTagsField,
		TagModel:         constants.DefaultTagModel,
		CheckpointPath:   constants.DefaultCheckpointPath,
		RequestDelay:     constants.DefaultRequestDelay,
		MaxRetries:       constants.MaxRetries,
		GitHubAPIURL:     constants.GitHubAPIURL,
	}
}

// Application provides the application interface that commands need.
// The App struct from cmd/toolmap/app implements this interface.
type Application interface {
	// Settings returns the configured dataset conventions.
	Settings() Settings

	// Generator returns the language model used for tagging. It fails with an
	// error matching errors.ErrAPIKeyRequired when no key is configured.
	Generator(ctx context.Context) (tagging.Generator, error)

	// LanguageFetcher returns the GitHub client used for enrichment.
	LanguageFetcher() github.LanguageFetcher

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (text, table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
