package collapse

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/logging"
)

// Options configures a Collapser.
type Options struct {
	// IDField groups records that describe the same entity.
	IDField string

	// MetadataField picks the authoritative version among records sharing an id.
	MetadataField string

	// RepositoriesField receives the normalized repository objects.
	RepositoriesField string

	// RepoFieldPrefix marks flat repository attributes such as repo_url.
	RepoFieldPrefix string

	// ListFields are always emitted as lists, even when one value survives.
	// Funding target fields belong here so collapsed output collapses to itself.
	ListFields []string

	// Logger receives debug output about skipped records.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options used by the collapse command.
func DefaultOptions() Options {
	return Options{
		IDField:           constants.DefaultIDField,
		MetadataField:     constants.DefaultMetadataField,
		RepositoriesField: constants.RepositoriesField,
		RepoFieldPrefix:   constants.RepoFieldPrefix,
		ListFields:        []string{constants.DefaultSelfFundingField, constants.DefaultOpRewardsField},
		Logger:            logging.Default(),
	}
}

// Option is a function that configures a Collapser.
type Option func(*Options) error

func (o *Options) apply(opts ...Option) (*Options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*Options, error) {
	defaults := DefaultOptions()
	return defaults.apply(opts...)
}

// WithOptions replaces the whole configuration. Empty fields keep their defaults.
func WithOptions(cfg Options) Option {
	return func(o *Options) error {
		if cfg.IDField != "" {
			o.IDField = cfg.IDField
		}
		if cfg.MetadataField != "" {
			o.MetadataField = cfg.MetadataField
		}
		if cfg.RepositoriesField != "" {
			o.RepositoriesField = cfg.RepositoriesField
		}
		if cfg.RepoFieldPrefix != "" {
			o.RepoFieldPrefix = cfg.RepoFieldPrefix
		}
		if cfg.ListFields != nil {
			o.ListFields = cfg.ListFields
		}
		if cfg.Logger != nil {
			o.Logger = cfg.Logger
		}
		return nil
	}
}

// WithIDField sets the identity field.
func WithIDField(field string) Option {
	return func(o *Options) error {
		if field == "" {
			return &errors.ValidationError{Field: "id_field", Message: "cannot be empty"}
		}
		o.IDField = field
		return nil
	}
}

// WithMetadataField sets the freshness field.
func WithMetadataField(field string) Option {
	return func(o *Options) error {
		if field == "" {
			return &errors.ValidationError{Field: "metadata_field", Message: "cannot be empty"}
		}
		o.MetadataField = field
		return nil
	}
}

// WithListFields sets the fields that are always emitted as lists. Empty
// names are ignored.
func WithListFields(fields ...string) Option {
	return func(o *Options) error {
		o.ListFields = nil
		for _, f := range fields {
			if f != "" {
				o.ListFields = append(o.ListFields, f)
			}
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *Options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.Logger = logger
		return nil
	}
}

func (o *Options) isListField(key string) bool {
	for _, f := range o.ListFields {
		if f == key {
			return true
		}
	}
	return false
}

func (o *Options) validate() error {
	for _, f := range o.ListFields {
		if f == o.IDField || f == o.MetadataField || f == o.RepositoriesField {
			return &errors.ValidationError{
				Field:   "list_fields",
				Value:   f,
				Message: "cannot name the id, metadata or repositories field",
			}
		}
	}
	if o.IDField == o.MetadataField {
		return &errors.ValidationError{
			Field:   "metadata_field",
			Value:   o.MetadataField,
			Message: "must differ from the id field",
		}
	}
	return nil
}
