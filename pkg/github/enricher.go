package github

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/internal/transport"
	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
	"github.com/agentstation/toolmap/pkg/logging"
)

// LanguageFetcher returns the languages of a repository.
type LanguageFetcher interface {
	Languages(ctx context.Context, owner, repo string) ([]Language, error)
}

// EnrichSummary counts what an Enricher did.
type EnrichSummary struct {
	Records      int `json:"records" yaml:"records"`
	Repositories int `json:"repositories" yaml:"repositories"`
	Enriched     int `json:"enriched" yaml:"enriched"`
	Skipped      int `json:"skipped" yaml:"skipped"`
	NotFound     int `json:"notFound" yaml:"not_found"`
	Failed       int `json:"failed" yaml:"failed"`
	Requests     int `json:"requests" yaml:"requests"`
}

// Enricher attaches language statistics to the repositories of records.
type Enricher struct {
	fetcher           LanguageFetcher
	repositoriesField string
	languagesField    string
	delay             time.Duration
	maxRetries        int
	backoff           time.Duration
	logger            *zerolog.Logger

	pacer *transport.Pacer
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithDelay sets the pause between requests.
func WithDelay(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.delay = d
	}
}

// WithRetries sets the retry budget and base backoff.
func WithRetries(maxRetries int, backoff time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.maxRetries = maxRetries
		e.backoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFields sets the repositories field read and the languages field written.
func WithFields(repositoriesField, languagesField string) EnricherOption {
	return func(e *Enricher) {
		if repositoriesField != "" {
			e.repositoriesField = repositoriesField
		}
		if languagesField != "" {
			e.languagesField = languagesField
		}
	}
}

// NewEnricher creates an Enricher.
func NewEnricher(fetcher LanguageFetcher, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		fetcher:           fetcher,
		repositoriesField: constants.RepositoriesField,
		languagesField:    constants.LanguagesField,
		delay:             constants.DefaultRequestDelay,
		maxRetries:        constants.MaxRetries,
		backoff:           constants.RetryBackoff,
		logger:            logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pacer = transport.NewPacer(e.delay, e.maxRetries, e.backoff, errors.IsRetryable)
	return e
}

// Enrich returns copies of records with a languages object on every GitHub
// repository and a record-level languages list ordered by total bytes.
// Repositories that no longer exist are skipped. Authentication failures and
// cancellation stop the run.
func (e *Enricher) Enrich(ctx context.Context, records []jsonvalue.Value) ([]jsonvalue.Value, *EnrichSummary, error) {
	summary := &EnrichSummary{}
	out := make([]jsonvalue.Value, len(records))
	cache := make(map[string][]Language)

	for i, v := range records {
		out[i] = v.Clone()
		obj, ok := out[i].AsObject()
		if !ok {
			continue
		}
		summary.Records++

		reposValue, ok := obj.Get(e.repositoriesField)
		if !ok {
			continue
		}
		repos, ok := reposValue.AsArray()
		if !ok {
			if repoObj, isObj := reposValue.AsObject(); isObj {
				repos = []jsonvalue.Value{jsonvalue.FromObject(repoObj)}
			}
		}

		totals := make(map[string]int64)
		for _, rv := range repos {
			repoObj, ok := rv.AsObject()
			if !ok {
				continue
			}
			summary.Repositories++

			urlValue, _ := repoObj.Get("url")
			repo, ok := ParseRepoURL(urlValue.Text())
			if !ok {
				summary.Skipped++
				continue
			}

			langs, cached := cache[repo.String()]
			if !cached {
				var err error
				langs, err = e.fetch(ctx, repo)
				summary.Requests = e.pacer.Requests()
				switch {
				case err == nil:
					cache[repo.String()] = langs
				case errors.IsNotFound(err):
					summary.NotFound++
					cache[repo.String()] = nil
					e.logger.Warn().Str("repo", repo.String()).Msg("Repository not found, skipping")
					continue
				case errors.IsAPIKeyError(err), ctx.Err() != nil:
					return out, summary, err
				default:
					summary.Failed++
					e.logger.Error().Err(err).Str("repo", repo.String()).Msg("Failed to fetch languages")
					continue
				}
			}
			if langs == nil {
				summary.NotFound++
				continue
			}

			repoObj.Set(e.languagesField, languageObject(langs))
			for _, l := range langs {
				totals[l.Name] += l.Bytes
			}
			summary.Enriched++
		}

		if len(totals) > 0 {
			obj.Set(e.languagesField, languageNames(totals))
		}
	}

	return out, summary, nil
}

func (e *Enricher) fetch(ctx context.Context, repo Repo) ([]Language, error) {
	var langs []Language
	attempt := 0
	err := e.pacer.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		langs, err = e.fetcher.Languages(ctx, repo.Owner, repo.Name)
		if err != nil && errors.IsRetryable(err) {
			e.logger.Debug().
				Err(err).
				Str("repo", repo.String()).
				Int("attempt", attempt).
				Msg("Language request failed")
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapResource("fetch", "languages", repo.String(), err)
		}
		return nil, err
	}
	if langs == nil {
		langs = []Language{}
	}
	return langs, nil
}

func languageObject(langs []Language) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	for _, l := range langs {
		obj.Set(l.Name, jsonvalue.Int(l.Bytes))
	}
	return jsonvalue.FromObject(obj)
}

func languageNames(totals map[string]int64) jsonvalue.Value {
	langs := sortLanguages(totals)
	names := make([]jsonvalue.Value, len(langs))
	for i, l := range langs {
		names[i] = jsonvalue.String(l.Name)
	}
	return jsonvalue.Array(names...)
}
