package enrich

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/emoji"
	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/dataset"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/github"
	"github.com/agentstation/toolmap/pkg/logging"
)

// Options configures one enrich run.
type Options struct {
	InputPath  string
	OutputPath string
	Delay      time.Duration
	MaxRetries int
}

// Report describes a finished enrich run.
type Report struct {
	Input        string `json:"input" yaml:"input"`
	Output       string `json:"output" yaml:"output"`
	Records      int    `json:"records" yaml:"records"`
	Repositories int    `json:"repositories" yaml:"repositories"`
	Enriched     int    `json:"enriched" yaml:"enriched"`
	Skipped      int    `json:"skipped" yaml:"skipped"`
	NotFound     int    `json:"notFound" yaml:"not_found"`
	Failed       int    `json:"failed" yaml:"failed"`
	Requests     int    `json:"requests" yaml:"requests"`
}

// authenticator is implemented by clients that know whether they send credentials.
type authenticator interface {
	Authenticated() bool
}

// Run enriches the input dataset and writes the result. Nothing is written
// when the run stops early.
func Run(ctx context.Context, app application.Application, opts Options) (*Report, error) {
	ctx = logging.WithDataset(logging.WithLogger(ctx, app.Logger()), opts.InputPath)
	ctx = logging.WithService(logging.WithOperation(ctx, "enrich"), "github")
	logger := logging.FromContext(ctx)
	if opts.OutputPath == "" {
		opts.OutputPath = opts.InputPath
	}

	records, err := dataset.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}

	fetcher := app.LanguageFetcher()
	if fetcher == nil {
		return nil, errors.NewConfigError("github", "no GitHub client configured", nil)
	}
	if a, ok := fetcher.(authenticator); ok && !a.Authenticated() {
		logger.Warn().Msg("GITHUB_TOKEN is not set, requests are subject to the unauthenticated rate limit")
	}

	enricher := github.NewEnricher(fetcher,
		github.WithDelay(opts.Delay),
		github.WithRetries(opts.MaxRetries, constants.RetryBackoff),
		github.WithLogger(logger),
	)
	enriched, summary, err := enricher.Enrich(ctx, records)
	if err != nil {
		return nil, err
	}

	if err := dataset.WriteFile(opts.OutputPath, enriched); err != nil {
		return nil, err
	}
	logger.Info().Str("output", opts.OutputPath).Int("enriched", summary.Enriched).Msg("Wrote enriched dataset")

	return &Report{
		Input:        opts.InputPath,
		Output:       opts.OutputPath,
		Records:      summary.Records,
		Repositories: summary.Repositories,
		Enriched:     summary.Enriched,
		Skipped:      summary.Skipped,
		NotFound:     summary.NotFound,
		Failed:       summary.Failed,
		Requests:     summary.Requests,
	}, nil
}

// WriteText writes the summary block printed after a run.
func (r *Report) WriteText(w io.Writer) error {
	symbol := emoji.Success
	if r.Failed > 0 {
		symbol = emoji.Warning
	}
	if _, err := fmt.Fprintf(w, "%s Enriched %d of %d repositories\n", symbol, r.Enriched, r.Repositories); err != nil {
		return err
	}
	lines := []struct {
		label string
		value any
	}{
		{"Output", r.Output},
		{"Records", r.Records},
		{"Skipped", r.Skipped},
		{"Not found", r.NotFound},
		{"Failed", r.Failed},
		{"Requests", r.Requests},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %-14s %v\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	return nil
}
