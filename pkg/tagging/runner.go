package tagging

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

// Tag sources reported in run logs.
const (
	SourceCheckpoint = "checkpoint"
	SourceLLM        = "llm"
	SourceKeywords   = "keywords"
)

// RunSummary counts what a Runner did.
type RunSummary struct {
	Total          int `json:"total" yaml:"total"`
	Tagged         int `json:"tagged" yaml:"tagged"`
	FromCheckpoint int `json:"fromCheckpoint" yaml:"from_checkpoint"`
	FromLLM        int `json:"fromLlm" yaml:"from_llm"`
	FromKeywords   int `json:"fromKeywords" yaml:"from_keywords"`
	LLMFailures    int `json:"llmFailures" yaml:"llm_failures"`
	Untagged       int `json:"untagged" yaml:"untagged"`
	Skipped        int `json:"skipped" yaml:"skipped"`
}

// Runner tags a dataset one record at a time.
type Runner struct {
	keywords       *KeywordCategorizer
	llm            *LLMTagger
	checkpoint     *Checkpoint
	checkpointPath string
	idField        string
	field          string
	delay          time.Duration
	maxRetries     int
	backoff        time.Duration
	logger         *zerolog.Logger

	pacer *transport.Pacer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLLM enables model tagging. Keyword tags are used when it fails.
func WithLLM(llm *LLMTagger) RunnerOption {
	return func(r *Runner) {
		r.llm = llm
	}
}

// WithCheckpoint resumes from cp and saves it to path after every record.
// An empty path keeps the checkpoint in memory only.
func WithCheckpoint(cp *Checkpoint, path string) RunnerOption {
	return func(r *Runner) {
		if cp != nil {
			r.checkpoint = cp
		}
		r.checkpointPath = path
	}
}

// WithDelay sets the pause between model requests.
func WithDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.delay = d
	}
}

// WithRetries sets the retry budget and base backoff of model requests.
func WithRetries(maxRetries int, backoff time.Duration) RunnerOption {
	return func(r *Runner) {
		r.maxRetries = maxRetries
		r.backoff = backoff
	}
}

// WithFields sets the identity field and the field receiving tags.
func WithFields(idField, tagsField string) RunnerOption {
	return func(r *Runner) {
		if idField != "" {
			r.idField = idField
		}
		if tagsField != "" {
			r.field = tagsField
		}
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner that always has keyword tagging available.
func NewRunner(keywords *KeywordCategorizer, opts ...RunnerOption) *Runner {
	r := &Runner{
		keywords:   keywords,
		checkpoint: NewCheckpoint(),
		idField:    constants.DefaultIDField,
		field:      constants.DefaultTagsField,
		delay:      constants.DefaultRequestDelay,
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pacer = transport.NewPacer(r.delay, r.maxRetries, r.backoff, func(err error) bool {
		return !errors.IsAPIKeyError(err)
	})
	return r
}

// Checkpoint returns the runner's checkpoint.
func (r *Runner) Checkpoint() *Checkpoint {
	return r.checkpoint
}

// Run tags copies of records and returns them with the summary. Records that
// are not objects or have no id pass through unchanged. When ctx is canceled
// the checkpoint holds every record finished so far.
func (r *Runner) Run(ctx context.Context, records []jsonvalue.Value) ([]jsonvalue.Value, *RunSummary, error) {
	summary := &RunSummary{Total: len(records)}
	out := make([]jsonvalue.Value, len(records))

	for i, v := range records {
		out[i] = v.Clone()
		if err := ctx.Err(); err != nil {
			return out, summary, errors.WrapResource("tag", "dataset", "", err)
		}

		obj, ok := out[i].AsObject()
		if !ok {
			summary.Skipped++
			continue
		}
		idValue, ok := obj.Get(r.idField)
		if !ok || idValue.IsBlank() {
			summary.Skipped++
			continue
		}
		id := idValue.Text()

		tags, source, err := r.tagRecord(ctx, id, obj, summary)
		if err != nil {
			return out, summary, err
		}

		switch source {
		case SourceCheckpoint:
			summary.FromCheckpoint++
		case SourceLLM:
			summary.FromLLM++
		case SourceKeywords:
			summary.FromKeywords++
		}

		if len(tags) == 0 {
			summary.Untagged++
		} else {
			summary.Tagged++
			obj.Set(r.field, stringArray(tags))
		}

		r.logger.Debug().
			Str("record_id", id).
			Str("source", source).
			Strs("tags", tags).
			Msg("Tagged record")

		if source == SourceCheckpoint {
			continue
		}
		r.checkpoint.Record(id, tags)
		if r.checkpointPath != "" {
			if err := r.checkpoint.Save(r.checkpointPath); err != nil {
				return out, summary, err
			}
		}
	}

	return out, summary, nil
}

func (r *Runner) tagRecord(ctx context.Context, id string, obj *jsonvalue.Object, summary *RunSummary) ([]string, string, error) {
	if tags, ok := r.checkpoint.Lookup(id); ok {
		return tags, SourceCheckpoint, nil
	}

	if r.llm != nil {
		tags, err := r.tagWithRetry(ctx, obj)
		if err == nil && len(tags) > 0 {
			return tags, SourceLLM, nil
		}
		if ctx.Err() != nil {
			return nil, "", errors.WrapResource("tag", "record", id, ctx.Err())
		}
		if errors.IsAPIKeyError(err) {
			r.llm = nil
			summary.LLMFailures++
			r.logger.Error().
				Err(err).
				Msg("Model tagging disabled for the rest of the run")
		} else if err != nil {
			summary.LLMFailures++
			r.logger.Warn().
				Err(err).
				Str("record_id", id).
				Msg("Model tagging failed, using keyword tags")
		}
	}

	return r.keywords.Categorize(obj), SourceKeywords, nil
}

func (r *Runner) tagWithRetry(ctx context.Context, obj *jsonvalue.Object) ([]string, error) {
	var tags []string
	attempt := 0
	err := r.pacer.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		tags, err = r.llm.Tag(ctx, obj)
		if err != nil && !errors.IsAPIKeyError(err) {
			r.logger.Debug().
				Err(err).
				Int("attempt", attempt).
				Msg("Model request failed")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func stringArray(items []string) jsonvalue.Value {
	values := make([]jsonvalue.Value, len(items))
	for i, s := range items {
		values[i] = jsonvalue.String(s)
	}
	return jsonvalue.Array(values...)
}
