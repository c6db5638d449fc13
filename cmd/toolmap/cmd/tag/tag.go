package tag

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/emoji"
	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/dataset"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/logging"
	"github.com/agentstation/toolmap/pkg/tagging"
)

// Options configures one tagging run.
type Options struct {
	InputPath      string
	OutputPath     string
	TaxonomyPath   string
	CheckpointPath string
	Reset          bool
	KeywordsOnly   bool
	Delay          time.Duration
	MaxRetries     int
	MaxTags        int
	MinScore       int
	IDField        string
	TagsField      string
}

// Report describes a finished tagging run.
type Report struct {
	Input          string `json:"input" yaml:"input"`
	Output         string `json:"output" yaml:"output"`
	Checkpoint     string `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	Model          bool   `json:"model" yaml:"model"`
	Total          int    `json:"total" yaml:"total"`
	Tagged         int    `json:"tagged" yaml:"tagged"`
	FromCheckpoint int    `json:"fromCheckpoint" yaml:"from_checkpoint"`
	FromLLM        int    `json:"fromLlm" yaml:"from_llm"`
	FromKeywords   int    `json:"fromKeywords" yaml:"from_keywords"`
	LLMFailures    int    `json:"llmFailures" yaml:"llm_failures"`
	Untagged       int    `json:"untagged" yaml:"untagged"`
	Skipped        int    `json:"skipped" yaml:"skipped"`
}

// Run tags the input dataset and writes the result. The dataset is not
// written when the run is interrupted; the checkpoint keeps the progress.
func Run(ctx context.Context, app application.Application, opts Options) (*Report, error) {
	ctx = logging.WithDataset(logging.WithLogger(ctx, app.Logger()), opts.InputPath)
	ctx = logging.WithOperation(ctx, "tag")
	logger := logging.FromContext(ctx)
	if opts.OutputPath == "" {
		opts.OutputPath = opts.InputPath
	}

	records, err := dataset.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}

	taxonomy, err := tagging.LoadTaxonomy(opts.TaxonomyPath)
	if err != nil {
		return nil, errors.NewDatasetError("taxonomy", opts.TaxonomyPath, err)
	}

	keywords := tagging.NewKeywordCategorizer(taxonomy)
	if opts.MaxTags > 0 {
		keywords.MaxTags = opts.MaxTags
	}
	if opts.MinScore > 0 {
		keywords.MinScore = opts.MinScore
	}

	runnerOpts := []tagging.RunnerOption{
		tagging.WithDelay(opts.Delay),
		tagging.WithRetries(opts.MaxRetries, constants.RetryBackoff),
		tagging.WithFields(opts.IDField, opts.TagsField),
		tagging.WithRunnerLogger(logger),
	}

	llm, err := newLLMTagger(ctx, app, taxonomy, opts)
	if err != nil {
		return nil, err
	}
	if llm != nil {
		runnerOpts = append(runnerOpts, tagging.WithLLM(llm))
	}

	if opts.CheckpointPath != "" {
		if opts.Reset {
			if err := os.Remove(opts.CheckpointPath); err != nil && !os.IsNotExist(err) {
				return nil, errors.WrapIO("remove", opts.CheckpointPath, err)
			}
		}
		cp, err := tagging.LoadCheckpoint(opts.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if cp.Len() > 0 {
			logger.Info().Str("checkpoint", opts.CheckpointPath).Int("records", cp.Len()).Msg("Resuming from checkpoint")
		}
		runnerOpts = append(runnerOpts, tagging.WithCheckpoint(cp, opts.CheckpointPath))
	}

	runner := tagging.NewRunner(keywords, runnerOpts...)
	tagged, summary, err := runner.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	if err := dataset.WriteFile(opts.OutputPath, tagged); err != nil {
		return nil, err
	}
	logger.Info().Str("output", opts.OutputPath).Int("tagged", summary.Tagged).Msg("Wrote tagged dataset")

	return &Report{
		Input:          opts.InputPath,
		Output:         opts.OutputPath,
		Checkpoint:     opts.CheckpointPath,
		Model:          llm != nil,
		Total:          summary.Total,
		Tagged:         summary.Tagged,
		FromCheckpoint: summary.FromCheckpoint,
		FromLLM:        summary.FromLLM,
		FromKeywords:   summary.FromKeywords,
		LLMFailures:    summary.LLMFailures,
		Untagged:       summary.Untagged,
		Skipped:        summary.Skipped,
	}, nil
}

// newLLMTagger returns nil when the model is disabled or has no key.
func newLLMTagger(ctx context.Context, app application.Application, taxonomy *tagging.Taxonomy, opts Options) (*tagging.LLMTagger, error) {
	if opts.KeywordsOnly {
		return nil, nil
	}
	gen, err := app.Generator(ctx)
	if err != nil {
		if errors.IsAPIKeyError(err) {
			logging.FromContext(ctx).Warn().Msg("No language model key configured, tagging by keywords only")
			return nil, nil
		}
		return nil, err
	}
	llm := tagging.NewLLMTagger(gen, taxonomy)
	if opts.MaxTags > 0 {
		llm.MaxTags = opts.MaxTags
	}
	return llm, nil
}

type line struct {
	label string
	value any
}

// WriteText writes the summary block printed after a run.
func (r *Report) WriteText(w io.Writer) error {
	source := "keywords"
	if r.Model {
		source = "language model with keyword fallback"
	}
	if _, err := fmt.Fprintf(w, "%s Tagged %d of %d records (%s)\n", emoji.Success, r.Tagged, r.Total, source); err != nil {
		return err
	}
	lines := []line{
		{"Output", r.Output},
		{"From checkpoint", r.FromCheckpoint},
		{"From model", r.FromLLM},
		{"From keywords", r.FromKeywords},
		{"Model failures", r.LLMFailures},
		{"Untagged", r.Untagged},
		{"Skipped", r.Skipped},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %-16s %v\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	if r.Checkpoint != "" {
		if _, err := fmt.Fprintf(w, "%s Progress saved to %s\n", emoji.Info, r.Checkpoint); err != nil {
			return err
		}
	}
	return nil
}
