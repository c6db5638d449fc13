// Package tag implements the tag command.
package tag

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/output"
	"github.com/agentstation/toolmap/pkg/constants"
)

// Flags holds the flags of the tag command.
type Flags struct {
	Output       string
	Taxonomy     string
	Checkpoint   string
	NoCheckpoint bool
	Reset        bool
	KeywordsOnly bool
	Delay        time.Duration
	Retries      int
	MaxTags      int
	MinScore     int
	Field        string
}

// NewCommand creates the tag command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "tag inputPath [outputPath]",
		Short: "Assign taxonomy categories to every record",
		Long: `Tag assigns taxonomy categories to the records of a dataset.

Each record is sent to the configured language model (GEMINI_API_KEY) with the
taxonomy and the model's answer is filtered to known category ids. Records are
tagged by keyword scoring when no key is configured, with --keywords-only, or
when the model keeps failing.

Progress is saved to a checkpoint file after every record, so an interrupted
run resumes where it stopped. The dataset is rewritten in place unless an
output path is given.`,
		Example: `  toolmap tag projects.json
  toolmap tag projects.json tagged.json --taxonomy taxonomy.yaml
  toolmap tag projects.json --keywords-only --max-tags 2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := resolveOptions(app.Settings(), cmd, flags, args)
			report, err := Run(cmd.Context(), app, opts)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), report, report.WriteText)
		},
	}

	cmd.Flags().StringVar(&flags.Output, "output", "", "output file (default rewrites the input)")
	cmd.Flags().StringVar(&flags.Taxonomy, "taxonomy", "", "taxonomy YAML file (default built-in taxonomy)")
	cmd.Flags().StringVar(&flags.Checkpoint, "checkpoint", "", "checkpoint file (default "+constants.DefaultCheckpointPath+")")
	cmd.Flags().BoolVar(&flags.NoCheckpoint, "no-checkpoint", false, "keep progress in memory only")
	cmd.Flags().BoolVar(&flags.Reset, "reset", false, "ignore an existing checkpoint and tag every record again")
	cmd.Flags().BoolVar(&flags.KeywordsOnly, "keywords-only", false, "tag by keyword scoring without the language model")
	cmd.Flags().DurationVar(&flags.Delay, "delay", 0, "pause between model requests (default from config)")
	cmd.Flags().IntVar(&flags.Retries, "retries", 0, "retries per record after a failed model request (default from config)")
	cmd.Flags().IntVar(&flags.MaxTags, "max-tags", constants.DefaultMaxTags, "maximum categories per record")
	cmd.Flags().IntVar(&flags.MinScore, "min-score", constants.DefaultMinKeywordScore, "minimum keyword score for a category")
	cmd.Flags().StringVar(&flags.Field, "field", "", "field receiving the tags (default from config)")

	return cmd
}

// resolveOptions combines settings, flags and positional arguments.
func resolveOptions(settings application.Settings, cmd *cobra.Command, flags *Flags, args []string) Options {
	opts := Options{
		InputPath:      args[0],
		OutputPath:     flags.Output,
		TaxonomyPath:   settings.TaxonomyPath,
		CheckpointPath: settings.CheckpointPath,
		Reset:          flags.Reset,
		KeywordsOnly:   flags.KeywordsOnly,
		Delay:          settings.RequestDelay,
		MaxRetries:     settings.MaxRetries,
		MaxTags:        flags.MaxTags,
		MinScore:       flags.MinScore,
		IDField:        settings.IDField,
		TagsField:      settings.TagsField,
	}
	if len(args) > 1 && args[1] != "" {
		opts.OutputPath = args[1]
	}
	if flags.Taxonomy != "" {
		opts.TaxonomyPath = flags.Taxonomy
	}
	if flags.Checkpoint != "" {
		opts.CheckpointPath = flags.Checkpoint
	}
	if flags.NoCheckpoint {
		opts.CheckpointPath = ""
	}
	if cmd.Flags().Changed("delay") {
		opts.Delay = flags.Delay
	}
	if cmd.Flags().Changed("retries") {
		opts.MaxRetries = flags.Retries
	}
	if flags.Field != "" {
		opts.TagsField = flags.Field
	}
	return opts
}
