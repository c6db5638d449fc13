// Package enrich implements the enrich command.
package enrich

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/output"
)

// Flags holds the flags of the enrich command.
type Flags struct {
	Output  string
	Delay   time.Duration
	Retries int
}

// NewCommand creates the enrich command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "enrich inputPath [outputPath]",
		Short: "Add GitHub language statistics to repositories",
		Long: `Enrich looks up every GitHub repository of the dataset and stores its
language statistics on the repository and a combined language list, ordered
by size, on the record.

Requests are sent one at a time with a pause between them. Set GITHUB_TOKEN to
raise the API rate limit. Repositories that no longer exist are skipped. The
dataset is rewritten in place unless an output path is given.`,
		Example: `  toolmap enrich projects.json
  GITHUB_TOKEN=ghp_... toolmap enrich projects.json enriched.json --delay 250ms`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.Settings()
			opts := Options{
				InputPath:  args[0],
				OutputPath: flags.Output,
				Delay:      settings.RequestDelay,
				MaxRetries: settings.MaxRetries,
			}
			if len(args) > 1 && args[1] != "" {
				opts.OutputPath = args[1]
			}
			if cmd.Flags().Changed("delay") {
				opts.Delay = flags.Delay
			}
			if cmd.Flags().Changed("retries") {
				opts.MaxRetries = flags.Retries
			}

			report, err := Run(cmd.Context(), app, opts)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), report, report.WriteText)
		},
	}

	cmd.Flags().StringVar(&flags.Output, "output", "", "output file (default rewrites the input)")
	cmd.Flags().DurationVar(&flags.Delay, "delay", 0, "pause between requests (default from config)")
	cmd.Flags().IntVar(&flags.Retries, "retries", 0, "retries after a rate-limited or failed request (default from config)")

	return cmd
}
