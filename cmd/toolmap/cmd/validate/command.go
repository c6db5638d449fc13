// Package validate implements the validate command.
package validate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/output"
)

// Flags holds the flags of the validate command.
type Flags struct {
	IDField  string
	Taxonomy string
	NoTags   bool
	Strict   bool
}

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "validate inputPath",
		Short: "Check a dataset for structural defects",
		Long: `Validate checks every record of a dataset and reports what is wrong with it.

Errors: records that are not objects, missing or duplicate ids, invalid URLs
and repository entries that are not objects. Warnings: missing names and tags
outside the taxonomy. The command fails when any error is found, or any
warning with --strict. The dataset is never modified.`,
		Example: `  toolmap validate projects.collapsed.json
  toolmap validate projects.json --taxonomy taxonomy.yaml -o table
  toolmap validate projects.json --no-tags --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.Settings()
			opts := Options{
				InputPath:    args[0],
				IDField:      settings.IDField,
				TagsField:    settings.TagsField,
				TaxonomyPath: settings.TaxonomyPath,
				CheckTags:    !flags.NoTags,
				Strict:       flags.Strict,
			}
			if flags.IDField != "" {
				opts.IDField = flags.IDField
			}
			if flags.Taxonomy != "" {
				opts.TaxonomyPath = flags.Taxonomy
			}

			result, err := Run(opts, app.Logger())
			if err != nil {
				return err
			}
			if err := output.Render(cmd.OutOrStdout(), app.OutputFormat(), result.renderData(app.OutputFormat()), result.WriteText); err != nil {
				return err
			}
			return result.Err()
		},
	}

	cmd.Flags().StringVar(&flags.IDField, "id-field", "", "field identifying a project (default from config)")
	cmd.Flags().StringVar(&flags.Taxonomy, "taxonomy", "", "taxonomy YAML file for tag checks (default built-in taxonomy)")
	cmd.Flags().BoolVar(&flags.NoTags, "no-tags", false, "skip taxonomy checks of tags")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "fail on warnings as well as errors")

	return cmd
}
