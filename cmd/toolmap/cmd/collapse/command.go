// Package collapse implements the collapse command.
package collapse

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/toolmap/cmd/application"
	"github.com/agentstation/toolmap/internal/cmd/output"
	"github.com/agentstation/toolmap/pkg/errors"
)

// Flags holds the flags of the collapse command.
type Flags struct {
	Output           string
	IDField          string
	MetadataField    string
	SelfFunding      string
	OpRewards        string
	SelfFundingField string
	OpRewardsField   string
	FundingKey       string
}

// NewCommand creates the collapse command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "collapse inputPath [outputPath] [idField] [metadataField] [selfFundingPath] [opRewardsPath]",
		Short: "Merge duplicate records into one record per id",
		Long: `Collapse groups the records of a dataset by id, keeps the most recently
updated version of each project and merges every field of the records that
share that version into de-duplicated values.

Repository attributes are folded into a repositories list and funding entries
from optional self-funding and program reward datasets are attached by project
id. The result is written as a JSON array, by default next to the input as
<input>.collapsed.json.`,
		Example: `  toolmap collapse projects.json
  toolmap collapse projects.json merged.json id last_metadata_update
  toolmap collapse projects.json --self-funding funding.json --op-rewards rewards.json
  toolmap collapse projects.ndjson -o json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errors.NewValidationError("inputPath", nil, "an input path is required")
			}
			return cobra.MaximumNArgs(6)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := resolveOptions(app.Settings(), flags, args)
			report, err := Run(cmd.Context(), opts, app.Logger())
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), report, report.WriteText)
		},
	}

	cmd.Flags().StringVar(&flags.Output, "output", "", "output file (default <input>.collapsed.json)")
	cmd.Flags().StringVar(&flags.IDField, "id-field", "", "field identifying a project")
	cmd.Flags().StringVar(&flags.MetadataField, "metadata-field", "", "field ordering versions of a project")
	cmd.Flags().StringVar(&flags.SelfFunding, "self-funding", "", "self-reported funding dataset to attach")
	cmd.Flags().StringVar(&flags.OpRewards, "op-rewards", "", "program rewards dataset to attach")
	cmd.Flags().StringVar(&flags.SelfFundingField, "self-funding-field", "", "field receiving self-reported funding")
	cmd.Flags().StringVar(&flags.OpRewardsField, "op-rewards-field", "", "field receiving program rewards")
	cmd.Flags().StringVar(&flags.FundingKey, "funding-key", "", "funding field holding the project id")

	return cmd
}

// resolveOptions combines settings, flags and positional arguments.
// Positional arguments win over flags, which win over settings.
func resolveOptions(settings application.Settings, flags *Flags, args []string) Options {
	opts := Options{
		IDField:          first(flags.IDField, settings.IDField),
		MetadataField:    first(flags.MetadataField, settings.MetadataField),
		OutputPath:       flags.Output,
		SelfFundingPath:  flags.SelfFunding,
		OpRewardsPath:    flags.OpRewards,
		SelfFundingField: first(flags.SelfFundingField, settings.SelfFundingField),
		OpRewardsField:   first(flags.OpRewardsField, settings.OpRewardsField),
		FundingKey:       first(flags.FundingKey, settings.FundingKey),
	}

	positional := []*string{
		&opts.InputPath,
		&opts.OutputPath,
		&opts.IDField,
		&opts.MetadataField,
		&opts.SelfFundingPath,
		&opts.OpRewardsPath,
	}
	for i, arg := range args {
		if i < len(positional) && arg != "" {
			*positional[i] = arg
		}
	}
	return opts
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
