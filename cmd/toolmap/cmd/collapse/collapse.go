package collapse

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/internal/cmd/emoji"
	"github.com/agentstation/toolmap/pkg/collapse"
	"github.com/agentstation/toolmap/pkg/dataset"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/logging"
)

// Options configures one collapse run.
type Options struct {
	InputPath        string
	OutputPath       string
	IDField          string
	MetadataField    string
	SelfFundingPath  string
	OpRewardsPath    string
	SelfFundingField string
	OpRewardsField   string
	FundingKey       string
}

// Report describes a finished collapse run.
type Report struct {
	Input               string `json:"input" yaml:"input"`
	Output              string `json:"output" yaml:"output"`
	TotalRecords        int    `json:"totalRecords" yaml:"total_records"`
	UniqueIDs           int    `json:"uniqueIds" yaml:"unique_ids"`
	UsedRecords         int    `json:"usedRecords" yaml:"used_records"`
	MergedRecords       int    `json:"mergedRecords" yaml:"merged_records"`
	MissingID           int    `json:"missingId" yaml:"missing_id"`
	MissingMetadata     int    `json:"missingMetadata" yaml:"missing_metadata"`
	OlderRecordsSkipped int    `json:"olderRecordsSkipped" yaml:"older_records_skipped"`
	SelfFundingAttached int    `json:"selfFundingAttached" yaml:"self_funding_attached"`
	OpRewardsAttached   int    `json:"opRewardsAttached" yaml:"op_rewards_attached"`
	Warnings            int    `json:"warnings" yaml:"warnings"`
}

// funding is one auxiliary dataset attached after the merge.
type funding struct {
	name  string
	path  string
	field string
	index *collapse.FundingIndex
}

// Run collapses the input dataset and writes the result. Auxiliary datasets
// are loaded before anything is written, so a failure leaves no output.
func Run(ctx context.Context, opts Options, logger *zerolog.Logger) (*Report, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.OutputPath == "" {
		opts.OutputPath = dataset.DefaultOutputPath(opts.InputPath)
	}
	log := logger.With().Str("input", opts.InputPath).Logger()

	records, format, err := dataset.ReadFileFormat(opts.InputPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("format", format).Int("records", len(records)).Msg("Read dataset")

	fundings := []*funding{
		{name: "self-funding", path: opts.SelfFundingPath, field: opts.SelfFundingField},
		{name: "op-rewards", path: opts.OpRewardsPath, field: opts.OpRewardsField},
	}
	for _, f := range fundings {
		if f.path == "" {
			continue
		}
		entries, err := dataset.ReadFile(f.path)
		if err != nil {
			return nil, errors.NewDatasetError(f.name, f.path, err)
		}
		f.index = collapse.BuildFundingIndex(entries, collapse.FundingOptionsFor(opts.FundingKey))
		log.Debug().
			Str("dataset", f.name).
			Int("projects", f.index.Len()).
			Int("dropped", f.index.Dropped).
			Msg("Indexed funding entries")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapResource("collapse", "dataset", opts.InputPath, err)
	}

	c, err := collapse.New(
		collapse.WithIDField(opts.IDField),
		collapse.WithMetadataField(opts.MetadataField),
		collapse.WithListFields(opts.SelfFundingField, opts.OpRewardsField),
		collapse.WithLogger(&log),
	)
	if err != nil {
		return nil, err
	}
	result := c.Collapse(records)
	for _, w := range result.Warnings {
		log.Warn().Msg(w)
	}

	report := newReport(opts, result)
	for _, f := range fundings {
		if f.index == nil {
			continue
		}
		attached := collapse.AttachFunding(result.Records, opts.IDField, f.field, f.index)
		switch f.name {
		case "self-funding":
			report.SelfFundingAttached = attached
		case "op-rewards":
			report.OpRewardsAttached = attached
		}
	}

	if err := dataset.WriteFile(opts.OutputPath, result.Values()); err != nil {
		return nil, err
	}
	log.Info().
		Str("output", opts.OutputPath).
		Int("unique_ids", report.UniqueIDs).
		Msg("Wrote collapsed dataset")

	return report, nil
}

func newReport(opts Options, result *collapse.Result) *Report {
	s := result.Summary
	return &Report{
		Input:               opts.InputPath,
		Output:              opts.OutputPath,
		TotalRecords:        s.TotalRecords,
		UniqueIDs:           s.UniqueIDs,
		UsedRecords:         s.UsedRecords,
		MergedRecords:       s.MergedRecords,
		MissingID:           s.MissingID,
		MissingMetadata:     s.MissingMetadata,
		OlderRecordsSkipped: s.OlderRecordsSkipped,
		Warnings:            len(result.Warnings),
	}
}

type line struct {
	label string
	value any
}

// WriteText writes the summary block printed after a run.
func (r *Report) WriteText(w io.Writer) error {
	lines := []line{
		{"Input", r.Input},
		{"Output", r.Output},
		{"Total records", r.TotalRecords},
		{"Unique ids", r.UniqueIDs},
		{"Used records", r.UsedRecords},
		{"Merged records", r.MergedRecords},
		{"Missing id", r.MissingID},
		{"Missing metadata", r.MissingMetadata},
		{"Older records skipped", r.OlderRecordsSkipped},
	}
	if r.SelfFundingAttached > 0 {
		lines = append(lines, line{"Self-funding attached", r.SelfFundingAttached})
	}
	if r.OpRewardsAttached > 0 {
		lines = append(lines, line{"OP rewards attached", r.OpRewardsAttached})
	}

	if _, err := fmt.Fprintf(w, "%s Collapsed %d records into %d\n", emoji.Success, r.TotalRecords, r.UniqueIDs); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %-22s %v\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	if r.Warnings > 0 {
		if _, err := fmt.Fprintf(w, "%s %d malformed repository entries dropped (see log)\n", emoji.Warning, r.Warnings); err != nil {
			return err
		}
	}
	return nil
}
