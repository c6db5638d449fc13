package validate

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/internal/cmd/emoji"
	"github.com/agentstation/toolmap/internal/cmd/output"
	"github.com/agentstation/toolmap/pkg/dataset"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/tagging"
	"github.com/agentstation/toolmap/pkg/validate"
)

// Options configures one validation run.
type Options struct {
	InputPath    string
	IDField      string
	TagsField    string
	TaxonomyPath string
	CheckTags    bool
	Strict       bool
}

// Result pairs a validation report with the file it describes.
type Result struct {
	Input  string
	Strict bool
	*validate.Report
}

// Run validates the input dataset.
func Run(opts Options, logger *zerolog.Logger) (*Result, error) {
	records, err := dataset.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}

	vopts := []validate.Option{
		validate.WithIDField(opts.IDField),
		validate.WithTagsField(opts.TagsField),
	}
	if opts.CheckTags {
		taxonomy, err := tagging.LoadTaxonomy(opts.TaxonomyPath)
		if err != nil {
			return nil, errors.NewDatasetError("taxonomy", opts.TaxonomyPath, err)
		}
		vopts = append(vopts, validate.WithTaxonomy(taxonomy))
	}

	report := validate.New(vopts...).Validate(records)
	logger.Debug().
		Str("input", opts.InputPath).
		Int("errors", report.Errors).
		Int("warnings", report.Warnings).
		Msg("Validated dataset")

	return &Result{Input: opts.InputPath, Strict: opts.Strict, Report: report}, nil
}

// Err returns a validation error when the dataset did not pass.
func (r *Result) Err() error {
	failed := r.Errors
	if r.Strict {
		failed += r.Warnings
	}
	if failed == 0 {
		return nil
	}
	return errors.NewValidationError("", r.Input,
		fmt.Sprintf("%s has %d errors and %d warnings", r.Input, r.Errors, r.Warnings))
}

// renderData returns the value handed to the structured formatters. Tables
// list the issues; JSON and YAML get the whole report.
func (r *Result) renderData(format string) any {
	if f, _ := output.ParseFormat(format); f == output.FormatTable {
		return r.TableData()
	}
	return r.Report
}

// TableData lists one issue per row.
func (r *Result) TableData() output.Data {
	rows := make([][]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		rows = append(rows, []string{
			strconv.Itoa(issue.Index),
			issue.ID,
			issue.Field,
			string(issue.Severity),
			issue.Message,
		})
	}
	return output.Data{
		Headers:         []string{"Record", "ID", "Field", "Severity", "Message"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignRight, output.AlignLeft, output.AlignLeft, output.AlignCenter, output.AlignLeft},
	}
}

// WriteText lists the issues followed by a summary line.
func (r *Result) WriteText(w io.Writer) error {
	for _, issue := range r.Issues {
		symbol := emoji.Error
		if issue.Severity == validate.SeverityWarning {
			symbol = emoji.Warning
		}
		where := fmt.Sprintf("record %d", issue.Index)
		if issue.ID != "" {
			where += " (" + issue.ID + ")"
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", symbol, where, issue.Message); err != nil {
			return err
		}
	}

	symbol := emoji.Success
	if r.HasErrors() {
		symbol = emoji.Error
	} else if r.Warnings > 0 {
		symbol = emoji.Warning
	}
	_, err := fmt.Fprintf(w, "%s %s: %d records, %d errors, %d warnings\n", symbol, r.Input, r.Records, r.Errors, r.Warnings)
	return err
}
