// Package validate checks a dataset for structural defects.
//
// Every record is checked for an identity value, a name and well-formed
// URLs. Identities must be unique, repository entries must be objects, and
// when a taxonomy is configured every tag must belong to it. Defects are
// reported as issues with an error or warning severity; the dataset itself is
// never modified.
package validate

import (
	"fmt"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
	"github.com/agentstation/toolmap/pkg/tagging"
)

// Severity grades an issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one defect found in a record.
type Issue struct {
	Index    int      `json:"index" yaml:"index"`
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// Report is the outcome of a validation run.
type Report struct {
	Records  int     `json:"records" yaml:"records"`
	Errors   int     `json:"errors" yaml:"errors"`
	Warnings int     `json:"warnings" yaml:"warnings"`
	Issues   []Issue `json:"issues" yaml:"issues"`
}

// HasErrors reports whether any error-level issue was found.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

func (r *Report) add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors++
	case SeverityWarning:
		r.Warnings++
	}
	r.Issues = append(r.Issues, issue)
}

// Validator checks records.
type Validator struct {
	idField           string
	repositoriesField string
	tagsField         string
	taxonomy          *tagging.Taxonomy
}

// Option configures a Validator.
type Option func(*Validator)

// WithIDField sets the identity field.
func WithIDField(field string) Option {
	return func(v *Validator) {
		if field != "" {
			v.idField = field
		}
	}
}

// WithTaxonomy enables tag checks against taxonomy.
func WithTaxonomy(taxonomy *tagging.Taxonomy) Option {
	return func(v *Validator) {
		v.taxonomy = taxonomy
	}
}

// WithTagsField sets the field holding taxonomy tags.
func WithTagsField(field string) Option {
	return func(v *Validator) {
		if field != "" {
			v.tagsField = field
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		idField:           constants.DefaultIDField,
		repositoriesField: constants.RepositoriesField,
		tagsField:         constants.DefaultTagsField,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// recordFields is the validated view of a record.
type recordFields struct {
	Name    string   `json:"name" validate:"nonblank"`
	Website []string `json:"website" validate:"omitempty,dive,url"`
	URL     []string `json:"url" validate:"omitempty,dive,url"`
}

// repositoryFields is the validated view of a repository entry.
type repositoryFields struct {
	URL string `json:"url" validate:"omitempty,url"`
}

// warningFields lists record fields whose defects are warnings.
var warningFields = map[string]bool{
	"name": true,
}

// Validate checks every record and returns the report.
func (v *Validator) Validate(records []jsonvalue.Value) *Report {
	eng := getEngine()
	report := &Report{Records: len(records), Issues: []Issue{}}
	firstSeen := make(map[string]int)

	for i, rv := range records {
		obj, ok := rv.AsObject()
		if !ok {
			report.add(Issue{
				Index:    i,
				Severity: SeverityError,
				Message:  fmt.Sprintf("record is %s, not an object", withArticle(rv.Kind())),
			})
			continue
		}

		id := ""
		idValue, hasID := obj.Get(v.idField)
		switch {
		case !hasID || idValue.IsBlank():
			report.add(Issue{
				Index:    i,
				Field:    v.idField,
				Severity: SeverityError,
				Message:  v.idField + " is missing or blank",
			})
		case idValue.Kind() == jsonvalue.KindArray || idValue.Kind() == jsonvalue.KindObject:
			id = idValue.Text()
			report.add(Issue{
				Index:    i,
				ID:       id,
				Field:    v.idField,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s must be a scalar, got %s", v.idField, idValue.Kind()),
			})
		default:
			id = idValue.Text()
			key := idValue.Key()
			if first, dup := firstSeen[key]; dup {
				report.add(Issue{
					Index:    i,
					ID:       id,
					Field:    v.idField,
					Severity: SeverityError,
					Message:  fmt.Sprintf("duplicate %s, first seen at record %d", v.idField, first),
				})
			} else {
				firstSeen[key] = i
			}
		}

		fields := recordFields{
			Name:    textOf(obj, "name"),
			Website: stringsOf(obj, "website"),
			URL:     stringsOf(obj, "url"),
		}
		for _, fi := range eng.fieldIssues(fields, "") {
			severity := SeverityError
			if warningFields[fi.field] {
				severity = SeverityWarning
			}
			report.add(Issue{Index: i, ID: id, Field: fi.field, Severity: severity, Message: fi.message})
		}

		v.checkRepositories(report, eng, i, id, obj)
		v.checkTags(report, i, id, obj)
	}

	return report
}

func (v *Validator) checkRepositories(report *Report, eng *engine, index int, id string, obj *jsonvalue.Object) {
	value, ok := obj.Get(v.repositoriesField)
	if !ok || value.IsNull() {
		return
	}

	items, isArray := value.AsArray()
	if !isArray {
		if _, isObj := value.AsObject(); !isObj {
			report.add(Issue{
				Index:    index,
				ID:       id,
				Field:    v.repositoriesField,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s is %s, not a list", v.repositoriesField, withArticle(value.Kind())),
			})
			return
		}
		items = []jsonvalue.Value{value}
	}

	for j, item := range items {
		prefix := fmt.Sprintf("%s[%d]", v.repositoriesField, j)
		repo, ok := item.AsObject()
		if !ok {
			report.add(Issue{
				Index:    index,
				ID:       id,
				Field:    prefix,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s is %s, not an object", prefix, withArticle(item.Kind())),
			})
			continue
		}
		for _, fi := range eng.fieldIssues(repositoryFields{URL: textOf(repo, "url")}, prefix) {
			report.add(Issue{Index: index, ID: id, Field: fi.field, Severity: SeverityError, Message: fi.message})
		}
	}
}

func (v *Validator) checkTags(report *Report, index int, id string, obj *jsonvalue.Object) {
	if v.taxonomy == nil {
		return
	}
	for _, tag := range stringsOf(obj, v.tagsField) {
		if !v.taxonomy.Has(tag) {
			report.add(Issue{
				Index:    index,
				ID:       id,
				Field:    v.tagsField,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("tag %q is not in the taxonomy", tag),
			})
		}
	}
}

// textOf returns the text of a scalar field, or "" when absent.
func textOf(obj *jsonvalue.Object, key string) string {
	value, ok := obj.Get(key)
	if !ok {
		return ""
	}
	return value.Text()
}

// stringsOf returns the non-empty texts of a scalar or list field.
func stringsOf(obj *jsonvalue.Object, key string) []string {
	value, ok := obj.Get(key)
	if !ok {
		return nil
	}
	items, isArray := value.AsArray()
	if !isArray {
		items = []jsonvalue.Value{value}
	}
	var out []string
	for _, item := range items {
		if item.IsEmpty() {
			continue
		}
		out = append(out, item.Text())
	}
	return out
}

func withArticle(k jsonvalue.Kind) string {
	switch k {
	case jsonvalue.KindNull:
		return "null"
	case jsonvalue.KindArray, jsonvalue.KindObject:
		return "an " + k.String()
	default:
		return "a " + k.String()
	}
}
