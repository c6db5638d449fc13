package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/pkg/jsonvalue"
	"github.com/agentstation/toolmap/pkg/tagging"
	"github.com/agentstation/toolmap/pkg/validate"
)

func parse(t *testing.T, s string) []jsonvalue.Value {
	t.Helper()
	items, ok := jsonvalue.MustParse(s).AsArray()
	require.True(t, ok)
	return items
}

func TestValidateCleanDataset(t *testing.T) {
	report := validate.New().Validate(parse(t, `[
		{"id":"p1","name":"Foundry","website":"https://getfoundry.sh","repositories":[{"url":"https://github.com/foundry-rs/foundry"}]},
		{"id":2,"name":"Hardhat","url":["https://hardhat.org","https://github.com/NomicFoundation/hardhat"]}
	]`))

	assert.Equal(t, 2, report.Records)
	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Issues)
	assert.NotNil(t, report.Issues)
}

func TestValidateIssues(t *testing.T) {
	report := validate.New().Validate(parse(t, `[
		"oops",
		{"name":"No id"},
		{"id":"p1","name":"First"},
		{"id":"p1","name":"Again"},
		{"id":"p2","name":"  "},
		{"id":"p3","name":"Bad site","website":"not a url"},
		{"id":"p4","name":"Bad repos","repositories":["https://github.com/o/r",{"url":"ftp//broken"}]},
		{"id":"p5","name":"Scalar repos","repositories":"https://github.com/o/r"},
		{"id":["a","b"],"name":"List id"}
	]`))

	type row struct {
		index    int
		field    string
		severity validate.Severity
		message  string
	}
	var got []row
	for _, issue := range report.Issues {
		got = append(got, row{issue.Index, issue.Field, issue.Severity, issue.Message})
	}

	assert.Equal(t, []row{
		{0, "", validate.SeverityError, "record is a string, not an object"},
		{1, "id", validate.SeverityError, "id is missing or blank"},
		{3, "id", validate.SeverityError, "duplicate id, first seen at record 2"},
		{4, "name", validate.SeverityWarning, "name is missing or blank"},
		{5, "website[0]", validate.SeverityError, "website[0] is not a valid URL: not a url"},
		{6, "repositories[0]", validate.SeverityError, "repositories[0] is a string, not an object"},
		{6, "repositories[1].url", validate.SeverityError, "url is not a valid URL: ftp//broken"},
		{7, "repositories", validate.SeverityError, "repositories is a string, not a list"},
		{8, "id", validate.SeverityError, "id must be a scalar, got array"},
	}, got)

	assert.Equal(t, 8, report.Errors)
	assert.Equal(t, 1, report.Warnings)
	assert.True(t, report.HasErrors())
	assert.Equal(t, "p1", report.Issues[2].ID)
}

func TestValidateNumericAndStringIDsDiffer(t *testing.T) {
	report := validate.New().Validate(parse(t, `[
		{"id":1,"name":"a"},
		{"id":"1","name":"b"},
		{"id":1.0,"name":"c"}
	]`))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, 2, report.Issues[0].Index)
}

func TestValidateCustomIDField(t *testing.T) {
	report := validate.New(validate.WithIDField("slug")).Validate(parse(t, `[
		{"id":"p1","name":"a"}
	]`))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "slug is missing or blank", report.Issues[0].Message)
}

func TestValidateTags(t *testing.T) {
	tax, err := tagging.ParseTaxonomy([]byte("categories:\n  - id: testing\n  - id: security\n"), "t.yaml")
	require.NoError(t, err)

	records := parse(t, `[
		{"id":"p1","name":"a","tags":["testing","gardening"]},
		{"id":"p2","name":"b","labels":"cooking"}
	]`)

	report := validate.New(validate.WithTaxonomy(tax)).Validate(records)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, validate.SeverityWarning, report.Issues[0].Severity)
	assert.Equal(t, `tag "gardening" is not in the taxonomy`, report.Issues[0].Message)
	assert.False(t, report.HasErrors())

	report = validate.New(validate.WithTaxonomy(tax), validate.WithTagsField("labels")).Validate(records)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "labels", report.Issues[0].Field)

	// Without a taxonomy tags are not checked.
	report = validate.New().Validate(records)
	assert.Empty(t, report.Issues)
}
