// Package collapse merges records that describe the same entity.
//
// Records are grouped by an identity field. For each identity only the
// freshest records survive, judged by a metadata field such as
// last_metadata_update; records tied on freshness are merged field by field
// into one output record. Repository data, whether it arrives as a
// repositories list or as flat repo_<attr> fields, is normalized into a single
// deduplicated repositories list.
//
// Example:
//
//	c, err := collapse.New(collapse.WithIDField("id"))
//	if err != nil {
//	    return err
//	}
//	result := c.Collapse(records)
//	fmt.Println(result.Summary.UniqueIDs)
package collapse

import (
	"fmt"

	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// Collapser groups and merges records.
type Collapser struct {
	opts *Options
}

// New creates a Collapser with default options overridden by opts.
func New(opts ...Option) (*Collapser, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Collapser{opts: options}, nil
}

// Options returns a copy of the collapser's configuration.
func (c *Collapser) Options() Options {
	return *c.opts
}

// Summary counts what happened to the input records.
type Summary struct {
	TotalRecords        int `json:"totalRecords" yaml:"total_records"`
	UniqueIDs           int `json:"uniqueIds" yaml:"unique_ids"`
	UsedRecords         int `json:"usedRecords" yaml:"used_records"`
	MergedRecords       int `json:"mergedRecords" yaml:"merged_records"`
	MissingID           int `json:"missingId" yaml:"missing_id"`
	MissingMetadata     int `json:"missingMetadata" yaml:"missing_metadata"`
	OlderRecordsSkipped int `json:"olderRecordsSkipped" yaml:"older_records_skipped"`
}

// Result is the outcome of Collapse.
type Result struct {
	// Records holds one merged record per identity, in first-seen order.
	Records []*jsonvalue.Object

	Summary Summary

	// Warnings lists input shapes that were dropped during normalization.
	Warnings []string
}

// Values returns the merged records as JSON values.
func (r *Result) Values() []jsonvalue.Value {
	out := make([]jsonvalue.Value, len(r.Records))
	for i, rec := range r.Records {
		out[i] = jsonvalue.FromObject(rec)
	}
	return out
}

// group collects the freshest records seen so far for one identity.
type group struct {
	id        jsonvalue.Value
	freshness Freshness
	records   []*jsonvalue.Object
}

// Collapse groups records by identity, keeps the freshest group for each
// identity and merges it into a single record.
func (c *Collapser) Collapse(records []jsonvalue.Value) *Result {
	logger := c.opts.Logger
	result := &Result{
		Records: []*jsonvalue.Object{},
		Summary: Summary{TotalRecords: len(records)},
	}

	var order []string
	groups := make(map[string]*group)

	for i, v := range records {
		record, ok := v.AsObject()
		if !ok {
			result.Summary.MissingID++
			logger.Debug().Int("index", i).Str("kind", v.Kind().String()).Msg("Skipping non-object record")
			continue
		}

		id, ok := record.Get(c.opts.IDField)
		if !ok || id.IsBlank() {
			result.Summary.MissingID++
			logger.Debug().Int("index", i).Str("field", c.opts.IDField).Msg("Skipping record without id")
			continue
		}

		meta, ok := record.Get(c.opts.MetadataField)
		if !ok {
			result.Summary.MissingMetadata++
			logger.Debug().Int("index", i).Str("id", id.Text()).Msg("Skipping record without metadata")
			continue
		}
		fresh, ok := ParseFreshness(meta)
		if !ok {
			result.Summary.MissingMetadata++
			logger.Debug().Int("index", i).Str("id", id.Text()).Msg("Skipping record with empty metadata")
			continue
		}

		key := identityKey(id)
		g, exists := groups[key]
		if !exists {
			groups[key] = &group{id: id, freshness: fresh, records: []*jsonvalue.Object{record}}
			order = append(order, key)
			continue
		}

		switch cmp := fresh.Compare(g.freshness); {
		case cmp > 0:
			result.Summary.OlderRecordsSkipped += len(g.records)
			g.freshness = fresh
			g.records = []*jsonvalue.Object{record}
		case cmp == 0:
			g.records = append(g.records, record)
		default:
			result.Summary.OlderRecordsSkipped++
		}
	}

	for _, key := range order {
		g := groups[key]
		result.Summary.UniqueIDs++
		result.Summary.UsedRecords += len(g.records)
		warn := func(msg string) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", g.id.Text(), msg))
		}
		result.Records = append(result.Records, c.mergeGroup(g, warn))
	}
	result.Summary.MergedRecords = result.Summary.UsedRecords - result.Summary.UniqueIDs

	logger.Debug().
		Int("total", result.Summary.TotalRecords).
		Int("unique", result.Summary.UniqueIDs).
		Int("older_skipped", result.Summary.OlderRecordsSkipped).
		Msg("Collapsed records")

	return result
}

// identityKey keeps string and numeric ids distinct.
func identityKey(id jsonvalue.Value) string {
	return id.Key()
}

// mergeGroup builds the output record for one identity.
func (c *Collapser) mergeGroup(g *group, warn func(string)) *jsonvalue.Object {
	merged := jsonvalue.NewObject()
	merged.Set(c.opts.IDField, g.id.Clone())

	var order []string
	seen := make(map[string]bool)
	hasRepos := false
	for _, record := range g.records {
		record.Range(func(key string, _ jsonvalue.Value) bool {
			if key == c.opts.IDField {
				return true
			}
			if key == c.opts.RepositoriesField || c.isRepoField(key) {
				if !hasRepos {
					hasRepos = true
					order = append(order, c.opts.RepositoriesField)
				}
				return true
			}
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
			return true
		})
	}

	for _, key := range order {
		if key == c.opts.RepositoriesField && hasRepos {
			var repos []*jsonvalue.Object
			for _, record := range g.records {
				repos = append(repos, c.recordRepositories(record, warn)...)
			}
			merged.Set(key, jsonvalue.Array(mergeRepositories(repos)...))
			continue
		}

		var values []jsonvalue.Value
		for _, record := range g.records {
			if v, ok := record.Get(key); ok {
				values = append(values, v)
			}
		}
		value := MergeValues(nil, values...).Clone()
		if c.opts.isListField(key) && value.Kind() != jsonvalue.KindArray {
			value = jsonvalue.Array(value)
		}
		merged.Set(key, value)
	}

	return merged
}
