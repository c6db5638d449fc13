package tagging

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// Field weights used by KeywordCategorizer.
const (
	NameWeight        = 2
	DescriptionWeight = 1
	TagsWeight        = 1
)

// Score is the keyword score of one category for a record.
type Score struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// KeywordCategorizer tags records by whole-word keyword matches.
type KeywordCategorizer struct {
	Taxonomy *Taxonomy

	// MinScore is the lowest score that still assigns a category.
	MinScore int

	// MaxTags caps the number of categories returned.
	MaxTags int

	keywords [][]string
}

// NewKeywordCategorizer creates a categorizer with default thresholds.
func NewKeywordCategorizer(taxonomy *Taxonomy) *KeywordCategorizer {
	k := &KeywordCategorizer{
		Taxonomy: taxonomy,
		MinScore: constants.DefaultMinKeywordScore,
		MaxTags:  constants.DefaultMaxTags,
	}
	k.keywords = make([][]string, len(taxonomy.Categories))
	for i, c := range taxonomy.Categories {
		for _, kw := range c.Keywords {
			if folded := normalize(kw); folded != "" {
				k.keywords[i] = append(k.keywords[i], folded)
			}
		}
	}
	return k
}

// Scores returns the score of every category that matched at least once,
// best first. Ties keep taxonomy order.
func (k *KeywordCategorizer) Scores(record *jsonvalue.Object) []Score {
	fields := []struct {
		text   string
		weight int
	}{
		{fieldText(record, "name"), NameWeight},
		{fieldText(record, "description"), DescriptionWeight},
		{fieldText(record, constants.DefaultTagsField), TagsWeight},
	}

	var scores []Score
	for i, c := range k.Taxonomy.Categories {
		total := 0
		for _, f := range fields {
			if f.text == "" {
				continue
			}
			for _, kw := range k.keywords[i] {
				if strings.Contains(f.text, " "+kw+" ") {
					total += f.weight
				}
			}
		}
		if total > 0 {
			scores = append(scores, Score{Category: c.ID, Score: total})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Categorize returns the category ids that reach MinScore, best first.
func (k *KeywordCategorizer) Categorize(record *jsonvalue.Object) []string {
	var out []string
	for _, s := range k.Scores(record) {
		if s.Score < k.MinScore {
			break
		}
		if k.MaxTags > 0 && len(out) == k.MaxTags {
			break
		}
		out = append(out, s.Category)
	}
	return out
}

// fieldText flattens a record field into normalized text padded with spaces.
func fieldText(record *jsonvalue.Object, key string) string {
	v, ok := record.Get(key)
	if !ok {
		return ""
	}
	var parts []string
	if items, ok := v.AsArray(); ok {
		for _, item := range items {
			parts = append(parts, item.Text())
		}
	} else {
		parts = append(parts, v.Text())
	}
	text := normalize(strings.Join(parts, " "))
	if text == "" {
		return ""
	}
	return " " + text + " "
}

// normalize case-folds s and collapses everything that is not a letter,
// digit or hyphen into single spaces.
func normalize(s string) string {
	folded := cases.Fold().String(s)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}), " ")
}
