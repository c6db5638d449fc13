package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc allows functions to implement Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements the Generator interface.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// LLMTagger asks a language model for the categories of a record.
type LLMTagger struct {
	Generator Generator
	Taxonomy  *Taxonomy
	MaxTags   int
}

// NewLLMTagger creates an LLMTagger.
func NewLLMTagger(gen Generator, taxonomy *Taxonomy) *LLMTagger {
	return &LLMTagger{
		Generator: gen,
		Taxonomy:  taxonomy,
		MaxTags:   constants.DefaultMaxTags,
	}
}

// Tag returns the categories the model picked, restricted to known ids.
func (l *LLMTagger) Tag(ctx context.Context, record *jsonvalue.Object) ([]string, error) {
	text, err := l.Generator.Generate(ctx, l.Prompt(record))
	if err != nil {
		return nil, err
	}
	ids, err := ParseTagResponse(text)
	if err != nil {
		return nil, err
	}
	tags := l.Taxonomy.Filter(ids)
	if l.MaxTags > 0 && len(tags) > l.MaxTags {
		tags = tags[:l.MaxTags]
	}
	return tags, nil
}

// Prompt renders the tagging prompt for a record.
func (l *LLMTagger) Prompt(record *jsonvalue.Object) string {
	var b strings.Builder
	b.WriteString("Classify the following blockchain developer tool into the categories below.\n")
	fmt.Fprintf(&b, "Answer with a JSON array of at most %d category ids, most relevant first. ", l.MaxTags)
	b.WriteString("Use only ids from the list. Answer [] if none apply.\n\nCategories:\n")
	for _, c := range l.Taxonomy.Categories {
		fmt.Fprintf(&b, "- %s: %s", c.ID, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, " (%s)", c.Description)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nTool:\n")
	for _, key := range []string{"name", "description", constants.DefaultTagsField, "website"} {
		if v, ok := record.Get(key); ok && !v.IsBlank() {
			fmt.Fprintf(&b, "%s: %s\n", key, promptText(v))
		}
	}
	return b.String()
}

func promptText(v jsonvalue.Value) string {
	items, ok := v.AsArray()
	if !ok {
		return v.Text()
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Text())
	}
	return strings.Join(parts, ", ")
}

// ParseTagResponse extracts a list of ids from a model answer. The answer
// may be a bare JSON array, an object with a "tags" or "categories" array,
// or either of those wrapped in a markdown code fence.
func ParseTagResponse(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err == nil {
		return ids, nil
	}

	var wrapped struct {
		Tags       []string `json:"tags"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, &errors.ParseError{
			Format:  "json",
			File:    "model response",
			Message: "expected a JSON array of category ids",
			Err:     err,
		}
	}
	if len(wrapped.Tags) > 0 {
		return wrapped.Tags, nil
	}
	return wrapped.Categories, nil
}
