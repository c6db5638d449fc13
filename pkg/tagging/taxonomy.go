// Package tagging assigns taxonomy categories to dataset records.
//
// Two taggers are provided. KeywordCategorizer scores records against the
// keywords of each category and needs no network access. LLMTagger asks a
// language model to pick categories and only keeps ids the taxonomy knows.
// Runner drives either over a dataset, one record at a time, and keeps a
// checkpoint so an interrupted run resumes where it stopped.
package tagging

import (
	_ "embed"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/toolmap/pkg/errors"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Category is one taxonomy entry.
type Category struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Taxonomy is the ordered set of categories a record can be tagged with.
type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`

	index map[string]int
}

// DefaultTaxonomy returns the embedded taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomy, "taxonomy.yaml")
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTaxonomy reads a taxonomy from a YAML file.
// An empty path returns the embedded taxonomy.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "taxonomy", ID: path}
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseTaxonomy(data, path)
}

// ParseTaxonomy decodes and checks a YAML taxonomy.
func ParseTaxonomy(data []byte, name string) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if len(t.Categories) == 0 {
		return nil, &errors.ValidationError{Field: "categories", Message: "taxonomy has no categories"}
	}

	t.index = make(map[string]int, len(t.Categories))
	for i, c := range t.Categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, &errors.ValidationError{Field: "categories.id", Value: i, Message: "category id cannot be empty"}
		}
		if _, dup := t.index[id]; dup {
			return nil, &errors.ValidationError{Field: "categories.id", Value: id, Message: "duplicate category id"}
		}
		t.Categories[i].ID = id
		if t.Categories[i].Name == "" {
			t.Categories[i].Name = id
		}
		t.index[id] = i
	}
	return &t, nil
}

// Has reports whether id names a category.
func (t *Taxonomy) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Get returns the category with the given id.
func (t *Taxonomy) Get(id string) (Category, bool) {
	i, ok := t.index[id]
	if !ok {
		return Category{}, false
	}
	return t.Categories[i], true
}

// IDs returns all category ids in taxonomy order.
func (t *Taxonomy) IDs() []string {
	ids := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		ids[i] = c.ID
	}
	return ids
}

// Filter keeps the known ids of tags, deduplicated, in their given order.
func (t *Taxonomy) Filter(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		id := strings.TrimSpace(tag)
		if t.Has(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
