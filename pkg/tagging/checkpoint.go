package tagging

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/agentstation/toolmap/pkg/dataset"
	"github.com/agentstation/toolmap/pkg/errors"
)

// Checkpoint maps record ids to the tags already assigned to them.
type Checkpoint struct {
	Tags map[string][]string
}

// NewCheckpoint returns an empty checkpoint.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{Tags: make(map[string][]string)}
}

// LoadCheckpoint reads a checkpoint file. A missing file yields an empty
// checkpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCheckpoint(), nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	cp := NewCheckpoint()
	if len(data) == 0 {
		return cp, nil
	}
	if err := json.Unmarshal(data, &cp.Tags); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if cp.Tags == nil {
		cp.Tags = make(map[string][]string)
	}
	return cp, nil
}

// Lookup returns the tags recorded for id.
func (c *Checkpoint) Lookup(id string) ([]string, bool) {
	tags, ok := c.Tags[id]
	return tags, ok
}

// Record stores the tags assigned to id.
func (c *Checkpoint) Record(id string, tags []string) {
	if tags == nil {
		tags = []string{}
	}
	c.Tags[id] = tags
}

// Len returns the number of recorded ids.
func (c *Checkpoint) Len() int {
	return len(c.Tags)
}

// IDs returns the recorded ids in sorted order.
func (c *Checkpoint) IDs() []string {
	ids := make([]string, 0, len(c.Tags))
	for id := range c.Tags {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save writes the checkpoint atomically.
func (c *Checkpoint) Save(path string) error {
	data, err := json.MarshalIndent(c.Tags, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	return dataset.WriteBytes(path, append(data, '\n'))
}
