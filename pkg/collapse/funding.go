package collapse

import (
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// FundingOptions describes the shape of an auxiliary funding dataset.
type FundingOptions struct {
	// KeyField holds the project identity in each funding entry.
	KeyField string

	// AmountField holds the funded amount; zero or unparsable amounts are dropped.
	AmountField string

	// RoundFields are checked in order for the round identifier.
	RoundFields []string

	// UpdatedField orders duplicate entries for the same round.
	UpdatedField string

	// StripFields are removed from entries before they are attached.
	StripFields []string
}

// DefaultFundingOptions returns the layout used by the self-reported funding
// and program reward exports.
func DefaultFundingOptions() FundingOptions {
	return FundingOptionsFor(constants.DefaultFundingKeyField)
}

// FundingOptionsFor returns the default layout joined on keyField.
func FundingOptionsFor(keyField string) FundingOptions {
	return FundingOptions{
		KeyField:     keyField,
		AmountField:  "amount",
		RoundFields:  []string{"round_id", "round"},
		UpdatedField: "updated_at",
		StripFields:  []string{"id", keyField},
	}
}

// FundingIndex maps a project identity to its funding entries.
type FundingIndex struct {
	opts    FundingOptions
	entries map[string][]*jsonvalue.Object

	// Dropped counts entries without a project key or a meaningful amount.
	Dropped int
}

// BuildFundingIndex groups funding entries by project identity.
func BuildFundingIndex(records []jsonvalue.Value, opts FundingOptions) *FundingIndex {
	idx := &FundingIndex{opts: opts, entries: make(map[string][]*jsonvalue.Object)}
	for _, v := range records {
		entry, ok := v.AsObject()
		if !ok {
			idx.Dropped++
			continue
		}
		key, ok := entry.Get(opts.KeyField)
		if !ok || key.IsBlank() {
			idx.Dropped++
			continue
		}
		amount, _ := entry.Get(opts.AmountField)
		if !MeaningfulAmount(amount) {
			idx.Dropped++
			continue
		}
		k := strings.TrimSpace(key.Text())
		idx.entries[k] = append(idx.entries[k], entry)
	}
	return idx
}

// Len returns the number of projects with funding entries.
func (idx *FundingIndex) Len() int {
	return len(idx.entries)
}

// Entries returns the funding entries for a project identity.
func (idx *FundingIndex) Entries(key string) []*jsonvalue.Object {
	return idx.entries[strings.TrimSpace(key)]
}

// MeaningfulAmount reports whether v is a non-zero number or a string that
// parses as one. Thousands separators and a leading currency sign are allowed.
func MeaningfulAmount(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.KindNumber:
		f, ok := v.AsFloat()
		return ok && f != 0 && !math.IsNaN(f)
	case jsonvalue.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}

// AttachFunding unions the index's entries into field on every record whose
// idField matches a project key. Entries are deduplicated by round; for the
// same round the entry with the later updated timestamp wins. It returns the
// number of records that received funding.
func AttachFunding(records []*jsonvalue.Object, idField, field string, idx *FundingIndex) int {
	attached := 0
	for _, record := range records {
		id, ok := record.Get(idField)
		if !ok || id.IsBlank() {
			continue
		}
		incoming := idx.Entries(id.Text())
		if len(incoming) == 0 {
			continue
		}

		var combined []*jsonvalue.Object
		if existing, ok := record.Get(field); ok {
			combined = append(combined, fundingObjects(existing)...)
		}
		combined = append(combined, incoming...)

		record.Set(field, jsonvalue.Array(idx.dedupe(combined)...))
		attached++
	}
	return attached
}

// fundingObjects accepts a single entry or a list of entries.
func fundingObjects(v jsonvalue.Value) []*jsonvalue.Object {
	if obj, ok := v.AsObject(); ok {
		return []*jsonvalue.Object{obj}
	}
	items, _ := v.AsArray()
	var out []*jsonvalue.Object
	for _, item := range items {
		if obj, ok := item.AsObject(); ok {
			out = append(out, obj)
		}
	}
	return out
}

func (idx *FundingIndex) dedupe(entries []*jsonvalue.Object) []jsonvalue.Value {
	var order []string
	winners := make(map[string]*jsonvalue.Object)
	for _, entry := range entries {
		clean := entry.Clone()
		for _, f := range idx.opts.StripFields {
			clean.Delete(f)
		}
		key := idx.roundKey(clean)
		current, ok := winners[key]
		if !ok {
			order = append(order, key)
			winners[key] = clean
			continue
		}
		if idx.newer(clean, current) {
			winners[key] = clean
		}
	}

	out := make([]jsonvalue.Value, 0, len(order))
	for _, key := range order {
		out = append(out, jsonvalue.FromObject(winners[key]))
	}
	return out
}

func (idx *FundingIndex) roundKey(entry *jsonvalue.Object) string {
	for _, f := range idx.opts.RoundFields {
		if v, ok := entry.Get(f); ok && !v.IsBlank() {
			return "round:" + strings.TrimSpace(v.Text())
		}
	}
	return "hash:" + jsonvalue.FromObject(entry).Key()
}

// newer reports whether candidate should replace current. Parsed timestamps
// decide first; an entry with a timestamp beats one without; otherwise the
// canonical forms are compared and the greater one wins.
func (idx *FundingIndex) newer(candidate, current *jsonvalue.Object) bool {
	cv, _ := candidate.Get(idx.opts.UpdatedField)
	pv, _ := current.Get(idx.opts.UpdatedField)
	cf, cok := ParseFreshness(cv)
	pf, pok := ParseFreshness(pv)
	switch {
	case cok && pok:
		if cmp := cf.Compare(pf); cmp != 0 {
			return cmp > 0
		}
	case cok:
		return true
	case pok:
		return false
	}
	return jsonvalue.FromObject(candidate).Key() > jsonvalue.FromObject(current).Key()
}
