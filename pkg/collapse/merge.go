package collapse

import "github.com/agentstation/toolmap/pkg/jsonvalue"

// MergeValues unions values into a single field value. List values are
// flattened one level, null and empty strings are dropped and duplicates are
// removed by structural equality, keeping first-seen order. A single
// surviving value is returned as a scalar; several come back as a list.
// When nothing survives, existing is returned, or an empty list if existing
// is nil.
func MergeValues(existing *jsonvalue.Value, values ...jsonvalue.Value) jsonvalue.Value {
	unique := uniqueValues(values)
	switch len(unique) {
	case 0:
		if existing != nil {
			return *existing
		}
		return jsonvalue.Array()
	case 1:
		return unique[0]
	default:
		return jsonvalue.Array(unique...)
	}
}

func uniqueValues(values []jsonvalue.Value) []jsonvalue.Value {
	seen := make(map[string]struct{})
	var out []jsonvalue.Value
	add := func(v jsonvalue.Value) {
		if v.IsEmpty() {
			return
		}
		key := v.Key()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	for _, v := range values {
		if items, ok := v.AsArray(); ok {
			for _, item := range items {
				add(item)
			}
			continue
		}
		add(v)
	}
	return out
}

// mergeObjects folds several objects into one, field by field, with
// MergeValues. Fields keep the order in which they were first seen. The first
// object's value is the fallback when a field has no usable values.
func mergeObjects(objects []*jsonvalue.Object) *jsonvalue.Object {
	if len(objects) == 1 {
		return objects[0].Clone()
	}

	var order []string
	values := make(map[string][]jsonvalue.Value)
	for _, obj := range objects {
		obj.Range(func(key string, v jsonvalue.Value) bool {
			if _, ok := values[key]; !ok {
				order = append(order, key)
			}
			values[key] = append(values[key], v)
			return true
		})
	}

	merged := jsonvalue.NewObject()
	for _, key := range order {
		first := values[key][0]
		merged.Set(key, MergeValues(&first, values[key]...).Clone())
	}
	return merged
}
