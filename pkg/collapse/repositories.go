package collapse

import (
	"fmt"
	"strings"

	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

// repositoryKey picks the identity of a repository object: url, then id,
// then type, then the object's whole canonical form.
func repositoryKey(repo *jsonvalue.Object) string {
	for _, field := range []string{"url", "id", "type"} {
		v, ok := repo.Get(field)
		if !ok || v.IsBlank() {
			continue
		}
		if s, isString := v.AsString(); isString {
			return field + ":" + strings.TrimSpace(s)
		}
		return field + ":" + v.Key()
	}
	return "hash:" + jsonvalue.FromObject(repo).Key()
}

// isRepoField reports whether key is a flat repository attribute such as repo_url.
func (c *Collapser) isRepoField(key string) bool {
	return len(key) > len(c.opts.RepoFieldPrefix) && strings.HasPrefix(key, c.opts.RepoFieldPrefix)
}

// recordRepositories extracts the repository objects a record contributes,
// from its repositories list and from its repo_<attr> fields. Entries that
// are not objects are reported as warnings and dropped.
func (c *Collapser) recordRepositories(record *jsonvalue.Object, warn func(string)) []*jsonvalue.Object {
	var repos []*jsonvalue.Object

	if v, ok := record.Get(c.opts.RepositoriesField); ok {
		switch v.Kind() {
		case jsonvalue.KindArray:
			items, _ := v.AsArray()
			for i, item := range items {
				if obj, isObj := item.AsObject(); isObj {
					repos = append(repos, obj)
					continue
				}
				if !item.IsEmpty() {
					warn(fmt.Sprintf("%s[%d] is a %s, not an object", c.opts.RepositoriesField, i, item.Kind()))
				}
			}
		case jsonvalue.KindObject:
			obj, _ := v.AsObject()
			repos = append(repos, obj)
		case jsonvalue.KindNull:
		case jsonvalue.KindBool, jsonvalue.KindNumber, jsonvalue.KindString:
			if !v.IsEmpty() {
				warn(fmt.Sprintf("%s is a %s, not a list", c.opts.RepositoriesField, v.Kind()))
			}
		}
	}

	return append(repos, c.zipRepoFields(record)...)
}

// zipRepoFields assembles repo_<attr> fields into objects by position.
// List fields supply one value per position; scalars and single-item lists
// are broadcast to every position.
func (c *Collapser) zipRepoFields(record *jsonvalue.Object) []*jsonvalue.Object {
	type column struct {
		attr  string
		items []jsonvalue.Value
		multi bool
	}

	var columns []column
	width := 0
	record.Range(func(key string, v jsonvalue.Value) bool {
		if !c.isRepoField(key) {
			return true
		}
		col := column{attr: strings.TrimPrefix(key, c.opts.RepoFieldPrefix)}
		if items, ok := v.AsArray(); ok {
			col.items = items
			col.multi = len(items) > 1
		} else {
			col.items = []jsonvalue.Value{v}
		}
		if col.multi && len(col.items) > width {
			width = len(col.items)
		}
		columns = append(columns, col)
		return true
	})
	if len(columns) == 0 {
		return nil
	}
	if width == 0 {
		width = 1
	}

	var repos []*jsonvalue.Object
	for i := 0; i < width; i++ {
		repo := jsonvalue.NewObject()
		for _, col := range columns {
			var v jsonvalue.Value
			switch {
			case col.multi && i < len(col.items):
				v = col.items[i]
			case col.multi:
				continue
			case len(col.items) == 1:
				v = col.items[0]
			default:
				continue
			}
			if v.IsEmpty() {
				continue
			}
			repo.Set(col.attr, v)
		}
		if repo.Len() > 0 {
			repos = append(repos, repo)
		}
	}
	return repos
}

// mergeRepositories deduplicates repository objects by repositoryKey and
// merges objects that share a key.
func mergeRepositories(repos []*jsonvalue.Object) []jsonvalue.Value {
	var order []string
	byKey := make(map[string][]*jsonvalue.Object)
	for _, repo := range repos {
		key := repositoryKey(repo)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], repo)
	}

	merged := make([]jsonvalue.Value, 0, len(order))
	for _, key := range order {
		merged = append(merged, jsonvalue.FromObject(mergeObjects(byKey[key])))
	}
	return merged
}
