package query

import (
	"sort"

	"github.com/p6tools/p6schema/internal/schema"
)

// SchemaRef identifies one side of a comparison.
type SchemaRef struct {
	Version    string `json:"version"`
	TableCount int    `json:"table_count"`
}

// TableDiff lists the field-name changes of one table between two
// schema versions.
type TableDiff struct {
	Table         string   `json:"table"`
	AddedFields   []string `json:"added_fields"`
	RemovedFields []string `json:"removed_fields"`
}

// CompareResult is the structural difference between two schemas.
type CompareResult struct {
	Schema1        SchemaRef   `json:"schema1"`
	Schema2        SchemaRef   `json:"schema2"`
	AddedTables    []string    `json:"added_tables"`
	RemovedTables  []string    `json:"removed_tables"`
	ModifiedTables []TableDiff `json:"modified_tables"`
}

// Compare diffs two schemas by table name and, for tables both carry,
// by field-name set. Field sets are the only modification signal:
// datatype, index, or constraint edits are invisible here. Comparing a
// schema against itself yields empty collections.
func Compare(a, b *schema.Schema) *CompareResult {
	res := &CompareResult{
		Schema1:        SchemaRef{Version: a.Version, TableCount: len(a.Tables)},
		Schema2:        SchemaRef{Version: b.Version, TableCount: len(b.Tables)},
		AddedTables:    []string{},
		RemovedTables:  []string{},
		ModifiedTables: []TableDiff{},
	}

	var common []string
	for name := range b.Tables {
		if _, ok := a.Tables[name]; !ok {
			res.AddedTables = append(res.AddedTables, name)
		}
	}
	for name := range a.Tables {
		if _, ok := b.Tables[name]; ok {
			common = append(common, name)
		} else {
			res.RemovedTables = append(res.RemovedTables, name)
		}
	}
	sort.Strings(res.AddedTables)
	sort.Strings(res.RemovedTables)
	sort.Strings(common)

	for _, name := range common {
		if diff := diffFields(a.Tables[name], b.Tables[name]); diff != nil {
			res.ModifiedTables = append(res.ModifiedTables, *diff)
		}
	}
	return res
}

// diffFields reports the field-name changes between two versions of a
// table, or nil when the sets match.
func diffFields(from, to *schema.Table) *TableDiff {
	fromSet := fieldNameSet(from)
	toSet := fieldNameSet(to)

	added := []string{}
	removed := []string{}
	for name := range toSet {
		if !fromSet[name] {
			added = append(added, name)
		}
	}
	for name := range fromSet {
		if !toSet[name] {
			removed = append(removed, name)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	sort.Strings(added)
	sort.Strings(removed)
	return &TableDiff{Table: from.Name, AddedFields: added, RemovedFields: removed}
}

func fieldNameSet(t *schema.Table) map[string]bool {
	set := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		set[f.Name] = true
	}
	return set
}
