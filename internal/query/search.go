package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/p6tools/p6schema/internal/schema"
)

// Scope selects which sections a search covers.
type Scope string

// Recognized search scopes.
const (
	ScopeAll           Scope = "all"
	ScopeTables        Scope = "table"
	ScopeFields        Scope = "field"
	ScopeRelationships Scope = "rel"
)

// ParseScope maps user input to a scope. Empty input means all, and
// the long form "relationship" is an alias for "rel".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return ScopeAll, nil
	case "table":
		return ScopeTables, nil
	case "field":
		return ScopeFields, nil
	case "rel", "relationship":
		return ScopeRelationships, nil
	}
	return "", fmt.Errorf("invalid search type %q (must be table, field, rel, or all)", s)
}

// IncludesTables reports whether the scope covers table search.
func (s Scope) IncludesTables() bool { return s == ScopeAll || s == ScopeTables }

// IncludesFields reports whether the scope covers field search.
func (s Scope) IncludesFields() bool { return s == ScopeAll || s == ScopeFields }

// IncludesRelationships reports whether the scope covers relationship
// search.
func (s Scope) IncludesRelationships() bool { return s == ScopeAll || s == ScopeRelationships }

// SearchResult bundles the sections one search produced. Sections
// outside the scope stay nil and are omitted from JSON; sections in
// scope are non-nil even when empty, since no matches is a valid
// result rather than an error.
type SearchResult struct {
	Pattern       string
	Scope         Scope
	Tables        []TableSummary
	Fields        []FieldMatch
	Relationships []Relationship
}

// Total counts matches across all sections.
func (r *SearchResult) Total() int {
	return len(r.Tables) + len(r.Fields) + len(r.Relationships)
}

// MarshalJSON emits only the sections the scope asked for.
func (r *SearchResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if r.Scope.IncludesTables() {
		out["tables"] = r.Tables
	}
	if r.Scope.IncludesFields() {
		out["fields"] = r.Fields
	}
	if r.Scope.IncludesRelationships() {
		out["relationships"] = r.Relationships
	}
	return json.Marshal(out)
}

// Search runs the scoped sections and bundles them.
func (e *Engine) Search(pattern string, scope Scope) *SearchResult {
	res := &SearchResult{Pattern: pattern, Scope: scope}
	if scope.IncludesTables() {
		res.Tables = e.SearchTables(pattern)
	}
	if scope.IncludesFields() {
		res.Fields = e.SearchFields(pattern)
	}
	if scope.IncludesRelationships() {
		res.Relationships = e.SearchRelationships(pattern)
	}
	return res
}

// SearchTables finds tables whose name contains the pattern,
// case-insensitively.
func (e *Engine) SearchTables(pattern string) []TableSummary {
	needle := strings.ToUpper(pattern)
	out := make([]TableSummary, 0)
	for _, name := range e.tableNames() {
		if !strings.Contains(strings.ToUpper(name), needle) {
			continue
		}
		t := e.schema.Tables[name]
		out = append(out, TableSummary{
			Name:        t.Name,
			Description: t.Description,
			FieldCount:  len(t.Fields),
		})
	}
	return out
}

// SearchFields finds fields whose name contains the pattern,
// case-insensitively, across all tables.
func (e *Engine) SearchFields(pattern string) []FieldMatch {
	needle := strings.ToUpper(pattern)
	out := make([]FieldMatch, 0)
	for _, name := range e.tableNames() {
		for _, f := range e.schema.Tables[name].Fields {
			if !strings.Contains(strings.ToUpper(f.Name), needle) {
				continue
			}
			out = append(out, FieldMatch{
				Table:       name,
				Field:       f.Name,
				Datatype:    f.Datatype,
				Description: f.Description,
			})
		}
	}
	return out
}

// SearchRelationships finds foreign keys where the pattern appears in
// any of: owning table, target table, local fields, target fields, or
// the constraint name.
func (e *Engine) SearchRelationships(pattern string) []Relationship {
	needle := strings.ToUpper(pattern)
	out := make([]Relationship, 0)
	for _, name := range e.tableNames() {
		for _, c := range e.schema.Tables[name].ForeignKeys() {
			if !relationshipMatches(needle, name, c) {
				continue
			}
			out = append(out, Relationship{
				SourceTable:  name,
				Constraint:   c.Name,
				Fields:       c.Fields,
				TargetTable:  c.TargetTable,
				TargetFields: c.TargetFields,
			})
		}
	}
	return out
}

func relationshipMatches(needle, owner string, c schema.Constraint) bool {
	for _, hay := range []string{owner, c.TargetTable, c.Fields, c.TargetFields, c.Name} {
		if strings.Contains(strings.ToUpper(hay), needle) {
			return true
		}
	}
	return false
}
