// Package query answers structural questions about a parsed schema.
// Every operation is a pure read returning plain records; rendering
// belongs to the callers.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/p6tools/p6schema/internal/schema"
)

// Engine wraps one schema for querying.
type Engine struct {
	schema *schema.Schema
}

// New returns an engine over s.
func New(s *schema.Schema) *Engine {
	return &Engine{schema: s}
}

// Schema returns the wrapped schema.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Table looks a table up by name. The exact stored name wins; otherwise
// the lookup is case-insensitive. Unknown names return a
// *TableNotFoundError carrying fuzzy-matched suggestions.
func (e *Engine) Table(name string) (*schema.Table, error) {
	if t, ok := e.schema.Tables[name]; ok {
		return t, nil
	}

	var candidates []string
	for stored := range e.schema.Tables {
		if strings.EqualFold(stored, name) {
			candidates = append(candidates, stored)
		}
	}
	if len(candidates) > 0 {
		sort.Strings(candidates)
		return e.schema.Tables[candidates[0]], nil
	}

	return nil, &TableNotFoundError{Name: name, Suggestions: e.suggest(name)}
}

// Detail returns the full definition of one table.
func (e *Engine) Detail(name string) (*TableDetail, error) {
	t, err := e.Table(name)
	if err != nil {
		return nil, err
	}
	return newTableDetail(t), nil
}

// Summaries lists every table sorted by name.
func (e *Engine) Summaries() []TableSummary {
	out := make([]TableSummary, 0, len(e.schema.Tables))
	for _, name := range e.tableNames() {
		t := e.schema.Tables[name]
		out = append(out, TableSummary{
			Name:        t.Name,
			Description: t.Description,
			FieldCount:  len(t.Fields),
		})
	}
	return out
}

// Fields returns a flat field listing, for one table when the filter
// is set or for the whole schema sorted by table name.
func (e *Engine) Fields(table string) ([]FieldRow, error) {
	if table != "" {
		t, err := e.Table(table)
		if err != nil {
			return nil, err
		}
		return fieldRows(t), nil
	}

	rows := make([]FieldRow, 0, e.schema.FieldCount())
	for _, name := range e.tableNames() {
		rows = append(rows, fieldRows(e.schema.Tables[name])...)
	}
	return rows, nil
}

// ConstraintFilter narrows a constraint listing.
type ConstraintFilter string

// Recognized constraint filters.
const (
	FilterAll     ConstraintFilter = "all"
	FilterPrimary ConstraintFilter = "pk"
	FilterForeign ConstraintFilter = "fk"
)

// ParseConstraintFilter maps user input to a filter. Empty input means
// no filtering.
func ParseConstraintFilter(s string) (ConstraintFilter, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return FilterAll, nil
	case "pk":
		return FilterPrimary, nil
	case "fk":
		return FilterForeign, nil
	}
	return "", fmt.Errorf("invalid constraint type %q (must be all, pk, or fk)", s)
}

// Constraints returns a flat constraint listing across all tables.
func (e *Engine) Constraints(filter ConstraintFilter) []ConstraintRow {
	rows := make([]ConstraintRow, 0)
	for _, name := range e.tableNames() {
		for _, c := range e.schema.Tables[name].Constraints {
			switch filter {
			case FilterPrimary:
				if c.Type != schema.ConstraintPrimary {
					continue
				}
			case FilterForeign:
				if c.Type != schema.ConstraintForeign {
					continue
				}
			}
			rows = append(rows, ConstraintRow{
				Table:        name,
				Name:         c.Name,
				Type:         c.Type,
				Fields:       c.Fields,
				TargetTable:  c.TargetTable,
				TargetFields: c.TargetFields,
			})
		}
	}
	return rows
}

// Relationships reports both foreign key directions for one table.
// A self-referential foreign key shows up as outgoing only.
func (e *Engine) Relationships(table string) (*RelationshipReport, error) {
	t, err := e.Table(table)
	if err != nil {
		return nil, err
	}

	outgoing := make([]OutgoingRef, 0)
	for _, c := range t.ForeignKeys() {
		outgoing = append(outgoing, OutgoingRef{
			Constraint:       c.Name,
			Fields:           c.Fields,
			ReferencesTable:  c.TargetTable,
			ReferencesFields: c.TargetFields,
		})
	}

	incoming := make([]IncomingRef, 0)
	for _, name := range e.tableNames() {
		other := e.schema.Tables[name]
		if other.Name == t.Name {
			continue
		}
		for _, c := range other.ForeignKeys() {
			if strings.EqualFold(c.TargetTable, t.Name) {
				incoming = append(incoming, IncomingRef{
					Table:            other.Name,
					Constraint:       c.Name,
					Fields:           c.Fields,
					ReferencesFields: c.TargetFields,
				})
			}
		}
	}

	return &RelationshipReport{
		Table:         t.Name,
		Outgoing:      outgoing,
		Incoming:      incoming,
		OutgoingCount: len(outgoing),
		IncomingCount: len(incoming),
	}, nil
}

// Stats aggregates schema-wide totals and a datatype histogram.
func (e *Engine) Stats() *Stats {
	st := &Stats{
		Version:   e.schema.Version,
		Tables:    len(e.schema.Tables),
		Datatypes: make(map[string]int),
	}
	for _, t := range e.schema.Tables {
		st.Fields += len(t.Fields)
		st.Indexes += len(t.Indexes)
		st.Constraints += len(t.Constraints)
		st.ForeignKeys += len(t.ForeignKeys())
		for _, f := range t.Fields {
			if f.Datatype != "" {
				st.Datatypes[f.Datatype]++
			}
		}
	}
	return st
}

// Info returns the schema's own metadata.
func (e *Engine) Info() *Info {
	return &Info{
		Version:       e.schema.Version,
		DBType:        e.schema.DBType,
		BuildVersion:  e.schema.BuildVersion,
		MinProVersion: e.schema.MinProVersion,
		TableCount:    len(e.schema.Tables),
		SourcePath:    e.schema.SourcePath,
	}
}

// Export dumps the whole model as one record.
func (e *Engine) Export() *Export {
	ex := &Export{
		Version:       e.schema.Version,
		DBType:        e.schema.DBType,
		BuildVersion:  e.schema.BuildVersion,
		MinProVersion: e.schema.MinProVersion,
		TableCount:    len(e.schema.Tables),
		Tables:        make(map[string]TableDetail, len(e.schema.Tables)),
	}
	for name, t := range e.schema.Tables {
		ex.Tables[name] = *newTableDetail(t)
	}
	return ex
}

// tableNames returns all stored table names sorted ascending.
func (e *Engine) tableNames() []string {
	names := make([]string, 0, len(e.schema.Tables))
	for name := range e.schema.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggest returns up to three fuzzy-matched table names for typo help.
func (e *Engine) suggest(name string) []string {
	names := e.tableNames()
	haystack := make([]string, len(names))
	for i, n := range names {
		haystack[i] = strings.ToLower(n)
	}

	var out []string
	for i, m := range fuzzy.Find(strings.ToLower(name), haystack) {
		if i == 3 {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}

func newTableDetail(t *schema.Table) *TableDetail {
	d := &TableDetail{
		Name:        t.Name,
		Description: t.Description,
		Title:       t.Title,
		Tablespace:  t.Tablespace,
		Fields:      make([]schema.Field, len(t.Fields)),
		Indexes:     make([]schema.Index, len(t.Indexes)),
		Constraints: make([]schema.Constraint, len(t.Constraints)),
		Triggers:    make([]schema.Trigger, len(t.Triggers)),
	}
	copy(d.Fields, t.Fields)
	copy(d.Indexes, t.Indexes)
	copy(d.Constraints, t.Constraints)
	copy(d.Triggers, t.Triggers)
	return d
}

func fieldRows(t *schema.Table) []FieldRow {
	rows := make([]FieldRow, 0, len(t.Fields))
	for _, f := range t.Fields {
		rows = append(rows, FieldRow{
			Table:       t.Name,
			Field:       f.Name,
			Datatype:    f.Datatype,
			Length:      FieldLength(f),
			NotNull:     f.NotNull == "Y",
			Description: f.Description,
		})
	}
	return rows
}

// FieldLength is the display length of a field: the character length
// when present, else the numeric precision.
func FieldLength(f schema.Field) string {
	if f.CharLength != "" {
		return f.CharLength
	}
	return f.DataPrecision
}
