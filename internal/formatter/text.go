// Package formatter renders query records as fixed-width text or CSV.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/p6tools/p6schema/internal/query"
	"github.com/p6tools/p6schema/internal/registry"
)

// TextFormatter renders records as fixed-width text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Registry writes the schema listing, or pointers on where to put
// schema files when the registry is empty.
func (f *TextFormatter) Registry(entries []*registry.Entry, dir string) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintf(f.writer, "No schemas found in: %s\n", dir)
		_, _ = fmt.Fprintln(f.writer, "\nTo add schemas, place files matching pattern:")
		_, _ = fmt.Fprintln(f.writer, "  eppm_YY_MM_schema.xml  (e.g., eppm_24_12_schema.xml)")
		_, _ = fmt.Fprintln(f.writer, "  ppm_YY_MM_schema.xml   (e.g., ppm_23_04_schema.xml)")
		return
	}

	_, _ = fmt.Fprintf(f.writer, "Available Schemas (%d):\n", len(entries))
	_, _ = fmt.Fprintf(f.writer, "  %-15s %-10s %-10s Path\n", "Key", "Application", "Version")
	_, _ = fmt.Fprintln(f.writer, "  "+strings.Repeat("-", 70))
	for _, e := range entries {
		_, _ = fmt.Fprintf(f.writer, "  %-15s %-10s %-10s %s\n", e.Key, strings.ToUpper(e.Application), e.Version, e.Path)
	}
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "Usage: p6schema <command> <key>")
	_, _ = fmt.Fprintln(f.writer, "  Example: p6schema info eppm:24.12")
	_, _ = fmt.Fprintln(f.writer, "  Example: p6schema tables ppm:23.04")
}

// Info writes the schema metadata block.
func (f *TextFormatter) Info(info *query.Info) {
	_, _ = fmt.Fprintln(f.writer, "Schema Information:")
	_, _ = fmt.Fprintf(f.writer, "  Version:       %s\n", info.Version)
	_, _ = fmt.Fprintf(f.writer, "  DB Type:       %s\n", info.DBType)
	_, _ = fmt.Fprintf(f.writer, "  Build Version: %s\n", info.BuildVersion)
	if info.MinProVersion != "" {
		_, _ = fmt.Fprintf(f.writer, "  Min Pro Ver:   %s\n", info.MinProVersion)
	}
	_, _ = fmt.Fprintf(f.writer, "  Tables:        %d\n", info.TableCount)
	_, _ = fmt.Fprintf(f.writer, "  Source:        %s\n", info.SourcePath)
}

// Summaries writes the table listing.
func (f *TextFormatter) Summaries(rows []query.TableSummary) {
	_, _ = fmt.Fprintf(f.writer, "%-40s %6s  Description\n", "Table Name", "Fields")
	_, _ = fmt.Fprintln(f.writer, strings.Repeat("-", 80))
	for _, row := range rows {
		_, _ = fmt.Fprintf(f.writer, "%-40s %6d  %s\n", row.Name, row.FieldCount, truncate(row.Description, 30))
	}
}

// Detail writes a full table description.
func (f *TextFormatter) Detail(d *query.TableDetail) {
	_, _ = fmt.Fprintf(f.writer, "\nTable: %s\n", d.Name)
	if d.Title != "" {
		_, _ = fmt.Fprintf(f.writer, "Title: %s\n", d.Title)
	}
	if d.Description != "" {
		_, _ = fmt.Fprintf(f.writer, "Description: %s\n", d.Description)
	}
	_, _ = fmt.Fprintf(f.writer, "Tablespace: %s\n", d.Tablespace)

	_, _ = fmt.Fprintf(f.writer, "\nFields (%d):\n", len(d.Fields))
	_, _ = fmt.Fprintf(f.writer, "  %-35s %-12s %-8s %-8s Description\n", "Name", "Type", "Length", "Null")
	_, _ = fmt.Fprintln(f.writer, "  "+strings.Repeat("-", 90))
	for _, fd := range d.Fields {
		nullable := "NULL"
		if fd.NotNull == "Y" {
			nullable = "NOT NULL"
		}
		_, _ = fmt.Fprintf(f.writer, "  %-35s %-12s %-8s %-8s %s\n",
			fd.Name, fd.Datatype, query.FieldLength(fd), nullable, truncate(fd.Description, 35))
	}

	if len(d.Indexes) > 0 {
		_, _ = fmt.Fprintf(f.writer, "\nIndexes (%d):\n", len(d.Indexes))
		for _, idx := range d.Indexes {
			_, _ = fmt.Fprintf(f.writer, "  %s: %s (%s)\n", idx.Name, idx.Fields, idx.Uniqueness)
		}
	}

	if len(d.Constraints) > 0 {
		_, _ = fmt.Fprintf(f.writer, "\nConstraints (%d):\n", len(d.Constraints))
		for _, c := range d.Constraints {
			switch c.Type {
			case "PRIMARY":
				_, _ = fmt.Fprintf(f.writer, "  PK: %s (%s)\n", c.Name, c.Fields)
			case "FOREIGN":
				_, _ = fmt.Fprintf(f.writer, "  FK: %s (%s) -> %s(%s)\n", c.Name, c.Fields, c.TargetTable, c.TargetFields)
			default:
				_, _ = fmt.Fprintf(f.writer, "  %s: %s (%s)\n", c.Type, c.Name, c.Fields)
			}
		}
	}

	if len(d.Triggers) > 0 {
		_, _ = fmt.Fprintf(f.writer, "\nTriggers (%d):\n", len(d.Triggers))
		for _, trg := range d.Triggers {
			_, _ = fmt.Fprintf(f.writer, "  %s (%s on %s)\n", trg.Name, trg.SetType, trg.Target)
		}
	}
}

// Relationships writes both foreign key directions of one table.
func (f *TextFormatter) Relationships(rep *query.RelationshipReport) {
	_, _ = fmt.Fprintf(f.writer, "\nRelationships for: %s\n", rep.Table)
	_, _ = fmt.Fprintln(f.writer, strings.Repeat("=", 60))

	_, _ = fmt.Fprintf(f.writer, "\nReferences (%d):\n", rep.OutgoingCount)
	if rep.OutgoingCount > 0 {
		_, _ = fmt.Fprintf(f.writer, "  %-25s %-25s Fields\n", "This Table", "Referenced Table")
		_, _ = fmt.Fprintln(f.writer, "  "+strings.Repeat("-", 70))
		outgoing := make([]query.OutgoingRef, len(rep.Outgoing))
		copy(outgoing, rep.Outgoing)
		sort.Slice(outgoing, func(i, j int) bool {
			return outgoing[i].ReferencesTable < outgoing[j].ReferencesTable
		})
		for _, rel := range outgoing {
			_, _ = fmt.Fprintf(f.writer, "  %-25s -> %-25s (%s)\n", rel.Fields, rel.ReferencesTable, rel.ReferencesFields)
		}
	} else {
		_, _ = fmt.Fprintln(f.writer, "  (none)")
	}

	_, _ = fmt.Fprintf(f.writer, "\nReferenced By (%d):\n", rep.IncomingCount)
	if rep.IncomingCount > 0 {
		_, _ = fmt.Fprintf(f.writer, "  %-25s %-25s This Table\n", "Referencing Table", "Fields")
		_, _ = fmt.Fprintln(f.writer, "  "+strings.Repeat("-", 70))
		for _, rel := range rep.Incoming {
			_, _ = fmt.Fprintf(f.writer, "  %-25s %-25s -> %s\n", rel.Table, rel.Fields, rel.ReferencesFields)
		}
	} else {
		_, _ = fmt.Fprintln(f.writer, "  (none)")
	}

	_, _ = fmt.Fprintln(f.writer, "\nSummary:")
	_, _ = fmt.Fprintf(f.writer, "  References %d table(s)\n", rep.OutgoingCount)
	_, _ = fmt.Fprintf(f.writer, "  Referenced by %d table(s)\n", rep.IncomingCount)
}

// SearchResults writes the sections a search produced, with a no-match
// message when everything came back empty.
func (f *TextFormatter) SearchResults(res *query.SearchResult) {
	if res.Scope == query.ScopeAll {
		_, _ = fmt.Fprintf(f.writer, "Search results for '%s' (%d matches):\n\n", res.Pattern, res.Total())
	}

	if len(res.Tables) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Tables (%d):\n", len(res.Tables))
		for _, t := range res.Tables {
			_, _ = fmt.Fprintf(f.writer, "  %s: %s\n", t.Name, truncate(t.Description, 50))
		}
		if res.Scope == query.ScopeAll {
			_, _ = fmt.Fprintln(f.writer)
		}
	}

	if len(res.Fields) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Fields (%d):\n", len(res.Fields))
		for _, fd := range res.Fields {
			_, _ = fmt.Fprintf(f.writer, "  %s.%s (%s)\n", fd.Table, fd.Field, fd.Datatype)
		}
		if res.Scope == query.ScopeAll {
			_, _ = fmt.Fprintln(f.writer)
		}
	}

	if len(res.Relationships) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Relationships (%d):\n", len(res.Relationships))
		for _, rel := range res.Relationships {
			_, _ = fmt.Fprintf(f.writer, "  %s.%s -> %s.%s\n", rel.SourceTable, rel.Fields, rel.TargetTable, rel.TargetFields)
		}
	}

	switch {
	case res.Scope == query.ScopeTables && len(res.Tables) == 0:
		_, _ = fmt.Fprintf(f.writer, "No tables matching '%s'\n", res.Pattern)
	case res.Scope == query.ScopeFields && len(res.Fields) == 0:
		_, _ = fmt.Fprintf(f.writer, "No fields matching '%s'\n", res.Pattern)
	case res.Scope == query.ScopeRelationships && len(res.Relationships) == 0:
		_, _ = fmt.Fprintf(f.writer, "No relationships matching '%s'\n", res.Pattern)
	case res.Scope == query.ScopeAll && res.Total() == 0:
		_, _ = fmt.Fprintf(f.writer, "No results matching '%s'\n", res.Pattern)
	}
}

// Compare writes a schema comparison.
func (f *TextFormatter) Compare(res *query.CompareResult) {
	_, _ = fmt.Fprintln(f.writer, "Schema Comparison")
	_, _ = fmt.Fprintf(f.writer, "  Schema 1: %s (%d tables)\n", res.Schema1.Version, res.Schema1.TableCount)
	_, _ = fmt.Fprintf(f.writer, "  Schema 2: %s (%d tables)\n", res.Schema2.Version, res.Schema2.TableCount)
	_, _ = fmt.Fprintln(f.writer)

	if len(res.AddedTables) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Tables added in %s (%d):\n", res.Schema2.Version, len(res.AddedTables))
		for _, name := range res.AddedTables {
			_, _ = fmt.Fprintf(f.writer, "  + %s\n", name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(res.RemovedTables) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Tables removed in %s (%d):\n", res.Schema2.Version, len(res.RemovedTables))
		for _, name := range res.RemovedTables {
			_, _ = fmt.Fprintf(f.writer, "  - %s\n", name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(res.ModifiedTables) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Tables with field changes (%d):\n", len(res.ModifiedTables))
		for _, diff := range res.ModifiedTables {
			_, _ = fmt.Fprintf(f.writer, "  %s:\n", diff.Table)
			for _, name := range diff.AddedFields {
				_, _ = fmt.Fprintf(f.writer, "    + %s\n", name)
			}
			for _, name := range diff.RemovedFields {
				_, _ = fmt.Fprintf(f.writer, "    - %s\n", name)
			}
		}
	}
}

// FieldRows writes a flat field listing.
func (f *TextFormatter) FieldRows(rows []query.FieldRow) {
	_, _ = fmt.Fprintf(f.writer, "%-30s %-35s %-12s %-8s\n", "Table", "Field", "Type", "Length")
	_, _ = fmt.Fprintln(f.writer, strings.Repeat("-", 90))
	for _, row := range rows {
		_, _ = fmt.Fprintf(f.writer, "%-30s %-35s %-12s %-8s\n", row.Table, row.Field, row.Datatype, row.Length)
	}
}

// ConstraintRows writes a flat constraint listing.
func (f *TextFormatter) ConstraintRows(rows []query.ConstraintRow) {
	_, _ = fmt.Fprintf(f.writer, "%-30s %-8s %-30s %-40s\n", "Table", "Type", "Fields", "References")
	_, _ = fmt.Fprintln(f.writer, strings.Repeat("-", 110))
	for _, row := range rows {
		ref := ""
		if row.TargetTable != "" {
			ref = fmt.Sprintf("%s(%s)", row.TargetTable, row.TargetFields)
		}
		_, _ = fmt.Fprintf(f.writer, "%-30s %-8s %-30s %-40s\n", row.Table, row.Type, row.Fields, ref)
	}
}

// Stats writes schema totals and the datatype histogram, most common
// type first.
func (f *TextFormatter) Stats(st *query.Stats) {
	_, _ = fmt.Fprintf(f.writer, "Schema Statistics (%s):\n", st.Version)
	_, _ = fmt.Fprintf(f.writer, "  Tables:       %d\n", st.Tables)
	_, _ = fmt.Fprintf(f.writer, "  Fields:       %d\n", st.Fields)
	_, _ = fmt.Fprintf(f.writer, "  Indexes:      %d\n", st.Indexes)
	_, _ = fmt.Fprintf(f.writer, "  Constraints:  %d\n", st.Constraints)
	_, _ = fmt.Fprintf(f.writer, "  Foreign Keys: %d\n", st.ForeignKeys)

	_, _ = fmt.Fprintln(f.writer, "\nField Data Types:")
	type datatypeCount struct {
		name  string
		count int
	}
	counts := make([]datatypeCount, 0, len(st.Datatypes))
	for name, count := range st.Datatypes {
		counts = append(counts, datatypeCount{name, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})
	for _, dc := range counts {
		_, _ = fmt.Fprintf(f.writer, "  %-15s %6d\n", dc.name, dc.count)
	}
}

// truncate shortens long descriptions for column display.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
