package query

import "github.com/p6tools/p6schema/internal/schema"

// TableSummary is one row of a table listing.
type TableSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FieldCount  int    `json:"field_count"`
}

// TableDetail is the full definition of one table. Its slices are
// never nil so the record serializes with explicit empty lists.
type TableDetail struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Title       string              `json:"title"`
	Tablespace  string              `json:"tablespace"`
	Fields      []schema.Field      `json:"fields"`
	Indexes     []schema.Index      `json:"indexes"`
	Constraints []schema.Constraint `json:"constraints"`
	Triggers    []schema.Trigger    `json:"triggers"`
}

// FieldMatch is one field-search hit.
type FieldMatch struct {
	Table       string `json:"table"`
	Field       string `json:"field"`
	Datatype    string `json:"datatype"`
	Description string `json:"description"`
}

// Relationship is one foreign key viewed from its owning table.
type Relationship struct {
	SourceTable  string `json:"source_table"`
	Constraint   string `json:"constraint"`
	Fields       string `json:"fields"`
	TargetTable  string `json:"target_table"`
	TargetFields string `json:"target_fields"`
}

// OutgoingRef is a foreign key from the inspected table to another.
type OutgoingRef struct {
	Constraint       string `json:"constraint"`
	Fields           string `json:"fields"`
	ReferencesTable  string `json:"references_table"`
	ReferencesFields string `json:"references_fields"`
}

// IncomingRef is a foreign key another table points at the inspected
// table with.
type IncomingRef struct {
	Table            string `json:"table"`
	Constraint       string `json:"constraint"`
	Fields           string `json:"fields"`
	ReferencesFields string `json:"references_fields"`
}

// RelationshipReport holds both directions of a table's foreign keys.
type RelationshipReport struct {
	Table         string        `json:"table"`
	Outgoing      []OutgoingRef `json:"outgoing"`
	Incoming      []IncomingRef `json:"incoming"`
	OutgoingCount int           `json:"outgoing_count"`
	IncomingCount int           `json:"incoming_count"`
}

// FieldRow is one row of a flat field listing. Length prefers the
// character length and falls back to numeric precision.
type FieldRow struct {
	Table       string `json:"table"`
	Field       string `json:"field"`
	Datatype    string `json:"datatype"`
	Length      string `json:"length"`
	NotNull     bool   `json:"notnull"`
	Description string `json:"description"`
}

// ConstraintRow is one row of a flat constraint listing.
type ConstraintRow struct {
	Table        string `json:"table"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Fields       string `json:"fields"`
	TargetTable  string `json:"target_table,omitempty"`
	TargetFields string `json:"target_fields,omitempty"`
}

// Stats aggregates schema-wide totals.
type Stats struct {
	Version     string         `json:"version"`
	Tables      int            `json:"tables"`
	Fields      int            `json:"fields"`
	Indexes     int            `json:"indexes"`
	Constraints int            `json:"constraints"`
	ForeignKeys int            `json:"foreign_keys"`
	Datatypes   map[string]int `json:"datatypes"`
}

// Info is the schema's own metadata.
type Info struct {
	Version       string `json:"version"`
	DBType        string `json:"dbtype"`
	BuildVersion  string `json:"build_version"`
	MinProVersion string `json:"min_pro_version"`
	TableCount    int    `json:"table_count"`
	SourcePath    string `json:"source_path,omitempty"`
}

// Export is the whole model as one serializable record.
type Export struct {
	Version       string                 `json:"version"`
	DBType        string                 `json:"dbtype"`
	BuildVersion  string                 `json:"build_version"`
	MinProVersion string                 `json:"min_pro_version"`
	TableCount    int                    `json:"table_count"`
	Tables        map[string]TableDetail `json:"tables"`
}
