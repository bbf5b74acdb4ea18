package schema

// Schema represents one parsed P6 schema document
type Schema struct {
	Version       string            `json:"version"`
	DBType        string            `json:"dbtype"`
	BuildVersion  string            `json:"build_version"`
	MinProVersion string            `json:"min_pro_version"`
	Tables        map[string]*Table `json:"tables"`

	// SourcePath is the file the document was read from, empty when
	// parsed from a plain reader.
	SourcePath string `json:"-"`
}

// Table represents a database table definition
type Table struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Title       string       `json:"title"`
	TableType   string       `json:"tabletype"`
	Tablespace  string       `json:"tablespace"`
	Ordinal     string       `json:"ordinal"`
	Fields      []Field      `json:"fields"`
	Indexes     []Index      `json:"indexes"`
	Constraints []Constraint `json:"constraints"`
	Triggers    []Trigger    `json:"triggers"`
}

// Field represents a table column.
// NotNull and IDColumn hold the vendor's Y/N flags as written.
type Field struct {
	Name          string `json:"name"`
	Datatype      string `json:"datatype"`
	CharLength    string `json:"charlength"`
	DataPrecision string `json:"dataprecision"`
	DataScale     string `json:"datascale"`
	NotNull       string `json:"notnull"`
	Default       string `json:"default"`
	Description   string `json:"description"`
	IDColumn      string `json:"idcolumn"`
}

// Index represents a table index. Fields keeps the vendor's
// comma-separated column list verbatim.
type Index struct {
	Name       string `json:"name"`
	Fields     string `json:"fields"`
	Uniqueness string `json:"uniqueness"`
	Tablespace string `json:"tablespace"`
}

// Constraint represents a table constraint. TargetTable, TargetFields,
// and DeleteRule are empty unless Type is FOREIGN.
type Constraint struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Fields       string `json:"fields"`
	TargetTable  string `json:"target_table"`
	TargetFields string `json:"target_fields"`
	DeleteRule   string `json:"delete_rule"`
}

// Trigger represents a table trigger
type Trigger struct {
	Name        string `json:"name"`
	SetType     string `json:"set_type"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

// TableCount returns the number of tables in the schema.
func (s *Schema) TableCount() int {
	return len(s.Tables)
}

// FieldCount returns the total number of fields across all tables.
func (s *Schema) FieldCount() int {
	n := 0
	for _, t := range s.Tables {
		n += len(t.Fields)
	}
	return n
}

// Constraint types the tool distinguishes. Vendor documents may carry
// others (UNIQUE, CHECK), which pass through untouched.
const (
	ConstraintPrimary = "PRIMARY"
	ConstraintForeign = "FOREIGN"
)

// ForeignKeys returns the table's FOREIGN constraints in document order.
func (t *Table) ForeignKeys() []Constraint {
	var fks []Constraint
	for _, c := range t.Constraints {
		if c.Type == ConstraintForeign {
			fks = append(fks, c)
		}
	}
	return fks
}
