package schema

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ParseError reports a schema document that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed schema document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed schema document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a P6 schema document from r.
//
// The vendor format is a root element whose direct TABLE children carry
// FIELD, INDEX, CONSTRAINT, and TRIGGER children. All data lives in
// attributes; element text and unknown elements are skipped. A document
// with no TABLE elements parses to a valid empty schema. Malformed XML
// returns a *ParseError and no partial model.
func Parse(r io.Reader) (*Schema, error) {
	return parse(r, "")
}

// ParseFile decodes the schema document at path and records the path on
// the returned schema.
func ParseFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parse(f, path)
}

func parse(r io.Reader, path string) (*Schema, error) {
	dec := xml.NewDecoder(r)

	root, err := findRoot(dec)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	s := &Schema{
		Version:       attrValue(root, "VERSION", ""),
		DBType:        attrValue(root, "DBTYPE", ""),
		BuildVersion:  attrValue(root, "BUILD_VERSION_ID", ""),
		MinProVersion: attrValue(root, "MIN_PRO_VERSION", ""),
		Tables:        make(map[string]*Table),
		SourcePath:    path,
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local != "TABLE" {
				if err := dec.Skip(); err != nil {
					return nil, &ParseError{Path: path, Err: err}
				}
				continue
			}
			t, err := parseTable(dec, el)
			if err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
			// Repeated names are not expected; last one wins if they occur.
			s.Tables[t.Name] = t
		case xml.EndElement:
			// Root closed. The decoder tolerates further elements, so
			// reject them ourselves.
			if err := expectTrailing(dec); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
			return s, nil
		}
	}
}

// expectTrailing verifies that nothing but whitespace and comments
// follows the root element.
func expectTrailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(el)) > 0 {
				return errors.New("text after document element")
			}
		case xml.StartElement:
			return errors.New("element after document element")
		}
	}
}

// findRoot advances the decoder to the document's root element.
func findRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func parseTable(dec *xml.Decoder, start xml.StartElement) (*Table, error) {
	t := &Table{
		Name:        attrValue(start, "NAME", ""),
		Description: attrValue(start, "DESC", ""),
		Title:       attrValue(start, "TITLE", ""),
		TableType:   attrValue(start, "TABLETYPE", ""),
		Tablespace:  attrValue(start, "TABLESPACE", ""),
		Ordinal:     attrValue(start, "ORDINAL", ""),
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "FIELD":
				t.Fields = append(t.Fields, parseField(el))
			case "INDEX":
				t.Indexes = append(t.Indexes, parseIndex(el))
			case "CONSTRAINT":
				t.Constraints = append(t.Constraints, parseConstraint(el))
			case "TRIGGER":
				t.Triggers = append(t.Triggers, parseTrigger(el))
			}
			// Consume the child including any nested content.
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return t, nil
		}
	}
}

func parseField(el xml.StartElement) Field {
	return Field{
		Name:          attrValue(el, "NAME", ""),
		Datatype:      attrValue(el, "DATATYPE", ""),
		CharLength:    attrValue(el, "CHARLENGTH", ""),
		DataPrecision: attrValue(el, "DATAPRECISION", ""),
		DataScale:     attrValue(el, "DATASCALE", ""),
		NotNull:       attrValue(el, "NOTNULL", "N"),
		Default:       attrValue(el, "DEFAULT", ""),
		Description:   attrValue(el, "DESC", ""),
		IDColumn:      attrValue(el, "IDCOLUMN", "N"),
	}
}

func parseIndex(el xml.StartElement) Index {
	return Index{
		Name:       attrValue(el, "NAME", ""),
		Fields:     attrValue(el, "FIELD", ""),
		Uniqueness: attrValue(el, "UNIQUENESS", "NONUNIQUE"),
		Tablespace: attrValue(el, "TABLESPACE", ""),
	}
}

func parseConstraint(el xml.StartElement) Constraint {
	c := Constraint{
		Name:         attrValue(el, "NAME", ""),
		Type:         attrValue(el, "TYPE", ""),
		Fields:       attrValue(el, "FIELDS", ""),
		TargetTable:  attrValue(el, "TARGETTABLE", ""),
		TargetFields: attrValue(el, "TARGETFIELDS", ""),
		DeleteRule:   attrValue(el, "DELETERULE", ""),
	}
	// Reference attributes only mean something on foreign keys.
	if c.Type != ConstraintForeign {
		c.TargetTable, c.TargetFields, c.DeleteRule = "", "", ""
	}
	return c
}

func parseTrigger(el xml.StartElement) Trigger {
	return Trigger{
		Name:        attrValue(el, "NAME", ""),
		SetType:     attrValue(el, "SET", ""),
		Target:      attrValue(el, "TARGET", ""),
		Description: attrValue(el, "DESC", ""),
	}
}

// attrValue returns the named attribute's value, or fallback when the
// attribute is absent. A present empty attribute stays empty.
func attrValue(el xml.StartElement, name, fallback string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return fallback
}
