package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/p6tools/p6schema/internal/query"
)

// CSVFormatter renders flat record listings as CSV with a header row.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// Summaries writes one row per table.
func (f *CSVFormatter) Summaries(rows []query.TableSummary) error {
	cw := csv.NewWriter(f.writer)
	if err := cw.Write([]string{"name", "description", "field_count"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Name, row.Description, strconv.Itoa(row.FieldCount)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FieldRows writes one row per field.
func (f *CSVFormatter) FieldRows(rows []query.FieldRow) error {
	cw := csv.NewWriter(f.writer)
	if err := cw.Write([]string{"table", "field", "datatype", "length", "notnull", "description"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Table,
			row.Field,
			row.Datatype,
			row.Length,
			strconv.FormatBool(row.NotNull),
			row.Description,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
