package formatter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p6tools/p6schema/internal/query"
	"github.com/p6tools/p6schema/internal/registry"
)

func TestTextRegistryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTextFormatter(&buf).Registry(nil, "/opt/p6/schemas")

	out := buf.String()
	if !strings.Contains(out, "No schemas found in: /opt/p6/schemas") {
		t.Errorf("missing directory hint:\n%s", out)
	}
	if !strings.Contains(out, "eppm_YY_MM_schema.xml") {
		t.Errorf("missing naming-pattern help:\n%s", out)
	}
}

func TestTextRegistryListing(t *testing.T) {
	var buf bytes.Buffer
	entries := []*registry.Entry{
		{Application: "eppm", Version: "24.12", Path: "/s/eppm_24_12_schema.xml", Key: "eppm:24.12"},
		{Application: "ppm", Version: "23.12", Path: "/s/ppm_23_12_schema.xml", Key: "ppm:23.12"},
	}
	NewTextFormatter(&buf).Registry(entries, "/s")

	out := buf.String()
	if !strings.Contains(out, "Available Schemas (2):") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "eppm:24.12") || !strings.Contains(out, "EPPM") {
		t.Errorf("missing entry row:\n%s", out)
	}
}

func TestTextDetail(t *testing.T) {
	var buf bytes.Buffer
	d := &query.TableDetail{
		Name:       "TASK",
		Title:      "Activities",
		Tablespace: "PMDB_DAT1",
	}
	NewTextFormatter(&buf).Detail(d)

	out := buf.String()
	for _, want := range []string{"Table: TASK", "Title: Activities", "Tablespace: PMDB_DAT1", "Fields (0):"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Empty sections stay silent.
	if strings.Contains(out, "Indexes") || strings.Contains(out, "Triggers") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestTextStatsOrdering(t *testing.T) {
	var buf bytes.Buffer
	NewTextFormatter(&buf).Stats(&query.Stats{
		Version:   "24.12",
		Datatypes: map[string]int{"DATE": 2, "NUMBER": 9, "CLOB": 2},
	})

	out := buf.String()
	num := strings.Index(out, "NUMBER")
	clob := strings.Index(out, "CLOB")
	date := strings.Index(out, "DATE")
	if num == -1 || clob == -1 || date == -1 {
		t.Fatalf("missing datatype rows:\n%s", out)
	}
	// Count descending, then name ascending on ties.
	if !(num < clob && clob < date) {
		t.Errorf("datatype ordering wrong:\n%s", out)
	}
}

func TestCSVSummaries(t *testing.T) {
	var buf bytes.Buffer
	rows := []query.TableSummary{
		{Name: "PROJECT", Description: "Projects, one per EPS node", FieldCount: 3},
	}
	if err := NewCSVFormatter(&buf).Summaries(rows); err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "name,description,field_count" {
		t.Errorf("header = %q", lines[0])
	}
	// The description contains a comma, so the cell must be quoted.
	if !strings.Contains(lines[1], `"Projects, one per EPS node"`) {
		t.Errorf("row = %q, want quoted description", lines[1])
	}
}

func TestCSVFieldRows(t *testing.T) {
	var buf bytes.Buffer
	rows := []query.FieldRow{
		{Table: "TASK", Field: "TASK_ID", Datatype: "NUMBER", Length: "10", NotNull: true},
	}
	if err := NewCSVFormatter(&buf).FieldRows(rows); err != nil {
		t.Fatalf("FieldRows failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[1] != "TASK,TASK_ID,NUMBER,10,true," {
		t.Errorf("row = %q", lines[1])
	}
}

func TestJSONWrite(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter(&buf).Write(map[string]int{"tables": 3})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("output must end with a newline")
	}
	var decoded map[string]int
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["tables"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
	if !strings.Contains(out, "  \"tables\"") {
		t.Errorf("output should be two-space indented:\n%s", out)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := WriteJSONFile(path, []string{"PROJECT"}); err != nil {
		t.Fatalf("WriteJSONFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != "PROJECT" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this one is definitely too long", 10, "this one i..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
