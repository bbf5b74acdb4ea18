package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eppm2412Doc = `<schema VERSION="24.12" DBTYPE="ORACLE" BUILD_VERSION_ID="110">
  <TABLE NAME="PROJECT" DESC="Project master records" TABLESPACE="PMDB_DAT1">
    <FIELD NAME="PROJ_ID" DATATYPE="NUMBER" DATAPRECISION="10" NOTNULL="Y"/>
    <FIELD NAME="PROJ_SHORT_NAME" DATATYPE="VARCHAR2" CHARLENGTH="40" NOTNULL="Y"/>
    <CONSTRAINT NAME="PK_PROJECT" TYPE="PRIMARY" FIELDS="PROJ_ID"/>
  </TABLE>
  <TABLE NAME="TASK" DESC="Activities">
    <FIELD NAME="TASK_ID" DATATYPE="NUMBER" DATAPRECISION="10" NOTNULL="Y"/>
    <FIELD NAME="PROJ_ID" DATATYPE="NUMBER" DATAPRECISION="10" NOTNULL="Y"/>
    <FIELD NAME="TASK_NAME" DATATYPE="VARCHAR2" CHARLENGTH="120"/>
    <CONSTRAINT NAME="PK_TASK" TYPE="PRIMARY" FIELDS="TASK_ID"/>
    <CONSTRAINT NAME="FK_TASK_PROJ" TYPE="FOREIGN" FIELDS="PROJ_ID" TARGETTABLE="PROJECT" TARGETFIELDS="PROJ_ID"/>
  </TABLE>
</schema>`

const eppm2312Doc = `<schema VERSION="23.12" DBTYPE="ORACLE">
  <TABLE NAME="PROJECT" DESC="Project master records">
    <FIELD NAME="PROJ_ID" DATATYPE="NUMBER" DATAPRECISION="10" NOTNULL="Y"/>
  </TABLE>
</schema>`

// setupEnv points the standard locations at fixtures for the duration
// of one test, the same way a deployed server is configured.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"eppm_24_12_schema.xml": eppm2412Doc,
		"eppm_23_12_schema.xml": eppm2312Doc,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Setenv("P6SCHEMA_DIR", dir)
	t.Setenv("P6SCHEMA_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	return dir
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func callTool(t *testing.T, name string, handler toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// resultText extracts the single text payload of a successful call.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.False(t, res.IsError, "tool reported an error: %+v", res.Content)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content type %T", res.Content[0])
	return tc.Text
}

// errorText extracts the message of a failed call.
func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError, "expected a tool error")
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content type %T", res.Content[0])
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), v))
}

func TestListSchemas(t *testing.T) {
	dir := setupEnv(t)

	res := callTool(t, "list_schemas", handleListSchemas, nil)

	var listing schemaListing
	decode(t, res, &listing)
	assert.Equal(t, 2, listing.Count)
	assert.Equal(t, dir, listing.Directory)
	require.Len(t, listing.Schemas, 2)
	assert.Equal(t, "eppm:23.12", listing.Schemas[0].Key)
	assert.Equal(t, "EPPM", listing.Schemas[0].Application)
}

func TestGetSchemaInfo(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_schema_info", handleGetSchemaInfo, map[string]any{"schema": "eppm:23.12"})

	var info struct {
		Version    string `json:"version"`
		DBType     string `json:"dbtype"`
		TableCount int    `json:"table_count"`
	}
	decode(t, res, &info)
	assert.Equal(t, "23.12", info.Version)
	assert.Equal(t, "ORACLE", info.DBType)
	assert.Equal(t, 1, info.TableCount)
}

func TestGetSchemaInfoDefaultsToLatest(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_schema_info", handleGetSchemaInfo, nil)

	var info struct {
		Version string `json:"version"`
	}
	decode(t, res, &info)
	assert.Equal(t, "24.12", info.Version)
}

func TestGetSchemaInfoUnknownSpecifier(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_schema_info", handleGetSchemaInfo, map[string]any{"schema": "eppm:99.99"})
	assert.Contains(t, errorText(t, res), "unknown schema")
}

func TestListTables(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "list_tables", handleListTables, nil)

	var listing tableListing
	decode(t, res, &listing)
	assert.Equal(t, 2, listing.Count)
	require.Len(t, listing.Tables, 2)
	assert.Equal(t, "PROJECT", listing.Tables[0].Name)
	assert.Equal(t, 2, listing.Tables[0].FieldCount)
}

func TestDescribeTable(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "describe_table", handleDescribeTable, map[string]any{"table": "task"})

	var detail struct {
		Name        string           `json:"name"`
		Fields      []map[string]any `json:"fields"`
		Constraints []map[string]any `json:"constraints"`
	}
	decode(t, res, &detail)
	assert.Equal(t, "TASK", detail.Name, "lookup is case-insensitive")
	assert.Len(t, detail.Fields, 3)
	assert.Len(t, detail.Constraints, 2)
}

func TestDescribeTableNotFound(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "describe_table", handleDescribeTable, map[string]any{"table": "NOPE"})
	assert.Contains(t, errorText(t, res), "not found")
}

func TestDescribeTableMissingArgument(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "describe_table", handleDescribeTable, nil)
	assert.True(t, res.IsError)
}

func TestGetRelationships(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_relationships", handleGetRelationships, map[string]any{"table": "PROJECT"})

	var report struct {
		Table         string `json:"table"`
		OutgoingCount int    `json:"outgoing_count"`
		IncomingCount int    `json:"incoming_count"`
		Incoming      []struct {
			Table string `json:"table"`
		} `json:"incoming"`
	}
	decode(t, res, &report)
	assert.Equal(t, "PROJECT", report.Table)
	assert.Equal(t, 0, report.OutgoingCount)
	assert.Equal(t, 1, report.IncomingCount)
	require.Len(t, report.Incoming, 1)
	assert.Equal(t, "TASK", report.Incoming[0].Table)
}

func TestSearchScopesSections(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "search", handleSearch, map[string]any{
		"pattern":     "PROJ",
		"search_type": "table",
	})

	var sections map[string]json.RawMessage
	decode(t, res, &sections)
	assert.Contains(t, sections, "tables")
	assert.NotContains(t, sections, "fields")
	assert.NotContains(t, sections, "relationships")
}

func TestSearchAll(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "search", handleSearch, map[string]any{"pattern": "PROJ"})

	var result struct {
		Tables        []map[string]any `json:"tables"`
		Fields        []map[string]any `json:"fields"`
		Relationships []map[string]any `json:"relationships"`
	}
	decode(t, res, &result)
	assert.Len(t, result.Tables, 1)
	assert.Len(t, result.Fields, 3)
	assert.Len(t, result.Relationships, 1)
}

func TestSearchInvalidType(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "search", handleSearch, map[string]any{
		"pattern":     "PROJ",
		"search_type": "column",
	})
	assert.Contains(t, errorText(t, res), "invalid search type")
}

func TestCompareSchemas(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "compare_schemas", handleCompareSchemas, map[string]any{
		"schema1": "eppm:23.12",
		"schema2": "eppm:24.12",
	})

	var cmp struct {
		AddedTables    []string `json:"added_tables"`
		RemovedTables  []string `json:"removed_tables"`
		ModifiedTables []struct {
			Table       string   `json:"table"`
			AddedFields []string `json:"added_fields"`
		} `json:"modified_tables"`
	}
	decode(t, res, &cmp)
	assert.Equal(t, []string{"TASK"}, cmp.AddedTables)
	assert.Empty(t, cmp.RemovedTables)
	require.Len(t, cmp.ModifiedTables, 1)
	assert.Equal(t, "PROJECT", cmp.ModifiedTables[0].Table)
	assert.Equal(t, []string{"PROJ_SHORT_NAME"}, cmp.ModifiedTables[0].AddedFields)
}

func TestGetFields(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_fields", handleGetFields, map[string]any{"table": "TASK"})

	var listing fieldListing
	decode(t, res, &listing)
	assert.Equal(t, 3, listing.Count)
	require.NotEmpty(t, listing.Fields)
	assert.Equal(t, "TASK", listing.Fields[0].Table)
	assert.Equal(t, "TASK_ID", listing.Fields[0].Field)
	assert.Equal(t, "10", listing.Fields[0].Length)
	assert.True(t, listing.Fields[0].NotNull)
}

func TestGetConstraints(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_constraints", handleGetConstraints, map[string]any{"type": "fk"})

	var listing constraintListing
	decode(t, res, &listing)
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "FK_TASK_PROJ", listing.Constraints[0].Name)
	assert.Equal(t, "PROJECT", listing.Constraints[0].TargetTable)
}

func TestGetConstraintsTableFilter(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_constraints", handleGetConstraints, map[string]any{"table": "project"})

	var listing constraintListing
	decode(t, res, &listing)
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "PK_PROJECT", listing.Constraints[0].Name)
}

func TestGetStats(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "get_stats", handleGetStats, nil)

	var stats struct {
		Version     string         `json:"version"`
		Tables      int            `json:"tables"`
		Fields      int            `json:"fields"`
		ForeignKeys int            `json:"foreign_keys"`
		Datatypes   map[string]int `json:"datatypes"`
	}
	decode(t, res, &stats)
	assert.Equal(t, "24.12", stats.Version)
	assert.Equal(t, 2, stats.Tables)
	assert.Equal(t, 5, stats.Fields)
	assert.Equal(t, 1, stats.ForeignKeys)
	assert.Equal(t, 3, stats.Datatypes["NUMBER"])
}

func TestConfigLifecycle(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "config_show", handleConfigShow, nil)
	var shown configRecord
	decode(t, res, &shown)
	assert.False(t, shown.Exists)
	assert.Empty(t, shown.DefaultSchema)

	res = callTool(t, "config_set_default", handleConfigSetDefault, map[string]any{"schema": "eppm:23.12"})
	var set successRecord
	decode(t, res, &set)
	assert.True(t, set.Success)
	assert.Contains(t, set.Message, "EPPM 23.12 (eppm:23.12)")
	assert.Equal(t, "eppm:23.12", set.DefaultSchema)

	// The default now drives resolution.
	res = callTool(t, "get_schema_info", handleGetSchemaInfo, nil)
	var info struct {
		Version string `json:"version"`
	}
	decode(t, res, &info)
	assert.Equal(t, "23.12", info.Version)

	res = callTool(t, "config_show", handleConfigShow, nil)
	decode(t, res, &shown)
	assert.True(t, shown.Exists)
	assert.Equal(t, "eppm:23.12", shown.DefaultSchema)

	res = callTool(t, "config_clear_default", handleConfigClearDefault, nil)
	var cleared successRecord
	decode(t, res, &cleared)
	assert.True(t, cleared.Success)
	assert.Equal(t, "Default schema cleared. Will use latest EPPM.", cleared.Message)

	res = callTool(t, "config_clear_default", handleConfigClearDefault, nil)
	decode(t, res, &cleared)
	assert.Equal(t, "No default schema was set.", cleared.Message)
}

func TestConfigSetDefaultUnknown(t *testing.T) {
	setupEnv(t)

	res := callTool(t, "config_set_default", handleConfigSetDefault, map[string]any{"schema": "eppm:99.99"})
	msg := errorText(t, res)
	assert.Contains(t, msg, "unknown schema")
	assert.Contains(t, msg, "eppm:24.12", "the error should list available keys")
}
