package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/p6tools/p6schema"
	"github.com/p6tools/p6schema/internal/config"
	"github.com/p6tools/p6schema/internal/query"
	"github.com/p6tools/p6schema/internal/registry"
)

const schemaArgDesc = "Schema specifier: a registry key like 'eppm:24.12', a bare version, " +
	"or a file path. Omit to use the configured default, then the latest EPPM."

var listSchemasTool = mcp.NewTool("list_schemas",
	mcp.WithDescription("List all available P6 schemas in the registry."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var getSchemaInfoTool = mcp.NewTool("get_schema_info",
	mcp.WithDescription("Get metadata information about a schema: version, DB type, build version, and table count."),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var listTablesTool = mcp.NewTool("list_tables",
	mcp.WithDescription("List all tables in a schema with their descriptions and field counts."),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var describeTableTool = mcp.NewTool("describe_table",
	mcp.WithDescription("Get detailed information about a specific table: fields, indexes, constraints, and triggers."),
	mcp.WithString("table", mcp.Required(), mcp.Description("Table name (case-insensitive)")),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var getRelationshipsTool = mcp.NewTool("get_relationships",
	mcp.WithDescription("Get foreign key relationships for a table: the tables it references and the tables that reference it."),
	mcp.WithString("table", mcp.Required(), mcp.Description("Table name (case-insensitive)")),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var searchTool = mcp.NewTool("search",
	mcp.WithDescription("Search for tables, fields, or relationships matching a pattern (case-insensitive substring match)."),
	mcp.WithString("pattern", mcp.Required(), mcp.Description("Search pattern")),
	mcp.WithString("search_type", mcp.Description("What to search: 'table', 'field', 'rel', or 'all' (default)")),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var compareSchemasTool = mcp.NewTool("compare_schemas",
	mcp.WithDescription("Compare two schema versions: added tables, removed tables, and tables with field changes."),
	mcp.WithString("schema1", mcp.Required(), mcp.Description("First schema specifier (e.g. 'eppm:23.12')")),
	mcp.WithString("schema2", mcp.Required(), mcp.Description("Second schema specifier (e.g. 'eppm:24.12')")),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var getFieldsTool = mcp.NewTool("get_fields",
	mcp.WithDescription("List fields across the schema, optionally filtered by table."),
	mcp.WithString("table", mcp.Description("Filter by table name (case-insensitive)")),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var getConstraintsTool = mcp.NewTool("get_constraints",
	mcp.WithDescription("List constraints (primary keys, foreign keys), optionally filtered by table or type."),
	mcp.WithString("table", mcp.Description("Filter by table name (case-insensitive)")),
	mcp.WithString("type", mcp.Description("Filter by constraint type: 'pk', 'fk', or 'all' (default)")),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var getStatsTool = mcp.NewTool("get_stats",
	mcp.WithDescription("Get schema statistics: table, field, index, and constraint totals plus the datatype distribution."),
	mcp.WithString("schema", mcp.Description(schemaArgDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var configShowTool = mcp.NewTool("config_show",
	mcp.WithDescription("Show the current configuration: config file location and default schema."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
)

var configSetDefaultTool = mcp.NewTool("config_set_default",
	mcp.WithDescription("Set the default schema used when no specifier is given."),
	mcp.WithString("schema", mcp.Required(), mcp.Description("Schema specifier to persist (e.g. 'eppm:24.12')")),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
)

var configClearDefaultTool = mcp.NewTool("config_clear_default",
	mcp.WithDescription("Clear the default schema setting."),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
)

func registerTools(s *server.MCPServer) {
	s.AddTool(listSchemasTool, handleListSchemas)
	s.AddTool(getSchemaInfoTool, handleGetSchemaInfo)
	s.AddTool(listTablesTool, handleListTables)
	s.AddTool(describeTableTool, handleDescribeTable)
	s.AddTool(getRelationshipsTool, handleGetRelationships)
	s.AddTool(searchTool, handleSearch)
	s.AddTool(compareSchemasTool, handleCompareSchemas)
	s.AddTool(getFieldsTool, handleGetFields)
	s.AddTool(getConstraintsTool, handleGetConstraints)
	s.AddTool(getStatsTool, handleGetStats)
	s.AddTool(configShowTool, handleConfigShow)
	s.AddTool(configSetDefaultTool, handleConfigSetDefault)
	s.AddTool(configClearDefaultTool, handleConfigClearDefault)
}

// jsonResult renders v as the tool's text payload.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports a failed call to the client as a tool error rather
// than a protocol error, and logs it.
func toolError(tool string, err error) (*mcp.CallToolResult, error) {
	zap.S().Warnw("tool call failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(err.Error()), nil
}

// loadEngine resolves and parses the requested schema using the
// standard locations, wrapped for querying.
func loadEngine(specifier string) (*query.Engine, error) {
	s, err := p6schema.Load(specifier, nil)
	if err != nil {
		return nil, err
	}
	return query.New(s), nil
}

type schemaEntry struct {
	Key         string `json:"key"`
	Application string `json:"application"`
	Version     string `json:"version"`
	Path        string `json:"path"`
}

type schemaListing struct {
	Schemas   []schemaEntry `json:"schemas"`
	Count     int           `json:"count"`
	Directory string        `json:"directory"`
}

func handleListSchemas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg, err := registry.Scan(registry.DefaultDir())
	if err != nil {
		return toolError("list_schemas", err)
	}

	entries := reg.All()
	listing := schemaListing{
		Schemas:   make([]schemaEntry, 0, len(entries)),
		Count:     len(entries),
		Directory: reg.Dir(),
	}
	for _, e := range entries {
		listing.Schemas = append(listing.Schemas, schemaEntry{
			Key:         e.Key,
			Application: strings.ToUpper(e.Application),
			Version:     e.Version,
			Path:        e.Path,
		})
	}
	return jsonResult(listing)
}

func handleGetSchemaInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("get_schema_info", err)
	}
	return jsonResult(eng.Info())
}

type tableListing struct {
	Count  int                  `json:"count"`
	Tables []query.TableSummary `json:"tables"`
}

func handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("list_tables", err)
	}
	rows := eng.Summaries()
	return jsonResult(tableListing{Count: len(rows), Tables: rows})
}

func handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("describe_table", err)
	}
	detail, err := eng.Detail(table)
	if err != nil {
		return toolError("describe_table", err)
	}
	return jsonResult(detail)
}

func handleGetRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("get_relationships", err)
	}
	report, err := eng.Relationships(table)
	if err != nil {
		return toolError("get_relationships", err)
	}
	return jsonResult(report)
}

func handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope, err := query.ParseScope(req.GetString("search_type", "all"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("search", err)
	}
	return jsonResult(eng.Search(pattern, scope))
}

func handleCompareSchemas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec1, err := req.RequireString("schema1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec2, err := req.RequireString("schema2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s1, err := p6schema.Load(spec1, nil)
	if err != nil {
		return toolError("compare_schemas", err)
	}
	s2, err := p6schema.Load(spec2, nil)
	if err != nil {
		return toolError("compare_schemas", err)
	}
	return jsonResult(query.Compare(s1, s2))
}

type fieldListing struct {
	Count  int              `json:"count"`
	Fields []query.FieldRow `json:"fields"`
}

func handleGetFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("get_fields", err)
	}
	rows, err := eng.Fields(req.GetString("table", ""))
	if err != nil {
		return toolError("get_fields", err)
	}
	return jsonResult(fieldListing{Count: len(rows), Fields: rows})
}

type constraintListing struct {
	Count       int                   `json:"count"`
	Constraints []query.ConstraintRow `json:"constraints"`
}

func handleGetConstraints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := query.ParseConstraintFilter(req.GetString("type", "all"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("get_constraints", err)
	}

	rows := eng.Constraints(filter)
	if table := req.GetString("table", ""); table != "" {
		t, err := eng.Table(table)
		if err != nil {
			return toolError("get_constraints", err)
		}
		filtered := make([]query.ConstraintRow, 0, len(rows))
		for _, row := range rows {
			if row.Table == t.Name {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return jsonResult(constraintListing{Count: len(rows), Constraints: rows})
}

func handleGetStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eng, err := loadEngine(req.GetString("schema", ""))
	if err != nil {
		return toolError("get_stats", err)
	}
	return jsonResult(eng.Stats())
}

type configRecord struct {
	ConfigFile    string `json:"config_file"`
	DefaultSchema string `json:"default_schema"`
	Exists        bool   `json:"exists"`
}

func handleConfigShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := config.DefaultPath()
	cfg, err := config.Load(path)
	if err != nil {
		return toolError("config_show", err)
	}
	return jsonResult(configRecord{
		ConfigFile:    path,
		DefaultSchema: cfg.DefaultSchema,
		Exists:        !cfg.Empty(),
	})
}

type successRecord struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DefaultSchema string `json:"default_schema,omitempty"`
}

func handleConfigSetDefault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	specifier, err := req.RequireString("schema")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// The resolution error for an unknown specifier lists the
	// available registry keys.
	label, err := p6schema.SetDefault(specifier, nil)
	if err != nil {
		return toolError("config_set_default", err)
	}
	return jsonResult(successRecord{
		Success:       true,
		Message:       "Default schema set to: " + label,
		DefaultSchema: specifier,
	})
}

func handleConfigClearDefault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cleared, err := config.ClearDefault(config.DefaultPath())
	if err != nil {
		return toolError("config_clear_default", err)
	}
	msg := "No default schema was set."
	if cleared {
		msg = "Default schema cleared. Will use latest EPPM."
	}
	return jsonResult(successRecord{Success: true, Message: msg})
}
