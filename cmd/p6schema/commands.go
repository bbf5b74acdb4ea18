package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p6tools/p6schema"
	"github.com/p6tools/p6schema/internal/config"
	"github.com/p6tools/p6schema/internal/formatter"
	"github.com/p6tools/p6schema/internal/query"
	"github.com/p6tools/p6schema/internal/registry"
)

const schemaHelp = "schema: file path or registry key (default: configured default, then latest EPPM)"

var (
	format         string
	searchType     string
	tableFilter    string
	constraintType string
	outputFile     string
)

func init() {
	listCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	tablesCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, or csv")
	describeCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	relationshipsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	searchCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "all", "What to search: table, field, rel[ationship], or all")
	compareCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout if not specified)")
	fieldsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, or csv")
	fieldsCmd.Flags().StringVarP(&tableFilter, "table", "t", "", "Filter by table name")
	constraintsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	constraintsCmd.Flags().StringVarP(&constraintType, "type", "t", "all", "Constraint type: all, pk, or fk")
	statsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	configShowCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")

	configCmd.AddCommand(configShowCmd, configSetDefaultCmd, configClearCmd)
	rootCmd.AddCommand(
		listCmd,
		infoCmd,
		tablesCmd,
		describeCmd,
		relationshipsCmd,
		searchCmd,
		compareCmd,
		exportCmd,
		fieldsCmd,
		constraintsCmd,
		statsCmd,
		configCmd,
	)
}

func jsonOut(cmd *cobra.Command, v any) error {
	return formatter.NewJSONFormatter(cmd.OutOrStdout()).Write(v)
}

func invalidFormat(allowed string) error {
	return fmt.Errorf("invalid format %q (must be %s)", format, allowed)
}

// listEntry is the JSON shape of one registry listing row.
type listEntry struct {
	Key         string `json:"key"`
	Application string `json:"application"`
	Version     string `json:"version"`
	Path        string `json:"path"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available schemas in the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Scan(schemaDir)
		if err != nil {
			return err
		}
		entries := reg.All()

		switch format {
		case "json":
			records := make([]listEntry, 0, len(entries))
			for _, e := range entries {
				records = append(records, listEntry{
					Key:         e.Key,
					Application: strings.ToUpper(e.Application),
					Version:     e.Version,
					Path:        e.Path,
				})
			}
			return jsonOut(cmd, records)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Registry(entries, reg.Dir())
			return nil
		}
		return invalidFormat("text or json")
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [schema]",
	Short: "Show schema information",
	Long:  "Show schema information.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		formatter.NewTextFormatter(cmd.OutOrStdout()).Info(eng.Info())
		return nil
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables [schema]",
	Short: "List all tables",
	Long:  "List all tables with field counts and descriptions.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		rows := eng.Summaries()

		switch format {
		case "json":
			return jsonOut(cmd, rows)
		case "csv":
			return formatter.NewCSVFormatter(cmd.OutOrStdout()).Summaries(rows)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Summaries(rows)
			return nil
		}
		return invalidFormat("text, json, or csv")
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe TABLE [schema]",
	Short: "Describe a table",
	Long:  "Show a table's fields, indexes, constraints, and triggers.\n\n" + schemaHelp,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 1))
		if err != nil {
			return err
		}
		detail, err := eng.Detail(args[0])
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return jsonOut(cmd, detail)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Detail(detail)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var relationshipsCmd = &cobra.Command{
	Use:     "relationships TABLE [schema]",
	Aliases: []string{"rels"},
	Short:   "Show table relationships (foreign keys)",
	Long:    "Show the foreign keys a table owns and the ones pointing at it.\n\n" + schemaHelp,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 1))
		if err != nil {
			return err
		}
		report, err := eng.Relationships(args[0])
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return jsonOut(cmd, report)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Relationships(report)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var searchCmd = &cobra.Command{
	Use:   "search PATTERN [schema]",
	Short: "Search tables, fields, relationships, or all",
	Long:  "Case-insensitive substring search across the schema.\n\n" + schemaHelp,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := query.ParseScope(searchType)
		if err != nil {
			return err
		}
		eng, err := loadEngine(schemaArg(args, 1))
		if err != nil {
			return err
		}
		res := eng.Search(args[0], scope)

		switch format {
		case "json":
			return jsonOut(cmd, res)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).SearchResults(res)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare SCHEMA1 SCHEMA2",
	Short: "Compare two schemas",
	Long:  "Diff two schema versions by table and field names.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s1, err := p6schema.Load(args[0], options())
		if err != nil {
			return err
		}
		s2, err := p6schema.Load(args[1], options())
		if err != nil {
			return err
		}
		res := query.Compare(s1, s2)

		switch format {
		case "json":
			return jsonOut(cmd, res)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Compare(res)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [schema]",
	Short: "Export schema to JSON",
	Long:  "Export the full schema model as JSON.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		export := eng.Export()

		if outputFile != "" {
			if err := formatter.WriteJSONFile(outputFile, export); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outputFile)
			return nil
		}
		return jsonOut(cmd, export)
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields [schema]",
	Short: "List fields",
	Long:  "List fields across the schema or for one table.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		rows, err := eng.Fields(tableFilter)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return jsonOut(cmd, rows)
		case "csv":
			return formatter.NewCSVFormatter(cmd.OutOrStdout()).FieldRows(rows)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).FieldRows(rows)
			return nil
		}
		return invalidFormat("text, json, or csv")
	},
}

var constraintsCmd = &cobra.Command{
	Use:   "constraints [schema]",
	Short: "List constraints",
	Long:  "List constraints, optionally narrowed to primary or foreign keys.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := query.ParseConstraintFilter(constraintType)
		if err != nil {
			return err
		}
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		rows := eng.Constraints(filter)

		switch format {
		case "json":
			return jsonOut(cmd, rows)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).ConstraintRows(rows)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [schema]",
	Short: "Show schema statistics",
	Long:  "Show totals and the field datatype distribution.\n\n" + schemaHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(schemaArg(args, 0))
		if err != nil {
			return err
		}
		st := eng.Stats()

		switch format {
		case "json":
			return jsonOut(cmd, st)
		case "text":
			formatter.NewTextFormatter(cmd.OutOrStdout()).Stats(st)
			return nil
		}
		return invalidFormat("text or json")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (set default schema)",
}

// configRecord is the JSON shape of 'config show'.
type configRecord struct {
	ConfigFile    string `json:"config_file"`
	DefaultSchema string `json:"default_schema"`
	Exists        bool   `json:"exists"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if format == "json" {
			return jsonOut(cmd, configRecord{
				ConfigFile:    configPath,
				DefaultSchema: cfg.DefaultSchema,
				Exists:        !cfg.Empty(),
			})
		}

		out := cmd.OutOrStdout()
		if cfg.Empty() {
			_, _ = fmt.Fprintln(out, "No configuration set.")
			_, _ = fmt.Fprintf(out, "Config file: %s\n", configPath)
			return nil
		}
		_, _ = fmt.Fprintln(out, "Current configuration:")
		_, _ = fmt.Fprintf(out, "  Config file: %s\n", configPath)
		if cfg.DefaultSchema != "" {
			_, _ = fmt.Fprintf(out, "  Default schema: %s\n", cfg.DefaultSchema)
		}
		return nil
	},
}

var configSetDefaultCmd = &cobra.Command{
	Use:   "set-default SCHEMA",
	Short: "Set the default schema",
	Long:  "Persist a registry key or schema file path as the default schema.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := p6schema.SetDefault(args[0], options())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default schema set to: %s\n", label)
		return nil
	},
}

var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the default schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleared, err := config.ClearDefault(configPath)
		if err != nil {
			return err
		}
		if cleared {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Default schema cleared. Will use latest EPPM.")
		} else {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No default schema was set.")
		}
		return nil
	},
}
