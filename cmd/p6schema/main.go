package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/p6tools/p6schema"
	"github.com/p6tools/p6schema/internal/config"
	"github.com/p6tools/p6schema/internal/query"
	"github.com/p6tools/p6schema/internal/registry"
)

var (
	schemaDir  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "p6schema",
	Short: "Parse and analyze Oracle P6 EPPM schema files",
	Long: `p6schema parses Oracle Primavera P6 schema XML documents and answers
structural questions about them: table definitions, foreign key
relationships, version-to-version differences, and aggregate statistics.

Schemas are discovered in the schema directory by their vendor file names
(eppm_24_12_schema.xml and the like) and addressed by registry key, for
example eppm:24.12, or by file path. Run 'p6schema list' to see what is
available. When no schema is given, the configured default is used,
falling back to the latest EPPM release.`,
	Version:      p6schema.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", registry.DefaultDir(), "Directory scanned for schema files")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.SetVersionTemplate("p6schema {{.Version}}\n")
}

// options carries the global flags into the resolution chain.
func options() *p6schema.Options {
	return &p6schema.Options{SchemaDir: schemaDir, ConfigPath: configPath}
}

// loadEngine resolves and parses a schema, wrapped for querying.
func loadEngine(specifier string) (*query.Engine, error) {
	s, err := p6schema.Load(specifier, options())
	if err != nil {
		return nil, err
	}
	return query.New(s), nil
}

// schemaArg returns the optional positional schema specifier at index i,
// or empty when the caller left it off.
func schemaArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
