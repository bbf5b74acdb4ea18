// Package p6schema parses Oracle Primavera P6 database schema documents
// and answers read-only structural queries against them.
//
// P6 ships its physical schema as vendor XML files, one per product line
// and release (eppm_24_12_schema.xml and the like). This package discovers
// those files in a local directory, resolves user-facing specifiers to a
// concrete file, and parses the document into an in-memory model that the
// internal query engine, the p6schema CLI, and the p6schema-mcp server all
// share.
//
// # Quick Start
//
// Load the default schema (the configured default, falling back to the
// latest EPPM release found in the schema directory):
//
//	s, err := p6schema.Load("", nil)
//
// Load a specific release, or a file directly:
//
//	s, err := p6schema.Load("eppm:24.12", nil)
//	s, err := p6schema.Load("./schemas/ppm_23_12_schema.xml", nil)
//
// # Schema Specifiers
//
// A specifier is one of:
//   - a registry key "application:version", e.g. "eppm:24.12" or "ppm:23.12"
//   - a bare version "24.12", shorthand for "eppm:24.12"
//   - a file path (anything containing a path separator or ending in .xml)
//   - empty, which resolves to the persisted default and then to the
//     latest EPPM release in the schema directory
//
// # Locations
//
// The schema directory defaults to $P6SCHEMA_DIR, then to
// p6schema/schemas under the user config directory. The config file
// holding the default-schema preference defaults to $P6SCHEMA_CONFIG,
// then to p6schema/config.yaml under the user config directory. Both can
// be overridden per call through Options.
package p6schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/p6tools/p6schema/internal/config"
	"github.com/p6tools/p6schema/internal/registry"
	"github.com/p6tools/p6schema/internal/schema"
)

// Version is reported by the CLI --version flag and the MCP server
// handshake.
const Version = "1.0.0"

// Options overrides where schemas and configuration are looked up.
//
// The zero value (or a nil *Options) uses the standard locations, so most
// callers pass nil:
//
//	s, err := p6schema.Load("eppm:24.12", nil)
type Options struct {
	// SchemaDir is the directory scanned for vendor schema files.
	// Defaults to registry.DefaultDir() resolution order.
	SchemaDir string

	// ConfigPath is the file consulted for the persisted default schema
	// specifier. Defaults to config.DefaultPath() resolution order.
	ConfigPath string
}

func (o *Options) schemaDir() string {
	if o != nil && o.SchemaDir != "" {
		return o.SchemaDir
	}
	return registry.DefaultDir()
}

func (o *Options) configPath() string {
	if o != nil && o.ConfigPath != "" {
		return o.ConfigPath
	}
	return config.DefaultPath()
}

// Load resolves specifier and parses the schema document it names.
//
// An empty specifier consults the persisted default first and falls back
// to the latest EPPM release in the schema directory. The error is one of
// the registry resolution errors or a *schema.ParseError when the file
// exists but cannot be decoded.
func Load(specifier string, opts *Options) (*schema.Schema, error) {
	path, err := Resolve(specifier, opts)
	if err != nil {
		return nil, err
	}
	return schema.ParseFile(path)
}

// Resolve turns a specifier into a schema file path without parsing it.
// The resolution chain for an empty specifier is: persisted config
// default, then latest EPPM release.
func Resolve(specifier string, opts *Options) (string, error) {
	reg, err := registry.Scan(opts.schemaDir())
	if err != nil {
		return "", err
	}

	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		cfg, err := config.Load(opts.configPath())
		if err != nil {
			return "", err
		}
		specifier = cfg.DefaultSchema
	}

	return reg.Resolve(specifier)
}

// SetDefault validates specifier and persists it as the default schema.
// A specifier is valid when it names a registry entry or an existing
// schema XML file. Returns a display label for the persisted default,
// e.g. "EPPM 24.12 (eppm:24.12)".
func SetDefault(specifier string, opts *Options) (string, error) {
	reg, err := registry.Scan(opts.schemaDir())
	if err != nil {
		return "", err
	}

	specifier = strings.TrimSpace(specifier)
	label := specifier
	entry, lookupErr := reg.Get(specifier)
	if lookupErr == nil {
		label = fmt.Sprintf("%s (%s)", entry.DisplayName(), entry.Key)
	} else {
		// Not a registry key; accept an existing schema file instead.
		if !strings.HasSuffix(strings.ToLower(specifier), ".xml") {
			return "", lookupErr
		}
		if _, err := os.Stat(specifier); err != nil {
			return "", lookupErr
		}
	}

	if err := config.SetDefault(opts.configPath(), specifier); err != nil {
		return "", err
	}
	return label, nil
}
