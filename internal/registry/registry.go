// Package registry discovers P6 schema XML files in a local directory
// and resolves user-facing specifiers to file paths.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// filePattern matches vendor schema file names such as
// eppm_24_12_schema.xml, case-insensitively.
var filePattern = regexp.MustCompile(`(?i)^(eppm|ppm)_(\d{2})_(\d{2})_schema\.xml$`)

// versionPattern matches bare two-part versions like 24.12, which are
// shorthand for the eppm product line.
var versionPattern = regexp.MustCompile(`^\d{2}\.\d{2}$`)

// Entry describes one discovered schema file.
type Entry struct {
	Application string `json:"application"` // eppm or ppm
	Version     string `json:"version"`     // major.minor, e.g. 24.12
	Path        string `json:"path"`
	Key         string `json:"key"` // application:version
}

// DisplayName renders a label such as "EPPM 24.12".
func (e *Entry) DisplayName() string {
	return fmt.Sprintf("%s %s", strings.ToUpper(e.Application), e.Version)
}

// Registry indexes the schema files found in one directory.
type Registry struct {
	dir     string
	entries map[string]*Entry
}

// Scan enumerates the files directly inside dir (non-recursive) and
// indexes those whose names match the vendor naming convention. A
// missing directory yields an empty registry, not an error. If two
// files map to the same key, the lexicographically greatest file name
// wins, since os.ReadDir returns sorted entries and later matches
// overwrite earlier ones.
func Scan(dir string) (*Registry, error) {
	r := &Registry{dir: dir, entries: make(map[string]*Entry)}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to scan schema directory: %w", err)
	}

	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		m := filePattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		app := strings.ToLower(m[1])
		version := m[2] + "." + m[3]
		r.entries[app+":"+version] = &Entry{
			Application: app,
			Version:     version,
			Path:        filepath.Join(dir, de.Name()),
			Key:         app + ":" + version,
		}
	}
	return r, nil
}

// Dir returns the directory the registry was scanned from.
func (r *Registry) Dir() string { return r.dir }

// Len returns the number of registered schemas.
func (r *Registry) Len() int { return len(r.entries) }

// Get looks up an entry by specifier. Lookup is case-insensitive and
// a bare version like "24.12" is treated as "eppm:24.12".
func (r *Registry) Get(specifier string) (*Entry, error) {
	if e, ok := r.entries[normalizeKey(specifier)]; ok {
		return e, nil
	}
	return nil, &NotFoundError{Specifier: specifier, Known: r.Keys()}
}

// Latest returns the highest-version entry for an application, or nil
// when the application has none. Versions compare numerically, so
// "10.1" beats "9.9".
func (r *Registry) Latest(application string) *Entry {
	var best *Entry
	for _, e := range r.entries {
		if e.Application != application {
			continue
		}
		if best == nil || versionLess(best.Version, e.Version) {
			best = e
		}
	}
	return best
}

// Resolve turns a specifier into a schema file path.
//
// A specifier containing a path separator or ending in .xml is treated
// as a literal file path and must exist. An empty specifier falls back
// to the latest eppm schema. Anything else is a registry key lookup.
func (r *Registry) Resolve(specifier string) (string, error) {
	specifier = strings.TrimSpace(specifier)

	if looksLikePath(specifier) {
		if _, err := os.Stat(specifier); err != nil {
			return "", &FileNotFoundError{Path: specifier}
		}
		return specifier, nil
	}

	if specifier == "" {
		if e := r.Latest("eppm"); e != nil {
			return e.Path, nil
		}
		return "", &NoDefaultError{Dir: r.dir}
	}

	e, err := r.Get(specifier)
	if err != nil {
		return "", err
	}
	return e.Path, nil
}

// All returns every entry sorted by application, then numeric version.
func (r *Registry) All() []*Entry {
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Application != entries[j].Application {
			return entries[i].Application < entries[j].Application
		}
		return versionLess(entries[i].Version, entries[j].Version)
	})
	return entries
}

// ByApp returns one application's entries sorted by numeric version.
func (r *Registry) ByApp(application string) []*Entry {
	var entries []*Entry
	for _, e := range r.All() {
		if e.Application == application {
			entries = append(entries, e)
		}
	}
	return entries
}

// Keys returns the sorted registry keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultDir returns the schema search directory: $P6SCHEMA_DIR when
// set, otherwise p6schema/schemas under the user config directory.
func DefaultDir() string {
	if dir := os.Getenv("P6SCHEMA_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "schemas"
	}
	return filepath.Join(base, "p6schema", "schemas")
}

func normalizeKey(specifier string) string {
	key := strings.ToLower(strings.TrimSpace(specifier))
	if versionPattern.MatchString(key) {
		key = "eppm:" + key
	}
	return key
}

func looksLikePath(s string) bool {
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(s), ".xml")
}

func versionLess(a, b string) bool {
	amaj, amin := splitVersion(a)
	bmaj, bmin := splitVersion(b)
	if amaj != bmaj {
		return amaj < bmaj
	}
	return amin < bmin
}

func splitVersion(v string) (int, int) {
	major, minor, _ := strings.Cut(v, ".")
	ma, _ := strconv.Atoi(major)
	mi, _ := strconv.Atoi(minor)
	return ma, mi
}
