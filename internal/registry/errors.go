package registry

import (
	"fmt"
	"strings"
)

// NotFoundError reports a specifier that matches no registry entry.
type NotFoundError struct {
	Specifier string
	Known     []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown schema %q (no schema files registered)", e.Specifier)
	}
	return fmt.Sprintf("unknown schema %q (available: %s)", e.Specifier, strings.Join(e.Known, ", "))
}

// FileNotFoundError reports a path specifier that names no file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("schema file not found: %s", e.Path)
}

// NoDefaultError reports that no schema could be chosen implicitly
// because the search directory holds no eppm schemas.
type NoDefaultError struct {
	Dir string
}

func (e *NoDefaultError) Error() string {
	return fmt.Sprintf("no schema files found in %s (set P6SCHEMA_DIR or pass a schema explicitly)", e.Dir)
}
