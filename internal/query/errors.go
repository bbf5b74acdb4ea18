package query

import (
	"fmt"
	"strings"
)

// TableNotFoundError reports a table lookup miss, carrying up to three
// close-match suggestions.
type TableNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *TableNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("table %q not found", e.Name)
	}
	return fmt.Sprintf("table %q not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}
