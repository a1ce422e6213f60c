package model

import (
	"strconv"
	"strings"
)

// AsFloat interprets a field value numerically. Sources hand back a mix of
// float64 (JSON), int (spreadsheet cleaning), and numeric strings (SQL text
// columns), and price comparison has to treat them alike.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FoldString normalizes a string for cross-source equality: trim, collapse
// runs of whitespace, lowercase.
func FoldString(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// IsEmptyValue reports whether a field value counts as absent. Absent values
// never enter a SourceRecord and never participate in conflict detection.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case map[string]string:
		return len(t) == 0
	}
	return false
}
