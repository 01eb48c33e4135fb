package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/athanor/sigildex"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// marshalList encodes a string slice as a JSON array for TEXT columns.
// nil encodes as the empty array.
func marshalList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// unmarshalList decodes a TEXT column written by marshalList.
func unmarshalList(value string) []string {
	if value == "" || value == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil
	}
	return out
}

// marshalBBox encodes a bounding box for its TEXT column; nil encodes
// as the empty string.
func marshalBBox(b *sigildex.BBox) string {
	if b == nil {
		return ""
	}
	enc, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	return string(enc)
}

// unmarshalBBox decodes a TEXT column written by marshalBBox.
func unmarshalBBox(value string) *sigildex.BBox {
	if value == "" {
		return nil
	}
	var b sigildex.BBox
	if err := json.Unmarshal([]byte(value), &b); err != nil {
		return nil
	}
	return &b
}
