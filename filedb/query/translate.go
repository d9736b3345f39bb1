package query

import (
	"fmt"
	"strings"
	"time"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// TimeLayout is the literal format used for time values in filter
// expressions: ISO-8601 with seven fractional digits and the zone offset.
const TimeLayout = "2006-01-02T15:04:05.0000000Z07:00"

// CanonicalTime rewrites an RFC 3339 timestamp in TimeLayout, the form
// stored documents keep times in, so that they compare with time literals as
// plain strings. ok is false when s is not a timestamp.
func CanonicalTime(s string) (string, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[10] != 'T' {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", false
	}
	return t.Format(TimeLayout), true
}

// AllDocuments matches every document that has been assigned an id
const AllDocuments = "$[?(@._id > 0)]"

// Translate builds the JSONPath filter expression selecting documents whose
// field compares to value with op. The field name is not validated; unknown
// fields simply match nothing.
func Translate(field string, value any, op Operator) string {
	return "$[?(@." + field + " " + op.Symbol() + " " + FormatLiteral(value) + ")]"
}

// ByID builds the point query for a primary id
func ByID(id int64) string {
	return fmt.Sprintf("$[?(@._id == %d)]", id)
}

// FormatLiteral renders a value in the literal syntax of filter expressions.
// Strings are single-quoted with quotes and backslashes escaped, times use
// TimeLayout, booleans are lowercase and everything else uses its default
// text form.
func FormatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + literalEscaper.Replace(v) + "'"
	case time.Time:
		return "'" + v.Format(TimeLayout) + "'"
	case *time.Time:
		if v == nil {
			return "null"
		}
		return "'" + v.Format(TimeLayout) + "'"
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
