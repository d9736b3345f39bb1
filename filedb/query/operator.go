// Package query turns field comparisons into JSONPath filter expressions and
// evaluates those expressions against the in-memory document sequence of a
// collection.
package query

import (
	"fmt"
	"strings"
)

// Operator is a comparison used by field queries
type Operator int

const (
	Equal Operator = iota
	NotEqual
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
)

// Symbol returns the JSONPath comparison symbol for the operator.
// Unknown operators compare for equality.
func (op Operator) Symbol() string {
	switch op {
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	default:
		return "=="
	}
}

// String implements fmt.Stringer
func (op Operator) String() string {
	switch op {
	case Equal:
		return "eq"
	case NotEqual:
		return "ne"
	case LessThan:
		return "lt"
	case GreaterThan:
		return "gt"
	case LessThanOrEqual:
		return "lte"
	case GreaterThanOrEqual:
		return "gte"
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// ParseOperator accepts either the short name (eq, ne, lt, gt, lte, gte) or
// the comparison symbol (==, !=, <, >, <=, >=)
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "==", "=", "":
		return Equal, nil
	case "ne", "!=":
		return NotEqual, nil
	case "lt", "<":
		return LessThan, nil
	case "gt", ">":
		return GreaterThan, nil
	case "lte", "le", "<=":
		return LessThanOrEqual, nil
	case "gte", "ge", ">=":
		return GreaterThanOrEqual, nil
	}
	return Equal, fmt.Errorf("unknown operator %q", s)
}
