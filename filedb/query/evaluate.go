package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ohler55/ojg/jp"
)

var (
	// ErrMultipleResults is returned by SelectOne when more than one document matches
	ErrMultipleResults = errors.New("query returned multiple results")

	// ErrNotDocument is returned when an expression selects something other
	// than a top-level document, such as a single field
	ErrNotDocument = errors.New("query selected a value that is not a document")
)

// Query is a compiled JSONPath expression
type Query struct {
	path string
	expr jp.Expr
}

// Compile parses a JSONPath expression
func Compile(path string) (*Query, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty query")
	}
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", path, err)
	}
	return &Query{path: path, expr: expr}, nil
}

// String returns the source expression
func (q *Query) String() string {
	return q.path
}

// Select evaluates the query against the top-level document array and
// returns the positions of the matching documents in nodes, in the order the
// evaluator produced them. Each node must be a map so that matches can be
// traced back to their position by identity.
func (q *Query) Select(nodes []any) (positions []int, err error) {
	defer func() {
		// ojg reports some evaluation faults by panicking
		if r := recover(); r != nil {
			positions = nil
			err = fmt.Errorf("evaluating %q: %v", q.path, r)
		}
	}()

	byIdentity := make(map[uintptr]int, len(nodes))
	for i, node := range nodes {
		ptr, ok := identity(node)
		if !ok {
			return nil, fmt.Errorf("node %d: %w", i, ErrNotDocument)
		}
		byIdentity[ptr] = i
	}

	results := q.expr.Get(nodes)
	if len(results) == 0 {
		return nil, nil
	}

	positions = make([]int, 0, len(results))
	for _, result := range results {
		ptr, ok := identity(result)
		if !ok {
			return nil, ErrNotDocument
		}
		pos, ok := byIdentity[ptr]
		if !ok {
			return nil, ErrNotDocument
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// SelectOne evaluates the query and returns the single matching position.
// ok is false when nothing matched; more than one match is an error.
func (q *Query) SelectOne(nodes []any) (pos int, ok bool, err error) {
	positions, err := q.Select(nodes)
	if err != nil {
		return 0, false, err
	}
	switch len(positions) {
	case 0:
		return 0, false, nil
	case 1:
		return positions[0], true, nil
	default:
		return 0, false, fmt.Errorf("%w: %d matches for %q", ErrMultipleResults, len(positions), q.path)
	}
}

// identity returns the address of a map node
func identity(node any) (uintptr, bool) {
	if _, ok := node.(map[string]any); !ok {
		return 0, false
	}
	return reflect.ValueOf(node).Pointer(), true
}
