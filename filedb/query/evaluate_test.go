package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/oj"
)

func parseNodes(t *testing.T, src string) []any {
	t.Helper()
	v, err := oj.ParseString(src)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	nodes, ok := v.([]any)
	if !ok {
		t.Fatalf("fixture is not an array: %T", v)
	}
	return nodes
}

const sample = `[
  {"_id": 1, "SomeInt": 1, "SomeString": "Hello1", "Inner": {"Tag": "a"}},
  {"_id": 2, "SomeInt": 2, "SomeString": "Hello2", "Inner": {"Tag": "b"}},
  {"_id": 3, "SomeInt": 2, "SomeString": "Hello3", "Done": true}
]`

func TestSelect(t *testing.T) {
	nodes := parseNodes(t, sample)

	tests := []struct {
		name     string
		path     string
		expected []int
	}{
		{"equal int", Translate("SomeInt", 2, Equal), []int{1, 2}},
		{"greater than nothing", Translate("SomeInt", 2, GreaterThan), nil},
		{"less than", Translate("SomeInt", 2, LessThan), []int{0}},
		{"not equal string", Translate("SomeString", "Hello2", NotEqual), []int{0, 2}},
		{"nested", Translate("Inner.Tag", "b", Equal), []int{1}},
		{"bool", Translate("Done", true, Equal), []int{2}},
		{"unknown field", Translate("Nope", 1, Equal), nil},
		{"all", AllDocuments, []int{0, 1, 2}},
		{"by id", ByID(3), []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.path)
			if err != nil {
				t.Fatalf("compile %s: %v", tt.path, err)
			}
			got, err := q.Select(nodes)
			if err != nil {
				t.Fatalf("select %s: %v", tt.path, err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("positions mismatch for %s (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestSelectSkipsGaps(t *testing.T) {
	// positions are relative to the slice handed in, not to document ids
	nodes := parseNodes(t, sample)
	q, err := Compile(ByID(3))
	if err != nil {
		t.Fatal(err)
	}
	got, err := q.Select(nodes[1:])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSelectOne(t *testing.T) {
	nodes := parseNodes(t, sample)

	t.Run("single match", func(t *testing.T) {
		q, _ := Compile(Translate("SomeInt", 1, Equal))
		pos, ok, err := q.SelectOne(nodes)
		if err != nil || !ok || pos != 0 {
			t.Errorf("expected position 0, got %d ok=%v err=%v", pos, ok, err)
		}
	})

	t.Run("no match", func(t *testing.T) {
		q, _ := Compile(Translate("SomeInt", 9, Equal))
		_, ok, err := q.SelectOne(nodes)
		if err != nil || ok {
			t.Errorf("expected no match, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("multiple matches", func(t *testing.T) {
		q, _ := Compile(Translate("SomeInt", 2, Equal))
		_, _, err := q.SelectOne(nodes)
		if !errors.Is(err, ErrMultipleResults) {
			t.Errorf("expected ErrMultipleResults, got %v", err)
		}
	})
}

func TestSelectRejectsFieldResults(t *testing.T) {
	nodes := parseNodes(t, sample)
	q, err := Compile("$[*].SomeString")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.Select(nodes); !errors.Is(err, ErrNotDocument) {
		t.Errorf("expected ErrNotDocument, got %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile("   "); err == nil {
		t.Error("expected error for blank query")
	}
	if _, err := Compile("$[?(@.a =="); err == nil {
		t.Error("expected error for malformed query")
	}
}
