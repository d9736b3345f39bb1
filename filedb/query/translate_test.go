package query

import (
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	when := time.Date(2015, 6, 1, 13, 45, 30, 123456700, time.UTC)
	offset := time.FixedZone("plus2", 2*60*60)

	tests := []struct {
		name     string
		field    string
		value    any
		op       Operator
		expected string
	}{
		{"string equal", "SomeString", "Hello1", Equal, "$[?(@.SomeString == 'Hello1')]"},
		{"int greater", "SomeInt", 2, GreaterThan, "$[?(@.SomeInt > 2)]"},
		{"int64 less", "SomeInt", int64(2), LessThan, "$[?(@.SomeInt < 2)]"},
		{"float lte", "Price", 2.5, LessThanOrEqual, "$[?(@.Price <= 2.5)]"},
		{"bool true", "Done", true, NotEqual, "$[?(@.Done != true)]"},
		{"bool false", "Done", false, Equal, "$[?(@.Done == false)]"},
		{"time utc", "At", when, GreaterThanOrEqual, "$[?(@.At >= '2015-06-01T13:45:30.1234567Z')]"},
		{"time offset", "At", when.In(offset), Equal, "$[?(@.At == '2015-06-01T15:45:30.1234567+02:00')]"},
		{"nil", "Missing", nil, Equal, "$[?(@.Missing == null)]"},
		{"string with quotes", "Name", `O'Brien \ co`, Equal, `$[?(@.Name == 'O\'Brien \\ co')]`},
		{"nested field", "Inner.Name", "x", Equal, "$[?(@.Inner.Name == 'x')]"},
		{"unknown operator", "SomeInt", 1, Operator(42), "$[?(@.SomeInt == 1)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.field, tt.value, tt.op)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCanonicalTime(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		ok       bool
	}{
		{"2015-06-01T13:45:30Z", "2015-06-01T13:45:30.0000000Z", true},
		{"2015-06-01T13:45:30.5Z", "2015-06-01T13:45:30.5000000Z", true},
		{"2015-06-01T13:45:30.123456789+02:00", "2015-06-01T13:45:30.1234567+02:00", true},
		{"2015-06-01T13:45:30.0000000Z", "2015-06-01T13:45:30.0000000Z", true},
		{"2015-06-01", "", false},
		{"Hello1", "", false},
		{"2015-06-01T25:00:00Z", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalTime(tt.in)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("CanonicalTime(%q) = %q, %v; expected %q, %v", tt.in, got, ok, tt.expected, tt.ok)
		}
	}

	// canonical form sorts the same way the times do
	whole, _ := CanonicalTime("2015-06-01T13:45:30Z")
	half, _ := CanonicalTime("2015-06-01T13:45:30.5Z")
	if !(whole < half) {
		t.Errorf("expected %s < %s", whole, half)
	}
}

func TestByID(t *testing.T) {
	if got := ByID(42); got != "$[?(@._id == 42)]" {
		t.Errorf("unexpected point query %s", got)
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in       string
		expected Operator
	}{
		{"eq", Equal},
		{"==", Equal},
		{"NE", NotEqual},
		{"<", LessThan},
		{"gt", GreaterThan},
		{"<=", LessThanOrEqual},
		{"gte", GreaterThanOrEqual},
	}
	for _, tt := range tests {
		got, err := ParseOperator(tt.in)
		if err != nil {
			t.Errorf("parsing %q: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("parsing %q: expected %v, got %v", tt.in, tt.expected, got)
		}
	}

	if _, err := ParseOperator("like"); err == nil {
		t.Error("expected error for unsupported operator")
	}
}
