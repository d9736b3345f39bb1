package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/arthur-debert/filedb/filedb/collection"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/arthur-debert/filedb/internal/validation"
	"github.com/ohler55/ojg/oj"
)

// Document is a schemaless record: every field other than _id lives in
// Fields
type Document struct {
	collection.Object
	Fields map[string]any
}

// MarshalJSON flattens the fields and the primary id into one object
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+1)
	maps.Copy(out, d.Fields)
	out[storage.PrimaryIDKey] = d.ID
	return json.Marshal(out)
}

// UnmarshalJSON splits the primary id from the other fields. Numbers keep
// their literal form so integers are not turned into floats.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}

	d.ID = 0
	if raw, ok := fields[storage.PrimaryIDKey]; ok {
		if n, ok := raw.(json.Number); ok {
			id, err := n.Int64()
			if err != nil {
				return fmt.Errorf("invalid %s: %w", storage.PrimaryIDKey, err)
			}
			d.ID = id
		}
		delete(fields, storage.PrimaryIDKey)
	}
	d.Fields = fields
	return nil
}

// Set assigns value to a dotted field path, creating nested objects
func (d *Document) Set(path string, value any) error {
	if err := validation.Field(path); err != nil {
		return err
	}
	if validation.IsReservedField(path) {
		return fmt.Errorf("field %s is managed by the store", path)
	}
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}

	segments := strings.Split(path, ".")
	node := d.Fields
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}

// Merge copies the fields of other over d. Nested objects are merged key by
// key, so address.city=Paris keeps the other address fields.
func (d *Document) Merge(other *Document) {
	if d.Fields == nil {
		d.Fields = make(map[string]any, len(other.Fields))
	}
	mergeFields(d.Fields, other.Fields)
}

func mergeFields(dst, src map[string]any) {
	for k, v := range src {
		incoming, ok := v.(map[string]any)
		existing, isMap := dst[k].(map[string]any)
		if ok && isMap {
			mergeFields(existing, incoming)
			continue
		}
		dst[k] = v
	}
}

// parseValue reads a command line value as a JSON literal when it is one,
// otherwise as a plain string
func parseValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return s
	}
	v, err := oj.ParseString(s)
	if err != nil {
		return s
	}
	return v
}

// buildDocument combines a JSON object given with --data and key=value
// assignments, the assignments taking precedence
func buildDocument(data string, assignments []string) (*Document, error) {
	doc := &Document{Fields: make(map[string]any)}
	if data != "" {
		if err := json.Unmarshal([]byte(data), doc); err != nil {
			return nil, NewValidationError("parse document", "--data", data, "Pass a JSON object, e.g. --data '{\"name\": \"Ada\"}'")
		}
		doc.ID = 0
	}

	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, NewValidationError("parse document", "assignment", assignment, "Use field=value, e.g. age=36 or address.city=London")
		}
		if err := doc.Set(key, parseValue(value)); err != nil {
			return nil, NewValidationError("parse document", "field", key, err.Error())
		}
	}
	return doc, nil
}
