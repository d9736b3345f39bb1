package collection

import (
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/filedb/filedb/query"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/ohler55/ojg/oj"
)

// Record is implemented by documents stored in a collection. The primary id
// is owned by the collection: it is 0 until the record is inserted and must
// not be changed by callers afterwards.
type Record interface {
	PrimaryID() int64
	SetPrimaryID(id int64)
}

// Object carries the reserved primary id field. Embed it in record structs:
//
//	type Task struct {
//	    collection.Object
//	    Title string
//	}
type Object struct {
	ID int64 `json:"_id"`
}

// PrimaryID implements Record
func (o *Object) PrimaryID() int64 { return o.ID }

// SetPrimaryID implements Record
func (o *Object) SetPrimaryID(id int64) { o.ID = id }

// Pointer constrains PT to *T implementing Record, so collections can
// allocate records while callers only name the struct type
type Pointer[T any] interface {
	*T
	Record
}

// encodeRecord serializes a record into a document tree carrying id
func encodeRecord(item any, id int64) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	tree, err := oj.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	node, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record must serialize to a JSON object, got %T", tree)
	}
	canonicalizeTimes(node)
	node[storage.PrimaryIDKey] = id
	return node, nil
}

// canonicalizeTimes rewrites every timestamp string in the tree in
// query.TimeLayout so that filters on time fields compare like for like
func canonicalizeTimes(node any) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if s, ok := v.(string); ok {
				if ts, ok := query.CanonicalTime(s); ok {
					n[k] = ts
				}
				continue
			}
			canonicalizeTimes(v)
		}
	case []any:
		for i, v := range n {
			if s, ok := v.(string); ok {
				if ts, ok := query.CanonicalTime(s); ok {
					n[i] = ts
				}
				continue
			}
			canonicalizeTimes(v)
		}
	}
}

// decodeRecord builds a fresh record from a document tree. The result never
// shares memory with the tree.
func decodeRecord[T any, PT Pointer[T]](node map[string]any) (PT, error) {
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	item := PT(new(T))
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	id, err := storage.IDOf(node)
	if err != nil {
		return nil, err
	}
	item.SetPrimaryID(id)
	return item, nil
}
