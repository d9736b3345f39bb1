// Package storage provides the persistence layer for filedb.
// A collection lives in a single file holding the next primary id counter and
// the ordered document array; every save rewrites the whole file.
package storage

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/ohler55/ojg/oj"
)

const (
	// FileExtension is appended to collection names to form file names
	FileExtension = ".json"

	// NextPrimaryIDKey holds the id counter in the collection file
	NextPrimaryIDKey = "NextPrimaryId"

	// DataKey holds the document array in the collection file
	DataKey = "Data"

	// PrimaryIDKey is the reserved document field carrying the primary id
	PrimaryIDKey = "_id"

	// DefaultNextPrimaryID is the counter of an empty collection
	DefaultNextPrimaryID int64 = 1
)

// Root is the decoded content of a collection file
type Root struct {
	NextPrimaryID int64
	Data          []map[string]any
}

// NewRoot returns the root of an empty collection
func NewRoot() *Root {
	return &Root{
		NextPrimaryID: DefaultNextPrimaryID,
		Data:          []map[string]any{},
	}
}

// fileData is the on-disk layout
type fileData struct {
	NextPrimaryID int64            `json:"NextPrimaryId"`
	Data          []map[string]any `json:"Data"`
}

// File reads and writes one collection file. When a transform is set the
// file holds the base64 text of the transformed JSON.
type File struct {
	path      string
	fs        FileSystem
	transform codec.Transform
}

// NewFile creates an adapter for the collection file at path.
// transform may be nil.
func NewFile(path string, fsys FileSystem, transform codec.Transform) *File {
	if fsys == nil {
		fsys = NewOSFileSystem()
	}
	return &File{path: path, fs: fsys, transform: transform}
}

// Path returns the collection file path
func (f *File) Path() string {
	return f.path
}

// Transformed reports whether a transform is applied to the file content
func (f *File) Transformed() bool {
	return f.transform != nil
}

// Ensure creates the file with an empty object when it does not exist and
// applies access to it. It reports whether the file was created.
func (f *File) Ensure(access Access) (bool, error) {
	if _, err := f.fs.Stat(f.path); err == nil {
		return false, nil
	} else if !isNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", f.path, err)
	}

	stored, err := f.encode([]byte("{}\n"))
	if err != nil {
		return false, err
	}
	if err := f.fs.WriteFile(f.path, stored, access.FileMode()); err != nil {
		return false, fmt.Errorf("failed to create collection file: %w", err)
	}
	if err := access.Apply(f.fs, f.path, false); err != nil {
		return true, err
	}
	return true, nil
}

// Load reads the collection file. A missing or empty file, or one holding
// an empty object, yields an empty root.
func (f *File) Load() (*Root, error) {
	stored, err := f.fs.ReadFile(f.path)
	if err != nil {
		if isNotExist(err) {
			return NewRoot(), nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := f.decode(stored)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewRoot(), nil
	}

	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("collection file must hold a JSON object, found %T", parsed)
	}
	if len(obj) == 0 {
		return NewRoot(), nil
	}

	return rootFromObject(obj)
}

// rootFromObject validates the decoded file object
func rootFromObject(obj map[string]any) (*Root, error) {
	root := NewRoot()

	if raw, ok := obj[DataKey]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%q must be an array, found %T", DataKey, raw)
		}
		seen := make(map[int64]bool, len(items))
		for i, item := range items {
			doc, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object, found %T", DataKey, i, item)
			}
			id, err := IDOf(doc)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", DataKey, i, err)
			}
			if id > 0 {
				if seen[id] {
					return nil, fmt.Errorf("%s[%d]: duplicate %s %d", DataKey, i, PrimaryIDKey, id)
				}
				seen[id] = true
				doc[PrimaryIDKey] = id
				root.NextPrimaryID = max(root.NextPrimaryID, id+1)
			}
			root.Data = append(root.Data, doc)
		}
	}

	if raw, ok := obj[NextPrimaryIDKey]; ok && raw != nil {
		next, err := toInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", NextPrimaryIDKey, err)
		}
		// never hand out an id that is already present
		root.NextPrimaryID = max(root.NextPrimaryID, next)
	}

	return root, nil
}

// Save overwrites the collection file with root
func (f *File) Save(root *Root) error {
	out := fileData{NextPrimaryID: root.NextPrimaryID, Data: root.Data}
	if out.Data == nil {
		out.Data = []map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	stored, err := f.encode(buf.Bytes())
	if err != nil {
		return err
	}

	// Full rewrite in place; a crash mid-write can leave a truncated file
	if err := f.fs.WriteFile(f.path, stored, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (f *File) encode(plain []byte) ([]byte, error) {
	if f.transform == nil {
		return plain, nil
	}
	raw, err := f.transform.Encode(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw))+1)
	base64.StdEncoding.Encode(out, raw)
	out[len(out)-1] = '\n'
	return out, nil
}

func (f *File) decode(stored []byte) ([]byte, error) {
	if f.transform == nil {
		return stored, nil
	}
	text := bytes.TrimSpace(stored)
	if len(text) == 0 {
		return nil, nil
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(raw, text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	plain, err := f.transform.Decode(raw[:n])
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return plain, nil
}

// IDOf returns the primary id stored in a document, 0 when absent
func IDOf(doc map[string]any) (int64, error) {
	raw, ok := doc[PrimaryIDKey]
	if !ok || raw == nil {
		return 0, nil
	}
	id, err := toInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", PrimaryIDKey, err)
	}
	return id, nil
}

// toInt64 converts the numeric forms produced by the JSON parser
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("expected an integer, found %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("expected an integer, found %T", v)
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
