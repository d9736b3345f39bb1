package testutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/arthur-debert/filedb/filedb/collection"
	"github.com/arthur-debert/filedb/filedb/storage"
)

// AssertCount checks that the slice contains the expected number of records
func AssertCount[E any](t *testing.T, items []E, expected int, context ...string) {
	t.Helper()
	if len(items) != expected {
		ctx := ""
		if len(context) > 0 {
			ctx = " " + context[0]
		}
		t.Errorf("expected %d records%s, got %d", expected, ctx, len(items))
	}
}

// AssertIDs checks the primary ids of items in order. A nil entry is
// expected as id 0.
func AssertIDs[T any, PT collection.Pointer[T]](t *testing.T, items []PT, expected ...int64) {
	t.Helper()
	got := make([]int64, len(items))
	for i, item := range items {
		if item != nil {
			got[i] = item.PrimaryID()
		}
	}
	if len(got) != len(expected) {
		t.Errorf("expected ids %v, got %v", expected, got)
		return
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("expected ids %v, got %v", expected, got)
			return
		}
	}
}

// AssertErrorIs checks that err matches every target
func AssertErrorIs(t *testing.T, err error, targets ...error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected an error matching %v, got nil", targets)
		return
	}
	for _, target := range targets {
		if !errors.Is(err, target) {
			t.Errorf("expected error to match %q, got %v", target, err)
		}
	}
}

// AssertStoredDocuments reads an untransformed collection file and checks
// its counter and number of documents
func AssertStoredDocuments(t *testing.T, fs storage.FileSystem, path string, nextID int64, count int) {
	t.Helper()
	raw, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var stored struct {
		NextPrimaryID int64            `json:"NextPrimaryId"`
		Data          []map[string]any `json:"Data"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("%s is not a plain collection file: %v", path, err)
	}
	if stored.NextPrimaryID != nextID {
		t.Errorf("expected NextPrimaryId %d in %s, got %d", nextID, path, stored.NextPrimaryID)
	}
	if len(stored.Data) != count {
		t.Errorf("expected %d stored documents in %s, got %d", count, path, len(stored.Data))
	}
}
