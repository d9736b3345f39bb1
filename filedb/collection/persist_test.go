package collection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/filedb/filedb/query"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/google/go-cmp/cmp"
)

func TestPersistRefreshRoundTrip(t *testing.T) {
	fsys := storage.NewMemFileSystem()
	c := newTestCollection(t, fsys)
	_, err := c.InsertMany([]*SomeObject{obj(1, "a"), obj(2, "b"), obj(3, "c")}, Defer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Remove(2, Defer); err != nil {
		t.Fatal(err)
	}
	before, _ := c.All()
	generation := c.Generation()

	if err := c.Refresh(true); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	after, _ := c.All()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("documents changed across persist and refresh (-want +got):\n%s", diff)
	}
	if c.NextPrimaryID() != 4 {
		t.Errorf("expected counter 4 after reload, got %d", c.NextPrimaryID())
	}
	if c.Generation() == generation {
		t.Error("expected a new generation after reload")
	}
	if c.CacheLen() != 0 {
		t.Errorf("expected empty cache after reload, have %d", c.CacheLen())
	}
}

func TestRefreshDiscardsUnpersistedChanges(t *testing.T) {
	c := newTestCollection(t, nil)
	if _, err := c.Insert(obj(1, "kept"), Persist); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Insert(obj(2, "lost"), Defer); err != nil {
		t.Fatal(err)
	}

	if err := c.Refresh(false); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 || c.NextPrimaryID() != 2 {
		t.Errorf("expected only the persisted state, len=%d next=%d", c.Len(), c.NextPrimaryID())
	}
}

func TestPersistFailure(t *testing.T) {
	fsys := storage.NewFaultyFileSystem(nil)
	c := newTestCollection(t, fsys)
	if _, err := c.Insert(obj(1, "a"), Persist); err != nil {
		t.Fatal(err)
	}

	diskFull := errors.New("no space left on device")
	fsys.SetWriteError(diskFull)

	item, err := c.Insert(obj(2, "b"), Persist)
	if !errors.Is(err, ErrPersistFailed) || !errors.Is(err, diskFull) {
		t.Fatalf("expected ErrPersistFailed wrapping the write error, got %v", err)
	}
	if item == nil || item.ID != 2 {
		t.Errorf("expected the inserted item back with its id, got %+v", item)
	}
	if c.Len() != 2 {
		t.Errorf("in-memory state should keep the insert, have %d", c.Len())
	}

	if err := c.Refresh(true); !errors.Is(err, ErrPersistFailed) {
		t.Errorf("refresh should stop on the persist failure, got %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("failed refresh must not reload, have %d", c.Len())
	}

	fsys.SetWriteError(nil)
	if err := c.Persist(); err != nil {
		t.Fatalf("persist after recovery failed: %v", err)
	}
}

func TestBatchPersistFailure(t *testing.T) {
	fsys := storage.NewFaultyFileSystem(nil)
	c := newTestCollection(t, fsys)
	fsys.SetWriteError(errors.New("read-only file system"))

	items, err := c.InsertMany([]*SomeObject{obj(1, "a"), obj(2, "b")}, Persist)
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected both items inserted in memory, got %d", len(items))
	}
	if fsys.WriteCount() != 1 {
		t.Errorf("expected a single write for the batch, got %d", fsys.WriteCount())
	}
}

func TestRefreshLoadFailureKeepsState(t *testing.T) {
	fsys := storage.NewFaultyFileSystem(nil)
	c := newTestCollection(t, fsys)
	_, _ = c.InsertMany([]*SomeObject{obj(1, "a"), obj(2, "b")}, Persist)
	generation := c.Generation()

	fsys.SetReadError(errors.New("input/output error"))
	err := c.Refresh(false)
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if c.Len() != 2 || c.Generation() != generation {
		t.Errorf("failed load must keep memory, len=%d", c.Len())
	}
}

func TestOpenRejectsMalformedFile(t *testing.T) {
	fsys := storage.NewMemFileSystem()
	_ = fsys.WriteFile(testPath, []byte(`{"Data": "nope"}`), 0o600)

	_, err := Open[SomeObject](storage.NewFile(testPath, fsys, nil), "Store")
	if !errors.Is(err, ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}

// script runs the same sequence of operations and records every observable
// result, so runs with and without the cache can be compared
func script(t *testing.T, c *Collection[SomeObject, *SomeObject]) []string {
	t.Helper()
	var log []string
	record := func(label string, v any, err error) {
		log = append(log, fmt.Sprintf("%s: %+v err=%v", label, v, err))
	}

	items, err := c.InsertMany([]*SomeObject{obj(1, "a"), obj(2, "b"), obj(3, "c"), obj(4, "d")}, Defer)
	record("insertMany", len(items), err)

	found, err := c.Find(3)
	record("find 3", found, err)

	changed := *found
	changed.SomeString = "C"
	old, err := c.Update(&changed, Defer)
	record("update 3", old, err)

	removed, err := c.Remove(2, Defer)
	record("remove 2", removed, err)

	found, err = c.Find(2)
	record("find 2", found, err)

	many, err := c.FindMany([]int64{1, 2, 3, 4, 5})
	record("findMany", many, err)

	where, err := c.FindWhere("SomeString", "C", query.Equal)
	record("findWhere", where, err)

	removedMany, err := c.RemoveMany([]int64{4, 1}, Defer)
	record("removeMany", removedMany, err)

	inserted, err := c.Insert(obj(5, "e"), Defer)
	record("insert", inserted, err)

	all, err := c.All()
	record("all", all, err)
	return log
}

func TestCachingDoesNotChangeResults(t *testing.T) {
	cached := newTestCollection(t, nil, WithCaching(true))
	uncached := newTestCollection(t, nil, WithCaching(false))

	withCache := script(t, cached)
	withoutCache := script(t, uncached)

	if diff := cmp.Diff(withCache, withoutCache); diff != "" {
		t.Errorf("caching changed observable results (-cached +uncached):\n%s", diff)
	}
	if uncached.CacheLen() != 0 {
		t.Errorf("disabled cache should stay empty, has %d entries", uncached.CacheLen())
	}
}

func TestCacheToggling(t *testing.T) {
	c := newTestCollection(t, nil)
	_, _ = c.InsertMany([]*SomeObject{obj(1, "a"), obj(2, "b")}, Defer)
	if c.CacheLen() != 2 {
		t.Fatalf("expected inserts to populate the cache, have %d", c.CacheLen())
	}

	c.SetCaching(false)
	if !(c.CacheLen() == 2 && !c.CachingEnabled()) {
		t.Errorf("disabling should keep existing entries")
	}
	c.ClearCache()
	if c.CacheLen() != 0 {
		t.Errorf("expected empty cache, have %d", c.CacheLen())
	}

	c.SetCaching(true)
	if item, err := c.Find(2); err != nil || item == nil || item.SomeString != "b" {
		t.Errorf("expected record b, got %+v %v", item, err)
	}
	if c.CacheLen() != 1 {
		t.Errorf("expected lookup to backfill one entry, have %d", c.CacheLen())
	}
}

func TestCompactionOnPersist(t *testing.T) {
	fsys := storage.NewMemFileSystem()
	c := newTestCollection(t, fsys)

	items := make([]*SomeObject, 0, 200)
	for i := 0; i < 200; i++ {
		items = append(items, obj(i, fmt.Sprint(i)))
	}
	if _, err := c.InsertMany(items, Defer); err != nil {
		t.Fatal(err)
	}

	ids := make([]int64, 0, 150)
	for id := int64(1); id <= 199; id++ {
		if id%4 != 0 {
			ids = append(ids, id)
		}
	}
	if _, err := c.RemoveMany(ids, Defer); err != nil {
		t.Fatal(err)
	}
	if c.docs.free() < compactThreshold {
		t.Fatalf("expected a sparse arena, %d free slots", c.docs.free())
	}

	if err := c.Persist(); err != nil {
		t.Fatal(err)
	}
	if c.docs.free() != 0 {
		t.Errorf("expected compacted arena, %d free slots", c.docs.free())
	}

	// cached slots must follow the documents they point to
	for _, id := range []int64{4, 100, 196, 200} {
		item, err := c.Find(id)
		if err != nil || item == nil || item.ID != id {
			t.Errorf("find(%d) after compaction: %+v %v", id, item, err)
		}
	}

	reopened := newTestCollection(t, fsys)
	if reopened.Len() != c.Len() || reopened.NextPrimaryID() != 201 {
		t.Errorf("reopened collection differs: len=%d next=%d", reopened.Len(), reopened.NextPrimaryID())
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{Op: "update", Collection: "Store", ID: 7, Kind: ErrUpdateFailed, Err: errors.New("boom")}
	want := "update Store (_id 7): update failed: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
