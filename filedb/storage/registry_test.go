package storage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry[*int]()
	calls := 0
	create := func() (*int, error) {
		calls++
		v := calls
		return &v, nil
	}

	a, created, err := r.GetOrCreate("a", create)
	if err != nil || !created || *a != 1 {
		t.Fatalf("unexpected first result: %v %v %v", a, created, err)
	}
	again, created, err := r.GetOrCreate("a", create)
	if err != nil || created || again != a {
		t.Errorf("expected cached handle, got %v created=%v err=%v", again, created, err)
	}
	if calls != 1 {
		t.Errorf("expected create to run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	if _, _, err := r.GetOrCreate("b", func() (*int, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected create error, got %v", err)
	}
	if _, ok := r.Get("b"); ok {
		t.Error("failed create must not register a handle")
	}

	_, _, _ = r.GetOrCreate("c", create)
	if diff := cmp.Diff([]string{"a", "c"}, r.Keys()); diff != "" {
		t.Errorf("keys out of order (-want +got):\n%s", diff)
	}
	if r.Len() != 2 || len(r.Values()) != 2 {
		t.Errorf("expected two handles, got %d", r.Len())
	}
}

func TestRegistryConcurrentCreate(t *testing.T) {
	r := NewRegistry[string]()
	var calls atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = r.GetOrCreate("shared", func() (string, error) {
				return fmt.Sprint(calls.Add(1)), nil
			})
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected a single create, got %d", calls.Load())
	}
}

func TestAccessModes(t *testing.T) {
	if AccessEveryone.DirMode() != 0o777 || AccessEveryone.FileMode() != 0o666 {
		t.Error("unexpected modes for everyone")
	}
	if AccessRestricted.DirMode() != 0o700 || AccessRestricted.FileMode() != 0o600 {
		t.Error("unexpected modes for restricted")
	}
}

func TestEnsureDir(t *testing.T) {
	fsys := NewFaultyFileSystem(nil)

	created, err := EnsureDir(fsys, "/root/store", AccessRestricted)
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	info, err := fsys.Stat("/root/store")
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v %v", info, err)
	}

	created, err = EnsureDir(fsys, "/root/store", AccessEveryone)
	if err != nil || created {
		t.Errorf("expected existing directory, got created=%v err=%v", created, err)
	}
	if len(fsys.Chmods) != 1 || fsys.Chmods[0].Mode != 0o700 {
		t.Errorf("expected exactly one chmod to 0700, got %+v", fsys.Chmods)
	}

	_ = fsys.WriteFile("/root/file", []byte("x"), 0o600)
	if _, err := EnsureDir(fsys, "/root/file", AccessRestricted); err == nil {
		t.Error("expected error when path is a file")
	}
}
