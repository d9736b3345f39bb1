package storage

import "sync"

// Registry holds open handles by name, such as the data stores of a client
// or the collections of a data store. It is safe for concurrent use: lookups
// take a read lock, creation takes the write lock.
//
// The registry only protects the map of handles. The handles themselves are
// not synchronized by it.
type Registry[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{items: make(map[string]V)}
}

// Get returns the handle registered under key
func (r *Registry[V]) Get(key string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// GetOrCreate returns the handle under key, calling create to build and
// register it when absent. created reports whether create ran successfully.
// A failed create registers nothing.
func (r *Registry[V]) GetOrCreate(key string, create func() (V, error)) (v V, created bool, err error) {
	if v, ok := r.Get(key); ok {
		return v, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have won the race between the locks
	if v, ok := r.items[key]; ok {
		return v, false, nil
	}

	v, err = create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	r.items[key] = v
	r.order = append(r.order, key)
	return v, true, nil
}

// Values returns the handles in registration order
func (r *Registry[V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]V, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.items[key])
	}
	return out
}

// Keys returns the keys in registration order
func (r *Registry[V]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered handles
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
