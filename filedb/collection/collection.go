// Package collection implements the collection engine: one named sequence of
// documents held in memory, with primary id assignment, an optional primary
// index cache, JSONPath queries, and whole-file persistence.
//
// A Collection is not safe for concurrent use. Callers sharing one between
// goroutines must serialize access themselves.
package collection

import (
	"log/slog"

	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/google/uuid"
)

// WriteMode selects whether a mutation is persisted immediately
type WriteMode bool

const (
	// Persist rewrites the collection file after the mutation
	Persist WriteMode = true
	// Defer leaves the mutation in memory until the next Persist
	Defer WriteMode = false
)

// compactThreshold is the minimum number of free slots before the arena is
// compacted on persist
const compactThreshold = 64

// Option configures a Collection
type Option func(*options)

type options struct {
	logger  *slog.Logger
	caching bool
}

// WithLogger sets the logger for collection operations
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCaching enables or disables the primary index cache (enabled by default)
func WithCaching(enabled bool) Option {
	return func(o *options) {
		o.caching = enabled
	}
}

// Collection is the in-memory engine for one collection file.
// T is the record struct and PT its pointer type.
type Collection[T any, PT Pointer[T]] struct {
	name   string
	file   *storage.File
	logger *slog.Logger

	nextID     int64
	docs       *arena
	index      *primaryIndex
	caching    bool
	generation string

	// encode serializes records into document trees; tests replace it to
	// exercise rollback
	encode func(item any, id int64) (map[string]any, error)
}

// Open loads the collection stored in file
func Open[T any, PT Pointer[T]](file *storage.File, name string, opts ...Option) (*Collection[T, PT], error) {
	o := options{
		logger:  slog.New(slog.DiscardHandler),
		caching: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection[T, PT]{
		name:    name,
		file:    file,
		logger:  o.logger.With("collection", name),
		index:   newPrimaryIndex(),
		caching: o.caching,
		encode:  encodeRecord,
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the collection name
func (c *Collection[T, PT]) Name() string { return c.name }

// Path returns the collection file path
func (c *Collection[T, PT]) Path() string { return c.file.Path() }

// NextPrimaryID returns the id the next insert will assign
func (c *Collection[T, PT]) NextPrimaryID() int64 { return c.nextID }

// Len returns the number of documents
func (c *Collection[T, PT]) Len() int { return c.docs.len() }

// Generation identifies the current in-memory state. It changes every time
// the collection is loaded from disk.
func (c *Collection[T, PT]) Generation() string { return c.generation }

// CachingEnabled reports whether the primary index cache is used
func (c *Collection[T, PT]) CachingEnabled() bool { return c.caching }

// SetCaching turns the primary index cache on or off. Existing entries are
// kept; use ClearCache to drop them.
func (c *Collection[T, PT]) SetCaching(enabled bool) { c.caching = enabled }

// CacheLen returns the number of cached primary index entries
func (c *Collection[T, PT]) CacheLen() int { return c.index.len() }

// ClearCache empties the primary index cache, whether or not caching is
// enabled. Documents are not touched.
func (c *Collection[T, PT]) ClearCache() {
	c.index.clear()
}

// Persist writes the id counter and every document to the collection file.
// A failure leaves the in-memory state unchanged.
func (c *Collection[T, PT]) Persist() error {
	root := &storage.Root{
		NextPrimaryID: c.nextID,
		Data:          c.docs.documents(),
	}
	if err := c.file.Save(root); err != nil {
		c.logger.Warn("persist failed", "generation", c.generation, "error", err)
		return c.opError("persist", ErrPersistFailed, 0, err)
	}

	if c.docs.free() >= compactThreshold && c.docs.free() > c.docs.len() {
		c.index.remap(c.docs.compact())
	}

	c.logger.Debug("persisted collection",
		"generation", c.generation,
		"documents", len(root.Data),
		"next_primary_id", root.NextPrimaryID)
	return nil
}

// Refresh reloads the collection from its file, optionally persisting
// first. The cache is discarded. When loading fails the in-memory state is
// kept.
func (c *Collection[T, PT]) Refresh(persistFirst bool) error {
	if persistFirst {
		if err := c.Persist(); err != nil {
			return err
		}
	}
	return c.reload()
}

// reload replaces the in-memory state with the file content
func (c *Collection[T, PT]) reload() error {
	root, err := c.file.Load()
	if err != nil {
		return c.opError("refresh", ErrLoadFailed, 0, err)
	}

	for _, doc := range root.Data {
		canonicalizeTimes(doc)
	}
	c.nextID = root.NextPrimaryID
	c.docs = newArena(root.Data)
	c.index.clear()
	c.generation = uuid.NewString()

	c.logger.Debug("loaded collection",
		"generation", c.generation,
		"documents", c.docs.len(),
		"next_primary_id", c.nextID)
	return nil
}

func (c *Collection[T, PT]) opError(op string, kind error, id int64, err error) *OpError {
	return &OpError{Op: op, Collection: c.name, ID: id, Kind: kind, Err: err}
}
