package filedb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/arthur-debert/filedb/filedb/collection"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/arthur-debert/filedb/internal/validation"
	"golang.org/x/sync/errgroup"
)

// DataStore is a directory of collection files
type DataStore struct {
	client  *Client
	tag     string
	name    string
	dir     string
	created bool
	logger  *slog.Logger

	collections *storage.Registry[*openCollection]
}

// persister is the part of a collection a data store needs without knowing
// its record type
type persister interface {
	Name() string
	Path() string
	Persist() error
}

type openCollection struct {
	persister
	closer io.Closer // compressor, when used
}

func openDataStore(c *Client, tag, name, dir string) (*DataStore, error) {
	created, err := storage.EnsureDir(c.fs, dir, c.access)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store %s: %w", name, err)
	}

	ds := &DataStore{
		client:      c,
		tag:         tag,
		name:        name,
		dir:         dir,
		created:     created,
		logger:      c.logger.With("datastore", name, "tag", tag),
		collections: storage.NewRegistry[*openCollection](),
	}
	ds.logger.Debug("opened data store", "dir", dir, "created", created)
	return ds, nil
}

// Name returns the data store name
func (ds *DataStore) Name() string { return ds.name }

// Tag returns the location tag the data store lives under
func (ds *DataStore) Tag() string { return ds.tag }

// Dir returns the data store directory
func (ds *DataStore) Dir() string { return ds.dir }

// Created reports whether opening the data store created its directory
func (ds *DataStore) Created() bool { return ds.created }

// Collections returns the names of the open collections
func (ds *DataStore) Collections() []string {
	return ds.collections.Keys()
}

// CollectionPath returns the file a collection name maps to
func (ds *DataStore) CollectionPath(name string) string {
	return filepath.Join(ds.dir, name+storage.FileExtension)
}

// Opened is the result of GetCollection
type Opened[T any, PT collection.Pointer[T]] struct {
	*collection.Collection[T, PT]

	// Created reports whether this call created the collection file
	Created bool
}

// GetCollection opens the named collection of ds, creating its file when
// missing. Repeated calls return the same collection; options only apply
// on the first call.
func GetCollection[T any, PT collection.Pointer[T]](ds *DataStore, name string, opts ...CollectionOption) (Opened[T, PT], error) {
	if err := validation.Name("collection", name); err != nil {
		return Opened[T, PT]{}, err
	}

	o := collectionOptions{caching: ds.client.caching}
	for _, opt := range opts {
		opt(&o)
	}

	var created bool
	entry, _, err := ds.collections.GetOrCreate(name, func() (*openCollection, error) {
		var err error
		var entry *openCollection
		entry, created, err = openCollectionFile[T, PT](ds, name, o)
		return entry, err
	})
	if err != nil {
		return Opened[T, PT]{}, err
	}

	coll, ok := entry.persister.(*collection.Collection[T, PT])
	if !ok {
		return Opened[T, PT]{}, fmt.Errorf("%w: %s", ErrCollectionType, name)
	}
	return Opened[T, PT]{Collection: coll, Created: created}, nil
}

func openCollectionFile[T any, PT collection.Pointer[T]](ds *DataStore, name string, o collectionOptions) (*openCollection, bool, error) {
	entry := &openCollection{}

	var transforms []codec.Transform
	if o.compressed {
		compressor, err := codec.NewCompressor()
		if err != nil {
			return nil, false, err
		}
		entry.closer = compressor
		transforms = append(transforms, compressor)
	}
	if o.encrypted {
		if ds.client.cipher == nil {
			_ = entry.close()
			return nil, false, fmt.Errorf("%w: collection %s", ErrNoCipher, name)
		}
		transforms = append(transforms, ds.client.cipher)
	}

	file := storage.NewFile(ds.CollectionPath(name), ds.client.fs, codec.Chain(transforms...))
	created, err := file.Ensure(ds.client.access)
	if err != nil {
		_ = entry.close()
		return nil, false, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	coll, err := collection.Open[T, PT](file, name,
		collection.WithLogger(ds.logger),
		collection.WithCaching(o.caching))
	if err != nil {
		_ = entry.close()
		return nil, false, err
	}
	entry.persister = coll

	ds.logger.Debug("opened collection",
		"collection", name,
		"created", created,
		"encrypted", o.encrypted,
		"compressed", o.compressed)
	return entry, created, nil
}

func (e *openCollection) close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// PersistAll persists every open collection concurrently. Collections must
// not be mutated while it runs.
func (ds *DataStore) PersistAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range ds.collections.Values() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return entry.Persist()
		})
	}
	return g.Wait()
}

// Close releases the resources held by open collections
func (ds *DataStore) Close() error {
	var errs []error
	for _, entry := range ds.collections.Values() {
		errs = append(errs, entry.close())
	}
	return errors.Join(errs...)
}
