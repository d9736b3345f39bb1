// Package filedb is an embedded document store keeping every collection in
// a single JSON file.
//
// A Client maps location tags to root directories. Each root holds data
// stores (directories), and each data store holds collections (files):
//
//	client := filedb.NewClient()
//	_ = client.AddLocation(filedb.DefaultTag, "/var/lib/app")
//	ds, _ := client.DataStore("app")
//	users, _ := filedb.GetCollection[User](ds, "users")
//	user, _ := users.Insert(&User{Name: "Ada"}, collection.Persist)
//
// Clients and data stores may be shared between goroutines. Collections may
// not; see package collection.
package filedb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/arthur-debert/filedb/internal/validation"
	"golang.org/x/sync/errgroup"
)

// DefaultTag is the location tag preferred by DataStore
const DefaultTag = "default"

var (
	// ErrLocationNotFound is returned when a location root does not exist
	ErrLocationNotFound = errors.New("location does not exist")

	// ErrLocationExists is returned when a tag is added twice
	ErrLocationExists = errors.New("location tag already registered")

	// ErrNoLocation is returned when a data store is requested before any
	// location was added, or for an unknown tag
	ErrNoLocation = errors.New("no such location")

	// ErrNoCipher is returned when an encrypted collection is requested from
	// a client without a cipher
	ErrNoCipher = errors.New("encryption requested but no cipher configured")

	// ErrCollectionType is returned when a collection is reopened with a
	// different record type
	ErrCollectionType = errors.New("collection already open with a different record type")
)

// Client maps location tags to root directories and caches data store handles
type Client struct {
	fs      storage.FileSystem
	logger  *slog.Logger
	access  storage.Access
	cipher  *codec.Cipher
	caching bool

	mu        sync.RWMutex
	locations map[string]string
	tags      []string

	stores *storage.Registry[*DataStore]
}

// NewClient creates a client without locations. The OS file system is used
// unless WithFileSystem is given.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		fs:        storage.NewOSFileSystem(),
		logger:    slog.New(slog.DiscardHandler),
		access:    storage.AccessRestricted,
		caching:   true,
		locations: make(map[string]string),
		stores:    storage.NewRegistry[*DataStore](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddLocation registers root under tag. The root must be an existing
// directory; it is stored as an absolute path.
func (c *Client) AddLocation(tag, root string) error {
	if err := validation.Name("location tag", tag); err != nil {
		return err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid location %q: %w", root, err)
	}
	info, err := c.fs.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrLocationNotFound, abs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.locations[tag]; ok {
		return fmt.Errorf("%w: %s -> %s", ErrLocationExists, tag, existing)
	}
	c.locations[tag] = abs
	c.tags = append(c.tags, tag)

	c.logger.Debug("added location", "tag", tag, "root", abs)
	return nil
}

// Location returns the root registered under tag
func (c *Client) Location(tag string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	root, ok := c.locations[tag]
	return root, ok
}

// Tags returns the location tags in the order they were added
func (c *Client) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.tags...)
}

// DefaultTag returns DefaultTag when registered, else the first tag added
func (c *Client) DefaultTag() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.locations[DefaultTag]; ok {
		return DefaultTag, nil
	}
	if len(c.tags) == 0 {
		return "", ErrNoLocation
	}
	return c.tags[0], nil
}

// DataStore returns the named data store under the default location
func (c *Client) DataStore(name string) (*DataStore, error) {
	tag, err := c.DefaultTag()
	if err != nil {
		return nil, err
	}
	return c.DataStoreAt(tag, name)
}

// DataStoreAt returns the named data store under the location tagged tag.
// The directory is created on first access. Handles are cached, so repeated
// calls return the same data store.
func (c *Client) DataStoreAt(tag, name string) (*DataStore, error) {
	if err := validation.Name("data store", name); err != nil {
		return nil, err
	}
	root, ok := c.Location(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoLocation, tag)
	}

	ds, _, err := c.stores.GetOrCreate(tag+"/"+name, func() (*DataStore, error) {
		return openDataStore(c, tag, name, filepath.Join(root, name))
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// PersistAll persists every open collection of every data store
func (c *Client) PersistAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ds := range c.stores.Values() {
		g.Go(func() error {
			return ds.PersistAll(ctx)
		})
	}
	return g.Wait()
}

// Close releases the resources held by open collections. Collections are
// not persisted.
func (c *Client) Close() error {
	var errs []error
	for _, ds := range c.stores.Values() {
		errs = append(errs, ds.Close())
	}
	return errors.Join(errs...)
}
