package filedb

import (
	"log/slog"

	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/arthur-debert/filedb/filedb/storage"
)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithFileSystem sets a custom FileSystem implementation
func WithFileSystem(fs storage.FileSystem) ClientOption {
	return func(c *Client) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithLogger sets the logger shared by data stores and collections
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAccess sets who may modify the directories and files the client creates
func WithAccess(access storage.Access) ClientOption {
	return func(c *Client) {
		c.access = access
	}
}

// WithCipher sets the cipher used by collections opened with Encrypted
func WithCipher(cipher *codec.Cipher) ClientOption {
	return func(c *Client) {
		c.cipher = cipher
	}
}

// WithCaching sets whether collections use the primary index cache unless
// opened with WithoutCaching (enabled by default)
func WithCaching(enabled bool) ClientOption {
	return func(c *Client) {
		c.caching = enabled
	}
}

// CollectionOption configures how GetCollection opens a collection. Options
// only apply when the collection is first opened by a data store.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	encrypted  bool
	compressed bool
	caching    bool
}

// Encrypted stores the collection encrypted with the client cipher
func Encrypted() CollectionOption {
	return func(o *collectionOptions) {
		o.encrypted = true
	}
}

// Compressed stores the collection compressed with zstd
func Compressed() CollectionOption {
	return func(o *collectionOptions) {
		o.compressed = true
	}
}

// WithoutCaching disables the primary index cache for the collection
func WithoutCaching() CollectionOption {
	return func(o *collectionOptions) {
		o.caching = false
	}
}
