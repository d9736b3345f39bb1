package filedb

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/arthur-debert/filedb/filedb/storage"
)

// Config describes a client in a form that can be loaded from a config file
// or the environment
type Config struct {
	// Location is the root registered under DefaultTag
	Location string `mapstructure:"location" json:"location,omitempty" yaml:"location,omitempty"`

	// Locations maps extra tags to roots; they are registered in tag order
	Locations map[string]string `mapstructure:"locations" json:"locations,omitempty" yaml:"locations,omitempty"`

	// AccessEveryone makes created directories and files writable by all users
	AccessEveryone bool `mapstructure:"access_everyone" json:"access_everyone,omitempty" yaml:"access_everyone,omitempty"`

	// Passphrase enables encrypted collections
	Passphrase string `mapstructure:"passphrase" json:"-" yaml:"-"`

	// DisableCaching turns the primary index cache off by default
	DisableCaching bool `mapstructure:"disable_caching" json:"disable_caching,omitempty" yaml:"disable_caching,omitempty"`
}

// NewClientFromConfig builds a client and registers the configured locations.
// opts are applied after the configuration and take precedence.
func NewClientFromConfig(cfg Config, opts ...ClientOption) (*Client, error) {
	base := []ClientOption{
		WithCaching(!cfg.DisableCaching),
	}
	if cfg.AccessEveryone {
		base = append(base, WithAccess(storage.AccessEveryone))
	}
	if cfg.Passphrase != "" {
		cipher, err := codec.NewCipher(cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("invalid passphrase: %w", err)
		}
		base = append(base, WithCipher(cipher))
	}

	client := NewClient(append(base, opts...)...)

	if cfg.Location != "" {
		if err := client.AddLocation(DefaultTag, cfg.Location); err != nil {
			return nil, err
		}
	}
	for _, tag := range slices.Sorted(maps.Keys(cfg.Locations)) {
		if err := client.AddLocation(tag, cfg.Locations[tag]); err != nil {
			return nil, err
		}
	}
	return client, nil
}
