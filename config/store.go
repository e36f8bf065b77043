package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/storage/localfs"
)

// StoreConfig describes one or more chunk store backends.
//
// With more than one backend every write goes to all of them and reads fall
// back in order (see storage.Replicating).
//
// Example:
//
//	{
//	  "backends": [
//	    {"name":"localfs", "id":"disk-a", "config":{"dir":"/var/lib/seqnet/a"}},
//	    {"name":"localfs", "id":"disk-b", "config":{"dir":"/var/lib/seqnet/b"}}
//	  ]
//	}
type StoreConfig struct {
	WritePolicy string          `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name is the backend kind: "memory" or "localfs".
	Name string `json:"name"`
	// ID is an optional stable alias used in errors and per-backend CID maps.
	// If empty, Name is used.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

func LoadStoreFile(path string) (StoreConfig, error) {
	var cfg StoreConfig
	if path == "" {
		return cfg, errors.New("config: empty store config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c StoreConfig) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("config: at least one store backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		switch b.Name {
		case "memory":
		case "localfs":
			if b.Config["dir"] == "" {
				return fmt.Errorf("config: backend %q needs a dir", b.id())
			}
		case "":
			return errors.New("config: backend name is required")
		default:
			return fmt.Errorf("config: unknown store backend %q", b.Name)
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("config: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "all":
		return nil
	default:
		return fmt.Errorf("config: invalid write_policy %q", c.WritePolicy)
	}
}

// Open builds the configured store.
func (c StoreConfig) Open() (storage.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	named := make([]storage.NamedStore, 0, len(c.Backends))
	for _, b := range c.Backends {
		s, err := openBackend(b)
		if err != nil {
			return nil, fmt.Errorf("config: backend %q: %w", b.id(), err)
		}
		named = append(named, storage.NamedStore{Name: b.id(), Store: s})
	}
	if len(named) == 1 {
		return named[0].Store, nil
	}
	return storage.Replicating{Backends: named}, nil
}

func openBackend(b BackendConfig) (storage.Store, error) {
	switch b.Name {
	case "memory":
		return storage.NewMemory(), nil
	case "localfs":
		return localfs.New(b.Config["dir"])
	default:
		return nil, fmt.Errorf("unknown store backend %q", b.Name)
	}
}
