// Package identity issues and persists the pseudo-random device identifier
// that partitions carts.
package identity

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// DefaultKey is the storage key the identifier is kept under.
const DefaultKey = "deviceId"

// IDGenerator produces new device identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Provider returns the device identity held in a Store, creating it on
// first use.
type Provider struct {
	store Store
	gen   IDGenerator
	key   string
}

// NewProvider creates a Provider persisting under key. An empty key falls
// back to DefaultKey.
func NewProvider(store Store, gen IDGenerator, key string) *Provider {
	if key == "" {
		key = DefaultKey
	}
	return &Provider{store: store, gen: gen, key: key}
}

// GetOrCreate returns the stored identifier unchanged, or generates and
// persists a new one. It returns "" and an error when no identity can be
// established; callers must then disable cart operations.
func (p *Provider) GetOrCreate() (string, error) {
	stored, err := p.store.Get(p.key)
	if err != nil {
		return "", errors.Wrap(err, "read device id")
	}
	// Values that are not UUID-shaped were not issued here and are replaced.
	if stored != "" {
		if _, err := uuid.Parse(stored); err == nil {
			return stored, nil
		}
	}

	id, err := p.gen.NewID()
	if err != nil {
		return "", err
	}
	if err := p.store.Set(p.key, id); err != nil {
		return "", errors.Wrap(err, "persist device id")
	}
	return id, nil
}
