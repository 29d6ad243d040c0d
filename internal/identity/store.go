package identity

import (
	"sync"

	"github.com/go-faster/errors"
)

// ErrStorageUnavailable is returned by a Store that cannot persist values.
var ErrStorageUnavailable = errors.New("identity storage unavailable")

// Store is the client-local key-value storage holding the device identity.
// Get returns "" without error when the key has never been set.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu          sync.RWMutex
	values      map[string]string
	unavailable bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// SetUnavailable makes every subsequent call fail with ErrStorageUnavailable.
func (s *MemoryStore) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.unavailable {
		return "", ErrStorageUnavailable
	}
	return s.values[key], nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return ErrStorageUnavailable
	}
	s.values[key] = value
	return nil
}
