package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"storefront/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetCart returns a copy of the cart stored for deviceID.
func (r *MockCartRepository) GetCart(_ context.Context, deviceID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[deviceID]
	if !ok {
		return nil, errors.Wrapf(ErrCartNotFound, "device %q", deviceID)
	}
	cart.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &cart, nil
}

// PutCart stores the cart if the version check passes.
func (r *MockCartRepository) PutCart(_ context.Context, cart *models.Cart, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.carts[cart.DeviceID].Version
	if current != expectedVersion {
		return errors.Wrapf(ErrCartVersionConflict, "device %q expected version %d, have %d", cart.DeviceID, expectedVersion, current)
	}

	cart.Version = expectedVersion + 1
	cart.UpdatedAt = time.Now()
	stored := *cart
	stored.Lines = append([]models.CartLine(nil), cart.Lines...)
	r.carts[cart.DeviceID] = stored
	return nil
}
