package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for per-device cart storage.
//
// PutCart replaces the whole line list of cart.DeviceID. It succeeds only if
// the stored version still equals expectedVersion (0 meaning "nothing stored
// yet"), and returns ErrCartVersionConflict otherwise. On success
// cart.Version holds the new version.
type CartRepository interface {
	GetCart(ctx context.Context, deviceID string) (*models.Cart, error)
	PutCart(ctx context.Context, cart *models.Cart, expectedVersion int64) error
}
