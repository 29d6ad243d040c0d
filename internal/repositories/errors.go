package repositories

import "github.com/go-faster/errors"

var (
	// ErrProductNotFound is returned when no catalog document exists at a key.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound is returned when nothing has been stored for a device.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartVersionConflict is returned by PutCart when the stored cart
	// changed since it was read.
	ErrCartVersionConflict = errors.New("cart version conflict")
)
