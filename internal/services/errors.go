package services

import "github.com/go-faster/errors"

var (
	// ErrDocumentNotFound means no catalog document exists at the key.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrFetchFailure means a catalog or cart read failed.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrMissingIdentity rejects cart operations without a device identity.
	ErrMissingIdentity = errors.New("missing device identity")
	// ErrMissingProductKey rejects cart operations without a product key.
	ErrMissingProductKey = errors.New("missing product key")
	// ErrWriteFailure means the cart could not be written.
	ErrWriteFailure = errors.New("cart write failure")
)

// IsRejected reports whether err is a cart precondition rejection, which
// callers treat as a silent no-op.
func IsRejected(err error) bool {
	return errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrMissingProductKey)
}
