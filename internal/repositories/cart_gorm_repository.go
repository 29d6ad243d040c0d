package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetCart retrieves the cart stored for deviceID.
func (r *GORMCartRepository) GetCart(ctx context.Context, deviceID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "device_id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrCartNotFound, "device %q", deviceID)
		}
		return nil, errors.Wrapf(err, "get cart for device %q", deviceID)
	}
	return &cart, nil
}

// PutCart writes the cart if its stored version is still expectedVersion.
func (r *GORMCartRepository) PutCart(ctx context.Context, cart *models.Cart, expectedVersion int64) error {
	next := *cart
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now()

	db := r.db.WithContext(ctx)
	var res *gorm.DB
	if expectedVersion == 0 {
		// A concurrent first write wins the primary key; this one conflicts.
		res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&next)
	} else {
		res = db.Model(&models.Cart{}).
			Where("device_id = ? AND version = ?", cart.DeviceID, expectedVersion).
			Select("lines", "version", "updated_at").
			Updates(&next)
	}
	if res.Error != nil {
		return errors.Wrapf(res.Error, "put cart for device %q", cart.DeviceID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrCartVersionConflict, "device %q expected version %d", cart.DeviceID, expectedVersion)
	}

	cart.Version = next.Version
	cart.UpdatedAt = next.UpdatedAt
	return nil
}
