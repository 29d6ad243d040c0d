package repositories

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{
		db: db,
	}
}

// GetProduct retrieves a single product document by its key.
func (r *GORMCatalogRepository) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrProductNotFound, "key %q", key)
		}
		return nil, errors.Wrapf(err, "get product %q", key)
	}
	return &product, nil
}

// QueryByCategory returns every product whose category equals category, in
// the store's default order and without a limit.
func (r *GORMCatalogRepository) QueryByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("category = ?", category).Find(&products).Error; err != nil {
		return nil, errors.Wrapf(err, "query category %q", category)
	}
	return products, nil
}

// Upsert creates the product or replaces the stored document with the same key.
func (r *GORMCatalogRepository) Upsert(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(product).Error
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", product.ID)
	}
	return nil
}
