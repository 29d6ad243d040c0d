package repositories

import (
	"context"

	"storefront/internal/models"
)

// CatalogRepository defines the interface for catalog data access.
type CatalogRepository interface {
	GetProduct(ctx context.Context, key string) (*models.Product, error)
	QueryByCategory(ctx context.Context, category string) ([]models.Product, error)
	Upsert(ctx context.Context, product *models.Product) error
}
