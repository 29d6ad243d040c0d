package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"storefront/internal/models"
)

// MockCatalogRepository is an in-memory implementation of CatalogRepository.
// Queries return products ordered by key.
type MockCatalogRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		products: make(map[string]models.Product),
	}
}

// GetProduct returns a copy of the product stored at key.
func (r *MockCatalogRepository) GetProduct(_ context.Context, key string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[key]
	if !ok {
		return nil, errors.Wrapf(ErrProductNotFound, "key %q", key)
	}
	product.ColorVariants = cloneVariants(product.ColorVariants)
	return &product, nil
}

// QueryByCategory returns all products in category.
func (r *MockCatalogRepository) QueryByCategory(_ context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0)
	for _, p := range r.products {
		if p.Category == category {
			p.ColorVariants = cloneVariants(p.ColorVariants)
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// Upsert stores the product under its key.
func (r *MockCatalogRepository) Upsert(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	stored := *product
	stored.ColorVariants = cloneVariants(product.ColorVariants)
	stored.Images = nil
	r.products[product.ID] = stored
	return nil
}

func cloneVariants(in []models.ColorVariant) []models.ColorVariant {
	if in == nil {
		return nil
	}
	out := make([]models.ColorVariant, len(in))
	for i, v := range in {
		out[i] = models.ColorVariant{
			Name:   v.Name,
			Source: append([]models.ImageSource(nil), v.Source...),
		}
	}
	return out
}
