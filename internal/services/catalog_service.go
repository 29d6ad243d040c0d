package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductPage is everything the product-detail page renders.
type ProductPage struct {
	Product *models.Product  `json:"product"`
	Gallery Gallery          `json:"gallery"`
	Related []models.Product `json:"related"`
}

// CatalogService reads products and their same-category peers.
type CatalogService struct {
	repo        repositories.CatalogRepository
	validate    *validator.Validate
	logger      *zap.Logger
	excludeSelf bool
}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithRelatedExcludeSelf drops the viewed product from its related list.
func WithRelatedExcludeSelf(exclude bool) CatalogOption {
	return func(s *CatalogService) { s.excludeSelf = exclude }
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.CatalogRepository, logger *zap.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchProduct looks up a product by key and fills in its flattened image list.
func (s *CatalogService) FetchProduct(ctx context.Context, key string) (*models.Product, error) {
	if key == "" {
		return nil, errors.Wrap(ErrDocumentNotFound, "empty product key")
	}

	product, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			s.logger.Warn("No such product document", zap.String("key", key))
			return nil, errors.Wrapf(ErrDocumentNotFound, "product %q", key)
		}
		s.logger.Error("Error fetching product data", zap.String("key", key), zap.Error(err))
		return nil, errors.Wrapf(ErrFetchFailure, "product %q: %v", key, err)
	}

	product.ID = key
	product.Images = FlattenImages(product.ColorVariants)
	return product, nil
}

// FetchRelated returns every product in category, in store order. The
// product currently viewed is part of the result unless the service was
// built WithRelatedExcludeSelf, in which case selfKey is removed.
func (s *CatalogService) FetchRelated(ctx context.Context, category, selfKey string) ([]models.Product, error) {
	products, err := s.repo.QueryByCategory(ctx, category)
	if err != nil {
		s.logger.Error("Error fetching related products", zap.String("category", category), zap.Error(err))
		return nil, errors.Wrapf(ErrFetchFailure, "category %q: %v", category, err)
	}

	related := make([]models.Product, 0, len(products))
	for _, p := range products {
		if s.excludeSelf && p.ID == selfKey {
			continue
		}
		p.Images = FlattenImages(p.ColorVariants)
		related = append(related, p)
	}
	return related, nil
}

// ProductPage fetches the product and, once it is available, its related
// products.
func (s *CatalogService) ProductPage(ctx context.Context, key string) (*ProductPage, error) {
	product, err := s.FetchProduct(ctx, key)
	if err != nil {
		return nil, err
	}

	related, err := s.FetchRelated(ctx, product.Category, product.ID)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Product: product,
		Gallery: NewGallery(product.Images),
		Related: related,
	}, nil
}

// CreateProduct validates and stores a catalog document.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return errors.Wrapf(err, "invalid product %q", product.ID)
	}
	return s.repo.Upsert(ctx, product)
}

// FlattenImages lists the image URLs of all variants, variant order first
// and source order within a variant. Duplicates are kept; sources without a
// URL are skipped.
func FlattenImages(variants []models.ColorVariant) []string {
	images := make([]string, 0)
	for _, variant := range variants {
		for _, source := range variant.Source {
			if source.URL != "" {
				images = append(images, source.URL)
			}
		}
	}
	return images
}
