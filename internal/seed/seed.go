// Package seed loads catalog documents into the product store.
package seed

import (
	"bytes"
	"context"
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"storefront/internal/models"
)

// Catalog is the layout of a seed file.
type Catalog struct {
	Products []models.Product `yaml:"products"`
}

// ProductCreator stores a validated product.
type ProductCreator interface {
	CreateProduct(ctx context.Context, product *models.Product) error
}

// LoadFile parses a YAML catalog file.
func LoadFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed file %q", path)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document. Unknown fields are rejected.
func Parse(data []byte) ([]models.Product, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, errors.Wrap(err, "decode seed catalog")
	}
	return catalog.Products, nil
}

// Apply stores every product, stopping at the first failure. It returns
// how many products were stored.
func Apply(ctx context.Context, creator ProductCreator, products []models.Product) (int, error) {
	for i := range products {
		if err := creator.CreateProduct(ctx, &products[i]); err != nil {
			return i, errors.Wrapf(err, "seed product %d", i)
		}
	}
	return len(products), nil
}

// Defaults is the catalog a fresh in-memory store starts with.
func Defaults() []models.Product {
	return []models.Product{
		{
			ID: "red-dress", Title: "Red Wrap Dress", Price: 1200, OriginalPrice: 2000, DiscountPercentage: 40,
			Description: "Flowing wrap dress in soft crepe.", Category: "dresses",
			ColorVariants: []models.ColorVariant{
				{Name: "red", Source: []models.ImageSource{{URL: "/images/red-dress/red-front.jpg"}, {URL: "/images/red-dress/red-back.jpg"}}},
				{Name: "black", Source: []models.ImageSource{{URL: "/images/red-dress/black-front.jpg"}}},
			},
		},
		{
			ID: "blue-maxi", Title: "Blue Maxi Dress", Price: 1500, OriginalPrice: 2500, DiscountPercentage: 40,
			Description: "Floor-length cotton maxi.", Category: "dresses",
			ColorVariants: []models.ColorVariant{
				{Name: "blue", Source: []models.ImageSource{{URL: "/images/blue-maxi/blue-front.jpg"}}},
			},
		},
		{
			ID: "silk-scarf", Title: "Printed Silk Scarf", Price: 450, OriginalPrice: 600, DiscountPercentage: 25,
			Category: "accessories",
			ColorVariants: []models.ColorVariant{
				{Name: "print", Source: []models.ImageSource{{URL: "/images/silk-scarf/print.jpg"}}},
			},
		},
	}
}
