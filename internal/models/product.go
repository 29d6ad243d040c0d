package models

import "time"

// ImageSource is one image of a color variant.
type ImageSource struct {
	URL string `json:"url" yaml:"url"`
}

// ColorVariant groups the images shot for a single color of a product.
type ColorVariant struct {
	Name   string        `json:"name" yaml:"name"`
	Source []ImageSource `json:"source" yaml:"source"`
}

// Product represents a catalog document. ID is the URL slug the storefront
// routes on.
type Product struct {
	ID                 string         `json:"id" yaml:"id" gorm:"primaryKey;type:varchar(128)" validate:"required,max=128"`
	Title              string         `json:"title" yaml:"title" validate:"required,max=200"`
	Price              float64        `json:"price" yaml:"price" validate:"gte=0"`
	OriginalPrice      float64        `json:"original_price" yaml:"original_price" validate:"gte=0"`
	DiscountPercentage float64        `json:"discount_percentage" yaml:"discount_percentage" validate:"gte=0,lte=100"`
	Description        string         `json:"description" yaml:"description" validate:"max=2000"`
	Category           string         `json:"category" yaml:"category" gorm:"index;type:varchar(100)" validate:"required,max=100"`
	ColorVariants      []ColorVariant `json:"color_variants" yaml:"color_variants" gorm:"serializer:json;type:text" validate:"dive"`
	Images             []string       `json:"images" yaml:"-" gorm:"-"` // Derived from ColorVariants, never stored
	CreatedAt          time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt          time.Time      `json:"updated_at" yaml:"-"`
}
