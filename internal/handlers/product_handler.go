package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"storefront/internal/services"
)

// ProductHandler handles HTTP requests for the product-detail page.
type ProductHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the product and gallery routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetByCategory)
	productRoutes.Get("/:slug", h.HandleGetProductPage)

	router.Post("/gallery/select", h.HandleGallerySelect)
}

// HandleGetProductPage returns the product, its initial gallery and the
// products of the same category.
func (h *ProductHandler) HandleGetProductPage(c *fiber.Ctx) error {
	slug := utils.CopyString(c.Params("slug"))

	page, err := h.service.ProductPage(c.UserContext(), slug)
	if err != nil {
		h.logger.Warn("Product page unavailable", zap.String("slug", slug), zap.Error(err))
		return respondError(c, "Could not load product", err)
	}
	return c.JSON(page)
}

// HandleGetByCategory runs the related-products query for ?category=.
func (h *ProductHandler) HandleGetByCategory(c *fiber.Ctx) error {
	category := utils.CopyString(c.Query("category"))
	if category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'category' is required.",
		})
	}

	products, err := h.service.FetchRelated(c.UserContext(), category, utils.CopyString(c.Query("exclude")))
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// GallerySelectRequest carries the gallery state and the clicked thumbnail.
type GallerySelectRequest struct {
	Images  []string `json:"images" validate:"required,min=1"`
	Main    string   `json:"main"`
	Clicked string   `json:"clicked" validate:"required"`
}

// HandleGallerySelect returns the gallery after a thumbnail click.
func (h *ProductHandler) HandleGallerySelect(c *fiber.Ctx) error {
	var req GallerySelectRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	gallery := services.Gallery{Main: req.Main, Images: req.Images}
	return c.JSON(gallery.Select(req.Clicked))
}
