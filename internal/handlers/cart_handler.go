package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// CartHandler handles HTTP requests for the device cart.
type CartHandler struct {
	service  *services.CartService
	board    *services.ConfirmationBoard
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, board *services.ConfirmationBoard, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		board:    board,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddToCart)
	cartRoutes.Post("/buy", h.HandleBuyNow)
	cartRoutes.Get("/confirmation", h.HandleGetConfirmation)
}

// CartItemRequest names the product to add. An empty product_id is a
// rejected no-op rather than a validation error.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,max=128"`
}

// HandleGetCart returns the cart of the calling device.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	if deviceID == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	cart, err := h.service.GetCart(c.UserContext(), deviceID)
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

// HandleAddToCart adds one unit of a product to the device cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	return h.handleCartAction(c, false)
}

// HandleBuyNow adds one unit of a product and redirects to checkout.
func (h *CartHandler) HandleBuyNow(c *fiber.Ctx) error {
	return h.handleCartAction(c, true)
}

func (h *CartHandler) handleCartAction(c *fiber.Ctx, buyNow bool) error {
	var req CartItemRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	deviceID := middleware.DeviceID(c)
	var (
		result *services.CartResult
		err    error
	)
	if buyNow {
		result, err = h.service.BuyProduct(c.UserContext(), deviceID, req.ProductID)
	} else {
		result, err = h.service.AddProduct(c.UserContext(), deviceID, req.ProductID)
	}

	if err != nil {
		if services.IsRejected(err) {
			// Preconditions unmet: nothing was written and nothing is shown.
			return c.SendStatus(fiber.StatusNoContent)
		}
		h.logger.Error("Cart action failed",
			zap.String("device_id", deviceID), zap.String("product_id", req.ProductID), zap.Bool("buy_now", buyNow), zap.Error(err))
		return respondError(c, "Could not add item to cart", err)
	}

	if result.Redirect != "" {
		c.Location(result.Redirect)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleGetConfirmation returns the add-to-bag confirmation while it is
// still showing.
func (h *CartHandler) HandleGetConfirmation(c *fiber.Ctx) error {
	confirmation, ok := h.board.Current(middleware.DeviceID(c))
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(confirmation)
}
