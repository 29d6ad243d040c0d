package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// CheckoutHandler serves the checkout destination.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout", h.HandleGetSummary)
}

// HandleGetSummary returns the lines and total of the device cart.
func (h *CheckoutHandler) HandleGetSummary(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	if deviceID == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	summary, err := h.service.Summary(c.UserContext(), deviceID)
	if err != nil {
		return respondError(c, "Could not load checkout", err)
	}
	return c.JSON(summary)
}
