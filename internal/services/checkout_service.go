package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// CheckoutService builds the checkout destination's view of a device cart.
type CheckoutService struct {
	carts *CartService
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(carts *CartService) *CheckoutService {
	return &CheckoutService{
		carts: carts,
	}
}

// Summary totals the cart of deviceID using the prices captured on each line.
func (s *CheckoutService) Summary(ctx context.Context, deviceID string) (*models.CheckoutSummary, error) {
	cart, err := s.carts.GetCart(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := 0
	for _, line := range cart.Lines {
		lineTotal := decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items += line.Quantity
	}

	return &models.CheckoutSummary{
		DeviceID:  deviceID,
		Lines:     cart.Lines,
		ItemCount: items,
		Total:     total,
	}, nil
}
