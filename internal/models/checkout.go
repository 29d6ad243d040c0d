package models

import "github.com/shopspring/decimal"

// CheckoutSummary is what the checkout destination shows for a device.
type CheckoutSummary struct {
	DeviceID  string          `json:"device_id"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}
