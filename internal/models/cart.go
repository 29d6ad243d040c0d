package models

import "time"

// CartLine is one product-quantity-price record within a device's cart.
type CartLine struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // Captured when the line was first added
}

// Cart is the stored cart of a single device. Version is bumped on every
// successful write and is 0 while nothing has been stored yet.
type Cart struct {
	DeviceID  string     `json:"device_id" gorm:"primaryKey;type:varchar(64)"`
	Lines     []CartLine `json:"lines" gorm:"serializer:json;type:text"`
	Version   int64      `json:"version" gorm:"not null;default:0"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Cart event types published after a successful cart write.
const (
	CartEventLineAdded       = "cart.line_added"
	CartEventLineIncremented = "cart.line_incremented"
)

// CartEvent describes a single accepted cart change.
type CartEvent struct {
	Type       string    `json:"type"`
	DeviceID   string    `json:"device_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}
