package domain

import "github.com/google/uuid"

// PriceChanged is emitted when a price check detects a different price than
// the one stored before the fetch. At most one event per detected change.
type PriceChanged struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	Currency    string    `json:"currency"`
}
