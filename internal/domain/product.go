package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a tracked product. All price mutations go through UpdatePrice
// so the history invariant cannot be bypassed.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	Vendor       string          `json:"vendor"`
	CurrentPrice float64         `json:"current_price"`
	Currency     string          `json:"currency"`
	IsAvailable  bool            `json:"is_available"`
	IsActive     bool            `json:"is_active"`
	LastChecked  *time.Time      `json:"last_checked,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	History      []PriceSnapshot `json:"history,omitempty"`
}

// PriceSnapshot is an immutable historical price point.
type PriceSnapshot struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProduct(name, url, vendor string) *Product {
	return &Product{
		ID:        uuid.New(),
		Name:      name,
		URL:       url,
		Vendor:    vendor,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// UpdatePrice applies a scraped price to the product. The previous price is
// recorded in the history only when the new price differs from the current one
// and is strictly positive; current state is overwritten either way.
func (p *Product) UpdatePrice(newPrice float64, currency string, available bool) {
	now := time.Now().UTC()

	if p.CurrentPrice != newPrice && newPrice > 0 {
		p.History = append(p.History, PriceSnapshot{
			ID:        uuid.New(),
			ProductID: p.ID,
			Price:     p.CurrentPrice,
			Timestamp: now,
		})
	}

	p.CurrentPrice = newPrice
	p.Currency = currency
	p.IsAvailable = available
	p.LastChecked = &now
}

// ScrapedProduct is the transient result of a single scrape. It is consumed
// once to update a Product and never persisted directly.
type ScrapedProduct struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	IsAvailable bool    `json:"is_available"`
	URL         string  `json:"url"`
	Vendor      string  `json:"vendor"`
}
