package scraper

import (
	"net/url"
	"strings"

	"github.com/maltedev/price-tracker/internal/domain"
)

// Strategy extracts structured product data from one vendor's HTML.
//
// CanHandle must never fail: malformed input is simply not handled.
// ParseHTML degrades to defaults for missing elements instead of erroring;
// a zero price with IsAvailable=false is a valid result.
type Strategy interface {
	CanHandle(url string) bool
	ParseHTML(html, url string) (*domain.ScrapedProduct, error)
}

// Selector holds the registered strategies and picks the first one that
// claims a URL, in registration order.
type Selector struct {
	strategies []Strategy
}

func NewSelector(strategies ...Strategy) *Selector {
	return &Selector{strategies: strategies}
}

// GetStrategy returns the first matching strategy or ErrUnsupportedVendor.
func (s *Selector) GetStrategy(url string) (Strategy, error) {
	for _, strategy := range s.strategies {
		if strategy.CanHandle(url) {
			return strategy, nil
		}
	}
	return nil, unsupportedVendor(url)
}

// hostOf extracts the lowercased hostname of a URL for vendor matching.
// Malformed URLs yield the lowercased input so matching stays total.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname())
}
