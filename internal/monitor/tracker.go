package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/maltedev/price-tracker/internal/domain"
)

// Tracker handles the product-tracking operations around the sweep:
// registering a new URL, pausing and resuming tracking.
type Tracker struct {
	repo    Repository
	scraper Scraper
	logger  *slog.Logger
}

func NewTracker(repo Repository, scraper Scraper, logger *slog.Logger) *Tracker {
	return &Tracker{
		repo:    repo,
		scraper: scraper,
		logger:  logger.With("component", "tracker"),
	}
}

// Track registers a new product. The URL is canonicalized (query string
// dropped), checked for duplicates, and scraped once for the initial state.
// Scrape errors surface as-is so the caller sees the typed reason.
func (t *Tracker) Track(ctx context.Context, rawURL string) (*domain.Product, error) {
	cleaned, err := cleanURL(rawURL)
	if err != nil {
		return nil, err
	}

	exists, err := t.repo.ExistsWithURL(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing url: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateURL, cleaned)
	}

	scraped, err := t.scraper.ScrapeProduct(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if scraped.Price <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPrice, cleaned)
	}

	product := domain.NewProduct(scraped.Title, cleaned, scraped.Vendor)
	product.UpdatePrice(scraped.Price, scraped.Currency, scraped.IsAvailable)

	if err := t.repo.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}

	t.logger.Info("product tracked",
		"product_id", product.ID,
		"name", product.Name,
		"vendor", product.Vendor,
		"price", product.CurrentPrice,
		"currency", product.Currency)

	return product, nil
}

// SetActive pauses or resumes price monitoring for a product.
func (t *Tracker) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	product, err := t.repo.GetByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	product.IsActive = active
	if err := t.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}

	t.logger.Info("tracking state changed", "product_id", product.ID, "active", active)
	return product, nil
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrNotFound
	}
	return parsed, nil
}

// cleanURL reduces a product URL to scheme, host and path, dropping the
// tracking noise marketplaces append as query parameters.
func cleanURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidURL, rawURL)
	}
	return "https://" + u.Host + u.Path, nil
}
