package monitor

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/maltedev/price-tracker/internal/domain"
)

// Repository is the persistence contract the monitoring core depends on.
// GetByID must return fresh state, not a cached view: the sweep re-reads
// every product right before acting on it.
type Repository interface {
	GetActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Insert(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	ExistsWithURL(ctx context.Context, url string) (bool, error)
}

// Scraper is the single scraping entry point the monitor consumes.
type Scraper interface {
	ScrapeProduct(ctx context.Context, url string) (*domain.ScrapedProduct, error)
}

// Publisher emits domain notifications. Publish failures never fail the
// operation that triggered them.
type Publisher interface {
	Publish(ctx context.Context, event domain.PriceChanged) error
}

// Checker runs the price-check sweep over all actively tracked products.
// Each product is an isolated unit of work: one bad record never aborts
// the rest of the batch.
type Checker struct {
	repo      Repository
	scraper   Scraper
	publisher Publisher
	logger    *slog.Logger
}

func NewChecker(repo Repository, scraper Scraper, publisher Publisher, logger *slog.Logger) *Checker {
	return &Checker{
		repo:      repo,
		scraper:   scraper,
		publisher: publisher,
		logger:    logger.With("component", "price_checker"),
	}
}

// Run executes one full sweep. Cancellation is honored between products;
// an in-flight fetch is bounded by the engine's navigation timeout instead.
func (c *Checker) Run(ctx context.Context) error {
	c.logger.Info("price check sweep started")

	ids, err := c.repo.GetActiveIDs(ctx)
	if err != nil {
		c.logger.Error("failed to load active product ids", "error", err)
		return err
	}

	if len(ids) == 0 {
		c.logger.Info("no active products to monitor")
		return nil
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			c.logger.Info("price check sweep cancelled", "remaining", len(ids))
			return ctx.Err()
		default:
		}

		c.processOne(ctx, id)
	}

	c.logger.Info("price check sweep finished", "products", len(ids))
	return nil
}

// processOne is one isolated fetch-update-persist cycle. Every failure path
// logs with product context and returns; the caller moves on.
func (c *Checker) processOne(ctx context.Context, id uuid.UUID) {
	product, err := c.repo.GetByID(ctx, id)
	if err != nil {
		c.logger.Error("failed to load product", "product_id", id, "error", err)
		return
	}
	if product == nil {
		// Deleted since the id sweep. Expected race, nothing to do.
		c.logger.Debug("product no longer exists", "product_id", id)
		return
	}
	if !product.IsActive {
		c.logger.Debug("product deactivated, skipping", "product_id", id)
		return
	}

	previousPrice := product.CurrentPrice

	scraped, err := c.scraper.ScrapeProduct(ctx, product.URL)
	if err != nil {
		c.logger.Error("failed to scrape product",
			"product_id", id,
			"name", product.Name,
			"url", product.URL,
			"error", err)
		return
	}

	product.UpdatePrice(scraped.Price, scraped.Currency, scraped.IsAvailable)

	if err := c.repo.Update(ctx, product); err != nil {
		c.logger.Error("failed to persist product",
			"product_id", id,
			"name", product.Name,
			"error", err)
		return
	}

	if product.CurrentPrice == previousPrice {
		c.logger.Info("product checked, no change",
			"product_id", id,
			"name", product.Name,
			"price", product.CurrentPrice)
		return
	}

	event := domain.PriceChanged{
		ProductID:   product.ID,
		ProductName: product.Name,
		OldPrice:    previousPrice,
		NewPrice:    product.CurrentPrice,
		Currency:    product.Currency,
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish price change",
			"product_id", id,
			"error", err)
		return
	}

	c.logger.Info("price change detected",
		"product_id", id,
		"name", product.Name,
		"old_price", previousPrice,
		"new_price", product.CurrentPrice,
		"currency", product.Currency)
}
