package scraper

import (
	"context"
	"log/slog"

	"github.com/maltedev/price-tracker/internal/domain"
	"github.com/maltedev/price-tracker/internal/ratelimit"
)

// HTMLFetcher fetches rendered HTML for a URL. An empty string with a nil
// error means no content could be retrieved.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Service is the single entry point for scraping. It bounds global fetch
// concurrency with a counting semaphore and paces each fetch with a
// randomized delay while holding a permit.
type Service struct {
	engine   HTMLFetcher
	selector *Selector
	pacer    ratelimit.Pacer
	permits  chan struct{}
	logger   *slog.Logger
}

func NewService(engine HTMLFetcher, selector *Selector, pacer ratelimit.Pacer, maxConcurrent int, logger *slog.Logger) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		engine:   engine,
		selector: selector,
		pacer:    pacer,
		permits:  make(chan struct{}, maxConcurrent),
		logger:   logger.With("component", "scraper"),
	}
}

// ScrapeProduct fetches and parses a product page. Returns
// ErrUnsupportedVendor when no strategy claims the URL and ErrEmptyContent
// when the engine retrieved nothing; both are fatal for this one call.
func (s *Service) ScrapeProduct(ctx context.Context, url string) (*domain.ScrapedProduct, error) {
	select {
	case s.permits <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.permits }()

	// Pacing happens with the permit held so idle permits are not burned
	// on callers still waiting to be admitted.
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	strategy, err := s.selector.GetStrategy(url)
	if err != nil {
		return nil, err
	}

	html, err := s.engine.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, emptyContent(url)
	}

	result, err := strategy.ParseHTML(html, url)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scraped product",
		"url", url,
		"vendor", result.Vendor,
		"price", result.Price,
		"available", result.IsAvailable)

	return result, nil
}
