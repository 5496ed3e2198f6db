package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVendor means no registered strategy claims the URL.
	// Callers must not retry with a different strategy.
	ErrUnsupportedVendor = errors.New("unsupported vendor")

	// ErrEmptyContent means the browser engine returned no HTML for the URL
	// (timeout, DNS failure, connection refused, certificate error).
	ErrEmptyContent = errors.New("empty content")
)

func unsupportedVendor(url string) error {
	return fmt.Errorf("%w: no strategy for %s", ErrUnsupportedVendor, url)
}

func emptyContent(url string) error {
	return fmt.Errorf("%w: no HTML retrieved from %s", ErrEmptyContent, url)
}
