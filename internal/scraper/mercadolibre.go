package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/price-tracker/internal/domain"
)

// MercadoLibreStrategy extracts product data from MercadoLibre listings.
// The microdata meta tag is the authoritative price source; the rendered
// amount fraction is only a fallback.
type MercadoLibreStrategy struct{}

func NewMercadoLibreStrategy() *MercadoLibreStrategy {
	return &MercadoLibreStrategy{}
}

func (s *MercadoLibreStrategy) CanHandle(url string) bool {
	return strings.Contains(hostOf(url), "mercadolibre")
}

func (s *MercadoLibreStrategy) ParseHTML(html, url string) (*domain.ScrapedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := defaultTitle
	if t := strings.TrimSpace(doc.Find("h1.ui-pdp-title").First().Text()); t != "" {
		title = t
	}

	currency := currencyFromHost(url, mercadoLibreHostCurrencies, "MXN")

	price := s.parseMetaPrice(doc)
	if price == 0 {
		price = s.parseVisualPrice(doc)
	}

	// A listing is buyable when it has a price and some purchase action on
	// the page. An explicit PAUSED pill overrides everything.
	buyAction := doc.Find("button.ui-pdp-actions__button").Length() > 0 ||
		doc.Find(`a[href*="buybox-form"]`).Length() > 0
	available := price > 0 && buyAction
	if doc.Find(`div[class*="ui-pdp-promotions-pill-label--PAUSED"]`).Length() > 0 {
		available = false
	}

	return &domain.ScrapedProduct{
		Title:       title,
		Price:       price,
		Currency:    currency,
		IsAvailable: available,
		URL:         url,
		Vendor:      "MercadoLibre",
	}, nil
}

func (s *MercadoLibreStrategy) parseMetaPrice(doc *goquery.Document) float64 {
	content, exists := doc.Find(`meta[itemprop="price"]`).First().Attr("content")
	if !exists {
		return 0
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0
	}
	return value
}

func (s *MercadoLibreStrategy) parseVisualPrice(doc *goquery.Document) float64 {
	// MercadoLibre renders thousands with dots ("5.899"), strip separators
	// before parsing.
	raw := strings.TrimSpace(doc.
		Find(".ui-pdp-price__second-line span.andes-money-amount__fraction").
		First().Text())
	if raw == "" {
		return 0
	}

	raw = strings.NewReplacer(".", "", ",", "").Replace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
