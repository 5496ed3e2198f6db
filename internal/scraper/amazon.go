package scraper

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/price-tracker/internal/domain"
)

const defaultTitle = "<unknown>"

// AmazonStrategy extracts product data from Amazon product pages. The
// preferred source is the hidden buybox JSON island; the rendered price
// spans are only a fallback for pages that omit it.
type AmazonStrategy struct{}

func NewAmazonStrategy() *AmazonStrategy {
	return &AmazonStrategy{}
}

func (s *AmazonStrategy) CanHandle(url string) bool {
	return strings.Contains(hostOf(url), "amazon")
}

// amazonBuybox mirrors the embedded twister-plus price payload.
type amazonBuybox struct {
	DesktopBuyboxGroup1 []amazonBuyboxEntry `json:"desktop_buybox_group_1"`
}

type amazonBuyboxEntry struct {
	PriceAmount float64 `json:"priceAmount"`
	Locale      string  `json:"locale"`
}

func (s *AmazonStrategy) ParseHTML(html, url string) (*domain.ScrapedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := defaultTitle
	if t := strings.TrimSpace(doc.Find("span#productTitle").Text()); t != "" {
		title = t
	}

	// URL-derived currency is the backup if the JSON island is absent or
	// carries no locale.
	currency := currencyFromHost(url, amazonHostCurrencies, "USD")

	price, locale, found := s.parseStructuredPrice(doc)
	if !found {
		price = s.parseVisualPrice(doc)
	}
	if code := currencyFromLocale(locale); code != "" {
		currency = code
	}

	availabilityText := strings.ToLower(strings.TrimSpace(doc.Find("div#availability").Text()))
	available := price > 0 &&
		!strings.Contains(availabilityText, "no disponible") &&
		!strings.Contains(availabilityText, "currently unavailable")

	return &domain.ScrapedProduct{
		Title:       title,
		Price:       price,
		Currency:    currency,
		IsAvailable: available,
		URL:         url,
		Vendor:      "Amazon",
	}, nil
}

// parseStructuredPrice reads the buybox JSON island. A malformed island is a
// silent degradation to the visual tier, not a failure.
func (s *AmazonStrategy) parseStructuredPrice(doc *goquery.Document) (price float64, locale string, found bool) {
	raw := strings.TrimSpace(doc.Find("div.twister-plus-buying-options-price-data").Text())
	if raw == "" {
		return 0, "", false
	}

	var buybox amazonBuybox
	if err := json.Unmarshal([]byte(raw), &buybox); err == nil && len(buybox.DesktopBuyboxGroup1) > 0 {
		entry := buybox.DesktopBuyboxGroup1[0]
		return entry.PriceAmount, entry.Locale, true
	}

	// Some pages inline the entry without the group wrapper.
	var entry amazonBuyboxEntry
	if err := json.Unmarshal([]byte(raw), &entry); err == nil && entry.PriceAmount > 0 {
		return entry.PriceAmount, entry.Locale, true
	}

	return 0, "", false
}

// parseVisualPrice joins the rendered whole/fraction price spans.
func (s *AmazonStrategy) parseVisualPrice(doc *goquery.Document) float64 {
	core := doc.Find("div#corePriceDisplay_desktop_feature_div")
	whole := strings.TrimSpace(core.Find("span.a-price-whole").First().Text())
	fraction := strings.TrimSpace(core.Find("span.a-price-fraction").First().Text())

	if whole == "" || fraction == "" {
		return 0
	}

	whole = strings.NewReplacer(".", "", ",", "").Replace(whole)
	value, err := strconv.ParseFloat(whole+"."+fraction, 64)
	if err != nil {
		return 0
	}
	return value
}
