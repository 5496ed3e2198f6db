package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMercadoLibreCanHandle(t *testing.T) {
	s := NewMercadoLibreStrategy()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"mx listing", "https://www.mercadolibre.com.mx/p/MLM2005705454", true},
		{"ar listing", "https://articulo.mercadolibre.com.ar/MLA-12345", true},
		{"amazon", "https://www.amazon.com.mx/dp/X", false},
		{"malformed", ":::not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.CanHandle(tt.url))
		})
	}
}

func TestMercadoLibreParseMetaPrice(t *testing.T) {
	s := NewMercadoLibreStrategy()

	html := `<html><body>
		<h1 class="ui-pdp-title">Silla ergonómica de oficina</h1>
		<meta itemprop="price" content="5899.00">
		<button class="ui-pdp-actions__button">Comprar ahora</button>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.mercadolibre.com.mx/p/MLM123")
	require.NoError(t, err)

	assert.Equal(t, "Silla ergonómica de oficina", result.Title)
	assert.Equal(t, 5899.00, result.Price)
	assert.Equal(t, "MXN", result.Currency)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, "MercadoLibre", result.Vendor)
}

func TestMercadoLibreVisualFallback(t *testing.T) {
	s := NewMercadoLibreStrategy()

	html := `<html><body>
		<h1 class="ui-pdp-title">Monitor 27 pulgadas</h1>
		<div class="ui-pdp-price__second-line">
			<span class="andes-money-amount__fraction">5.899</span>
		</div>
		<a href="/gz/checkout/buybox-form?item_id=MLM123">Comprar</a>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.mercadolibre.com.mx/p/MLM123")
	require.NoError(t, err)

	assert.Equal(t, 5899.00, result.Price)
	assert.True(t, result.IsAvailable)
}

func TestMercadoLibreEmptyPageDegrades(t *testing.T) {
	s := NewMercadoLibreStrategy()

	// No structured data, no visual match: defaults with the currency
	// resolved from the country domain.
	result, err := s.ParseHTML("<html><body></body></html>",
		"https://articulo.mercadolibre.com.ar/MLA-98765")
	require.NoError(t, err)

	assert.Equal(t, "<unknown>", result.Title)
	assert.Equal(t, float64(0), result.Price)
	assert.Equal(t, "ARS", result.Currency)
	assert.False(t, result.IsAvailable)
}

func TestMercadoLibrePausedListingOverridesPrice(t *testing.T) {
	s := NewMercadoLibreStrategy()

	html := `<html><body>
		<h1 class="ui-pdp-title">Publicación pausada</h1>
		<meta itemprop="price" content="1200">
		<button class="ui-pdp-actions__button">Comprar</button>
		<div class="ui-pdp-promotions-pill-label--PAUSED">Publicación pausada</div>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.mercadolibre.com.mx/p/MLM123")
	require.NoError(t, err)

	assert.Equal(t, 1200.00, result.Price)
	assert.False(t, result.IsAvailable)
}

func TestMercadoLibrePriceWithoutBuyActionIsUnavailable(t *testing.T) {
	s := NewMercadoLibreStrategy()

	html := `<html><body>
		<h1 class="ui-pdp-title">Sin stock</h1>
		<meta itemprop="price" content="700">
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.mercadolibre.com.mx/p/MLM123")
	require.NoError(t, err)

	assert.False(t, result.IsAvailable)
}
