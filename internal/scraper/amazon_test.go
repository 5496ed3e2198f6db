package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmazonCanHandle(t *testing.T) {
	s := NewAmazonStrategy()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"mx marketplace", "https://www.amazon.com.mx/dp/B0B11LFJQZ", true},
		{"us marketplace", "https://www.amazon.com/dp/B0B11LFJQZ", true},
		{"uppercase host", "https://WWW.AMAZON.ES/dp/X", true},
		{"other vendor", "https://www.mercadolibre.com.mx/p/MLM123", false},
		{"malformed input", "not a url at all", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.CanHandle(tt.url))
		})
	}
}

func TestAmazonParseStructuredPrice(t *testing.T) {
	s := NewAmazonStrategy()

	html := `<html><body>
		<span id="productTitle"> Logitech MX Master 3S </span>
		<div class="twister-plus-buying-options-price-data">
			{"desktop_buybox_group_1":[{"displayPrice":"$5,165.49","priceAmount":5165.49,"locale":"es-MX"}]}
		</div>
		<div id="availability"><span>Disponible</span></div>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.amazon.com.mx/dp/XYZ")
	require.NoError(t, err)

	assert.Equal(t, "Logitech MX Master 3S", result.Title)
	assert.Equal(t, 5165.49, result.Price)
	assert.Equal(t, "MXN", result.Currency)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, "Amazon", result.Vendor)
	assert.Equal(t, "https://www.amazon.com.mx/dp/XYZ", result.URL)
}

func TestAmazonVisualFallback(t *testing.T) {
	s := NewAmazonStrategy()

	html := `<html><body>
		<span id="productTitle">Teclado mecánico</span>
		<div id="corePriceDisplay_desktop_feature_div">
			<span class="a-price-whole">1.299</span>
			<span class="a-price-fraction">99</span>
		</div>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.amazon.com.mx/dp/ABC")
	require.NoError(t, err)

	assert.Equal(t, 1299.99, result.Price)
	assert.Equal(t, "MXN", result.Currency)
	assert.True(t, result.IsAvailable)
}

func TestAmazonMalformedJSONFallsBackToVisual(t *testing.T) {
	s := NewAmazonStrategy()

	html := `<html><body>
		<div class="twister-plus-buying-options-price-data">{not json</div>
		<div id="corePriceDisplay_desktop_feature_div">
			<span class="a-price-whole">450</span>
			<span class="a-price-fraction">00</span>
		</div>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.amazon.com/dp/ABC")
	require.NoError(t, err)

	assert.Equal(t, 450.00, result.Price)
	assert.Equal(t, "USD", result.Currency)
}

func TestAmazonMissingElementsDegradeToDefaults(t *testing.T) {
	s := NewAmazonStrategy()

	result, err := s.ParseHTML("<html><body><p>nothing useful</p></body></html>",
		"https://www.amazon.com/dp/GONE")
	require.NoError(t, err)

	assert.Equal(t, "<unknown>", result.Title)
	assert.Equal(t, float64(0), result.Price)
	assert.False(t, result.IsAvailable)
	assert.Equal(t, "USD", result.Currency)
}

func TestAmazonUnavailableMarkerOverridesPrice(t *testing.T) {
	s := NewAmazonStrategy()

	html := `<html><body>
		<span id="productTitle">Agotado</span>
		<div class="twister-plus-buying-options-price-data">
			{"desktop_buybox_group_1":[{"priceAmount":899.00,"locale":"es-MX"}]}
		</div>
		<div id="availability"><span>No disponible por el momento.</span></div>
	</body></html>`

	result, err := s.ParseHTML(html, "https://www.amazon.com.mx/dp/XYZ")
	require.NoError(t, err)

	assert.Equal(t, 899.00, result.Price)
	assert.False(t, result.IsAvailable)
}

func TestAmazonCurrencyFromHostSuffix(t *testing.T) {
	s := NewAmazonStrategy()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.com.mx/dp/X", "MXN"},
		{"https://www.amazon.es/dp/X", "EUR"},
		{"https://www.amazon.co.uk/dp/X", "GBP"},
		{"https://www.amazon.com.br/dp/X", "BRL"},
		{"https://www.amazon.com/dp/X", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			result, err := s.ParseHTML("<html></html>", tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Currency)
		})
	}
}

func TestAmazonCurrencyIsDeterministic(t *testing.T) {
	s := NewAmazonStrategy()
	html := `<html><body>
		<div class="twister-plus-buying-options-price-data">
			{"desktop_buybox_group_1":[{"priceAmount":100,"locale":"es-MX"}]}
		</div>
	</body></html>`

	first, err := s.ParseHTML(html, "https://www.amazon.com/dp/X")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := s.ParseHTML(html, "https://www.amazon.com/dp/X")
		require.NoError(t, err)
		assert.Equal(t, first.Currency, again.Currency)
	}
}
