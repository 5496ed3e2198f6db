package scraper

import (
	"net/url"
	"strings"
)

// localeCurrencies maps marketplace locale codes found in structured price
// data to ISO 4217 currency codes. Locale wins over the URL-derived guess
// because it comes straight from the vendor's own payload.
var localeCurrencies = map[string]string{
	"es-MX": "MXN",
	"es-AR": "ARS",
	"es-CL": "CLP",
	"es-CO": "COP",
	"es-ES": "EUR",
	"es-US": "USD",
	"pt-BR": "BRL",
	"en-US": "USD",
	"en-GB": "GBP",
	"en-CA": "CAD",
	"de-DE": "EUR",
	"fr-FR": "EUR",
	"it-IT": "EUR",
	"ja-JP": "JPY",
}

// hostCurrency is one country-domain suffix rule. Suffix tables are ordered
// most-specific first so ".com.mx" matches before ".com".
type hostCurrency struct {
	suffix   string
	currency string
}

var amazonHostCurrencies = []hostCurrency{
	{".com.mx", "MXN"},
	{".com.br", "BRL"},
	{".co.uk", "GBP"},
	{".co.jp", "JPY"},
	{".es", "EUR"},
	{".de", "EUR"},
	{".fr", "EUR"},
	{".it", "EUR"},
	{".ca", "CAD"},
	{".br", "BRL"},
}

var mercadoLibreHostCurrencies = []hostCurrency{
	{".com.mx", "MXN"},
	{".com.ar", "ARS"},
	{".com.co", "COP"},
	{".com.br", "BRL"},
	{".cl", "CLP"},
	{".br", "BRL"},
}

// currencyFromLocale returns the ISO code for a locale, or "" if unknown.
func currencyFromLocale(locale string) string {
	return localeCurrencies[locale]
}

// currencyFromHost resolves a currency from the URL's host suffix. Falls back
// to the vendor default so the result is always a valid code, even for
// malformed URLs.
func currencyFromHost(rawURL string, table []hostCurrency, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fallback
	}

	host := strings.ToLower(u.Hostname())
	for _, entry := range table {
		if strings.HasSuffix(host, entry.suffix) {
			return entry.currency
		}
	}

	return fallback
}
