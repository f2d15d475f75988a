package fx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rateServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const usdRates = `{"base": "USD", "date": "2025-01-01", "rates": {"USD": 1, "EUR": 0.9, "GBP": 0.79, "JPY": 151.2}}`

func TestConvertUSDToEUR(t *testing.T) {
	srv := rateServer(t, http.StatusOK, usdRates)
	c := NewConverter(&HTTPRates{Client: srv.Client(), URL: srv.URL})

	got, err := c.Convert(context.Background(), dec("100"), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("90")), "got %s", got)
}

func TestConvertCrossRate(t *testing.T) {
	c := NewConverter(StaticRates{"USD": dec("1"), "EUR": dec("0.8"), "GBP": dec("0.4")})

	got, err := c.Convert(context.Background(), dec("10"), "eur", " gbp ")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("5")), "got %s", got)
}

func TestConvertSameCurrency(t *testing.T) {
	c := NewConverter(StaticRates{"USD": dec("1"), "EUR": dec("0.9")})
	got, err := c.Convert(context.Background(), dec("42.5"), "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("42.5")))
}

func TestConvertUnknownCurrency(t *testing.T) {
	srv := rateServer(t, http.StatusOK, usdRates)
	c := NewConverter(&HTTPRates{Client: srv.Client(), URL: srv.URL})

	_, err := c.Convert(context.Background(), dec("100"), "USD", "XYZ")
	assert.ErrorIs(t, err, model.ErrInvalidCurrency)

	_, err = c.Convert(context.Background(), dec("100"), "XYZ", "USD")
	assert.ErrorIs(t, err, model.ErrInvalidCurrency)
}

func TestConvertFetchesEveryCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(usdRates))
	}))
	defer srv.Close()
	c := NewConverter(&HTTPRates{Client: srv.Client(), URL: srv.URL})

	for range 3 {
		_, err := c.Convert(context.Background(), dec("1"), "USD", "GBP")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestHTTPRatesUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`},
		{"not json", http.StatusOK, `<html></html>`},
		{"no rates", http.StatusOK, `{"base": "USD"}`},
		{"rates not object", http.StatusOK, `{"rates": [1, 2]}`},
		{"string rate", http.StatusOK, `{"rates": {"USD": "one"}}`},
		{"zero rate", http.StatusOK, `{"rates": {"USD": 1, "EUR": 0}}`},
		{"negative rate", http.StatusOK, `{"rates": {"USD": 1, "EUR": -0.9}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rateServer(t, tt.status, tt.body)
			h := &HTTPRates{Client: srv.Client(), URL: srv.URL}
			_, err := h.Rates(context.Background())
			assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
		})
	}
}

func TestHTTPRatesUnreachable(t *testing.T) {
	srv := rateServer(t, http.StatusOK, usdRates)
	url := srv.URL
	srv.Close()

	h := &HTTPRates{URL: url}
	_, err := h.Rates(context.Background())
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
}

func TestHTTPRatesCustomPath(t *testing.T) {
	srv := rateServer(t, http.StatusOK, `{"data": {"quotes": {"usd": 1, "chf": 0.88}}}`)
	h := &HTTPRates{Client: srv.Client(), URL: srv.URL, Path: "$.data.quotes"}

	rates, err := h.Rates(context.Background())
	require.NoError(t, err)
	assert.True(t, rates["CHF"].Equal(dec("0.88")))
	assert.True(t, rates["USD"].Equal(dec("1")))
}

func TestHTTPRatesKeepsExactDigits(t *testing.T) {
	srv := rateServer(t, http.StatusOK, `{"rates": {"USD": 1, "EUR": 0.912345678901234567}}`)
	h := &HTTPRates{Client: srv.Client(), URL: srv.URL}

	rates, err := h.Rates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.912345678901234567", rates["EUR"].String())
}

func TestConvertPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	c := NewConverter(failingSource{boom})
	_, err := c.Convert(context.Background(), dec("1"), "USD", "EUR")
	assert.ErrorIs(t, err, boom)
}

type failingSource struct{ err error }

func (f failingSource) Rates(context.Context) (map[string]decimal.Decimal, error) {
	return nil, f.err
}

func TestFormat(t *testing.T) {
	got, err := Format(dec("1234.5"), "usd")
	require.NoError(t, err)
	assert.Equal(t, "$1,234.50", got)

	got, err = Format(dec("0.005"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "$0.01", got)

	_, err = Format(dec("1"), "XYZ")
	assert.ErrorIs(t, err, model.ErrInvalidCurrency)
}
