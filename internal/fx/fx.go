// Package fx converts amounts between currencies using rates fetched from an
// upstream service on every call.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"
)

const (
	DefaultURL  = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultPath = "$.rates"
)

// RateSource returns a currency code to rate mapping against a common base.
type RateSource interface {
	Rates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// StaticRates is a fixed RateSource.
type StaticRates map[string]decimal.Decimal

// Rates implements RateSource.
func (s StaticRates) Rates(context.Context) (map[string]decimal.Decimal, error) {
	return s, nil
}

// HTTPRates fetches rates from a JSON endpoint. Path is a JSONPath
// expression selecting the code to rate object in the response.
type HTTPRates struct {
	Client *http.Client
	URL    string
	Path   string
}

// Rates implements RateSource. Transport failures, non-200 responses and
// malformed payloads are all reported as model.ErrUpstreamUnavailable.
func (h *HTTPRates) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	addr := h.URL
	if addr == "" {
		addr = DefaultURL
	}
	path := h.Path
	if path == "" {
		path = DefaultPath
	}

	var jobj any
	if err := h.get(ctx, addr, &jobj); err != nil {
		return nil, fmt.Errorf("fetch rates: %w: %w", model.ErrUpstreamUnavailable, err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("select rates %q: %w: %w", path, model.ErrUpstreamUnavailable, err)
	}
	// jsonpath may wrap a single match in a list
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	obj, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("select rates %q: not an object: %w", path, model.ErrUpstreamUnavailable)
	}

	rates := make(map[string]decimal.Decimal, len(obj))
	for code, v := range obj {
		r, err := parseRate(v)
		if err != nil {
			return nil, fmt.Errorf("rate %s: %w: %w", code, model.ErrUpstreamUnavailable, err)
		}
		rates[strings.ToUpper(code)] = r
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("url", addr).Int("count", len(rates)).Msg("fetched exchange rates")
	return rates, nil
}

func (h *HTTPRates) get(ctx context.Context, addr string, data any) error {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(data)
}

func parseRate(v any) (decimal.Decimal, error) {
	var (
		r   decimal.Decimal
		err error
	)
	switch n := v.(type) {
	case json.Number:
		r, err = decimal.NewFromString(n.String())
	case float64:
		r = decimal.NewFromFloat(n)
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !r.IsPositive() {
		return decimal.Decimal{}, errors.New("not positive")
	}
	return r, nil
}

// Converter converts amounts using a fresh set of rates per call.
type Converter struct {
	Source RateSource
}

// NewConverter returns a Converter reading rates from src.
func NewConverter(src RateSource) *Converter {
	return &Converter{Source: src}
}

// Convert returns amount expressed in currency to, given it is expressed in
// currency from. Codes are case-insensitive.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = normalize(from)
	to = normalize(to)

	rates, err := c.Source.Rates(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	rf, err := lookup(rates, from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	rt, err := lookup(rates, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	out := amount.Mul(rt).Div(rf)
	log := logger.FromContext(ctx)
	log.Debug().Str("from", from).Str("to", to).Str("amount", amount.String()).Str("result", out.String()).Msg("converted amount")
	return out, nil
}

func lookup(rates map[string]decimal.Decimal, code string) (decimal.Decimal, error) {
	r, ok := rates[code]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("currency %q: %w", code, model.ErrInvalidCurrency)
	}
	if !r.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("rate for %s is %s: %w", code, r, model.ErrUpstreamUnavailable)
	}
	return r, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Format renders amount in the display form of currency code, e.g.
// "$1,234.50" for USD. Amounts are rounded to the currency's minor unit.
func Format(amount decimal.Decimal, code string) (string, error) {
	cur := money.GetCurrency(normalize(code))
	if cur == nil {
		return "", fmt.Errorf("currency %q: %w", code, model.ErrInvalidCurrency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart()), nil
}
