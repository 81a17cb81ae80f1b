// Package currency resolves effective conversion rates and keeps the base
// rate table fresh from external market sources.
package currency

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tariff/internal/model"
)

// RateReader is the read-side of the currency rate store.
type RateReader interface {
	GetRate(ctx context.Context, code string) (model.CurrencyRate, error)
}

// Conversion is the result of quoting a USD amount in another currency.
type Conversion struct {
	Code          string
	EffectiveRate decimal.Decimal
	Amount        decimal.Decimal
}

// Converter quotes USD-denominated amounts in local currency using the
// configured markup over the base market rate.
type Converter struct {
	rates RateReader
}

// NewConverter creates a Converter over the given rate store.
func NewConverter(rates RateReader) *Converter {
	return &Converter{rates: rates}
}

// Convert quotes amountUSD in the given currency. It fails with
// ErrUnknownCurrency when no active rate exists for the code.
func (c *Converter) Convert(ctx context.Context, amountUSD float64, code string) (Conversion, error) {
	rate, err := c.rates.GetRate(ctx, code)
	if errors.Is(err, model.ErrNotFound) {
		return Conversion{}, fmt.Errorf("%s: %w", code, model.ErrUnknownCurrency)
	}
	if err != nil {
		return Conversion{}, err
	}
	if !rate.IsActive {
		return Conversion{}, fmt.Errorf("%s is inactive: %w", code, model.ErrUnknownCurrency)
	}
	return quote(amountUSD, code, rate.RateToUSD, rate.MarkupPercent), nil
}

// Preview quotes amountUSD against an unsaved rate and markup. The admin UI
// calls this before persisting a markup change; it is the same computation
// Convert applies at deposit time, so preview and applied amounts can never
// drift.
func Preview(amountUSD float64, code string, rateToUSD, markupPercent float64) Conversion {
	return quote(amountUSD, code, rateToUSD, markupPercent)
}

// quote is the single conversion formula: effective = rate * (1 + markup/100),
// amount = amountUSD * effective rounded to 2 decimal places, half up.
func quote(amountUSD float64, code string, rateToUSD, markupPercent float64) Conversion {
	rate := decimal.NewFromFloat(rateToUSD)
	markup := decimal.NewFromFloat(markupPercent).Div(decimal.NewFromInt(100))
	effective := rate.Mul(decimal.NewFromInt(1).Add(markup))
	amount := decimal.NewFromFloat(amountUSD).Mul(effective).Round(2)
	return Conversion{
		Code:          code,
		EffectiveRate: effective,
		Amount:        amount,
	}
}
