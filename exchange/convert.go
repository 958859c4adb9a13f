package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"

	converter "go-currency-converter"
)

// Convert converts amount from one currency into another using the buy rate of the
// source and the sell rate of the destination. Conversions between two foreign
// currencies go through the base currency.
func Convert(amount decimal.Decimal, from, to converter.Currency, rates converter.Rates) (decimal.Decimal, error) {
	src, err := rates.Lookup(from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert from: %w", err)
	}
	dst, err := rates.Lookup(to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert to: %w", err)
	}

	base := rates.Base()
	switch {
	case from == base:
		return amount.Div(dst.Sell), nil
	case to == base:
		return amount.Mul(src.Buy), nil
	default:
		return amount.Mul(src.Buy).Div(dst.Sell), nil
	}
}
