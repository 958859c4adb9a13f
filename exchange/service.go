package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	converter "go-currency-converter"
	"go-currency-converter/display"
)

// Exchanged result of a conversion
type Exchanged struct {
	// Rate units of the destination currency received for one unit of the source
	Rate decimal.Decimal

	Amount decimal.Decimal

	// Display Amount formatted for presentation
	Display string
}

// Service interface for converting from one currency to another
type Service interface {
	Convert(ctx context.Context, amount decimal.Decimal, from converter.Currency, to converter.Currency) (Exchanged, error)
}

type service struct {
	rates converter.Rates
}

// NewService constructs a Service converting with the given rates
func NewService(rates converter.Rates) Service {
	return &service{
		rates: rates,
	}
}

// Convert computes a conversion from one currency to another with the current rates.
func (s *service) Convert(_ context.Context, amount decimal.Decimal, from converter.Currency, to converter.Currency) (Exchanged, error) {
	rate, err := Convert(decimal.NewFromInt(1), from, to, s.rates)
	if err != nil {
		return Exchanged{}, fmt.Errorf("rate [%v -> %v]: %w", from, to, err)
	}
	converted, err := Convert(amount, from, to, s.rates)
	if err != nil {
		return Exchanged{}, fmt.Errorf("amount [%v -> %v]: %w", from, to, err)
	}

	return Exchanged{
		Rate:    rate,
		Amount:  converted,
		Display: display.Format(converted),
	}, nil
}
