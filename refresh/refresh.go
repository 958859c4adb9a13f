// Package refresh updates the reference currencies of a rate table from a rates provider.
//
// A refresh is attempted once. It derives buy and sell rates for converter.ReferenceCodes
// from the provider's quotes against the table's base currency, applying a symmetric
// spread around the mid rate. Failures leave the table untouched and are reported in the
// Result rather than returned to the table's users.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	converter "go-currency-converter"
	"go-currency-converter/ratesapi"
)

var (
	one        = decimal.NewFromInt(1)
	buyFactor  = decimal.RequireFromString("0.995")
	sellFactor = decimal.RequireFromString("1.005")
)

// Table a rate table that can be refreshed
type Table interface {
	converter.Rates
	SetRates(updates ...converter.Entry) error
}

// Result outcome of one refresh
type Result struct {
	// Entries the rates written into the table, empty on failure
	Entries []converter.Entry

	// At when the refresh completed
	At time.Time

	Err error
}

// OK reports whether the table was updated
func (r Result) OK() bool {
	return r.Err == nil
}

// Refresh fetches the latest rates for the table's base currency and overwrites buy and
// sell rates of the reference currencies. Either all of them are updated or none is.
func Refresh(ctx context.Context, provider ratesapi.Service, table Table) Result {
	entries, err := refresh(ctx, provider, table)
	if err != nil {
		return Result{At: time.Now(), Err: fmt.Errorf("refresh [%v]: %w", table.Base(), err)}
	}
	return Result{Entries: entries, At: time.Now()}
}

// Start runs Refresh in the background. The returned channel delivers exactly one Result.
func Start(ctx context.Context, provider ratesapi.Service, table Table) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		results <- Refresh(ctx, provider, table)
	}()
	return results
}

func refresh(ctx context.Context, provider ratesapi.Service, table Table) ([]converter.Entry, error) {
	rates, err := provider.LatestRates(ctx, table.Base())
	if err != nil {
		return nil, err
	}

	entries := make([]converter.Entry, 0, len(converter.ReferenceCodes))
	for _, code := range converter.ReferenceCodes {
		current, err := table.Lookup(code)
		if err != nil {
			return nil, err
		}
		e, err := derive(current, rates)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := table.SetRates(entries...); err != nil {
		return nil, err
	}
	return entries, nil
}

// derive turns a quote of code per base unit into buy and sell rates in base units
func derive(current converter.Entry, rates ratesapi.Rates) (converter.Entry, error) {
	quote, ok := rates[current.Code]
	if !ok {
		return converter.Entry{}, fmt.Errorf("missing rate for %v", current.Code)
	}
	if !quote.IsPositive() {
		return converter.Entry{}, fmt.Errorf("invalid rate %v for %v", quote, current.Code)
	}

	mid := one.Div(quote)
	e := current
	e.Buy = mid.Mul(buyFactor).Round(current.Precision)
	e.Sell = mid.Mul(sellFactor).Round(current.Precision)
	if !e.Buy.IsPositive() || !e.Sell.IsPositive() {
		return converter.Entry{}, fmt.Errorf("rate for %v rounds to zero", current.Code)
	}
	return e, nil
}
