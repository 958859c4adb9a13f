// Package converter holds the currency rate table shared by the conversion,
// refresh and widget packages.
package converter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Currency a currency code
type Currency string

// ErrUnknownCurrency is returned when a code is not part of the rate table.
var ErrUnknownCurrency = errors.New("unknown currency")

// Entry rates of one currency against the base currency.
// Buy and Sell are base currency units per one unit of Code.
type Entry struct {
	Code Currency
	Buy  decimal.Decimal
	Sell decimal.Decimal
	Name string

	// Precision number of fractional digits used when the rates are rounded or displayed
	Precision int32
}

// Rates read access to a rate table
type Rates interface {
	Base() Currency
	Lookup(code Currency) (Entry, error)
}

// Table maps currency codes to their rates. The set of codes is fixed at construction,
// only buy and sell rates change afterwards. Table is safe for concurrent use.
type Table struct {
	base  Currency
	order []Currency

	lock    sync.RWMutex
	entries map[Currency]Entry
}

// NewTable builds a table from entries, keeping their order for presentation.
// base must be one of the entries.
func NewTable(base Currency, entries ...Entry) (*Table, error) {
	t := &Table{
		base:    base,
		entries: make(map[Currency]Entry, len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.entries[e.Code]; dup {
			return nil, fmt.Errorf("duplicate currency: %v", e.Code)
		}
		t.entries[e.Code] = e
		t.order = append(t.order, e.Code)
	}
	if _, ok := t.entries[base]; !ok {
		return nil, fmt.Errorf("base currency [%v]: %w", base, ErrUnknownCurrency)
	}
	return t, nil
}

// Base the currency every rate is quoted against
func (t *Table) Base() Currency {
	return t.base
}

// Lookup returns the entry for code or an error wrapping ErrUnknownCurrency.
func (t *Table) Lookup(code Currency) (Entry, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	e, ok := t.entries[code]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %v", ErrUnknownCurrency, code)
	}
	return e, nil
}

// Has reports whether code is in the table
func (t *Table) Has(code Currency) bool {
	_, err := t.Lookup(code)
	return err == nil
}

// Codes in presentation order
func (t *Table) Codes() []Currency {
	codes := make([]Currency, len(t.order))
	copy(codes, t.order)
	return codes
}

// Entries a copy of all entries in presentation order
func (t *Table) Entries() []Entry {
	t.lock.RLock()
	defer t.lock.RUnlock()
	entries := make([]Entry, 0, len(t.order))
	for _, code := range t.order {
		entries = append(entries, t.entries[code])
	}
	return entries
}

// SetRates overwrites buy and sell rates of several currencies at once.
// Either every update is applied or, if any code is unknown, none is.
func (t *Table) SetRates(updates ...Entry) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, u := range updates {
		if _, ok := t.entries[u.Code]; !ok {
			return fmt.Errorf("set rates: %w: %v", ErrUnknownCurrency, u.Code)
		}
	}
	for _, u := range updates {
		e := t.entries[u.Code]
		e.Buy = u.Buy
		e.Sell = u.Sell
		t.entries[u.Code] = e
	}
	return nil
}
