package converter

import "github.com/shopspring/decimal"

// Currencies known to the default table
const (
	KGS Currency = "KGS"
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
	KZT Currency = "KZT"
	GBP Currency = "GBP"
	CNY Currency = "CNY"
)

// ReferenceCodes currencies shown in the reference table and updated by a refresh
var ReferenceCodes = []Currency{USD, EUR, KZT, RUB}

// DefaultEntries KGS based rates used until a refresh succeeds
func DefaultEntries() []Entry {
	return []Entry{
		entry(KGS, "1", "1", "Кыргызский сом", 2),
		entry(USD, "87.2", "87.7", "Доллар США", 2),
		entry(EUR, "101.3", "102.3", "Евро", 2),
		entry(RUB, "1.12", "1.15", "Российский рубль", 2),
		entry(KZT, "0.14", "0.175", "Казахстанский тенге", 3),
		entry(GBP, "110.5", "111.5", "Фунт стерлингов", 2),
		entry(CNY, "12.0", "12.3", "Китайский юань", 2),
	}
}

// NewDefaultTable returns a fresh KGS based table seeded with DefaultEntries
func NewDefaultTable() *Table {
	t, err := NewTable(KGS, DefaultEntries()...)
	if err != nil {
		panic(err) // defaults are static
	}
	return t
}

func entry(code Currency, buy, sell, name string, precision int32) Entry {
	return Entry{
		Code:      code,
		Buy:       decimal.RequireFromString(buy),
		Sell:      decimal.RequireFromString(sell),
		Name:      name,
		Precision: precision,
	}
}
