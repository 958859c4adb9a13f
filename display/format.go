// Package display turns user input into amounts and amounts into text.
package display

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cent    = decimal.New(1, -2)
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Format renders a converted amount with magnitude dependent precision:
// 4 fractional digits below 0.01, 3 below 1, 2 below 100 and 1 otherwise.
// Zero is rendered as "0".
func Format(x decimal.Decimal) string {
	switch {
	case x.IsZero():
		return "0"
	case x.LessThan(cent):
		return x.StringFixed(4)
	case x.LessThan(one):
		return x.StringFixed(3)
	case x.LessThan(hundred):
		return x.StringFixed(2)
	default:
		return x.StringFixed(1)
	}
}

// FormatRate renders a rate with a fixed number of fractional digits
func FormatRate(x decimal.Decimal, precision int32) string {
	return x.StringFixed(precision)
}

// numericPrefix longest leading number, the way a browser parseFloat reads it
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads an amount typed by a user. A comma is accepted as the decimal
// separator and trailing garbage is ignored. The number is read at float64 precision,
// so magnitudes beyond the float64 range are not representable. Text without a leading
// number, negative numbers and out of range numbers yield zero.
func ParseAmount(text string) decimal.Decimal {
	text = strings.TrimSpace(strings.Replace(text, ",", ".", 1))
	match := numericPrefix.FindString(text)
	if match == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
