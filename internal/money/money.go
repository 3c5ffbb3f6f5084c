// Package money converts between decimal display values and the integer
// minor-unit amounts used by the ledger engine.
package money

import (
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrTooPrecise      = errors.New("amount has more decimals than the currency allows")
)

// Currency identifies an ISO 4217 currency and the number of decimal places
// of its minor unit (2 for INR and USD, 0 for JPY).
type Currency struct {
	Code     string
	Exponent int
}

// LookupCurrency resolves a currency code against the go-money ISO table.
func LookupCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c := gomoney.GetCurrency(code)
	if c == nil {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return Currency{Code: c.Code, Exponent: c.Fraction}, nil
}

// MustCurrency is LookupCurrency for codes known at compile time.
func MustCurrency(code string) Currency {
	c, err := LookupCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Amount is a monetary value in minor units of some currency.
type Amount int64

// FromDecimal converts a major-unit value into minor units, rounding half
// away from zero at the currency's exponent.
func FromDecimal(d decimal.Decimal, cur Currency) Amount {
	return Amount(d.Shift(int32(cur.Exponent)).Round(0).IntPart())
}

// ParseExact is FromDecimal for user-entered values: it refuses to round.
func ParseExact(d decimal.Decimal, cur Currency) (Amount, error) {
	shifted := d.Shift(int32(cur.Exponent))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s %s", ErrTooPrecise, d.String(), cur.Code)
	}
	return Amount(shifted.IntPart()), nil
}

// FromFloat converts a float major-unit value. Only for callers that were
// handed floats; the conversion happens once, at the boundary.
func FromFloat(f float64, cur Currency) Amount {
	return FromDecimal(decimal.NewFromFloat(f), cur)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal(cur Currency) decimal.Decimal {
	return decimal.New(int64(a), -int32(cur.Exponent))
}

// Format renders the amount with the currency's symbol and separators.
// Codes outside the ISO table are printed as "12.50 XYZ".
func (a Amount) Format(cur Currency) string {
	if gomoney.GetCurrency(cur.Code) == nil {
		return a.Decimal(cur).StringFixed(int32(cur.Exponent)) + " " + cur.Code
	}
	return gomoney.New(int64(a), cur.Code).Display()
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Within reports whether a and b differ by at most tol.
func Within(a, b, tol Amount) bool {
	return (a - b).Abs() <= tol
}
