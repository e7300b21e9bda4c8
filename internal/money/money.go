package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices travel as bare JSON numbers, the shape the storefront has always used.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount is a monetary value in the store currency.
type Amount = decimal.Decimal

var Zero = decimal.Zero

// New builds an amount from cents.
func New(cents int64) Amount {
	return decimal.New(cents, -2)
}

func FromInt(v int64) Amount {
	return decimal.NewFromInt(v)
}

// Parse accepts "12.99" style input from flags and forms.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is for literals in seeds and tests.
func MustParse(s string) Amount {
	return decimal.RequireFromString(s)
}

// Round2 rounds half away from zero to cents.
func Round2(a Amount) Amount {
	return a.Round(2)
}

// Format renders "$12.99".
func Format(a Amount) string {
	return "$" + a.StringFixed(2)
}
