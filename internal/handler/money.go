package handler

import "github.com/shopspring/decimal"

// money renders a decimal amount as a JSON number with exactly two
// fractional digits. Amounts never pass through float64 on the way out.
type money struct {
	decimal.Decimal
}

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
