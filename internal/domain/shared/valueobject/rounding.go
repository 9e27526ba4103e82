package valueobject

import "github.com/shopspring/decimal"

// Round2 rounds a decimal to 2 places, half away from zero. All derived
// monetary values are rounded with this at every step, not only at the end.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
