package core

import "github.com/shopspring/decimal"

// RoundStep returns the largest multiple of step that does not exceed value.
// Truncation, never rounding up.
func RoundStep(value, step decimal.Decimal) decimal.Decimal {
	if step.Cmp(decimal.Zero) <= 0 {
		return value
	}
	return value.Div(step).Floor().Mul(step)
}

// FormatQuantity renders qty as an exchange-compliant quantity string for the
// given lot-size step: the result is a multiple of step, never exceeds qty,
// and carries no trailing zeros or exponent notation. A non-positive step
// means the symbol has no lot-size filter and qty passes through unrounded.
func FormatQuantity(qty, step decimal.Decimal) string {
	return RoundStep(qty, step).String()
}
