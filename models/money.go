package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a decimal pound amount to integer pence, rounding to
// two decimal places first. Every amount sent to the payment gateway goes
// through this one helper.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// Commission is the platform's cut of a line item: price times quantity times
// the configured rate, rounded to two decimal places. Shipping is excluded.
func Commission(price decimal.Decimal, quantity int, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Mul(rate).Round(2)
}
