// Package stats holds the numeric helpers shared by aggregate responses.
package stats

import "github.com/shopspring/decimal"

const places = 2

// Round2 rounds half away from zero to two decimals.
func Round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Percent returns part/total as a percentage rounded to two decimals, 0 when total is 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), places).
		InexactFloat64()
}

// Average returns sum/count rounded to two decimals, 0 when count is 0.
func Average(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), places).InexactFloat64()
}
