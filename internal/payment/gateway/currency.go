package gateway

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// SARToHalalas converts a SAR amount to halalas, rounding half away from
// zero so 1.005 SAR becomes 101 and not 100.
func SARToHalalas(sar decimal.Decimal) int64 {
	return sar.Mul(hundred).Round(0).IntPart()
}

// SARFloatToHalalas is the JSON-body variant: request amounts arrive as
// numbers and must go through decimal before any arithmetic.
func SARFloatToHalalas(sar float64) int64 {
	return SARToHalalas(decimal.NewFromFloat(sar))
}

// HalalasToSAR renders halalas as an exact two-decimal SAR amount.
func HalalasToSAR(halalas int64) decimal.Decimal {
	return decimal.NewFromInt(halalas).Div(hundred)
}

// HalalasToUSD converts halalas to USD using the given SAR_USD rate, rounded
// to cents half away from zero.
func HalalasToUSD(halalas int64, rate decimal.Decimal) decimal.Decimal {
	return HalalasToSAR(halalas).Mul(rate).Round(2)
}
