package finmath

import "math"

// SafeRatio divides numerator by denominator, returning 0 when the
// denominator is zero. This is the single zero-denominator policy for all
// report-formatting ratios; it must not be used for trust-critical balances.
func SafeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// DPI is distributions-to-paid-in: cumulative distributions over cumulative
// invested capital.
func DPI(totalDistributions, totalInvestment float64) float64 {
	return SafeRatio(totalDistributions, totalInvestment)
}

// AnnualizedReturn is the geometric per-year return between two values.
// Zero or negative inputs yield 0.
func AnnualizedReturn(startValue, endValue, years float64) float64 {
	if startValue <= 0 || endValue <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(endValue/startValue, 1/years) - 1
}

// Round2 rounds to two decimal places for presentation values.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
