// Package payback derives payback periods and the remaining-principal series
// from a fund's net cash flow stream.
package payback

import "math"

// Result reports a payback period in fractional years. Recovered is false
// when the cumulative flow never turns non-negative within the horizon, in
// which case Years is zero and must not be interpreted as a date.
type Result struct {
	Years     float64
	Recovered bool
}

// Analysis bundles the payback figures for one calculation run.
type Analysis struct {
	Static  Result
	Dynamic Result
	// RemainingPrincipal[t] = investment - cumulative net flow through year
	// t+1. Derived from the same accumulation as the static payback so the
	// two always agree; the series may go negative after full recovery.
	RemainingPrincipal []float64
}

// Analyze computes static and dynamic payback for an initial investment
// followed by one net flow per year. discountRate is the IRR used for the
// dynamic figure; when the IRR solver did not converge the degraded rate is
// used as-is, so dynamic payback inherits its best-effort quality.
func Analyze(investment float64, periodFlows []float64, discountRate float64) Analysis {
	static, remaining := accumulate(investment, periodFlows, identityDiscount)
	dynamic, _ := accumulate(investment, periodFlows, func(flow float64, year int) float64 {
		return flow / math.Pow(1+discountRate, float64(year))
	})
	return Analysis{Static: static, Dynamic: dynamic, RemainingPrincipal: remaining}
}

func identityDiscount(flow float64, _ int) float64 { return flow }

// accumulate walks the cumulative flow starting at -investment and finds the
// first year it turns non-negative, interpolating linearly inside that year.
func accumulate(investment float64, periodFlows []float64, discount func(float64, int) float64) (Result, []float64) {
	cumulative := -investment
	remaining := make([]float64, len(periodFlows))

	var result Result
	if cumulative >= 0 {
		result = Result{Years: 0, Recovered: true}
	}
	for i, flow := range periodFlows {
		year := i + 1
		discounted := discount(flow, year)
		before := cumulative
		cumulative += discounted
		remaining[i] = -cumulative

		if !result.Recovered && cumulative >= 0 {
			years := float64(year)
			if discounted > 0 && before < 0 {
				years = float64(year-1) + (-before)/discounted
			}
			result = Result{Years: years, Recovered: true}
		}
	}
	return result, remaining
}
