package finmath

import (
	"math"
	"time"
)

// CashFlow is a single dated flow, positioned by its distance in fractional
// years from the first flow of the series.
type CashFlow struct {
	OffsetYears float64
	Amount      float64
}

// IRRResult is the output of ComputeIRR. Rate is the last iterate even when
// the solver did not converge; callers must check Converged before trusting
// the value.
type IRRResult struct {
	Rate       float64
	Converged  bool
	Iterations int
}

// SolverOptions tunes the Newton-Raphson IRR solver.
type SolverOptions struct {
	Guess         float64
	Tolerance     float64
	MaxIterations int
}

// DefaultSolverOptions returns the standard solver settings.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Guess:         0.1,
		Tolerance:     1e-4,
		MaxIterations: 100,
	}
}

const derivativeFloor = 1e-12

// ComputeIRR solves NPV(rate) = 0 over an irregular flow series using
// Newton-Raphson with the analytic first derivative. Fewer than two flows
// yields a zero, non-converged result. A vanishing derivative halts
// iteration and returns the last iterate.
func ComputeIRR(flows []CashFlow, opts SolverOptions) IRRResult {
	if len(flows) < 2 {
		return IRRResult{}
	}
	if opts.Guess == 0 {
		opts.Guess = DefaultSolverOptions().Guess
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultSolverOptions().Tolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultSolverOptions().MaxIterations
	}

	rate := opts.Guess
	for iter := 0; iter < opts.MaxIterations; iter++ {
		npv := ComputeNPV(flows, rate)
		if math.Abs(npv) < opts.Tolerance {
			return IRRResult{Rate: rate, Converged: true, Iterations: iter + 1}
		}
		derivative := npvDerivative(flows, rate)
		if math.Abs(derivative) < derivativeFloor {
			return IRRResult{Rate: rate, Converged: false, Iterations: iter + 1}
		}
		next := rate - npv/derivative
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return IRRResult{Rate: rate, Converged: false, Iterations: iter + 1}
		}
		rate = next
	}
	return IRRResult{Rate: rate, Converged: false, Iterations: opts.MaxIterations}
}

// ComputeNPV discounts the series at the given rate.
func ComputeNPV(flows []CashFlow, rate float64) float64 {
	var npv float64
	for _, flow := range flows {
		npv += flow.Amount / math.Pow(1+rate, flow.OffsetYears)
	}
	return npv
}

func npvDerivative(flows []CashFlow, rate float64) float64 {
	var derivative float64
	for _, flow := range flows {
		if flow.OffsetYears == 0 {
			continue
		}
		derivative += -flow.OffsetYears * flow.Amount / math.Pow(1+rate, flow.OffsetYears+1)
	}
	return derivative
}

// AnnualFlows builds a flow series from an initial investment at offset zero
// followed by one net flow per year.
func AnnualFlows(initialInvestment float64, periodFlows []float64) []CashFlow {
	flows := make([]CashFlow, 0, len(periodFlows)+1)
	flows = append(flows, CashFlow{OffsetYears: 0, Amount: -initialInvestment})
	for i, amount := range periodFlows {
		flows = append(flows, CashFlow{OffsetYears: float64(i + 1), Amount: amount})
	}
	return flows
}

const daysPerYear = 365.25

// YearsBetween returns the fractional year distance between two instants on
// a 365.25-day year.
func YearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}
