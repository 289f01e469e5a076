package application

import (
	"waterfall-engine/internal/finmath"
	"waterfall-engine/internal/payback"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

// CoreMetrics are the headline figures of one calculation run. IRR is a
// percentage rounded to two decimals; it is reported even when the solver
// did not converge, flagged by IRRConverged. Payback years are nil when the
// investment is never recovered within the horizon.
type CoreMetrics struct {
	IRR                 float64  `json:"irr"`
	IRRConverged        bool     `json:"irr_converged"`
	DPI                 float64  `json:"dpi"`
	StaticPaybackYears  *float64 `json:"static_payback_years"`
	DynamicPaybackYears *float64 `json:"dynamic_payback_years"`
}

// CalculationResult is the assembled output of one run: headline metrics,
// the period ledger with its mode-specific schema, per-column totals over
// the additive columns, and the remaining-principal series.
type CalculationResult struct {
	Mode               waterfall.Mode           `json:"mode"`
	ModeLabel          string                   `json:"mode_label"`
	Metrics            CoreMetrics              `json:"metrics"`
	Structure          *waterfall.StructureInfo `json:"structure,omitempty"`
	Schema             []waterfall.Column       `json:"schema"`
	Ledger             []waterfall.LedgerRow    `json:"ledger"`
	Totals             map[string]float64       `json:"totals"`
	RemainingPrincipal []float64                `json:"remaining_principal"`
}

// AssembleResult derives the full calculation result from the engine output.
// The IRR is solved over the annualized flow series (the investment as a
// negative flow at year zero, one net flow per year after); the dynamic
// payback discounts at whatever rate the solver settled on.
func AssembleResult(input waterfall.RunInput, output *waterfall.RunOutput) *CalculationResult {
	flows := finmath.AnnualFlows(input.Params.InvestmentAmount, input.CashFlows)
	irr := finmath.ComputeIRR(flows, finmath.DefaultSolverOptions())

	analysis := payback.Analyze(input.Params.InvestmentAmount, input.CashFlows, irr.Rate)

	var distributed float64
	for _, flow := range input.CashFlows {
		if flow > 0 {
			distributed += flow
		}
	}

	metrics := CoreMetrics{
		IRR:          finmath.Round2(irr.Rate * 100),
		IRRConverged: irr.Converged,
		DPI:          finmath.Round2(finmath.DPI(distributed, input.Params.InvestmentAmount)),
	}
	if analysis.Static.Recovered {
		years := finmath.Round2(analysis.Static.Years)
		metrics.StaticPaybackYears = &years
	}
	if analysis.Dynamic.Recovered {
		years := finmath.Round2(analysis.Dynamic.Years)
		metrics.DynamicPaybackYears = &years
	}

	return &CalculationResult{
		Mode:               output.Mode,
		ModeLabel:          output.Mode.Label(),
		Metrics:            metrics,
		Structure:          output.Structure,
		Schema:             output.Schema,
		Ledger:             output.Rows,
		Totals:             sumAdditive(output.Schema, output.Rows),
		RemainingPrincipal: analysis.RemainingPrincipal,
	}
}

// sumAdditive totals the columns whose row-wise sum is meaningful. Rates and
// balance snapshots are skipped.
func sumAdditive(schema []waterfall.Column, rows []waterfall.LedgerRow) map[string]float64 {
	totals := make(map[string]float64)
	for _, column := range schema {
		if !column.Additive {
			continue
		}
		var sum float64
		for _, row := range rows {
			sum += row.Cell(column.Key)
		}
		totals[column.Key] = sum
	}
	return totals
}
