package application_test

import (
	"math"
	"testing"

	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

func runEngine(t *testing.T, input waterfall.RunInput) *waterfall.RunOutput {
	t.Helper()
	output, err := waterfall.NewEngine().Run(input)
	if err != nil {
		t.Fatalf("engine run: %v", err)
	}
	return output
}

func TestAssembleResult_TotalsMatchRowSums(t *testing.T) {
	input := waterfall.RunInput{
		Params: waterfall.BasicParams{
			InvestmentAmount: 10000,
			InvestmentPeriod: 4,
			HurdleRate:       8,
			ManagementCarry:  20,
		},
		CashFlows: []float64{3000, 3000, 3000, 4000},
		Mode:      waterfall.ModeStructuredSeniorSubordinate,
		ModeParams: waterfall.ModeParams{
			SeniorRatio: 70,
		},
	}
	output := runEngine(t, input)
	result := application.AssembleResult(input, output)

	for _, column := range result.Schema {
		var sum float64
		for _, row := range result.Ledger {
			sum += row.Cell(column.Key)
		}
		total, ok := result.Totals[column.Key]
		if !column.Additive {
			if ok {
				t.Fatalf("non-additive column %q has a total", column.Key)
			}
			continue
		}
		if total != sum {
			t.Fatalf("column %q total %v != row sum %v", column.Key, total, sum)
		}
	}
}

func TestAssembleResult_Metrics(t *testing.T) {
	input := waterfall.RunInput{
		Params: waterfall.BasicParams{
			InvestmentAmount: 10000,
			InvestmentPeriod: 4,
			HurdleRate:       8,
			ManagementCarry:  20,
		},
		CashFlows: []float64{3000, 3000, 3000, 4000},
		Mode:      waterfall.ModeFlatPriorityRepayment,
	}
	output := runEngine(t, input)
	result := application.AssembleResult(input, output)

	if !result.Metrics.IRRConverged {
		t.Fatal("expected converged irr for a recovering series")
	}
	if math.Abs(result.Metrics.DPI-1.3) > 1e-9 {
		t.Fatalf("expected dpi 1.3, got %v", result.Metrics.DPI)
	}
	if result.Metrics.StaticPaybackYears == nil {
		t.Fatal("expected static payback")
	}
	// Cumulative flow crosses zero a third of the way through year 4.
	if math.Abs(*result.Metrics.StaticPaybackYears-3.25) > 1e-9 {
		t.Fatalf("expected static payback 3.25, got %v", *result.Metrics.StaticPaybackYears)
	}
	if len(result.RemainingPrincipal) != 4 {
		t.Fatalf("expected 4 remaining principal entries, got %d", len(result.RemainingPrincipal))
	}
	if math.Abs(result.RemainingPrincipal[0]-7000) > 1e-9 {
		t.Fatalf("expected remaining 7000 after year 1, got %v", result.RemainingPrincipal[0])
	}
	if result.ModeLabel != waterfall.ModeFlatPriorityRepayment.Label() {
		t.Fatalf("unexpected mode label %q", result.ModeLabel)
	}
}
