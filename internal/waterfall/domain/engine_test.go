package waterfall

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func baseParams() BasicParams {
	return BasicParams{
		InvestmentTarget: "Test Fund I",
		InvestmentAmount: 10000,
		InvestmentPeriod: 5,
		HurdleRate:       8,
		ManagementCarry:  20,
	}
}

func baseFlows() []float64 {
	return []float64{2000, 3000, 2500, 1500, 4000}
}

func allModeInputs(t *testing.T) map[Mode]RunInput {
	t.Helper()
	params := baseParams()
	flows := baseFlows()
	return map[Mode]RunInput{
		ModeFlatPriorityRepayment: {Params: params, CashFlows: flows, Mode: ModeFlatPriorityRepayment},
		ModeFlatPeriodicDistribution: {
			Params: params, CashFlows: flows, Mode: ModeFlatPeriodicDistribution,
			ModeParams: ModeParams{PeriodicRate: 5},
		},
		ModeStructuredSeniorSubordinate: {
			Params: params, CashFlows: flows, Mode: ModeStructuredSeniorSubordinate,
			ModeParams: ModeParams{SeniorRatio: 70},
		},
		ModeStructuredMezzanine: {
			Params: params, CashFlows: flows, Mode: ModeStructuredMezzanine,
			ModeParams: ModeParams{SeniorRatio: 50, MezzanineRatio: 30, MezzanineRate: 12},
		},
		ModeStructuredInterestPrincipal: {
			Params: params, CashFlows: flows, Mode: ModeStructuredInterestPrincipal,
			ModeParams: ModeParams{SeniorRatio: 70, SubordinateRate: 10},
		},
	}
}

func TestEngine_FlatPriorityRepayment(t *testing.T) {
	engine := NewEngine()
	output, err := engine.Run(allModeInputs(t)[ModeFlatPriorityRepayment])
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(output.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(output.Rows))
	}

	// Principal is repaid in full across the first five flows (total 13000
	// against 10000 invested); no hurdle or carry until year 5.
	wantRepayments := []float64{2000, 3000, 2500, 1500, 1000}
	wantAccruals := []float64{800, 640, 400, 200, 80}
	for i, row := range output.Rows {
		if got := row.Cell(ColPrincipalRepayment); math.Abs(got-wantRepayments[i]) > 1e-9 {
			t.Fatalf("year %d: expected repayment %f, got %f", i+1, wantRepayments[i], got)
		}
		if got := row.Cell(ColAccruedHurdle); math.Abs(got-wantAccruals[i]) > 1e-9 {
			t.Fatalf("year %d: expected accrual %f, got %f", i+1, wantAccruals[i], got)
		}
	}
	final := output.Rows[4]
	if got := final.Cell(ColDistributedHurdle); math.Abs(got-2120) > 1e-9 {
		t.Fatalf("expected 2120 hurdle distributed, got %f", got)
	}
	if gp := final.Cell(ColCarryGP); math.Abs(gp-176) > 1e-9 {
		t.Fatalf("expected GP carry 176, got %f", gp)
	}
	if lp := final.Cell(ColCarryLP); math.Abs(lp-704) > 1e-9 {
		t.Fatalf("expected LP carry 704, got %f", lp)
	}
}

func TestEngine_FlatPeriodicDistribution(t *testing.T) {
	engine := NewEngine()
	output, err := engine.Run(allModeInputs(t)[ModeFlatPeriodicDistribution])
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	first := output.Rows[0]
	// Year 1: 5% periodic return on 10000 off the top, 3% spread accrues,
	// the rest repays principal.
	if got := first.Cell(ColPeriodicDistribution); math.Abs(got-500) > 1e-9 {
		t.Fatalf("expected periodic 500, got %f", got)
	}
	if got := first.Cell(ColAccruedHurdle); math.Abs(got-300) > 1e-9 {
		t.Fatalf("expected spread accrual 300, got %f", got)
	}
	if got := first.Cell(ColPrincipalRepayment); math.Abs(got-1500) > 1e-9 {
		t.Fatalf("expected repayment 1500, got %f", got)
	}
}

func TestEngine_StructuredSeniorSubordinate(t *testing.T) {
	engine := NewEngine()
	input := allModeInputs(t)[ModeStructuredSeniorSubordinate]
	output, err := engine.Run(input)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if output.Structure == nil {
		t.Fatalf("expected structure info")
	}
	if output.Structure.SeniorAmount != 7000 || output.Structure.SubordinateAmount != 3000 {
		t.Fatalf("unexpected tranche split: %+v", output.Structure)
	}

	first := output.Rows[0]
	if got := first.Cell(ColSeniorPeriodicReturn); math.Abs(got-560) > 1e-9 {
		t.Fatalf("expected senior return 560, got %f", got)
	}
	if got := first.Cell(ColSeniorPrincipalRepayment); math.Abs(got-1440) > 1e-9 {
		t.Fatalf("expected senior repayment 1440, got %f", got)
	}
	// Subordinate sees nothing until the senior tranche is retired.
	if got := first.Cell(ColSubordinatePrincipalRepayment); got != 0 {
		t.Fatalf("expected no subordinate repayment in year 1, got %f", got)
	}
}

func TestEngine_StructuredInterestPrincipal(t *testing.T) {
	// Reference figures from a production schedule: 90/10 split, senior at
	// the 8% hurdle, subordinate at 10%.
	params := BasicParams{
		InvestmentTarget: "Reference Fund",
		InvestmentAmount: 15162984,
		InvestmentPeriod: 5,
		HurdleRate:       8,
		ManagementCarry:  20,
	}
	flows := []float64{1549641, 1536728, 1523558, 1703941, 1690238}
	engine := NewEngine()
	output, err := engine.Run(RunInput{
		Params:     params,
		CashFlows:  flows,
		Mode:       ModeStructuredInterestPrincipal,
		ModeParams: ModeParams{SeniorRatio: 90, SubordinateRate: 10},
	})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	first := output.Rows[0]
	if got := first.Cell(ColSeniorPeriodicReturn); math.Abs(got-1091735) > 1 {
		t.Fatalf("expected senior interest ~1091735, got %f", got)
	}
	if got := first.Cell(ColSubordinatePeriodicReturn); math.Abs(got-151630) > 1 {
		t.Fatalf("expected subordinate interest ~151630, got %f", got)
	}
	if got := first.Cell(ColSeniorPrincipalRepayment); math.Abs(got-306276) > 1 {
		t.Fatalf("expected senior repayment ~306276, got %f", got)
	}

	// Beginning balances roll forward by exactly the prior repayment.
	second := output.Rows[1]
	wantBegin := first.Cell(ColSeniorBeginningPrincipal) - first.Cell(ColSeniorPrincipalRepayment)
	if got := second.Cell(ColSeniorBeginningPrincipal); math.Abs(got-wantBegin) > 1e-6 {
		t.Fatalf("expected year 2 senior beginning %f, got %f", wantBegin, got)
	}
}

func TestEngine_InvariantsAcrossModes(t *testing.T) {
	engine := NewEngine()
	for mode, input := range allModeInputs(t) {
		output, err := engine.Run(input)
		if err != nil {
			t.Fatalf("%s: run error: %v", mode, err)
		}
		additive := make(map[string]bool)
		for _, col := range output.Schema {
			if col.Additive && col.Key != ColNetCashFlow && col.Key != ColAccruedHurdle {
				additive[col.Key] = true
			}
		}
		for _, row := range output.Rows {
			var allocated float64
			for key, value := range row.Cells {
				if additive[key] {
					allocated += value
					if value < 0 {
						t.Fatalf("%s period %d: negative allocation %s=%f", mode, row.Period, key, value)
					}
				}
			}
			cash := row.Cell(ColNetCashFlow)
			if cash < 0 {
				cash = 0
			}
			if allocated > cash+1e-6 {
				t.Fatalf("%s period %d: allocated %f exceeds cash %f", mode, row.Period, allocated, cash)
			}
		}
	}
}

func TestEngine_NegativeFlowAllocatesNothing(t *testing.T) {
	params := baseParams()
	flows := []float64{2000, -1500, 2500, 1500, 4000}
	engine := NewEngine()
	output, err := engine.Run(RunInput{Params: params, CashFlows: flows, Mode: ModeFlatPriorityRepayment})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	row := output.Rows[1]
	if got := row.Cell(ColPrincipalRepayment); got != 0 {
		t.Fatalf("expected no repayment on negative flow, got %f", got)
	}
	// The negative flow is not netted against principal: year 3 begins with
	// the same balance year 2 began with.
	if begin2, begin3 := row.Cell(ColBeginningPrincipal), output.Rows[2].Cell(ColBeginningPrincipal); begin2 != begin3 {
		t.Fatalf("expected unchanged balance across negative period, got %f then %f", begin2, begin3)
	}
	// The hurdle still accrues on the outstanding balance.
	if got := row.Cell(ColAccruedHurdle); math.Abs(got-640) > 1e-9 {
		t.Fatalf("expected accrual 640 on negative period, got %f", got)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine()
	for mode, input := range allModeInputs(t) {
		first, err := engine.Run(input)
		if err != nil {
			t.Fatalf("%s: run error: %v", mode, err)
		}
		second, err := engine.Run(input)
		if err != nil {
			t.Fatalf("%s: rerun error: %v", mode, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: expected identical outputs across runs", mode)
		}
	}
}

func TestEngine_FailsFastOnConfiguration(t *testing.T) {
	engine := NewEngine()
	cases := []struct {
		name  string
		input RunInput
		want  error
	}{
		{
			name: "unknown mode",
			input: RunInput{
				Params: baseParams(), CashFlows: baseFlows(), Mode: Mode("pro_rata"),
			},
			want: ErrUnknownMode,
		},
		{
			name: "missing periodic rate",
			input: RunInput{
				Params: baseParams(), CashFlows: baseFlows(), Mode: ModeFlatPeriodicDistribution,
			},
			want: ErrInvalidModeParam,
		},
		{
			name: "missing senior ratio",
			input: RunInput{
				Params: baseParams(), CashFlows: baseFlows(), Mode: ModeStructuredSeniorSubordinate,
			},
			want: ErrInvalidModeParam,
		},
		{
			name: "mezzanine ratios exceed 100",
			input: RunInput{
				Params: baseParams(), CashFlows: baseFlows(), Mode: ModeStructuredMezzanine,
				ModeParams: ModeParams{SeniorRatio: 70, MezzanineRatio: 40, MezzanineRate: 12},
			},
			want: ErrInvalidModeParam,
		},
		{
			name: "cash flow length mismatch",
			input: RunInput{
				Params: baseParams(), CashFlows: []float64{1000}, Mode: ModeFlatPriorityRepayment,
			},
			want: ErrCashFlowLength,
		},
		{
			name: "non-positive investment",
			input: RunInput{
				Params: BasicParams{InvestmentAmount: 0, InvestmentPeriod: 5, HurdleRate: 8, ManagementCarry: 20},
				CashFlows: baseFlows(), Mode: ModeFlatPriorityRepayment,
			},
			want: ErrInvalidInvestmentAmount,
		},
	}
	for _, tc := range cases {
		output, err := engine.Run(tc.input)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if output != nil {
			t.Fatalf("%s: expected no partial ledger", tc.name)
		}
		if !IsConfigError(err) {
			t.Fatalf("%s: expected a configuration error, got %v", tc.name, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range Modes() {
		parsed, err := ParseMode(string(mode))
		if err != nil || parsed != mode {
			t.Fatalf("expected %s to parse, got %v/%v", mode, parsed, err)
		}
	}
	if _, err := ParseMode("waterfall"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}
