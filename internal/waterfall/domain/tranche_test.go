package waterfall

import (
	"math"
	"testing"
)

func TestTranche_RepayPrincipal(t *testing.T) {
	tranche := NewTranche("fund", 10000)
	allocated, remaining := tranche.RepayPrincipal(2000)
	if allocated != 2000 || remaining != 0 {
		t.Fatalf("expected full allocation, got allocated=%f remaining=%f", allocated, remaining)
	}
	if tranche.PrincipalBalance != 8000 {
		t.Fatalf("expected balance 8000, got %f", tranche.PrincipalBalance)
	}

	allocated, remaining = tranche.RepayPrincipal(9000)
	if allocated != 8000 || remaining != 1000 {
		t.Fatalf("expected capped allocation, got allocated=%f remaining=%f", allocated, remaining)
	}
	if !tranche.Retired() {
		t.Fatalf("expected tranche retired, balance %f", tranche.PrincipalBalance)
	}

	allocated, remaining = tranche.RepayPrincipal(500)
	if allocated != 0 || remaining != 500 {
		t.Fatalf("retired tranche must pass cash through, got allocated=%f remaining=%f", allocated, remaining)
	}
}

func TestTranche_HurdleAccrualAndDistribution(t *testing.T) {
	tranche := NewTranche("fund", 10000)
	if accrued := tranche.AccrueHurdle(0.08); accrued != 800 {
		t.Fatalf("expected 800 accrued, got %f", accrued)
	}
	// Accrual is simple on the beginning balance: repaying later in the
	// period must not change what was already accrued.
	tranche.RepayPrincipal(10000)
	if tranche.AccruedHurdle != 800 {
		t.Fatalf("expected accrued 800 after repayment, got %f", tranche.AccruedHurdle)
	}
	if accrued := tranche.AccrueHurdle(0.08); accrued != 0 {
		t.Fatalf("retired tranche must not accrue, got %f", accrued)
	}

	allocated, remaining := tranche.DistributeHurdle(500)
	if allocated != 500 || remaining != 0 {
		t.Fatalf("expected partial hurdle payment, got allocated=%f remaining=%f", allocated, remaining)
	}
	allocated, remaining = tranche.DistributeHurdle(1000)
	if allocated != 300 || remaining != 700 {
		t.Fatalf("expected residual hurdle payment, got allocated=%f remaining=%f", allocated, remaining)
	}
	if !tranche.HurdleCurrent() {
		t.Fatalf("expected hurdle current, got %f", tranche.AccruedHurdle)
	}
}

func TestTranche_PayPeriodicReturn(t *testing.T) {
	tranche := NewTranche("senior", 7000)
	allocated, remaining := tranche.PayPeriodicReturn(3000, 0.08)
	if math.Abs(allocated-560) > 1e-9 || math.Abs(remaining-2440) > 1e-9 {
		t.Fatalf("expected 560/2440, got %f/%f", allocated, remaining)
	}
	// Shortfall is not carried forward.
	allocated, _ = tranche.PayPeriodicReturn(100, 0.08)
	if allocated != 100 {
		t.Fatalf("expected cash-capped return, got %f", allocated)
	}
	if tranche.AccruedHurdle != 0 {
		t.Fatalf("periodic return must not accrue, got %f", tranche.AccruedHurdle)
	}
}

func TestSplitCarry(t *testing.T) {
	gp, lp := SplitCarry(1000, 0.20)
	if gp != 200 || lp != 800 {
		t.Fatalf("expected 200/800, got %f/%f", gp, lp)
	}
	gp, lp = SplitCarry(-50, 0.20)
	if gp != 0 || lp != 0 {
		t.Fatalf("expected zero split on non-positive cash, got %f/%f", gp, lp)
	}
}

func TestSplitByRatios(t *testing.T) {
	parts := SplitByRatios(10000, 0.5, 0.3, 0.2)
	if parts[0] != 5000 || parts[1] != 3000 || parts[2] != 2000 {
		t.Fatalf("unexpected split: %v", parts)
	}
}
