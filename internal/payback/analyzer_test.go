package payback

import (
	"math"
	"testing"
)

func TestAnalyze_StaticPaybackInterpolated(t *testing.T) {
	flows := []float64{2000, 3000, 2500, 1500, 4000}
	analysis := Analyze(10000, flows, 0)

	if !analysis.Static.Recovered {
		t.Fatalf("expected static payback to be recovered")
	}
	if analysis.Static.Years <= 4 || analysis.Static.Years >= 5 {
		t.Fatalf("expected payback strictly between years 4 and 5, got %f", analysis.Static.Years)
	}
	if math.Abs(analysis.Static.Years-4.25) > 1e-9 {
		t.Fatalf("expected 4.25 years, got %f", analysis.Static.Years)
	}
}

func TestAnalyze_RemainingPrincipalConsistency(t *testing.T) {
	investment := 10000.0
	flows := []float64{2000, 3000, 2500, 1500, 4000}
	analysis := Analyze(investment, flows, 0)

	cumulative := 0.0
	for i, flow := range flows {
		cumulative += flow
		want := investment - cumulative
		if math.Abs(analysis.RemainingPrincipal[i]-want) > 1e-9 {
			t.Fatalf("year %d: expected remaining %f, got %f", i+1, want, analysis.RemainingPrincipal[i])
		}
	}
	// After full recovery the series goes negative rather than clamping.
	if analysis.RemainingPrincipal[4] >= 0 {
		t.Fatalf("expected negative remaining after recovery, got %f", analysis.RemainingPrincipal[4])
	}
}

func TestAnalyze_NotRecovered(t *testing.T) {
	analysis := Analyze(10000, []float64{1000, 1000, 1000}, 0.08)
	if analysis.Static.Recovered {
		t.Fatalf("expected static payback not recovered, got %+v", analysis.Static)
	}
	if analysis.Dynamic.Recovered {
		t.Fatalf("expected dynamic payback not recovered, got %+v", analysis.Dynamic)
	}
}

func TestAnalyze_DynamicLaterThanStatic(t *testing.T) {
	flows := []float64{3000, 3000, 3000, 3000, 3000}
	analysis := Analyze(10000, flows, 0.10)
	if !analysis.Static.Recovered || !analysis.Dynamic.Recovered {
		t.Fatalf("expected both paybacks recovered: %+v", analysis)
	}
	if analysis.Dynamic.Years <= analysis.Static.Years {
		t.Fatalf("expected discounted payback after static: static=%f dynamic=%f",
			analysis.Static.Years, analysis.Dynamic.Years)
	}
}

func TestAnalyze_ZeroInvestment(t *testing.T) {
	analysis := Analyze(0, []float64{100}, 0)
	if !analysis.Static.Recovered || analysis.Static.Years != 0 {
		t.Fatalf("expected immediate recovery, got %+v", analysis.Static)
	}
}
