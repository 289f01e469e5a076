package finmath

import (
	"math"
	"testing"
)

func TestSafeRatio_ZeroDenominator(t *testing.T) {
	if got := SafeRatio(100, 0); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := SafeRatio(100, 50); got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}
}

func TestDPI(t *testing.T) {
	if got := DPI(0, 10000); got != 0 {
		t.Fatalf("expected 0 for zero distributions, got %f", got)
	}
	if got := DPI(13000, 0); got != 0 {
		t.Fatalf("expected 0 for zero investment, got %f", got)
	}
	if got := DPI(13000, 10000); math.Abs(got-1.3) > 1e-9 {
		t.Fatalf("expected 1.3, got %f", got)
	}
}

func TestAnnualizedReturn(t *testing.T) {
	got := AnnualizedReturn(1000, 1210, 2)
	if math.Abs(got-0.10) > 1e-9 {
		t.Fatalf("expected 0.10, got %f", got)
	}
	if got := AnnualizedReturn(0, 1210, 2); got != 0 {
		t.Fatalf("expected 0 for zero start, got %f", got)
	}
	if got := AnnualizedReturn(1000, 1210, 0); got != 0 {
		t.Fatalf("expected 0 for zero years, got %f", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(1.005); math.Abs(got-1.0) > 0.01 {
		t.Fatalf("unexpected rounding: %f", got)
	}
	if got := Round2(4.256); got != 4.26 {
		t.Fatalf("expected 4.26, got %f", got)
	}
}
