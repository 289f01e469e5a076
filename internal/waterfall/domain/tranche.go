package waterfall

// balanceEpsilon absorbs float drift when deciding whether a balance or an
// accrued obligation has been fully paid down.
const balanceEpsilon = 1e-9

// Tranche is the carried-forward state of one capital-provider class during
// a run. It is owned by the engine for the duration of a single run and is
// never shared across runs.
type Tranche struct {
	Name                  string
	PrincipalBalance      float64
	AccruedHurdle         float64
	CumulativeDistributed float64
}

// NewTranche creates a tranche with its share of the invested principal.
func NewTranche(name string, principal float64) *Tranche {
	return &Tranche{Name: name, PrincipalBalance: principal}
}

// Retired reports whether the principal has been fully repaid.
func (t *Tranche) Retired() bool {
	return t.PrincipalBalance <= balanceEpsilon
}

// HurdleCurrent reports whether there is no outstanding accrued hurdle.
func (t *Tranche) HurdleCurrent() bool {
	return t.AccruedHurdle <= balanceEpsilon
}

// AccrueHurdle adds rate x beginning balance to the outstanding hurdle
// obligation. Simple, non-compounding: computed on the balance as it stands
// at the start of the period, before that period's repayment. Returns the
// amount accrued.
func (t *Tranche) AccrueHurdle(rate float64) float64 {
	if t.Retired() || rate <= 0 {
		return 0
	}
	accrued := t.PrincipalBalance * rate
	t.AccruedHurdle += accrued
	return accrued
}

// RepayPrincipal allocates min(cash, balance) to principal and returns the
// allocation and the cash left for the next tier.
func (t *Tranche) RepayPrincipal(cash float64) (allocated, remaining float64) {
	if cash <= 0 || t.Retired() {
		return 0, cash
	}
	allocated = min(cash, t.PrincipalBalance)
	t.PrincipalBalance -= allocated
	if t.PrincipalBalance < balanceEpsilon {
		t.PrincipalBalance = 0
	}
	t.CumulativeDistributed += allocated
	return allocated, cash - allocated
}

// DistributeHurdle pays down the outstanding accrued hurdle.
func (t *Tranche) DistributeHurdle(cash float64) (allocated, remaining float64) {
	if cash <= 0 || t.HurdleCurrent() {
		return 0, cash
	}
	allocated = min(cash, t.AccruedHurdle)
	t.AccruedHurdle -= allocated
	if t.AccruedHurdle < balanceEpsilon {
		t.AccruedHurdle = 0
	}
	t.CumulativeDistributed += allocated
	return allocated, cash - allocated
}

// PayPeriodicReturn allocates min(cash, balance x rate) as the period's
// return on the outstanding balance. Unlike the hurdle, a shortfall is not
// carried forward.
func (t *Tranche) PayPeriodicReturn(cash, rate float64) (allocated, remaining float64) {
	if cash <= 0 || rate <= 0 || t.Retired() {
		return 0, cash
	}
	allocated = min(cash, t.PrincipalBalance*rate)
	t.CumulativeDistributed += allocated
	return allocated, cash - allocated
}

// SplitCarry divides residual profit between GP and LP once principal and
// hurdle are current. Unbounded by balances.
func SplitCarry(cash, carryRate float64) (gp, lp float64) {
	if cash <= 0 {
		return 0, 0
	}
	gp = cash * carryRate
	return gp, cash - gp
}

// SplitByRatios apportions an amount across tranches proportionally to the
// given ratios (expressed as fractions summing to 1).
func SplitByRatios(amount float64, ratios ...float64) []float64 {
	parts := make([]float64, len(ratios))
	for i, ratio := range ratios {
		parts[i] = amount * ratio
	}
	return parts
}
