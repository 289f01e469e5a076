package waterfall

// BasicParams are the fund-level inputs shared by every distribution mode.
// Rates are percentages (8 means 8%). Immutable once a run starts.
type BasicParams struct {
	InvestmentTarget string  `json:"investment_target"`
	InvestmentAmount float64 `json:"investment_amount"`
	InvestmentPeriod int     `json:"investment_period"`
	HurdleRate       float64 `json:"hurdle_rate"`
	ManagementCarry  float64 `json:"management_carry"`
}

// Validate checks the parameter ranges.
func (p BasicParams) Validate() error {
	if p.InvestmentAmount <= 0 {
		return ErrInvalidInvestmentAmount
	}
	if p.InvestmentPeriod < 1 || p.InvestmentPeriod > 30 {
		return ErrInvalidInvestmentPeriod
	}
	if p.HurdleRate < 0 || p.HurdleRate > 100 {
		return ErrInvalidHurdleRate
	}
	if p.ManagementCarry < 0 || p.ManagementCarry > 100 {
		return ErrInvalidCarry
	}
	return nil
}

// ValidateCashFlows checks the series length against the investment period.
// Individual flows may be negative (a mid-life capital call); the engine's
// period policy decides what a negative flow means.
func (p BasicParams) ValidateCashFlows(flows []float64) error {
	if len(flows) != p.InvestmentPeriod {
		return ErrCashFlowLength
	}
	return nil
}

// ModeParams carries the mode-specific scalars. Only the fields the selected
// mode requires are validated; the rest are ignored. Rates and ratios are
// percentages.
type ModeParams struct {
	PeriodicRate    float64 `json:"periodic_rate,omitempty"`
	SeniorRatio     float64 `json:"senior_ratio,omitempty"`
	MezzanineRatio  float64 `json:"mezzanine_ratio,omitempty"`
	MezzanineRate   float64 `json:"mezzanine_rate,omitempty"`
	SubordinateRate float64 `json:"subordinate_rate,omitempty"`
}
