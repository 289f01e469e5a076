package waterfall

import "fmt"

// StructureInfo describes how the invested principal was split across
// tranches for a structured mode. Ratios are percentages.
type StructureInfo struct {
	SeniorAmount      float64 `json:"senior_amount"`
	SeniorRatio       float64 `json:"senior_ratio"`
	MezzanineAmount   float64 `json:"mezzanine_amount,omitempty"`
	MezzanineRatio    float64 `json:"mezzanine_ratio,omitempty"`
	SubordinateAmount float64 `json:"subordinate_amount"`
	SubordinateRatio  float64 `json:"subordinate_ratio"`
}

func validateRatio(name string, value float64) error {
	if value <= 0 || value >= 100 {
		return fmt.Errorf("%w: %s must be in (0,100), got %v", ErrInvalidModeParam, name, value)
	}
	return nil
}

func validateRate(name string, value float64) error {
	if value <= 0 || value > 100 {
		return fmt.Errorf("%w: %s must be in (0,100], got %v", ErrInvalidModeParam, name, value)
	}
	return nil
}

func trancheColumns(prefix, label string) []Column {
	return []Column{
		{Key: prefix + "_beginning_principal", Label: label + " Beginning Principal", Additive: false},
		{Key: prefix + "_periodic_return", Label: label + " Periodic Return", Additive: true},
		{Key: prefix + "_principal_repayment", Label: label + " Principal Repayment", Additive: true},
	}
}

var carryColumns = []Column{
	{Key: ColCarryLP, Label: "Carry (LP)", Additive: true},
	{Key: ColCarryGP, Label: "Carry (GP)", Additive: true},
}

// seniorSubordinatePipeline: invested principal is split by the senior
// ratio; each period pays the senior return (at the hurdle rate), then
// senior principal, then subordinate principal, then carry. Strict senior
// priority within the period.
type seniorSubordinatePipeline struct {
	senior      *Tranche
	subordinate *Tranche
	investment  float64
	seniorRate  float64
	carryRate   float64
	info        StructureInfo
}

func newSeniorSubordinatePipeline(params BasicParams, modeParams ModeParams, hurdle, carry float64) (*seniorSubordinatePipeline, error) {
	if err := validateRatio("senior_ratio", modeParams.SeniorRatio); err != nil {
		return nil, err
	}
	parts := SplitByRatios(params.InvestmentAmount, modeParams.SeniorRatio/100, 1-modeParams.SeniorRatio/100)
	return &seniorSubordinatePipeline{
		senior:      NewTranche("senior", parts[0]),
		subordinate: NewTranche("subordinate", parts[1]),
		investment:  params.InvestmentAmount,
		seniorRate:  hurdle,
		carryRate:   carry,
		info: StructureInfo{
			SeniorAmount:      parts[0],
			SeniorRatio:       modeParams.SeniorRatio,
			SubordinateAmount: parts[1],
			SubordinateRatio:  100 - modeParams.SeniorRatio,
		},
	}, nil
}

func (p *seniorSubordinatePipeline) schema() []Column {
	cols := append([]Column{}, commonColumns...)
	cols = append(cols, trancheColumns("senior", "Senior")...)
	cols = append(cols,
		Column{Key: ColSubordinateBeginningPrincipal, Label: "Subordinate Beginning Principal", Additive: false},
		Column{Key: ColSubordinatePrincipalRepayment, Label: "Subordinate Principal Repayment", Additive: true},
	)
	return append(cols, carryColumns...)
}

func (p *seniorSubordinatePipeline) structure() *StructureInfo {
	info := p.info
	return &info
}

func (p *seniorSubordinatePipeline) tranches() []*Tranche {
	return []*Tranche{p.senior, p.subordinate}
}

func (p *seniorSubordinatePipeline) processPeriod(period int, cash float64) LedgerRow {
	cells := baseCells(cash, p.investment)
	cells[ColSeniorBeginningPrincipal] = p.senior.PrincipalBalance
	cells[ColSubordinateBeginningPrincipal] = p.subordinate.PrincipalBalance

	remaining := distributableCash(cash)
	cells[ColSeniorPeriodicReturn], remaining = p.senior.PayPeriodicReturn(remaining, p.seniorRate)
	cells[ColSeniorPrincipalRepayment], remaining = p.senior.RepayPrincipal(remaining)
	if p.senior.Retired() {
		cells[ColSubordinatePrincipalRepayment], remaining = p.subordinate.RepayPrincipal(remaining)
	}
	if p.senior.Retired() && p.subordinate.Retired() {
		cells[ColCarryGP], cells[ColCarryLP] = SplitCarry(remaining, p.carryRate)
	}
	return newLedgerRow(period, cells)
}

// mezzaninePipeline: three tranches. Returns are paid senior then mezzanine
// (each at its own rate on its outstanding balance); principal comes back in
// senior, mezzanine, subordinate order.
type mezzaninePipeline struct {
	senior        *Tranche
	mezzanine     *Tranche
	subordinate   *Tranche
	investment    float64
	seniorRate    float64
	mezzanineRate float64
	carryRate     float64
	info          StructureInfo
}

func newMezzaninePipeline(params BasicParams, modeParams ModeParams, hurdle, carry float64) (*mezzaninePipeline, error) {
	if err := validateRatio("senior_ratio", modeParams.SeniorRatio); err != nil {
		return nil, err
	}
	if err := validateRatio("mezzanine_ratio", modeParams.MezzanineRatio); err != nil {
		return nil, err
	}
	if modeParams.SeniorRatio+modeParams.MezzanineRatio >= 100 {
		return nil, fmt.Errorf("%w: senior_ratio + mezzanine_ratio must be below 100, got %v",
			ErrInvalidModeParam, modeParams.SeniorRatio+modeParams.MezzanineRatio)
	}
	if err := validateRate("mezzanine_rate", modeParams.MezzanineRate); err != nil {
		return nil, err
	}
	subordinateRatio := 100 - modeParams.SeniorRatio - modeParams.MezzanineRatio
	parts := SplitByRatios(params.InvestmentAmount,
		modeParams.SeniorRatio/100, modeParams.MezzanineRatio/100, subordinateRatio/100)
	return &mezzaninePipeline{
		senior:        NewTranche("senior", parts[0]),
		mezzanine:     NewTranche("mezzanine", parts[1]),
		subordinate:   NewTranche("subordinate", parts[2]),
		investment:    params.InvestmentAmount,
		seniorRate:    hurdle,
		mezzanineRate: modeParams.MezzanineRate / 100,
		carryRate:     carry,
		info: StructureInfo{
			SeniorAmount:      parts[0],
			SeniorRatio:       modeParams.SeniorRatio,
			MezzanineAmount:   parts[1],
			MezzanineRatio:    modeParams.MezzanineRatio,
			SubordinateAmount: parts[2],
			SubordinateRatio:  subordinateRatio,
		},
	}, nil
}

func (p *mezzaninePipeline) schema() []Column {
	cols := append([]Column{}, commonColumns...)
	cols = append(cols, trancheColumns("senior", "Senior")...)
	cols = append(cols, trancheColumns("mezzanine", "Mezzanine")...)
	cols = append(cols,
		Column{Key: ColSubordinateBeginningPrincipal, Label: "Subordinate Beginning Principal", Additive: false},
		Column{Key: ColSubordinatePrincipalRepayment, Label: "Subordinate Principal Repayment", Additive: true},
	)
	return append(cols, carryColumns...)
}

func (p *mezzaninePipeline) structure() *StructureInfo {
	info := p.info
	return &info
}

func (p *mezzaninePipeline) tranches() []*Tranche {
	return []*Tranche{p.senior, p.mezzanine, p.subordinate}
}

func (p *mezzaninePipeline) processPeriod(period int, cash float64) LedgerRow {
	cells := baseCells(cash, p.investment)
	cells[ColSeniorBeginningPrincipal] = p.senior.PrincipalBalance
	cells[ColMezzanineBeginningPrincipal] = p.mezzanine.PrincipalBalance
	cells[ColSubordinateBeginningPrincipal] = p.subordinate.PrincipalBalance

	remaining := distributableCash(cash)
	cells[ColSeniorPeriodicReturn], remaining = p.senior.PayPeriodicReturn(remaining, p.seniorRate)
	cells[ColMezzaninePeriodicReturn], remaining = p.mezzanine.PayPeriodicReturn(remaining, p.mezzanineRate)
	cells[ColSeniorPrincipalRepayment], remaining = p.senior.RepayPrincipal(remaining)
	if p.senior.Retired() {
		cells[ColMezzaninePrincipalRepayment], remaining = p.mezzanine.RepayPrincipal(remaining)
	}
	if p.senior.Retired() && p.mezzanine.Retired() {
		cells[ColSubordinatePrincipalRepayment], remaining = p.subordinate.RepayPrincipal(remaining)
	}
	if p.senior.Retired() && p.mezzanine.Retired() && p.subordinate.Retired() {
		cells[ColCarryGP], cells[ColCarryLP] = SplitCarry(remaining, p.carryRate)
	}
	return newLedgerRow(period, cells)
}

// interestPrincipalPipeline: both tranches' interest is paid before any
// principal each period (senior interest, subordinate interest, senior
// principal, subordinate principal), then carry.
type interestPrincipalPipeline struct {
	senior          *Tranche
	subordinate     *Tranche
	investment      float64
	seniorRate      float64
	subordinateRate float64
	carryRate       float64
	info            StructureInfo
}

func newInterestPrincipalPipeline(params BasicParams, modeParams ModeParams, hurdle, carry float64) (*interestPrincipalPipeline, error) {
	if err := validateRatio("senior_ratio", modeParams.SeniorRatio); err != nil {
		return nil, err
	}
	if err := validateRate("subordinate_rate", modeParams.SubordinateRate); err != nil {
		return nil, err
	}
	parts := SplitByRatios(params.InvestmentAmount, modeParams.SeniorRatio/100, 1-modeParams.SeniorRatio/100)
	return &interestPrincipalPipeline{
		senior:          NewTranche("senior", parts[0]),
		subordinate:     NewTranche("subordinate", parts[1]),
		investment:      params.InvestmentAmount,
		seniorRate:      hurdle,
		subordinateRate: modeParams.SubordinateRate / 100,
		carryRate:       carry,
		info: StructureInfo{
			SeniorAmount:      parts[0],
			SeniorRatio:       modeParams.SeniorRatio,
			SubordinateAmount: parts[1],
			SubordinateRatio:  100 - modeParams.SeniorRatio,
		},
	}, nil
}

func (p *interestPrincipalPipeline) schema() []Column {
	cols := append([]Column{}, commonColumns...)
	cols = append(cols, trancheColumns("senior", "Senior")...)
	cols = append(cols, trancheColumns("subordinate", "Subordinate")...)
	return append(cols, carryColumns...)
}

func (p *interestPrincipalPipeline) structure() *StructureInfo {
	info := p.info
	return &info
}

func (p *interestPrincipalPipeline) tranches() []*Tranche {
	return []*Tranche{p.senior, p.subordinate}
}

func (p *interestPrincipalPipeline) processPeriod(period int, cash float64) LedgerRow {
	cells := baseCells(cash, p.investment)
	cells[ColSeniorBeginningPrincipal] = p.senior.PrincipalBalance
	cells[ColSubordinateBeginningPrincipal] = p.subordinate.PrincipalBalance

	remaining := distributableCash(cash)
	cells[ColSeniorPeriodicReturn], remaining = p.senior.PayPeriodicReturn(remaining, p.seniorRate)
	cells[ColSubordinatePeriodicReturn], remaining = p.subordinate.PayPeriodicReturn(remaining, p.subordinateRate)
	cells[ColSeniorPrincipalRepayment], remaining = p.senior.RepayPrincipal(remaining)
	if p.senior.Retired() {
		cells[ColSubordinatePrincipalRepayment], remaining = p.subordinate.RepayPrincipal(remaining)
	}
	if p.senior.Retired() && p.subordinate.Retired() {
		cells[ColCarryGP], cells[ColCarryLP] = SplitCarry(remaining, p.carryRate)
	}
	return newLedgerRow(period, cells)
}
