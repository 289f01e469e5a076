package waterfall

import (
	"fmt"

	"waterfall-engine/internal/finmath"
)

// pipeline is the per-mode strategy: it owns the run's tranche state and
// turns one period's cash into one ledger row.
type pipeline interface {
	schema() []Column
	structure() *StructureInfo
	processPeriod(period int, cash float64) LedgerRow
	tranches() []*Tranche
}

func newPipeline(input RunInput) (pipeline, error) {
	params := input.Params
	hurdle := params.HurdleRate / 100
	carry := params.ManagementCarry / 100

	switch input.Mode {
	case ModeFlatPriorityRepayment:
		return &flatPriorityPipeline{
			fund:       NewTranche("fund", params.InvestmentAmount),
			investment: params.InvestmentAmount,
			hurdleRate: hurdle,
			carryRate:  carry,
		}, nil
	case ModeFlatPeriodicDistribution:
		rate := input.ModeParams.PeriodicRate
		if rate <= 0 || rate > 100 {
			return nil, fmt.Errorf("%w: periodic_rate must be in (0,100], got %v", ErrInvalidModeParam, rate)
		}
		return &flatPeriodicPipeline{
			fund:         NewTranche("fund", params.InvestmentAmount),
			investment:   params.InvestmentAmount,
			hurdleRate:   hurdle,
			periodicRate: rate / 100,
			carryRate:    carry,
		}, nil
	case ModeStructuredSeniorSubordinate:
		return newSeniorSubordinatePipeline(params, input.ModeParams, hurdle, carry)
	case ModeStructuredMezzanine:
		return newMezzaninePipeline(params, input.ModeParams, hurdle, carry)
	case ModeStructuredInterestPrincipal:
		return newInterestPrincipalPipeline(params, input.ModeParams, hurdle, carry)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, input.Mode)
	}
}

// distributableCash is the cash entering the tier sequence: negative period
// flows allocate nothing and are not netted against principal balances.
func distributableCash(cash float64) float64 {
	if cash < 0 {
		return 0
	}
	return cash
}

func baseCells(cash, investment float64) map[string]float64 {
	return map[string]float64{
		ColNetCashFlow:      cash,
		ColDistributionRate: finmath.SafeRatio(cash, investment) * 100,
	}
}

// flatPriorityPipeline: repay principal first while the hurdle accrues on
// the outstanding balance, then clear the hurdle, then split carry.
type flatPriorityPipeline struct {
	fund       *Tranche
	investment float64
	hurdleRate float64
	carryRate  float64
}

func (p *flatPriorityPipeline) schema() []Column {
	return append(append([]Column{}, commonColumns...),
		Column{Key: ColBeginningPrincipal, Label: "Beginning Principal", Additive: false},
		Column{Key: ColPrincipalRepayment, Label: "Principal Repayment", Additive: true},
		Column{Key: ColAccruedHurdle, Label: "Hurdle Accrued", Additive: true},
		Column{Key: ColDistributedHurdle, Label: "Hurdle Distributed", Additive: true},
		Column{Key: ColCarryLP, Label: "Carry (LP)", Additive: true},
		Column{Key: ColCarryGP, Label: "Carry (GP)", Additive: true},
	)
}

func (p *flatPriorityPipeline) structure() *StructureInfo { return nil }

func (p *flatPriorityPipeline) tranches() []*Tranche { return []*Tranche{p.fund} }

func (p *flatPriorityPipeline) processPeriod(period int, cash float64) LedgerRow {
	cells := baseCells(cash, p.investment)
	cells[ColBeginningPrincipal] = p.fund.PrincipalBalance

	cells[ColAccruedHurdle] = p.fund.AccrueHurdle(p.hurdleRate)

	remaining := distributableCash(cash)
	cells[ColPrincipalRepayment], remaining = p.fund.RepayPrincipal(remaining)
	if p.fund.Retired() {
		cells[ColDistributedHurdle], remaining = p.fund.DistributeHurdle(remaining)
	}
	if p.fund.Retired() && p.fund.HurdleCurrent() {
		cells[ColCarryGP], cells[ColCarryLP] = SplitCarry(remaining, p.carryRate)
	}
	return newLedgerRow(period, cells)
}

// flatPeriodicPipeline: a periodic return comes off the top each period; the
// hurdle accrues only on the spread above the periodic rate.
type flatPeriodicPipeline struct {
	fund         *Tranche
	investment   float64
	hurdleRate   float64
	periodicRate float64
	carryRate    float64
}

func (p *flatPeriodicPipeline) schema() []Column {
	return append(append([]Column{}, commonColumns...),
		Column{Key: ColBeginningPrincipal, Label: "Beginning Principal", Additive: false},
		Column{Key: ColPeriodicDistribution, Label: "Periodic Distribution", Additive: true},
		Column{Key: ColAccruedHurdle, Label: "Hurdle Accrued", Additive: true},
		Column{Key: ColPrincipalRepayment, Label: "Principal Repayment", Additive: true},
		Column{Key: ColDistributedHurdle, Label: "Hurdle Distributed", Additive: true},
		Column{Key: ColCarryLP, Label: "Carry (LP)", Additive: true},
		Column{Key: ColCarryGP, Label: "Carry (GP)", Additive: true},
	)
}

func (p *flatPeriodicPipeline) structure() *StructureInfo { return nil }

func (p *flatPeriodicPipeline) tranches() []*Tranche { return []*Tranche{p.fund} }

func (p *flatPeriodicPipeline) processPeriod(period int, cash float64) LedgerRow {
	cells := baseCells(cash, p.investment)
	cells[ColBeginningPrincipal] = p.fund.PrincipalBalance

	remaining := distributableCash(cash)
	cells[ColPeriodicDistribution], remaining = p.fund.PayPeriodicReturn(remaining, p.periodicRate)

	if spread := p.hurdleRate - p.periodicRate; spread > 0 {
		cells[ColAccruedHurdle] = p.fund.AccrueHurdle(spread)
	}

	cells[ColPrincipalRepayment], remaining = p.fund.RepayPrincipal(remaining)
	if p.fund.Retired() {
		cells[ColDistributedHurdle], remaining = p.fund.DistributeHurdle(remaining)
	}
	if p.fund.Retired() && p.fund.HurdleCurrent() {
		cells[ColCarryGP], cells[ColCarryLP] = SplitCarry(remaining, p.carryRate)
	}
	return newLedgerRow(period, cells)
}
