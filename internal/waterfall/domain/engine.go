package waterfall

import "fmt"

// RunInput is the validated bundle a single run operates on.
type RunInput struct {
	Params     BasicParams
	CashFlows  []float64
	Mode       Mode
	ModeParams ModeParams
}

// RunOutput is the ledger the engine produced for one run, together with the
// mode's column schema and (for structured modes) the tranche split.
type RunOutput struct {
	Mode      Mode
	Schema    []Column
	Rows      []LedgerRow
	Structure *StructureInfo
}

// Engine runs the distribution waterfall. It holds no state of its own:
// every run allocates fresh tranche state, so concurrent runs never share
// mutable data.
type Engine struct{}

// NewEngine constructs an engine.
func NewEngine() *Engine { return &Engine{} }

// Run validates the configuration, then allocates each period's cash through
// the mode's tier pipeline, carrying tranche state forward between periods.
// Configuration errors fail the run before any period is processed; no
// partial ledger is ever returned.
func (e *Engine) Run(input RunInput) (*RunOutput, error) {
	if err := input.Params.Validate(); err != nil {
		return nil, err
	}
	if err := input.Params.ValidateCashFlows(input.CashFlows); err != nil {
		return nil, err
	}
	pipe, err := newPipeline(input)
	if err != nil {
		return nil, err
	}

	rows := make([]LedgerRow, 0, len(input.CashFlows))
	for i, cash := range input.CashFlows {
		row := pipe.processPeriod(i+1, cash)
		if err := checkBalances(pipe, i+1); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &RunOutput{
		Mode:      input.Mode,
		Schema:    pipe.schema(),
		Rows:      rows,
		Structure: pipe.structure(),
	}, nil
}

// checkBalances defends the non-negativity invariant against engine defects.
func checkBalances(pipe pipeline, period int) error {
	for _, tranche := range pipe.tranches() {
		if tranche.PrincipalBalance < 0 {
			return fmt.Errorf("%w: %s principal %f in period %d",
				ErrBalanceInvariant, tranche.Name, tranche.PrincipalBalance, period)
		}
		if tranche.AccruedHurdle < 0 {
			return fmt.Errorf("%w: %s accrued hurdle %f in period %d",
				ErrBalanceInvariant, tranche.Name, tranche.AccruedHurdle, period)
		}
	}
	return nil
}
