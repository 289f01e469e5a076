package waterfall

// Column keys shared across mode schemas. Structured modes prefix tranche
// columns with the tranche name.
const (
	ColNetCashFlow      = "net_cash_flow"
	ColDistributionRate = "distribution_rate"

	ColBeginningPrincipal   = "beginning_principal"
	ColPrincipalRepayment   = "principal_repayment"
	ColPeriodicDistribution = "periodic_distribution"
	ColAccruedHurdle        = "accrued_hurdle"
	ColDistributedHurdle    = "distributed_hurdle"

	ColSeniorBeginningPrincipal      = "senior_beginning_principal"
	ColSeniorPeriodicReturn          = "senior_periodic_return"
	ColSeniorPrincipalRepayment      = "senior_principal_repayment"
	ColMezzanineBeginningPrincipal   = "mezzanine_beginning_principal"
	ColMezzaninePeriodicReturn       = "mezzanine_periodic_return"
	ColMezzaninePrincipalRepayment   = "mezzanine_principal_repayment"
	ColSubordinateBeginningPrincipal = "subordinate_beginning_principal"
	ColSubordinatePeriodicReturn     = "subordinate_periodic_return"
	ColSubordinatePrincipalRepayment = "subordinate_principal_repayment"

	ColCarryLP = "carry_lp"
	ColCarryGP = "carry_gp"
)

// Column describes one ledger column of the selected mode. Additive columns
// are amounts whose row-wise sum is meaningful; rates and balances are not
// summed.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Additive bool   `json:"additive"`
}

// LedgerRow is the allocation record for one period. Rows are emitted in
// period order and never mutated afterwards.
type LedgerRow struct {
	Period int                `json:"period"`
	Cells  map[string]float64 `json:"cells"`
}

// Cell returns a column value, 0 for columns the mode never fills.
func (r LedgerRow) Cell(key string) float64 {
	return r.Cells[key]
}

func newLedgerRow(period int, cells map[string]float64) LedgerRow {
	return LedgerRow{Period: period, Cells: cells}
}

var commonColumns = []Column{
	{Key: ColNetCashFlow, Label: "Net Cash Flow", Additive: true},
	{Key: ColDistributionRate, Label: "Distribution Rate (%)", Additive: false},
}
