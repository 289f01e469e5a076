package waterfall

import "errors"

var (
	// ErrInvalidInvestmentAmount is returned when the amount is not positive.
	ErrInvalidInvestmentAmount = errors.New("waterfall: investment amount must be positive")
	// ErrInvalidInvestmentPeriod is returned when the period is outside 1-30 years.
	ErrInvalidInvestmentPeriod = errors.New("waterfall: investment period must be 1-30 years")
	// ErrInvalidHurdleRate is returned when the hurdle rate is outside 0-100%.
	ErrInvalidHurdleRate = errors.New("waterfall: hurdle rate must be 0-100%")
	// ErrInvalidCarry is returned when management carry is outside 0-100%.
	ErrInvalidCarry = errors.New("waterfall: management carry must be 0-100%")
	// ErrCashFlowLength is returned when the series length differs from the period.
	ErrCashFlowLength = errors.New("waterfall: cash flow series length must equal investment period")
	// ErrUnknownMode is returned for an unrecognized distribution mode.
	ErrUnknownMode = errors.New("waterfall: unknown distribution mode")
	// ErrInvalidModeParam is returned when a mode-specific parameter is
	// missing or out of range for the selected mode.
	ErrInvalidModeParam = errors.New("waterfall: invalid mode parameter")

	// ErrBalanceInvariant indicates the engine produced a negative balance;
	// it is a defect guard, not a configuration problem.
	ErrBalanceInvariant = errors.New("waterfall: balance invariant violated")
)

var configErrors = []error{
	ErrInvalidInvestmentAmount,
	ErrInvalidInvestmentPeriod,
	ErrInvalidHurdleRate,
	ErrInvalidCarry,
	ErrCashFlowLength,
	ErrUnknownMode,
	ErrInvalidModeParam,
}

// IsConfigError reports whether err belongs to the configuration-failure
// family. Configuration errors abort a run before any period is processed.
func IsConfigError(err error) bool {
	for _, sentinel := range configErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

