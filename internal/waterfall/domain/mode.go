package waterfall

import "fmt"

// Mode selects which tier pipeline the engine runs. The set is closed: every
// mode maps to exactly one pipeline, chosen once at run start.
type Mode string

const (
	// ModeFlatPriorityRepayment repays principal first, then distributes the
	// accrued hurdle, then splits carry.
	ModeFlatPriorityRepayment Mode = "flat_priority_repayment"
	// ModeFlatPeriodicDistribution pays a periodic return off the top, then
	// follows the priority-repayment order with the residual hurdle.
	ModeFlatPeriodicDistribution Mode = "flat_periodic_distribution"
	// ModeStructuredSeniorSubordinate splits principal into senior and
	// subordinate tranches with strict senior priority.
	ModeStructuredSeniorSubordinate Mode = "structured_senior_subordinate"
	// ModeStructuredMezzanine adds a mezzanine tranche with its own rate
	// between senior and subordinate.
	ModeStructuredMezzanine Mode = "structured_mezzanine"
	// ModeStructuredInterestPrincipal pays both tranches' interest before any
	// principal comes back.
	ModeStructuredInterestPrincipal Mode = "structured_interest_principal"
)

// Modes lists every supported mode in presentation order.
func Modes() []Mode {
	return []Mode{
		ModeFlatPriorityRepayment,
		ModeFlatPeriodicDistribution,
		ModeStructuredSeniorSubordinate,
		ModeStructuredMezzanine,
		ModeStructuredInterestPrincipal,
	}
}

// ParseMode validates a mode string.
func ParseMode(value string) (Mode, error) {
	mode := Mode(value)
	switch mode {
	case ModeFlatPriorityRepayment,
		ModeFlatPeriodicDistribution,
		ModeStructuredSeniorSubordinate,
		ModeStructuredMezzanine,
		ModeStructuredInterestPrincipal:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// Label returns the human-readable mode name used in exports.
func (m Mode) Label() string {
	switch m {
	case ModeFlatPriorityRepayment:
		return "Flat / Priority Repayment"
	case ModeFlatPeriodicDistribution:
		return "Flat / Periodic Distribution"
	case ModeStructuredSeniorSubordinate:
		return "Structured / Senior-Subordinate"
	case ModeStructuredMezzanine:
		return "Structured / Mezzanine"
	case ModeStructuredInterestPrincipal:
		return "Structured / Interest-Principal"
	default:
		return string(m)
	}
}
