package application

import (
	"time"

	waterfall "waterfall-engine/internal/waterfall/domain"
)

// CalculationCompleted is published after a run is persisted.
type CalculationCompleted struct {
	RunID        string
	TenantID     string
	Mode         waterfall.Mode
	IRR          float64
	IRRConverged bool
	CompletedAt  time.Time
}
