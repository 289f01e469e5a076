package application

import (
	"context"
	"time"

	waterfall "waterfall-engine/internal/waterfall/domain"
)

// CalculationRun is a persisted calculation: the exact inputs it was run
// with plus the assembled result. Inputs are stored so the run can be
// replayed bit-for-bit later.
type CalculationRun struct {
	ID         string               `json:"id"`
	TenantID   string               `json:"tenant_id"`
	Mode       waterfall.Mode       `json:"mode"`
	Params     waterfall.BasicParams `json:"params"`
	ModeParams waterfall.ModeParams `json:"mode_params"`
	CashFlows  []float64            `json:"cash_flows"`
	Result     *CalculationResult   `json:"result"`
	CreatedAt  time.Time            `json:"created_at"`
}

// RunRepository stores calculation runs.
type RunRepository interface {
	Create(ctx context.Context, run *CalculationRun) error
	GetByID(ctx context.Context, id string) (*CalculationRun, error)
	List(ctx context.Context, tenantID string, limit int) ([]CalculationRun, error)
	CountByMode(ctx context.Context, tenantID string) (map[string]int, error)
}
