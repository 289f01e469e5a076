package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

// RunRepository persists calculation runs. Inputs and the assembled result
// are stored as JSON columns so a run can be replayed exactly as submitted.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository constructs a repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run.
func (r *RunRepository) Create(ctx context.Context, run *application.CalculationRun) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	if run == nil {
		return errors.New("run repo: nil run")
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return err
	}
	modeParams, err := json.Marshal(run.ModeParams)
	if err != nil {
		return err
	}
	cashFlows, err := json.Marshal(run.CashFlows)
	if err != nil {
		return err
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO calculation_runs (
	id, tenant_id, mode, params, mode_params, cash_flows, result, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		run.ID, run.TenantID, string(run.Mode), params, modeParams, cashFlows, result, run.CreatedAt)
	return err
}

// GetByID fetches a run, nil when absent.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*application.CalculationRun, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, mode, params, mode_params, cash_flows, result, created_at
FROM calculation_runs
WHERE id = $1
LIMIT 1`, id)
	return scanRun(row)
}

// List returns a tenant's runs, newest first.
func (r *RunRepository) List(ctx context.Context, tenantID string, limit int) ([]application.CalculationRun, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, mode, params, mode_params, cash_flows, result, created_at
FROM calculation_runs
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []application.CalculationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, *run)
		}
	}
	return runs, rows.Err()
}

// CountByMode returns run counts grouped by mode.
func (r *RunRepository) CountByMode(ctx context.Context, tenantID string) (map[string]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT mode, COUNT(*)
FROM calculation_runs
WHERE tenant_id = $1
GROUP BY mode`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var mode string
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			return nil, err
		}
		counts[mode] = count
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*application.CalculationRun, error) {
	var run application.CalculationRun
	var mode string
	var params, modeParams, cashFlows, result []byte
	err := row.Scan(&run.ID, &run.TenantID, &mode, &params, &modeParams, &cashFlows, &result, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Mode = waterfall.Mode(mode)
	if err := json.Unmarshal(params, &run.Params); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(modeParams, &run.ModeParams); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cashFlows, &run.CashFlows); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		run.Result = &application.CalculationResult{}
		if err := json.Unmarshal(result, run.Result); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
