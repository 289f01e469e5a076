package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"waterfall-engine/internal/waterfall/application"
)

// RunRepository is an in-memory repository for calculation runs.
type RunRepository struct {
	mu   sync.RWMutex
	data map[string]application.CalculationRun
}

// NewRunRepository constructs a repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{data: make(map[string]application.CalculationRun)}
}

// Create stores a run.
func (r *RunRepository) Create(ctx context.Context, run *application.CalculationRun) error {
	_ = ctx
	if run == nil {
		return errors.New("run repo: nil run")
	}
	if run.ID == "" {
		return errors.New("run repo: empty id")
	}
	r.mu.Lock()
	r.data[run.ID] = *run
	r.mu.Unlock()
	return nil
}

// GetByID returns a run, nil when absent.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*application.CalculationRun, error) {
	_ = ctx
	r.mu.RLock()
	run, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// List returns a tenant's runs, newest first.
func (r *RunRepository) List(ctx context.Context, tenantID string, limit int) ([]application.CalculationRun, error) {
	_ = ctx
	r.mu.RLock()
	runs := make([]application.CalculationRun, 0, len(r.data))
	for _, run := range r.data {
		if run.TenantID == tenantID {
			runs = append(runs, run)
		}
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// CountByMode returns run counts grouped by mode.
func (r *RunRepository) CountByMode(ctx context.Context, tenantID string) (map[string]int, error) {
	_ = ctx
	counts := make(map[string]int)
	r.mu.RLock()
	for _, run := range r.data {
		if run.TenantID == tenantID {
			counts[string(run.Mode)]++
		}
	}
	r.mu.RUnlock()
	return counts, nil
}
