package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"waterfall-engine/internal/observability/metrics"
	calcapp "waterfall-engine/internal/waterfall/application"
)

// Drift reports one divergence between a stored result and its replay.
type Drift struct {
	RunID  string  `json:"run_id"`
	Field  string  `json:"field"`
	Stored float64 `json:"stored"`
	Replay float64 `json:"replay"`
}

// Summary is the outcome of one replay verification pass.
type Summary struct {
	StartedAt    time.Time `json:"started_at"`
	Checked      int       `json:"checked"`
	Drifted      int       `json:"drifted"`
	ReplayErrors int       `json:"replay_errors"`
	Drifts       []Drift   `json:"drifts"`
}

// Runner replays stored calculation runs against the current engine and
// reports any result drift. Drift means an engine change altered the
// semantics of an already-persisted run.
type Runner struct {
	service *calcapp.CalculationService
	repo    calcapp.RunRepository
	cfg     Config
	logger  *log.Logger
}

// NewRunner constructs a Runner.
func NewRunner(service *calcapp.CalculationService, repo calcapp.RunRepository, cfg Config, logger *log.Logger) (*Runner, error) {
	if service == nil {
		return nil, errors.New("replay runner: nil service")
	}
	if repo == nil {
		return nil, errors.New("replay runner: nil repo")
	}
	return &Runner{service: service, repo: repo, cfg: cfg, logger: logger}, nil
}

// Run replays the tenant's most recent runs and diffs the headline metrics
// and column totals against what was stored.
func (r *Runner) Run(ctx context.Context, tenantID string) (*Summary, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReplay(result, time.Since(start))
	}()

	runs, err := r.repo.List(ctx, tenantID, r.cfg.MaxRuns)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	summary := &Summary{StartedAt: start.UTC(), Drifts: []Drift{}}
	for _, run := range runs {
		if run.Result == nil {
			continue
		}
		summary.Checked++

		replayed, err := r.service.Compute(calcapp.CalculationRequest{
			Params:     run.Params,
			CashFlows:  run.CashFlows,
			Mode:       string(run.Mode),
			ModeParams: run.ModeParams,
		})
		if err != nil {
			summary.ReplayErrors++
			if r.logger != nil {
				r.logger.Printf("replay failed run=%s: %v", run.ID, err)
			}
			continue
		}

		drifts := diffResults(run.ID, run.Result, replayed, r.cfg.Thresholds)
		if len(drifts) > 0 {
			summary.Drifted++
			summary.Drifts = append(summary.Drifts, drifts...)
			metrics.IncReplayDrift()
			if r.logger != nil {
				r.logger.Printf("replay drift run=%s fields=%d", run.ID, len(drifts))
			}
		}
	}
	return summary, nil
}

func diffResults(runID string, stored, replayed *calcapp.CalculationResult, thresholds Thresholds) []Drift {
	var drifts []Drift
	if math.Abs(stored.Metrics.IRR-replayed.Metrics.IRR) > thresholds.IRRAbs {
		drifts = append(drifts, Drift{RunID: runID, Field: "irr", Stored: stored.Metrics.IRR, Replay: replayed.Metrics.IRR})
	}
	if math.Abs(stored.Metrics.DPI-replayed.Metrics.DPI) > thresholds.DPIAbs {
		drifts = append(drifts, Drift{RunID: runID, Field: "dpi", Stored: stored.Metrics.DPI, Replay: replayed.Metrics.DPI})
	}
	for key, storedTotal := range stored.Totals {
		replayTotal := replayed.Totals[key]
		if math.Abs(storedTotal-replayTotal) > thresholds.TotalsAbs {
			drifts = append(drifts, Drift{
				RunID:  runID,
				Field:  fmt.Sprintf("totals.%s", key),
				Stored: storedTotal,
				Replay: replayTotal,
			})
		}
	}
	return drifts
}
