package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"waterfall-engine/internal/auth"
	"waterfall-engine/internal/eventing"
	"waterfall-engine/internal/observability/metrics"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

// CalculationRequest is the raw run request before mode parsing.
type CalculationRequest struct {
	Params     waterfall.BasicParams `json:"params"`
	CashFlows  []float64             `json:"cash_flows"`
	Mode       string                `json:"mode"`
	ModeParams waterfall.ModeParams  `json:"mode_params"`
}

// CalculationService runs waterfalls, persists the runs, and publishes
// completion events.
type CalculationService struct {
	repo     RunRepository
	engine   *waterfall.Engine
	bus      eventing.Bus
	logger   *log.Logger
	tenantID string
}

// NewCalculationService constructs a service.
func NewCalculationService(repo RunRepository, bus eventing.Bus, logger *log.Logger, tenantID string) (*CalculationService, error) {
	if repo == nil {
		return nil, errors.New("calculation service: nil repo")
	}
	if tenantID == "" {
		return nil, errors.New("calculation service: empty tenant id")
	}
	return &CalculationService{
		repo:     repo,
		engine:   waterfall.NewEngine(),
		bus:      bus,
		logger:   logger,
		tenantID: tenantID,
	}, nil
}

// Calculate runs the waterfall, persists the run under the caller's tenant,
// and publishes CalculationCompleted. Configuration errors fail before
// anything is stored.
func (s *CalculationService) Calculate(ctx context.Context, req CalculationRequest) (*CalculationRun, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCalculation(req.Mode, result, time.Since(start))
	}()

	calcResult, err := s.Compute(req)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if !calcResult.Metrics.IRRConverged {
		metrics.IncIRRNonConverged()
		if s.logger != nil {
			s.logger.Printf("irr solver did not converge mode=%s amount=%.2f", req.Mode, req.Params.InvestmentAmount)
		}
	}

	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}
	now := time.Now().UTC()
	run := &CalculationRun{
		ID:         buildRunID(tenantID, req, now),
		TenantID:   tenantID,
		Mode:       calcResult.Mode,
		Params:     req.Params,
		ModeParams: req.ModeParams,
		CashFlows:  req.CashFlows,
		Result:     calcResult,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, run); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if s.bus != nil {
		event := CalculationCompleted{
			RunID:        run.ID,
			TenantID:     run.TenantID,
			Mode:         run.Mode,
			IRR:          calcResult.Metrics.IRR,
			IRRConverged: calcResult.Metrics.IRRConverged,
			CompletedAt:  now,
		}
		if err := s.bus.Publish(ctx, event); err != nil && s.logger != nil {
			s.logger.Printf("publish calculation event: %v", err)
		}
	}
	return run, nil
}

// Compute runs the waterfall and assembles the result without persisting
// anything. The replay verifier uses this path to re-derive stored runs.
func (s *CalculationService) Compute(req CalculationRequest) (*CalculationResult, error) {
	mode, err := waterfall.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	input := waterfall.RunInput{
		Params:     req.Params,
		CashFlows:  req.CashFlows,
		Mode:       mode,
		ModeParams: req.ModeParams,
	}
	output, err := s.engine.Run(input)
	if err != nil {
		return nil, err
	}
	return AssembleResult(input, output), nil
}

// Get returns a stored run, enforcing tenant ownership.
func (s *CalculationService) Get(ctx context.Context, id string) (*CalculationRun, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, auth.ErrNotFound
	}
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}
	if tenantID != "" && run.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return run, nil
}

// List returns the caller tenant's runs, newest first.
func (s *CalculationService) List(ctx context.Context, limit int) ([]CalculationRun, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, tenantID, limit)
}

// Stats returns the run count per mode for the caller's tenant.
func (s *CalculationService) Stats(ctx context.Context) (map[string]int, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}
	return s.repo.CountByMode(ctx, tenantID)
}

func buildRunID(tenantID string, req CalculationRequest, at time.Time) string {
	payload, _ := json.Marshal(req)
	base := tenantID + "|" + req.Mode + "|" + strconv.FormatInt(at.UnixNano(), 10) + "|" + string(payload)
	hash := sha256.Sum256([]byte(base))
	return "run-" + hex.EncodeToString(hash[:8])
}
