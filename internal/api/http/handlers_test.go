package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"waterfall-engine/internal/auth"
	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
	"waterfall-engine/internal/waterfall/infrastructure/memory"
)

func TestStatsHandler(t *testing.T) {
	repo := memory.NewRunRepository()
	svc, err := application.NewCalculationService(repo, nil, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := auth.WithIdentity(context.Background(), "tenant-a", auth.RoleOperator, "user-1")
	req := application.CalculationRequest{
		Params: waterfall.BasicParams{
			InvestmentAmount: 10000,
			InvestmentPeriod: 3,
			HurdleRate:       8,
			ManagementCarry:  20,
		},
		CashFlows: []float64{4000, 4000, 4000},
		Mode:      string(waterfall.ModeFlatPriorityRepayment),
	}
	if _, err := svc.Calculate(ctx, req); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	handler := NewStatsHandler(svc)
	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil).WithContext(ctx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httpReq)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		TotalRuns int `json:"total_runs"`
		Modes     []struct {
			Mode string `json:"mode"`
			Runs int    `json:"runs"`
		} `json:"modes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalRuns != 1 {
		t.Fatalf("expected 1 total run, got %d", body.TotalRuns)
	}
	if len(body.Modes) != 5 {
		t.Fatalf("expected 5 modes, got %d", len(body.Modes))
	}
}

func TestStatsHandler_MethodNotAllowed(t *testing.T) {
	repo := memory.NewRunRepository()
	svc, err := application.NewCalculationService(repo, nil, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler := NewStatsHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stats", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}
