package apihttp

import (
	"encoding/json"
	"net/http"

	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

// StatsHandler serves run statistics for the caller's tenant.
type StatsHandler struct {
	service *application.CalculationService
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(service *application.CalculationService) *StatsHandler {
	return &StatsHandler{service: service}
}

// ServeHTTP handles GET /api/v1/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	counts, err := h.service.Stats(r.Context())
	if err != nil {
		http.Error(w, "stats query failed", http.StatusInternalServerError)
		return
	}

	type modeCount struct {
		Mode  waterfall.Mode `json:"mode"`
		Label string         `json:"label"`
		Runs  int            `json:"runs"`
	}
	total := 0
	modes := make([]modeCount, 0, len(waterfall.Modes()))
	for _, mode := range waterfall.Modes() {
		runs := counts[string(mode)]
		total += runs
		modes = append(modes, modeCount{Mode: mode, Label: mode.Label(), Runs: runs})
	}

	resp := struct {
		TotalRuns int         `json:"total_runs"`
		Modes     []modeCount `json:"modes"`
	}{TotalRuns: total, Modes: modes}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
