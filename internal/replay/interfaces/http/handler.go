package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"waterfall-engine/internal/auth"
	replayapp "waterfall-engine/internal/replay/application"
)

// Handler provides replay verification APIs.
type Handler struct {
	runner   *replayapp.Runner
	tenantID string
}

// NewHandler constructs a handler.
func NewHandler(runner *replayapp.Runner, tenantID string) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("replay handler: nil runner")
	}
	return &Handler{runner: runner, tenantID: tenantID}, nil
}

// ServeHTTP routes replay endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/replay/run" && r.Method == http.MethodPost {
		h.handleRun(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		tenantID = h.tenantID
	}
	if tenantID == "" {
		http.Error(w, "tenant required", http.StatusBadRequest)
		return
	}
	summary, err := h.runner.Run(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "replay failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}
