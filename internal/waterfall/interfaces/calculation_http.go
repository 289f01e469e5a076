package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"waterfall-engine/internal/audit"
	"waterfall-engine/internal/auth"
	"waterfall-engine/internal/observability/metrics"
	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

const maxImportBytes = 8 << 20

// CalculationHandler handles calculation APIs.
type CalculationHandler struct {
	service     *application.CalculationService
	auditLogger audit.Logger
}

// NewCalculationHandler constructs a handler.
func NewCalculationHandler(service *application.CalculationService, auditLogger audit.Logger) (*CalculationHandler, error) {
	if service == nil {
		return nil, errors.New("calculation handler: nil service")
	}
	return &CalculationHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles routes under /api/v1/calculations and /api/v1/modes.
func (h *CalculationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/calculations" && r.Method == http.MethodPost:
		h.handleCalculate(w, r)
	case path == "/api/v1/calculations" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path == "/api/v1/calculations/import" && r.Method == http.MethodPost:
		h.handleImport(w, r)
	case path == "/api/v1/calculations/template.xlsx" && r.Method == http.MethodGet:
		h.handleTemplate(w, r)
	case path == "/api/v1/modes" && r.Method == http.MethodGet:
		h.handleModes(w, r)
	case strings.HasPrefix(path, "/api/v1/calculations/"):
		h.handleByID(w, r, strings.TrimPrefix(path, "/api/v1/calculations/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *CalculationHandler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req application.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	run, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run)
	h.logAudit(r, run, "calculation.run", map[string]any{
		"mode":   string(run.Mode),
		"target": run.Params.InvestmentTarget,
	})
}

func (h *CalculationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	runs, err := h.service.List(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if target := r.URL.Query().Get("target"); target != "" {
		filtered := runs[:0]
		for _, run := range runs {
			if run.Params.InvestmentTarget == target {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}
	if runs == nil {
		runs = []application.CalculationRun{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}

func (h *CalculationHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodGet {
		switch parts[1] {
		case "export.xlsx":
			h.handleExportXLSX(w, r, id)
			return
		case "export.pdf":
			h.handleExportPDF(w, r, id)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *CalculationHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run)
}

func (h *CalculationHandler) handleModes(w http.ResponseWriter, r *http.Request) {
	_ = r
	type modeInfo struct {
		Mode  waterfall.Mode `json:"mode"`
		Label string         `json:"label"`
	}
	modes := make([]modeInfo, 0, len(waterfall.Modes()))
	for _, mode := range waterfall.Modes() {
		modes = append(modes, modeInfo{Mode: mode, Label: mode.Label()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(modes)
}

func (h *CalculationHandler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	_ = r
	data, err := BuildInputTemplateXLSX()
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="calculation_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *CalculationHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.IncImport(result)
	}()

	reader, err := importReader(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := ParseInputWorkbook(reader)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	run, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run)
	h.logAudit(r, run, "calculation.import", map[string]any{
		"mode":   string(run.Mode),
		"target": run.Params.InvestmentTarget,
	})
}

// importReader accepts either a multipart upload under the "file" field or a
// raw workbook body.
func importReader(r *http.Request) (io.Reader, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, errors.New("invalid multipart form")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("missing file field")
		}
		return file, nil
	}
	return io.LimitReader(r.Body, maxImportBytes), nil
}

func (h *CalculationHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := BuildRunXLSX(run)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, run, "calculation.export", map[string]any{"format": "xlsx"})
}

func (h *CalculationHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := BuildRunPDF(run)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, run, "calculation.export", map[string]any{"format": "pdf"})
}

func (h *CalculationHandler) logAudit(r *http.Request, run *application.CalculationRun, action string, meta map[string]any) {
	if h.auditLogger == nil || run == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "calculation_run",
		ResourceID:   run.ID,
		FundID:       run.Params.InvestmentTarget,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, auth.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case waterfall.IsConfigError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
