package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "waterfall-engine/internal/api/http"
	"waterfall-engine/internal/audit"
	"waterfall-engine/internal/auth"
	"waterfall-engine/internal/eventing"
	"waterfall-engine/internal/observability/metrics"
	replayapp "waterfall-engine/internal/replay/application"
	replayhttp "waterfall-engine/internal/replay/interfaces/http"
	"waterfall-engine/internal/waterfall/application"
	runrepo "waterfall-engine/internal/waterfall/infrastructure/postgres"
	"waterfall-engine/internal/waterfall/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	bus := eventing.NewInMemoryBus()
	bus.Subscribe(eventing.EventTypeOf[application.CalculationCompleted](), func(ctx context.Context, event any) error {
		completed, ok := event.(application.CalculationCompleted)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		logger.Printf("calculation completed: run=%s mode=%s irr=%.2f%% converged=%t",
			completed.RunID, completed.Mode, completed.IRR, completed.IRRConverged)
		return nil
	})

	repo := runrepo.NewRunRepository(db)
	calcService, err := application.NewCalculationService(repo, bus, logger, cfg.TenantID)
	if err != nil {
		logger.Fatalf("calculation service error: %v", err)
	}
	calcHandler, err := interfaces.NewCalculationHandler(calcService, auditRepo)
	if err != nil {
		logger.Fatalf("calculation handler error: %v", err)
	}

	replayCfg, err := replayapp.LoadConfig()
	if err != nil {
		logger.Fatalf("replay config error: %v", err)
	}
	replayRunner, err := replayapp.NewRunner(calcService, repo, replayCfg, logger)
	if err != nil {
		logger.Fatalf("replay runner error: %v", err)
	}
	replayHandler, err := replayhttp.NewHandler(replayRunner, cfg.TenantID)
	if err != nil {
		logger.Fatalf("replay handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/calculations", calcHandler)
	mux.Handle("/api/v1/calculations/", calcHandler)
	mux.Handle("/api/v1/modes", calcHandler)
	mux.Handle("/api/v1/replay/run", replayHandler)
	mux.Handle("/api/v1/stats", apihttp.NewStatsHandler(calcService))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	TenantID    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:    getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
