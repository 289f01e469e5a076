package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "waterfall_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	calculationTotal   *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec

	irrNonConverged prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	importTotal *prometheus.CounterVec

	replayTotal   *prometheus.CounterVec
	replayLatency *prometheus.HistogramVec
	replayDrift   prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		calculationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculation_total",
				Help: "Total waterfall calculation runs by mode and result",
			},
			[]string{"mode", "result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Waterfall calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		irrNonConverged = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "irr_nonconverged_total",
				Help: "Total IRR solves that did not reach tolerance",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total result export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Result export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_total",
				Help: "Total input workbook imports by result",
			},
			[]string{"result"},
		)

		replayTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "replay_total",
				Help: "Total replay verification passes by result",
			},
			[]string{"result"},
		)
		replayLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "replay_latency_seconds",
				Help:    "Replay verification latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		replayDrift = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "replay_drift_total",
				Help: "Total replayed runs whose recomputed results drifted",
			},
		)

		prometheus.MustRegister(
			calculationTotal,
			calculationLatency,
			irrNonConverged,
			exportTotal,
			exportLatency,
			importTotal,
			replayTotal,
			replayLatency,
			replayDrift,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveCalculation records one calculation run.
func ObserveCalculation(mode, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if calculationTotal != nil {
		calculationTotal.WithLabelValues(mode, result).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIRRNonConverged counts an IRR solve that missed tolerance.
func IncIRRNonConverged() {
	if irrNonConverged != nil {
		irrNonConverged.Inc()
	}
}

// ObserveExport records one export operation.
func ObserveExport(format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncImport records one workbook import.
func IncImport(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if importTotal != nil {
		importTotal.WithLabelValues(result).Inc()
	}
}

// ObserveReplay records one replay verification pass.
func ObserveReplay(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if replayTotal != nil {
		replayTotal.WithLabelValues(result).Inc()
	}
	if replayLatency != nil {
		replayLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReplayDrift counts a replayed run that no longer matches its stored result.
func IncReplayDrift() {
	if replayDrift != nil {
		replayDrift.Inc()
	}
}
