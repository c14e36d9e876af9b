package metrics

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "platerline_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	simulationCalculateTotal   *prometheus.CounterVec
	simulationCalculateLatency *prometheus.HistogramVec
	simulationRunTotal         *prometheus.CounterVec
	simulationRunLatency       *prometheus.HistogramVec

	resultExportTotal   *prometheus.CounterVec
	resultExportLatency *prometheus.HistogramVec

	documentUploads *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		simulationCalculateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulation_calculate_total",
				Help: "Total throughput calculations by result",
			},
			[]string{"result"},
		)
		simulationCalculateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "simulation_calculate_latency_seconds",
				Help:    "Throughput calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		simulationRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulation_run_total",
				Help: "Total persisted simulation runs by result",
			},
			[]string{"result"},
		)
		simulationRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "simulation_run_latency_seconds",
				Help:    "Persisted simulation run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		resultExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "result_export_total",
				Help: "Total simulation result exports by format and result",
			},
			[]string{"format", "result"},
		)
		resultExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "result_export_latency_seconds",
				Help:    "Simulation result export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		documentUploads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_uploads_total",
				Help: "Total project document uploads by kind",
			},
			[]string{"kind"},
		)

		prometheus.MustRegister(
			simulationCalculateTotal,
			simulationCalculateLatency,
			simulationRunTotal,
			simulationRunLatency,
			resultExportTotal,
			resultExportLatency,
			documentUploads,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveSimulationCalculate records calculation latency and result.
func ObserveSimulationCalculate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if simulationCalculateTotal != nil {
		simulationCalculateTotal.WithLabelValues(result).Inc()
	}
	if simulationCalculateLatency != nil {
		simulationCalculateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveSimulationRun records persisted run latency and result.
func ObserveSimulationRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if simulationRunTotal != nil {
		simulationRunTotal.WithLabelValues(result).Inc()
	}
	if simulationRunLatency != nil {
		simulationRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveResultExport records export latency and result.
func ObserveResultExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if resultExportTotal != nil {
		resultExportTotal.WithLabelValues(format, result).Inc()
	}
	if resultExportLatency != nil {
		resultExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncDocumentUpload increments the upload counter for a document kind.
func IncDocumentUpload(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	if documentUploads != nil {
		documentUploads.WithLabelValues(kind).Inc()
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	storedResults := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "simulation_results_stored",
			Help: "Number of stored simulation results",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			var count float64
			if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM simulation_results").Scan(&count); err != nil {
				if logger != nil {
					logger.Printf("db metrics query error: %v", err)
				}
				return 0
			}
			return count
		},
	)
	prometheus.MustRegister(storedResults)
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
