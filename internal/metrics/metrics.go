// Package metrics provides the centralized Prometheus registry for the
// research pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "scans_total",
		Help:      "Total number of scan runs by terminal status",
	}, []string{"status"})
	TickersScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "tickers_scanned_total",
		Help:      "Total number of tickers analyzed across all scans",
	})
	TickerErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "ticker_errors_total",
		Help:      "Total number of per-ticker scan failures",
	})
	MemosGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "memos_generated_total",
		Help:      "Total number of investment memos generated",
	}, []string{"analyst"})
	MemosReviewedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "memos_reviewed_total",
		Help:      "Total number of memo reviews by outcome",
	}, []string{"outcome"})
	InvestmentsClosedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "investments_closed_total",
		Help:      "Total number of investments closed",
	})
	LLMFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_scout",
		Name:      "llm_fallbacks_total",
		Help:      "Total number of LLM calls that fell back to the neutral default",
	})
)

// Gauge metrics
var (
	PendingMemos = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_scout",
		Name:      "pending_memos",
		Help:      "Number of memos awaiting review",
	})
	ActiveInvestments = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_scout",
		Name:      "active_investments",
		Help:      "Number of open investments",
	})
	AnalystTotalReturn = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stock_scout",
		Name:      "analyst_total_return_pct",
		Help:      "Cumulative realized return percentage per analyst",
	}, []string{"analyst"})
	AnalystWinRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stock_scout",
		Name:      "analyst_win_rate",
		Help:      "Fraction of closed investments with positive return per analyst",
	}, []string{"analyst"})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_scout",
		Name:      "scan_duration_seconds",
		Help:      "Duration of full scan runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
	})
	TickerAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_scout",
		Name:      "ticker_analysis_duration_seconds",
		Help:      "Duration of single-ticker analysis in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	LLMLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_scout",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM completions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ScansTotal)
		registry.MustRegister(TickersScannedTotal)
		registry.MustRegister(TickerErrorsTotal)
		registry.MustRegister(MemosGeneratedTotal)
		registry.MustRegister(MemosReviewedTotal)
		registry.MustRegister(InvestmentsClosedTotal)
		registry.MustRegister(LLMFallbacksTotal)

		// Register gauge metrics
		registry.MustRegister(PendingMemos)
		registry.MustRegister(ActiveInvestments)
		registry.MustRegister(AnalystTotalReturn)
		registry.MustRegister(AnalystWinRate)

		// Register histogram metrics
		registry.MustRegister(ScanDuration)
		registry.MustRegister(TickerAnalysisDuration)
		registry.MustRegister(LLMLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a finished scan run.
func RecordScan(status string, durationSeconds float64) {
	ScansTotal.WithLabelValues(status).Inc()
	ScanDuration.Observe(durationSeconds)
}

// RecordTickerScanned records one analyzed ticker.
func RecordTickerScanned(durationSeconds float64) {
	TickersScannedTotal.Inc()
	TickerAnalysisDuration.Observe(durationSeconds)
}

// RecordTickerError records a per-ticker scan failure.
func RecordTickerError() {
	TickerErrorsTotal.Inc()
}

// RecordMemoGenerated records a generated memo.
func RecordMemoGenerated(analyst string) {
	MemosGeneratedTotal.WithLabelValues(analyst).Inc()
}

// RecordMemoReviewed records a review outcome ("approved" or
// "rejected").
func RecordMemoReviewed(outcome string) {
	MemosReviewedTotal.WithLabelValues(outcome).Inc()
}

// RecordInvestmentClosed records a closed investment.
func RecordInvestmentClosed() {
	InvestmentsClosedTotal.Inc()
}

// RecordLLMFallback records an LLM call that returned the fallback.
func RecordLLMFallback() {
	LLMFallbacksTotal.Inc()
}

// UpdatePendingMemos updates the pending memo gauge.
func UpdatePendingMemos(count float64) {
	PendingMemos.Set(count)
}

// UpdateActiveInvestments updates the open investment gauge.
func UpdateActiveInvestments(count float64) {
	ActiveInvestments.Set(count)
}

// UpdateAnalystPerformance updates the per-analyst performance gauges.
func UpdateAnalystPerformance(analyst string, totalReturn, winRate float64) {
	AnalystTotalReturn.WithLabelValues(analyst).Set(totalReturn)
	AnalystWinRate.WithLabelValues(analyst).Set(winRate)
}
