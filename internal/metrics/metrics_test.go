package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordScan(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordScan("completed", 42.5)
		RecordScan("failed", 1.2)
	})
}

func TestRecordTickerScanned(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordTickerScanned(0.8)
		RecordTickerError()
	})
}

func TestRecordMemoLifecycle(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordMemoGenerated("michael_burry")
		RecordMemoReviewed("approved")
		RecordMemoReviewed("rejected")
		RecordInvestmentClosed()
	})
}

func TestUpdateGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count float64
	}{
		{name: "positive count", count: 12},
		{name: "zero count", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdatePendingMemos(tt.count)
				UpdateActiveInvestments(tt.count)
			})
		})
	}
}

func TestUpdateAnalystPerformance(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdateAnalystPerformance("michael_burry", 34.2, 0.67)
		UpdateAnalystPerformance("bill_ackman", -5.1, 0.40)
	})
}

func TestRecordLLMFallback(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordLLMFallback()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}
