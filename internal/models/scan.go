package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanStatus represents the lifecycle state of a scan run
type ScanStatus string

const (
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusCancelled ScanStatus = "cancelled"
)

// ScanConfig holds the tunable parameters of a scan run.
type ScanConfig struct {
	Universe            []string      `json:"universe"`
	UniverseName        string        `json:"universe_name"`
	Analysts            []string      `json:"analysts"`
	ConvictionThreshold float64       `json:"conviction_threshold"`
	BatchSize           int           `json:"batch_size"`
	RateLimitDelay      time.Duration `json:"rate_limit_delay"`
}

// ScanResult accumulates the outcome of one scan run. It is run-scoped
// bookkeeping, persisted as a document rather than relationally.
type ScanResult struct {
	ScanID              uuid.UUID  `json:"scan_id"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	Status              ScanStatus `json:"status"`
	UniverseName        string     `json:"universe_name"`
	TotalTickers        int        `json:"total_tickers"`
	Analysts            []string   `json:"analysts"`
	ConvictionThreshold float64    `json:"conviction_threshold"`
	TickersScanned      int        `json:"tickers_scanned"`
	MemosGenerated      int        `json:"memos_generated"`
	HighConvictionMemos []*InvestmentMemo `json:"high_conviction_memos"`
	Errors              []string   `json:"errors"`
	ErrorMessage        string     `json:"error_message,omitempty"`
}

// NewScanResult starts a running scan record for the given config.
func NewScanResult(cfg ScanConfig) *ScanResult {
	return &ScanResult{
		ScanID:              uuid.New(),
		StartTime:           time.Now().UTC(),
		Status:              ScanStatusRunning,
		UniverseName:        cfg.UniverseName,
		TotalTickers:        len(cfg.Universe),
		Analysts:            cfg.Analysts,
		ConvictionThreshold: cfg.ConvictionThreshold,
	}
}

// AddMemo records a generated memo against the run.
func (r *ScanResult) AddMemo(memo *InvestmentMemo) {
	r.HighConvictionMemos = append(r.HighConvictionMemos, memo)
	r.MemosGenerated++
}

// AddError records a per-ticker failure without stopping the run.
func (r *ScanResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Complete marks the run finished.
func (r *ScanResult) Complete() {
	now := time.Now().UTC()
	r.EndTime = &now
	r.Status = ScanStatusCompleted
}

// Fail marks the run failed with a driver-level error message.
func (r *ScanResult) Fail(msg string) {
	now := time.Now().UTC()
	r.EndTime = &now
	r.Status = ScanStatusFailed
	r.ErrorMessage = msg
}

// Cancel marks the run cancelled, preserving whatever counters
// accumulated before cancellation.
func (r *ScanResult) Cancel() {
	now := time.Now().UTC()
	r.EndTime = &now
	r.Status = ScanStatusCancelled
}

// Duration returns the wall-clock run time, zero while still running.
func (r *ScanResult) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// AvgTimePerTicker returns the mean per-ticker processing time, zero
// when no tickers were scanned.
func (r *ScanResult) AvgTimePerTicker() time.Duration {
	if r.TickersScanned == 0 {
		return 0
	}
	return r.Duration() / time.Duration(r.TickersScanned)
}

// Summary is the compact shape returned by manual scan triggers and
// carried in scan notifications. Errors are capped at 5, memos at 10.
func (r *ScanResult) Summary() ScanSummary {
	errs := r.Errors
	if len(errs) > 5 {
		errs = errs[:5]
	}
	memos := r.HighConvictionMemos
	if len(memos) > 10 {
		memos = memos[:10]
	}
	return ScanSummary{
		ScanID:         r.ScanID,
		Status:         r.Status,
		TickersScanned: r.TickersScanned,
		MemosGenerated: r.MemosGenerated,
		Errors:         errs,
		Memos:          memos,
	}
}

// ScanSummary is the trimmed scan outcome exposed over the API.
type ScanSummary struct {
	ScanID         uuid.UUID         `json:"scan_id"`
	Status         ScanStatus        `json:"status"`
	TickersScanned int               `json:"tickers_scanned"`
	MemosGenerated int               `json:"memos_generated"`
	Errors         []string          `json:"errors"`
	Memos          []*InvestmentMemo `json:"memos,omitempty"`
}
