package models

import "time"

// AnalystStats tracks cumulative performance counters for one analyst
// persona. Counters are updated incrementally by the inbox and closer
// and can be recomputed from closed investments at any time.
type AnalystStats struct {
	Analyst       string    `db:"analyst" json:"analyst" validate:"required"`
	TotalMemos    int       `db:"total_memos" json:"total_memos" validate:"gte=0"`
	ApprovedCount int       `db:"approved_count" json:"approved_count" validate:"gte=0"`
	WinCount      int       `db:"win_count" json:"win_count" validate:"gte=0"`
	TotalReturn   float64   `db:"total_return" json:"total_return"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// WinRate returns wins over approved memos as a percentage, 0 when the
// analyst has no approvals.
func (s *AnalystStats) WinRate() float64 {
	if s.ApprovedCount == 0 {
		return 0
	}
	return float64(s.WinCount) / float64(s.ApprovedCount) * 100
}

// ApprovalRate returns approvals over total memos as a percentage, 0
// when the analyst has no memos.
func (s *AnalystStats) ApprovalRate() float64 {
	if s.TotalMemos == 0 {
		return 0
	}
	return float64(s.ApprovedCount) / float64(s.TotalMemos) * 100
}

// AnalystStatsWithRates is the read-side shape with derived rates
// computed in the application, never stored.
type AnalystStatsWithRates struct {
	AnalystStats
	WinRate      float64 `json:"win_rate"`
	ApprovalRate float64 `json:"approval_rate"`
}

// WithRates materializes the derived rates for API responses.
func (s *AnalystStats) WithRates() AnalystStatsWithRates {
	return AnalystStatsWithRates{
		AnalystStats: *s,
		WinRate:      s.WinRate(),
		ApprovalRate: s.ApprovalRate(),
	}
}
