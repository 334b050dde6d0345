package models

import (
	"time"

	"github.com/google/uuid"
)

// Signal represents the directional view an analyst takes on a ticker
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// MemoStatus represents the review state of a memo
type MemoStatus string

const (
	MemoStatusPending  MemoStatus = "pending"
	MemoStatusApproved MemoStatus = "approved"
	MemoStatusRejected MemoStatus = "rejected"
)

// TimeHorizon is the expected holding period for the thesis
type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "short"
	HorizonMedium TimeHorizon = "medium"
	HorizonLong   TimeHorizon = "long"
)

// InvestmentMemo is a structured research memo produced by an analyst
// persona for a single ticker. Memos start pending and move to a
// terminal status exactly once via the approval inbox.
type InvestmentMemo struct {
	ID           uuid.UUID   `db:"id" json:"id" validate:"required,uuid4"`
	Ticker       string      `db:"ticker" json:"ticker" validate:"required,max=10"`
	Analyst      string      `db:"analyst" json:"analyst" validate:"required"`
	Signal       Signal      `db:"signal" json:"signal" validate:"required,oneof=bullish bearish"`
	Conviction   float64     `db:"conviction" json:"conviction" validate:"gte=0,lte=100"`
	Thesis       string      `db:"thesis" json:"thesis" validate:"required"`
	BullCase     []string    `db:"bull_case" json:"bull_case" validate:"min=1,max=5"`
	BearCase     []string    `db:"bear_case" json:"bear_case" validate:"min=1,max=5"`
	KeyMetrics   map[string]any `db:"key_metrics" json:"key_metrics"`
	CurrentPrice float64     `db:"current_price" json:"current_price" validate:"gt=0"`
	TargetPrice  float64     `db:"target_price" json:"target_price" validate:"gt=0"`
	TimeHorizon  TimeHorizon `db:"time_horizon" json:"time_horizon" validate:"required,oneof=short medium long"`
	GeneratedAt  time.Time   `db:"generated_at" json:"generated_at"`
	Status       MemoStatus  `db:"status" json:"status" validate:"required"`
	ReviewedAt   *time.Time  `db:"reviewed_at" json:"reviewed_at"`

	// Enrichment captured at generation time. All optional.
	Catalysts           []string            `db:"catalysts" json:"catalysts,omitempty"`
	ConvictionBreakdown []ConvictionComponent `db:"conviction_breakdown" json:"conviction_breakdown,omitempty"`
	MacroContext        *MacroContext       `db:"macro_context" json:"macro_context,omitempty"`
	PositionSizing      *PositionSizing     `db:"position_sizing" json:"position_sizing,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ConvictionComponent is one sub-analysis contribution to the overall
// conviction, preserved in scoring order.
type ConvictionComponent struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Details  string  `json:"details,omitempty"`
}

// MacroContext is a snapshot of market regime at memo generation.
type MacroContext struct {
	VIX      *float64 `json:"vix,omitempty"`
	VIXLevel string   `json:"vix_level"`
	VIXTrend string   `json:"vix_trend"`
	Regime   string   `json:"regime"`
}

// PositionSizing is the conviction- and volatility-adjusted size
// recommendation attached to a memo.
type PositionSizing struct {
	RecommendedPct   float64 `json:"recommended_pct"`
	AnnualVolatility float64 `json:"annual_volatility"`
	MaxPositionPct   float64 `json:"max_position_pct"`
}

// IsPending reports whether the memo is still awaiting review.
func (m *InvestmentMemo) IsPending() bool {
	return m.Status == MemoStatusPending
}

// IsReviewed reports whether the memo reached a terminal status.
func (m *InvestmentMemo) IsReviewed() bool {
	return m.Status != MemoStatusPending && m.ReviewedAt != nil
}

// Upside returns the implied move from current to target price as a
// signed percentage.
func (m *InvestmentMemo) Upside() float64 {
	if m.CurrentPrice == 0 {
		return 0
	}
	return (m.TargetPrice - m.CurrentPrice) / m.CurrentPrice * 100
}
