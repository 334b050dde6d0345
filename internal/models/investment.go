package models

import (
	"time"

	"github.com/google/uuid"
)

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusActive InvestmentStatus = "active"
	InvestmentStatusClosed InvestmentStatus = "closed"
)

// Investment is a tracked position created when a memo is approved.
// Exactly one investment exists per approved memo.
type Investment struct {
	ID         uuid.UUID        `db:"id" json:"id" validate:"required,uuid4"`
	MemoID     uuid.UUID        `db:"memo_id" json:"memo_id" validate:"required,uuid4"`
	Ticker     string           `db:"ticker" json:"ticker" validate:"required,max=10"`
	Analyst    string           `db:"analyst" json:"analyst" validate:"required"`
	Signal     Signal           `db:"signal" json:"signal" validate:"required,oneof=bullish bearish"`
	EntryPrice float64          `db:"entry_price" json:"entry_price" validate:"gt=0"`
	EntryDate  time.Time        `db:"entry_date" json:"entry_date"`
	Status     InvestmentStatus `db:"status" json:"status" validate:"required"`
	ExitPrice  *float64         `db:"exit_price" json:"exit_price"`
	ExitDate   *time.Time       `db:"exit_date" json:"exit_date"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the position is still open.
func (i *Investment) IsActive() bool {
	return i.Status == InvestmentStatusActive
}

// ReturnPct computes the signed return of the position against price.
// Bearish positions profit when price falls.
func (i *Investment) ReturnPct(price float64) float64 {
	if i.EntryPrice == 0 {
		return 0
	}
	if i.Signal == SignalBearish {
		return (i.EntryPrice - price) / i.EntryPrice * 100
	}
	return (price - i.EntryPrice) / i.EntryPrice * 100
}

// RealizedReturn returns the closed-position return, or 0 if the
// position has not been closed yet.
func (i *Investment) RealizedReturn() float64 {
	if i.Status != InvestmentStatusClosed || i.ExitPrice == nil {
		return 0
	}
	return i.ReturnPct(*i.ExitPrice)
}

// IsWin reports whether a closed position realized a strictly positive
// return. Flat closes are not wins.
func (i *Investment) IsWin() bool {
	return i.Status == InvestmentStatusClosed && i.ExitPrice != nil && i.RealizedReturn() > 0
}
