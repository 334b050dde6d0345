package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stock-scout/internal/models"
)

// MemoFilter narrows memo listings. Zero values mean no filtering on
// that dimension.
type MemoFilter struct {
	Status        models.MemoStatus
	Analyst       string
	Signal        models.Signal
	Ticker        string
	MinConviction *float64
}

// InvestmentFilter narrows investment listings.
type InvestmentFilter struct {
	Status  models.InvestmentStatus
	Analyst string
	Ticker  string
}

// MemoRepository defines the interface for investment memo data access
type MemoRepository interface {
	Create(ctx context.Context, memo *models.InvestmentMemo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error)
	// GetForUpdate locks the memo row for the duration of the enclosing
	// transaction, serializing concurrent reviews.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, status models.MemoStatus, reviewedAt time.Time) error
	List(ctx context.Context, filter MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error)
	CountByAnalyst(ctx context.Context, analyst string) (total int, approved int, err error)
}

// InvestmentRepository defines the interface for investment data access
type InvestmentRepository interface {
	Create(ctx context.Context, inv *models.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	GetByMemoID(ctx context.Context, memoID uuid.UUID) (*models.Investment, error)
	Close(ctx context.Context, id uuid.UUID, exitPrice float64, exitDate time.Time) error
	List(ctx context.Context, filter InvestmentFilter, page, pageSize int) ([]*models.Investment, int, error)
	GetClosedByAnalyst(ctx context.Context, analyst string) ([]*models.Investment, error)
	GetActive(ctx context.Context) ([]*models.Investment, error)
}

// AnalystStatsRepository defines the interface for analyst stats data access
type AnalystStatsRepository interface {
	GetOrCreate(ctx context.Context, analyst string) (*models.AnalystStats, error)
	GetByAnalyst(ctx context.Context, analyst string) (*models.AnalystStats, error)
	IncrementTotalMemos(ctx context.Context, analyst string) error
	IncrementApproved(ctx context.Context, analyst string) error
	RecordCloseOutcome(ctx context.Context, analyst string, returnPct float64, isWin bool) error
	Overwrite(ctx context.Context, stats *models.AnalystStats) error
	// TopByReturn returns analysts with at least one approval ordered by
	// cumulative return, sorted in the database.
	TopByReturn(ctx context.Context, limit int) ([]*models.AnalystStats, error)
	ListWithApprovals(ctx context.Context, limit int) ([]*models.AnalystStats, error)
}

// WatchlistRepository defines the interface for watchlist data access
type WatchlistRepository interface {
	Create(ctx context.Context, wl *models.Watchlist) error
	GetByName(ctx context.Context, name string) (*models.Watchlist, error)
	GetOrCreate(ctx context.Context, name string) (*models.Watchlist, error)
	UpdateTickers(ctx context.Context, name string, tickers []string) error
	MarkScanned(ctx context.Context, name string, scannedAt time.Time) error
	Delete(ctx context.Context, name string) error
}
