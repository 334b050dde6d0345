package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

// InvestmentService manages the open-position lifecycle: closing with
// realized returns and marking unrealized performance.
type InvestmentService struct {
	db          database.Txer
	investments repository.InvestmentRepository
	stats       repository.AnalystStatsRepository
	provider    marketdata.Provider
	audit       *logger.AuditLogger
	logger      *logrus.Logger
}

// NewInvestmentService creates the investment service. The provider is
// only needed for unrealized return lookups and may be nil.
func NewInvestmentService(
	db database.Txer,
	repos *repository.Repositories,
	provider marketdata.Provider,
	log *logrus.Logger,
) *InvestmentService {
	return &InvestmentService{
		db:          db,
		investments: repos.Investment,
		stats:       repos.AnalystStats,
		provider:    provider,
		audit:       logger.NewAuditLogger(log),
		logger:      log,
	}
}

// ClosedInvestment pairs the closed position with its realized
// outcome.
type ClosedInvestment struct {
	Investment *models.Investment `json:"investment"`
	ReturnPct  float64            `json:"return_pct"`
	IsWin      bool               `json:"is_win"`
}

// Close settles an active investment at the exit price, recording the
// signed return against the analyst's stats in the same transaction.
// A zero exitDate means now; backdated closes are allowed.
// Returns models.ErrNotFound for unknown ids and
// models.ErrInvalidStateTransition for already-closed positions.
func (s *InvestmentService) Close(ctx context.Context, id uuid.UUID, exitPrice float64, exitDate time.Time) (*ClosedInvestment, error) {
	if exitPrice <= 0 {
		return nil, fmt.Errorf("exit price must be positive")
	}
	if exitDate.IsZero() {
		exitDate = time.Now().UTC()
	}

	var closed *ClosedInvestment

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.investments.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !inv.IsActive() {
			return fmt.Errorf("investment %s is %s: %w", id, inv.Status, models.ErrInvalidStateTransition)
		}

		if err := s.investments.Close(txCtx, id, exitPrice, exitDate); err != nil {
			return fmt.Errorf("close investment: %w", err)
		}

		inv.Status = models.InvestmentStatusClosed
		inv.ExitPrice = &exitPrice
		inv.ExitDate = &exitDate
		inv.UpdatedAt = time.Now().UTC()

		returnPct := round2(inv.RealizedReturn())
		isWin := inv.IsWin()

		if err := s.stats.RecordCloseOutcome(txCtx, inv.Analyst, returnPct, isWin); err != nil {
			return fmt.Errorf("record close outcome: %w", err)
		}

		s.audit.LogInvestmentClose(inv.ID.String(), inv.Ticker, inv.Analyst,
			inv.EntryPrice, exitPrice, returnPct, isWin)

		closed = &ClosedInvestment{Investment: inv, ReturnPct: returnPct, IsWin: isWin}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInvestmentClosed()
	return closed, nil
}

// Get returns one investment by id.
func (s *InvestmentService) Get(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	return s.investments.GetByID(ctx, id)
}

// List returns investments matching the filter with the total count.
func (s *InvestmentService) List(ctx context.Context, filter repository.InvestmentFilter, page, pageSize int) ([]*models.Investment, int, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.investments.List(ctx, filter, page, pageSize)
}

// CurrentReturn computes the unrealized signed return of an active
// investment against the latest price, rounded to two decimals.
func (s *InvestmentService) CurrentReturn(ctx context.Context, id uuid.UUID) (float64, error) {
	if s.provider == nil {
		return 0, fmt.Errorf("no market data provider configured")
	}

	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !inv.IsActive() {
		return round2(inv.RealizedReturn()), nil
	}

	price, err := s.provider.CurrentPrice(ctx, inv.Ticker)
	if err != nil {
		return 0, fmt.Errorf("current price for %s: %w", inv.Ticker, err)
	}

	return round2(inv.ReturnPct(price)), nil
}

// RefreshActiveGauge updates the open-position metric.
func (s *InvestmentService) RefreshActiveGauge(ctx context.Context) error {
	active, err := s.investments.GetActive(ctx)
	if err != nil {
		return err
	}
	metrics.UpdateActiveInvestments(float64(len(active)))
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
