// Package service holds the business operations behind the API:
// memo review, investment lifecycle, analyst statistics, watchlists
// and memo enrichment.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/notify"
	"github.com/yourusername/stock-scout/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// InboxService manages the memo approval workflow. Reviews are
// serialized per memo with row locks so a memo reaches a terminal
// status exactly once.
type InboxService struct {
	db          database.Txer
	memos       repository.MemoRepository
	investments repository.InvestmentRepository
	stats       repository.AnalystStatsRepository
	notifier    notify.Notifier
	validate    *validator.Validate
	audit       *logger.AuditLogger
	logger      *logrus.Logger
}

// NewInboxService creates the inbox service. A nil notifier disables
// notifications.
func NewInboxService(
	db database.Txer,
	repos *repository.Repositories,
	notifier notify.Notifier,
	log *logrus.Logger,
) *InboxService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &InboxService{
		db:          db,
		memos:       repos.Memo,
		investments: repos.Investment,
		stats:       repos.AnalystStats,
		notifier:    notifier,
		validate:    validator.New(),
		audit:       logger.NewAuditLogger(log),
		logger:      log,
	}
}

// CreateMemo persists a generated memo and increments the analyst's
// memo counter in one transaction. The notification goes out only
// after commit; its failure is logged, never returned.
func (s *InboxService) CreateMemo(ctx context.Context, memo *models.InvestmentMemo) error {
	if err := s.validate.Struct(memo); err != nil {
		return fmt.Errorf("invalid memo: %w", err)
	}

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.memos.Create(txCtx, memo); err != nil {
			return fmt.Errorf("create memo: %w", err)
		}
		if err := s.stats.IncrementTotalMemos(txCtx, memo.Analyst); err != nil {
			return fmt.Errorf("increment memo count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notifyErr := s.notifier.NotifyMemoCreated(ctx, memo); notifyErr != nil {
		s.logger.WithError(notifyErr).WithField("memo_id", memo.ID).Warn("Memo notification failed")
	}

	return nil
}

// ListPending returns pending memos, newest first, with the total
// count. Page and page size are clamped into valid ranges.
func (s *InboxService) ListPending(ctx context.Context, filter repository.MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error) {
	filter.Status = models.MemoStatusPending
	return s.List(ctx, filter, page, pageSize)
}

// List returns memos matching the filter with the total count.
func (s *InboxService) List(ctx context.Context, filter repository.MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error) {
	page, pageSize = clampPage(page, pageSize)
	memos, total, err := s.memos.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list memos: %w", err)
	}
	return memos, total, nil
}

// GetMemo returns one memo by id.
func (s *InboxService) GetMemo(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error) {
	return s.memos.GetByID(ctx, id)
}

// Approve moves a pending memo to approved and opens the tracking
// investment at the memo's current price, or the override when given.
// Returns models.ErrNotFound for unknown memos and
// models.ErrInvalidStateTransition when the memo was already reviewed.
func (s *InboxService) Approve(ctx context.Context, memoID uuid.UUID, entryPriceOverride *float64) (*models.Investment, error) {
	var investment *models.Investment

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		memo, err := s.memos.GetForUpdate(txCtx, memoID)
		if err != nil {
			return err
		}
		if !memo.IsPending() {
			return fmt.Errorf("memo %s is %s: %w", memoID, memo.Status, models.ErrInvalidStateTransition)
		}

		now := time.Now().UTC()
		if err := s.memos.MarkReviewed(txCtx, memoID, models.MemoStatusApproved, now); err != nil {
			return fmt.Errorf("mark approved: %w", err)
		}

		entryPrice := memo.CurrentPrice
		if entryPriceOverride != nil {
			if *entryPriceOverride <= 0 {
				return fmt.Errorf("entry price override must be positive")
			}
			entryPrice = *entryPriceOverride
		}

		investment = &models.Investment{
			ID:         uuid.New(),
			MemoID:     memo.ID,
			Ticker:     memo.Ticker,
			Analyst:    memo.Analyst,
			Signal:     memo.Signal,
			EntryPrice: entryPrice,
			EntryDate:  now,
			Status:     models.InvestmentStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.investments.Create(txCtx, investment); err != nil {
			return fmt.Errorf("create investment: %w", err)
		}

		if err := s.stats.IncrementApproved(txCtx, memo.Analyst); err != nil {
			return fmt.Errorf("increment approved count: %w", err)
		}

		s.audit.LogMemoApproval(memo.ID.String(), investment.ID.String(), memo.Ticker,
			memo.Analyst, entryPrice, entryPriceOverride != nil, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMemoReviewed("approved")
	return investment, nil
}

// Reject moves a pending memo to rejected. Same error contract as
// Approve.
func (s *InboxService) Reject(ctx context.Context, memoID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		memo, err := s.memos.GetForUpdate(txCtx, memoID)
		if err != nil {
			return err
		}
		if !memo.IsPending() {
			return fmt.Errorf("memo %s is %s: %w", memoID, memo.Status, models.ErrInvalidStateTransition)
		}

		now := time.Now().UTC()
		if err := s.memos.MarkReviewed(txCtx, memoID, models.MemoStatusRejected, now); err != nil {
			return fmt.Errorf("mark rejected: %w", err)
		}

		s.audit.LogMemoRejection(memo.ID.String(), memo.Ticker, memo.Analyst, now)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordMemoReviewed("rejected")
	return nil
}

// clampPage normalizes 1-indexed pagination: page floors at 1, page
// size defaults and caps.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
