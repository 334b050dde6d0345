package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

// leaderboardWindow bounds the in-app win-rate sort; the cumulative
// return sort itself happens in the database.
const leaderboardWindow = 100

// StatsService maintains per-analyst performance counters and
// reconciles them against closed-investment ground truth.
type StatsService struct {
	db          database.Txer
	stats       repository.AnalystStatsRepository
	memos       repository.MemoRepository
	investments repository.InvestmentRepository
	audit       *logger.AuditLogger
	logger      *logrus.Logger
}

// NewStatsService creates the stats service.
func NewStatsService(db database.Txer, repos *repository.Repositories, log *logrus.Logger) *StatsService {
	return &StatsService{
		db:          db,
		stats:       repos.AnalystStats,
		memos:       repos.Memo,
		investments: repos.Investment,
		audit:       logger.NewAuditLogger(log),
		logger:      log,
	}
}

// Get returns the stats row for one analyst, creating it on first
// access.
func (s *StatsService) Get(ctx context.Context, analyst string) (*models.AnalystStatsWithRates, error) {
	stats, err := s.stats.GetOrCreate(ctx, analyst)
	if err != nil {
		return nil, err
	}
	withRates := stats.WithRates()
	return &withRates, nil
}

// Refresh recomputes an analyst's counters from stored memos and
// closed investments, overwriting whatever incremental updates had
// accumulated. This is the reconciliation path for the bounded
// inconsistency a crash between memo insert and counter update can
// leave behind.
func (s *StatsService) Refresh(ctx context.Context, analyst string) (*models.AnalystStatsWithRates, error) {
	var fresh *models.AnalystStats

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		total, approved, err := s.memos.CountByAnalyst(txCtx, analyst)
		if err != nil {
			return fmt.Errorf("count memos: %w", err)
		}

		closed, err := s.investments.GetClosedByAnalyst(txCtx, analyst)
		if err != nil {
			return fmt.Errorf("load closed investments: %w", err)
		}

		wins := 0
		totalReturn := 0.0
		for _, inv := range closed {
			totalReturn += round2(inv.RealizedReturn())
			if inv.IsWin() {
				wins++
			}
		}

		fresh = &models.AnalystStats{
			Analyst:       analyst,
			TotalMemos:    total,
			ApprovedCount: approved,
			WinCount:      wins,
			TotalReturn:   round2(totalReturn),
		}
		if err := s.stats.Overwrite(txCtx, fresh); err != nil {
			return fmt.Errorf("overwrite stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogStatsRefresh(analyst, fresh.TotalMemos, fresh.ApprovedCount, fresh.WinCount, fresh.TotalReturn)
	metrics.UpdateAnalystPerformance(analyst, fresh.TotalReturn, fresh.WinRate()/100)

	withRates := fresh.WithRates()
	return &withRates, nil
}

// RefreshAll reconciles every known persona. Failures are collected,
// not short-circuited, so one analyst's problem does not block the
// others.
func (s *StatsService) RefreshAll(ctx context.Context, analysts []string) error {
	var firstErr error
	for _, analyst := range analysts {
		if _, err := s.Refresh(ctx, analyst); err != nil {
			s.logger.WithError(err).WithField("analyst", analyst).Error("Stats refresh failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Leaderboard returns analysts with at least one approval. The
// default ordering by cumulative return comes sorted from the
// database; win-rate ordering is computed here over the bounded
// window.
func (s *StatsService) Leaderboard(ctx context.Context, orderBy string, count int) ([]models.AnalystStatsWithRates, error) {
	if count < 1 || count > leaderboardWindow {
		count = leaderboardWindow
	}

	var rows []*models.AnalystStats
	var err error

	switch orderBy {
	case "win_rate":
		rows, err = s.stats.ListWithApprovals(ctx, leaderboardWindow)
		if err != nil {
			return nil, err
		}
		sortByWinRate(rows)
	default:
		rows, err = s.stats.TopByReturn(ctx, count)
		if err != nil {
			return nil, err
		}
	}

	if len(rows) > count {
		rows = rows[:count]
	}

	out := make([]models.AnalystStatsWithRates, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.WithRates())
	}
	return out, nil
}

// sortByWinRate orders descending by win rate, ties broken by total
// return.
func sortByWinRate(rows []*models.AnalystStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinRate() != rows[j].WinRate() {
			return rows[i].WinRate() > rows[j].WinRate()
		}
		return rows[i].TotalReturn > rows[j].TotalReturn
	})
}
