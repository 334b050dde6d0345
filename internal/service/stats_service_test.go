package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

func newStatsFixture() (*StatsService, *MockAnalystStatsRepository, *MockMemoRepository, *MockInvestmentRepository) {
	stats := new(MockAnalystStatsRepository)
	memos := new(MockMemoRepository)
	investments := new(MockInvestmentRepository)
	repos := &repository.Repositories{
		Memo:         memos,
		Investment:   investments,
		AnalystStats: stats,
	}
	svc := NewStatsService(fakeTx{}, repos, testLogger())
	return svc, stats, memos, investments
}

func closedInvestment(analyst string, signal models.Signal, entry, exit float64) *models.Investment {
	now := time.Now().UTC()
	return &models.Investment{
		ID:         uuid.New(),
		MemoID:     uuid.New(),
		Ticker:     "AAPL",
		Analyst:    analyst,
		Signal:     signal,
		EntryPrice: entry,
		EntryDate:  now.AddDate(0, -1, 0),
		Status:     models.InvestmentStatusClosed,
		ExitPrice:  &exit,
		ExitDate:   &now,
	}
}

func TestGetComputesRates(t *testing.T) {
	svc, stats, _, _ := newStatsFixture()

	stats.On("GetOrCreate", mock.Anything, "michael_burry").Return(&models.AnalystStats{
		Analyst:       "michael_burry",
		TotalMemos:    10,
		ApprovedCount: 4,
		WinCount:      3,
		TotalReturn:   42.5,
	}, nil)

	got, err := svc.Get(context.Background(), "michael_burry")

	require.NoError(t, err)
	assert.Equal(t, 75.0, got.WinRate)
	assert.Equal(t, 40.0, got.ApprovalRate)
}

func TestRefreshRecomputesFromGroundTruth(t *testing.T) {
	svc, stats, memos, investments := newStatsFixture()

	memos.On("CountByAnalyst", mock.Anything, "bill_ackman").Return(8, 3, nil)
	investments.On("GetClosedByAnalyst", mock.Anything, "bill_ackman").Return([]*models.Investment{
		closedInvestment("bill_ackman", models.SignalBullish, 100, 110), // +10.00, win
		closedInvestment("bill_ackman", models.SignalBearish, 100, 90),  // +10.00, win
		closedInvestment("bill_ackman", models.SignalBullish, 100, 95),  // -5.00
	}, nil)

	var saved *models.AnalystStats
	stats.On("Overwrite", mock.Anything, mock.AnythingOfType("*models.AnalystStats")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.AnalystStats) }).
		Return(nil)

	got, err := svc.Refresh(context.Background(), "bill_ackman")

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 8, saved.TotalMemos)
	assert.Equal(t, 3, saved.ApprovedCount)
	assert.Equal(t, 2, saved.WinCount)
	assert.InDelta(t, 15.00, saved.TotalReturn, 1e-9)
	assert.InDelta(t, 2.0/3.0*100, got.WinRate, 1e-9)
}

// memStatsRepo is a stateful stand-in for the Postgres stats table so
// the incremental counter path and the recompute path can be compared.
type memStatsRepo struct {
	rows map[string]*models.AnalystStats
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{rows: map[string]*models.AnalystStats{}}
}

func (r *memStatsRepo) row(analyst string) *models.AnalystStats {
	if s, ok := r.rows[analyst]; ok {
		return s
	}
	s := &models.AnalystStats{Analyst: analyst}
	r.rows[analyst] = s
	return s
}

func (r *memStatsRepo) GetOrCreate(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	s := *r.row(analyst)
	return &s, nil
}

func (r *memStatsRepo) GetByAnalyst(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	s, ok := r.rows[analyst]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *memStatsRepo) IncrementTotalMemos(ctx context.Context, analyst string) error {
	r.row(analyst).TotalMemos++
	return nil
}

func (r *memStatsRepo) IncrementApproved(ctx context.Context, analyst string) error {
	r.row(analyst).ApprovedCount++
	return nil
}

func (r *memStatsRepo) RecordCloseOutcome(ctx context.Context, analyst string, returnPct float64, isWin bool) error {
	s := r.row(analyst)
	s.TotalReturn += returnPct
	if isWin {
		s.WinCount++
	}
	return nil
}

func (r *memStatsRepo) Overwrite(ctx context.Context, stats *models.AnalystStats) error {
	s := *stats
	r.rows[stats.Analyst] = &s
	return nil
}

func (r *memStatsRepo) TopByReturn(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	return nil, nil
}

func (r *memStatsRepo) ListWithApprovals(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	return nil, nil
}

// A create/approve/close sequence driven through the real services
// must leave the incremental counters equal to what Refresh recomputes
// from stored memos and closed investments.
func TestRefreshMatchesIncrementalCounters(t *testing.T) {
	statsRepo := newMemStatsRepo()
	memos := new(MockMemoRepository)
	investments := new(MockInvestmentRepository)
	repos := &repository.Repositories{
		Memo:         memos,
		Investment:   investments,
		AnalystStats: statsRepo,
	}

	inbox := NewInboxService(fakeTx{}, repos, nil, testLogger())
	closer := NewInvestmentService(fakeTx{}, repos, nil, testLogger())
	statsSvc := NewStatsService(fakeTx{}, repos, testLogger())
	ctx := context.Background()

	memos.On("Create", mock.Anything, mock.Anything).Return(nil)
	memos.On("MarkReviewed", mock.Anything, mock.Anything, models.MemoStatusApproved, mock.Anything).Return(nil)
	investments.On("Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var opened []*models.Investment
	investments.On("Create", mock.Anything, mock.AnythingOfType("*models.Investment")).
		Run(func(args mock.Arguments) { opened = append(opened, args.Get(1).(*models.Investment)) }).
		Return(nil)

	// three memos drafted, two approved, both positions closed
	drafted := make([]*models.InvestmentMemo, 0, 3)
	for i := 0; i < 3; i++ {
		m := pendingMemo()
		m.Analyst = "peter_lynch"
		memos.On("GetForUpdate", mock.Anything, m.ID).Return(m, nil)
		require.NoError(t, inbox.CreateMemo(ctx, m))
		drafted = append(drafted, m)
	}

	_, err := inbox.Approve(ctx, drafted[0].ID, nil)
	require.NoError(t, err)
	_, err = inbox.Approve(ctx, drafted[1].ID, nil)
	require.NoError(t, err)
	require.Len(t, opened, 2)

	for _, inv := range opened {
		investments.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	}
	_, err = closer.Close(ctx, opened[0].ID, 110, time.Time{}) // +10.00, win
	require.NoError(t, err)
	_, err = closer.Close(ctx, opened[1].ID, 95, time.Time{}) // -5.00
	require.NoError(t, err)

	incremental, err := statsRepo.GetByAnalyst(ctx, "peter_lynch")
	require.NoError(t, err)
	assert.Equal(t, 3, incremental.TotalMemos)
	assert.Equal(t, 2, incremental.ApprovedCount)
	assert.Equal(t, 1, incremental.WinCount)
	assert.InDelta(t, 5.00, incremental.TotalReturn, 1e-9)

	memos.On("CountByAnalyst", mock.Anything, "peter_lynch").Return(3, 2, nil)
	investments.On("GetClosedByAnalyst", mock.Anything, "peter_lynch").Return(opened, nil)

	refreshed, err := statsSvc.Refresh(ctx, "peter_lynch")
	require.NoError(t, err)

	assert.Equal(t, incremental.TotalMemos, refreshed.TotalMemos)
	assert.Equal(t, incremental.ApprovedCount, refreshed.ApprovedCount)
	assert.Equal(t, incremental.WinCount, refreshed.WinCount)
	assert.InDelta(t, incremental.TotalReturn, refreshed.TotalReturn, 1e-9)
}

func TestRefreshAllCollectsErrors(t *testing.T) {
	svc, stats, memos, investments := newStatsFixture()
	boom := errors.New("count failed")

	memos.On("CountByAnalyst", mock.Anything, "michael_burry").Return(0, 0, boom)
	memos.On("CountByAnalyst", mock.Anything, "peter_lynch").Return(2, 1, nil)
	investments.On("GetClosedByAnalyst", mock.Anything, "peter_lynch").Return([]*models.Investment{}, nil)
	stats.On("Overwrite", mock.Anything, mock.AnythingOfType("*models.AnalystStats")).Return(nil)

	err := svc.RefreshAll(context.Background(), []string{"michael_burry", "peter_lynch"})

	assert.ErrorIs(t, err, boom)
	// the second analyst still got reconciled
	stats.AssertCalled(t, "Overwrite", mock.Anything, mock.AnythingOfType("*models.AnalystStats"))
}

func TestLeaderboardDefaultOrdersByReturn(t *testing.T) {
	svc, stats, _, _ := newStatsFixture()

	stats.On("TopByReturn", mock.Anything, 2).Return([]*models.AnalystStats{
		{Analyst: "bill_ackman", ApprovedCount: 5, WinCount: 2, TotalReturn: 80},
		{Analyst: "michael_burry", ApprovedCount: 4, WinCount: 4, TotalReturn: 60},
	}, nil)

	rows, err := svc.Leaderboard(context.Background(), "", 2)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bill_ackman", rows[0].Analyst)
	assert.Equal(t, 40.0, rows[0].WinRate)
}

func TestLeaderboardWinRateOrdering(t *testing.T) {
	svc, stats, _, _ := newStatsFixture()

	stats.On("ListWithApprovals", mock.Anything, leaderboardWindow).Return([]*models.AnalystStats{
		{Analyst: "bill_ackman", ApprovedCount: 4, WinCount: 2, TotalReturn: 90},   // 50%
		{Analyst: "michael_burry", ApprovedCount: 4, WinCount: 3, TotalReturn: 20}, // 75%
		{Analyst: "peter_lynch", ApprovedCount: 2, WinCount: 1, TotalReturn: 95},   // 50%, higher return
	}, nil)

	rows, err := svc.Leaderboard(context.Background(), "win_rate", 3)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "michael_burry", rows[0].Analyst)
	assert.Equal(t, "peter_lynch", rows[1].Analyst) // win-rate tie broken by return
	assert.Equal(t, "bill_ackman", rows[2].Analyst)
}

func TestLeaderboardClampsCount(t *testing.T) {
	svc, stats, _, _ := newStatsFixture()

	stats.On("TopByReturn", mock.Anything, leaderboardWindow).Return([]*models.AnalystStats{}, nil)

	_, err := svc.Leaderboard(context.Background(), "", 0)

	require.NoError(t, err)
	stats.AssertExpectations(t)
}

func TestLeaderboardTruncatesWinRateWindow(t *testing.T) {
	svc, stats, _, _ := newStatsFixture()

	stats.On("ListWithApprovals", mock.Anything, leaderboardWindow).Return([]*models.AnalystStats{
		{Analyst: "a", ApprovedCount: 1, WinCount: 1},
		{Analyst: "b", ApprovedCount: 1, WinCount: 0},
		{Analyst: "c", ApprovedCount: 1, WinCount: 0},
	}, nil)

	rows, err := svc.Leaderboard(context.Background(), "win_rate", 1)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Analyst)
}
