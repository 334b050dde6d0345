package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

// fakeTx runs the transactional closure inline, no database needed.
type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type MockMemoRepository struct {
	mock.Mock
}

func (m *MockMemoRepository) Create(ctx context.Context, memo *models.InvestmentMemo) error {
	args := m.Called(ctx, memo)
	return args.Error(0)
}

func (m *MockMemoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvestmentMemo), args.Error(1)
}

func (m *MockMemoRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvestmentMemo), args.Error(1)
}

func (m *MockMemoRepository) MarkReviewed(ctx context.Context, id uuid.UUID, status models.MemoStatus, reviewedAt time.Time) error {
	args := m.Called(ctx, id, status, reviewedAt)
	return args.Error(0)
}

func (m *MockMemoRepository) List(ctx context.Context, filter repository.MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.InvestmentMemo), args.Int(1), args.Error(2)
}

func (m *MockMemoRepository) CountByAnalyst(ctx context.Context, analyst string) (int, int, error) {
	args := m.Called(ctx, analyst)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByMemoID(ctx context.Context, memoID uuid.UUID) (*models.Investment, error) {
	args := m.Called(ctx, memoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) Close(ctx context.Context, id uuid.UUID, exitPrice float64, exitDate time.Time) error {
	args := m.Called(ctx, id, exitPrice, exitDate)
	return args.Error(0)
}

func (m *MockInvestmentRepository) List(ctx context.Context, filter repository.InvestmentFilter, page, pageSize int) ([]*models.Investment, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Investment), args.Int(1), args.Error(2)
}

func (m *MockInvestmentRepository) GetClosedByAnalyst(ctx context.Context, analyst string) ([]*models.Investment, error) {
	args := m.Called(ctx, analyst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetActive(ctx context.Context) ([]*models.Investment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

type MockAnalystStatsRepository struct {
	mock.Mock
}

func (m *MockAnalystStatsRepository) GetOrCreate(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	args := m.Called(ctx, analyst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalystStats), args.Error(1)
}

func (m *MockAnalystStatsRepository) GetByAnalyst(ctx context.Context, analyst string) (*models.AnalystStats, error) {
	args := m.Called(ctx, analyst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalystStats), args.Error(1)
}

func (m *MockAnalystStatsRepository) IncrementTotalMemos(ctx context.Context, analyst string) error {
	args := m.Called(ctx, analyst)
	return args.Error(0)
}

func (m *MockAnalystStatsRepository) IncrementApproved(ctx context.Context, analyst string) error {
	args := m.Called(ctx, analyst)
	return args.Error(0)
}

func (m *MockAnalystStatsRepository) RecordCloseOutcome(ctx context.Context, analyst string, returnPct float64, isWin bool) error {
	args := m.Called(ctx, analyst, returnPct, isWin)
	return args.Error(0)
}

func (m *MockAnalystStatsRepository) Overwrite(ctx context.Context, stats *models.AnalystStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockAnalystStatsRepository) TopByReturn(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalystStats), args.Error(1)
}

func (m *MockAnalystStatsRepository) ListWithApprovals(ctx context.Context, limit int) ([]*models.AnalystStats, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalystStats), args.Error(1)
}

type MockWatchlistRepository struct {
	mock.Mock
}

func (m *MockWatchlistRepository) Create(ctx context.Context, wl *models.Watchlist) error {
	args := m.Called(ctx, wl)
	return args.Error(0)
}

func (m *MockWatchlistRepository) GetByName(ctx context.Context, name string) (*models.Watchlist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Watchlist), args.Error(1)
}

func (m *MockWatchlistRepository) GetOrCreate(ctx context.Context, name string) (*models.Watchlist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Watchlist), args.Error(1)
}

func (m *MockWatchlistRepository) UpdateTickers(ctx context.Context, name string, tickers []string) error {
	args := m.Called(ctx, name, tickers)
	return args.Error(0)
}

func (m *MockWatchlistRepository) MarkScanned(ctx context.Context, name string, scannedAt time.Time) error {
	args := m.Called(ctx, name, scannedAt)
	return args.Error(0)
}

func (m *MockWatchlistRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// stubProvider satisfies marketdata.Provider with canned prices.
type stubProvider struct {
	prices    []*models.Price
	pricesErr error
	current   float64
}

func (p *stubProvider) FinancialMetrics(ctx context.Context, ticker string, limit int) ([]*models.FinancialMetrics, error) {
	return nil, nil
}

func (p *stubProvider) LineItems(ctx context.Context, ticker string, limit int) ([]*models.LineItem, error) {
	return nil, nil
}

func (p *stubProvider) MarketCap(ctx context.Context, ticker string) (*float64, error) {
	return nil, nil
}

func (p *stubProvider) Prices(ctx context.Context, ticker string, start, end time.Time) ([]*models.Price, error) {
	return p.prices, p.pricesErr
}

func (p *stubProvider) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	return p.current, nil
}

func (p *stubProvider) InsiderTrades(ctx context.Context, ticker string, limit int) ([]*models.InsiderTrade, error) {
	return nil, nil
}

func (p *stubProvider) CompanyNews(ctx context.Context, ticker string, limit int) ([]*models.CompanyNews, error) {
	return nil, nil
}

func (p *stubProvider) Name() string { return "stub" }
