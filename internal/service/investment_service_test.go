package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

func activeInvestment(signal models.Signal, entryPrice float64) *models.Investment {
	now := time.Now().UTC()
	return &models.Investment{
		ID:         uuid.New(),
		MemoID:     uuid.New(),
		Ticker:     "AAPL",
		Analyst:    "michael_burry",
		Signal:     signal,
		EntryPrice: entryPrice,
		EntryDate:  now,
		Status:     models.InvestmentStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newInvestmentFixture(provider marketdata.Provider) (*InvestmentService, *MockInvestmentRepository, *MockAnalystStatsRepository) {
	investments := new(MockInvestmentRepository)
	stats := new(MockAnalystStatsRepository)
	repos := &repository.Repositories{
		Investment:   investments,
		AnalystStats: stats,
	}
	svc := NewInvestmentService(fakeTx{}, repos, provider, testLogger())
	return svc, investments, stats
}

func TestCloseComputesSignedReturns(t *testing.T) {
	tests := []struct {
		name       string
		signal     models.Signal
		entryPrice float64
		exitPrice  float64
		wantReturn float64
		wantWin    bool
	}{
		{"bullish gain", models.SignalBullish, 100, 110, 10.00, true},
		{"bullish loss", models.SignalBullish, 100, 90, -10.00, false},
		{"bearish gain on a fall", models.SignalBearish, 100, 90, 10.00, true},
		{"bearish loss on a rise", models.SignalBearish, 100, 110, -10.00, false},
		{"flat close is not a win", models.SignalBullish, 100, 100, 0.00, false},
		{"rounds to two decimals", models.SignalBullish, 3, 4, 33.33, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, investments, stats := newInvestmentFixture(nil)
			inv := activeInvestment(tt.signal, tt.entryPrice)

			investments.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
			investments.On("Close", mock.Anything, inv.ID, tt.exitPrice, mock.AnythingOfType("time.Time")).Return(nil)
			stats.On("RecordCloseOutcome", mock.Anything, inv.Analyst, tt.wantReturn, tt.wantWin).Return(nil)

			closed, err := svc.Close(context.Background(), inv.ID, tt.exitPrice, time.Time{})

			require.NoError(t, err)
			assert.Equal(t, tt.wantReturn, closed.ReturnPct)
			assert.Equal(t, tt.wantWin, closed.IsWin)
			assert.Equal(t, models.InvestmentStatusClosed, closed.Investment.Status)
			require.NotNil(t, closed.Investment.ExitPrice)
			assert.Equal(t, tt.exitPrice, *closed.Investment.ExitPrice)
			stats.AssertExpectations(t)
		})
	}
}

func TestCloseHonorsBackdatedExitDate(t *testing.T) {
	svc, investments, stats := newInvestmentFixture(nil)
	inv := activeInvestment(models.SignalBullish, 100)
	backdated := time.Date(2026, 2, 13, 21, 0, 0, 0, time.UTC)

	investments.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	investments.On("Close", mock.Anything, inv.ID, 110.0, backdated).Return(nil)
	stats.On("RecordCloseOutcome", mock.Anything, inv.Analyst, 10.00, true).Return(nil)

	closed, err := svc.Close(context.Background(), inv.ID, 110, backdated)

	require.NoError(t, err)
	require.NotNil(t, closed.Investment.ExitDate)
	assert.Equal(t, backdated, *closed.Investment.ExitDate)
	investments.AssertExpectations(t)
}

func TestCloseDefaultsExitDateToNow(t *testing.T) {
	svc, investments, stats := newInvestmentFixture(nil)
	inv := activeInvestment(models.SignalBullish, 100)

	investments.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	investments.On("Close", mock.Anything, inv.ID, 110.0, mock.AnythingOfType("time.Time")).Return(nil)
	stats.On("RecordCloseOutcome", mock.Anything, inv.Analyst, 10.00, true).Return(nil)

	before := time.Now().UTC()
	closed, err := svc.Close(context.Background(), inv.ID, 110, time.Time{})

	require.NoError(t, err)
	require.NotNil(t, closed.Investment.ExitDate)
	assert.False(t, closed.Investment.ExitDate.Before(before))
}

func TestCloseRejectsNonPositiveExitPrice(t *testing.T) {
	svc, investments, _ := newInvestmentFixture(nil)

	closed, err := svc.Close(context.Background(), uuid.New(), 0, time.Time{})

	assert.Error(t, err)
	assert.Nil(t, closed)
	investments.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestCloseAlreadyClosedInvestment(t *testing.T) {
	svc, investments, stats := newInvestmentFixture(nil)
	inv := activeInvestment(models.SignalBullish, 100)
	exitPrice := 120.0
	exitDate := time.Now().UTC()
	inv.Status = models.InvestmentStatusClosed
	inv.ExitPrice = &exitPrice
	inv.ExitDate = &exitDate

	investments.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

	closed, err := svc.Close(context.Background(), inv.ID, 130, time.Time{})

	assert.Nil(t, closed)
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	stats.AssertNotCalled(t, "RecordCloseOutcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseUnknownInvestment(t *testing.T) {
	svc, investments, _ := newInvestmentFixture(nil)
	id := uuid.New()

	investments.On("GetForUpdate", mock.Anything, id).Return(nil, models.ErrNotFound)

	closed, err := svc.Close(context.Background(), id, 50, time.Time{})

	assert.Nil(t, closed)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCurrentReturnActivePosition(t *testing.T) {
	svc, investments, _ := newInvestmentFixture(&stubProvider{current: 123.456})
	inv := activeInvestment(models.SignalBullish, 100)

	investments.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	ret, err := svc.CurrentReturn(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.InDelta(t, 23.46, ret, 1e-9)
}

func TestCurrentReturnClosedPositionUsesRealized(t *testing.T) {
	svc, investments, _ := newInvestmentFixture(&stubProvider{current: 999})
	inv := activeInvestment(models.SignalBearish, 100)
	exitPrice := 80.0
	exitDate := time.Now().UTC()
	inv.Status = models.InvestmentStatusClosed
	inv.ExitPrice = &exitPrice
	inv.ExitDate = &exitDate

	investments.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	ret, err := svc.CurrentReturn(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.InDelta(t, 20.00, ret, 1e-9)
}

func TestCurrentReturnWithoutProvider(t *testing.T) {
	svc, _, _ := newInvestmentFixture(nil)

	_, err := svc.CurrentReturn(context.Background(), uuid.New())

	assert.Error(t, err)
}
