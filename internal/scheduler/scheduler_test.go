package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-scout/internal/models"
)

type fakeRunner struct {
	scannedUniverse []string
	universeName    string
	memos           []*models.InvestmentMemo
	triggered       []string
}

func (f *fakeRunner) RunFullScan(ctx context.Context, universe []string, universeName string) *models.ScanResult {
	f.scannedUniverse = universe
	f.universeName = universeName
	result := models.NewScanResult(models.ScanConfig{Universe: universe, UniverseName: universeName})
	for _, m := range f.memos {
		result.AddMemo(m)
	}
	result.TickersScanned = len(universe)
	result.Complete()
	return result
}

func (f *fakeRunner) TriggeredTickers(ctx context.Context, tickers []string, thresholdPct float64) []string {
	return f.triggered
}

type fakeSink struct {
	created []*models.InvestmentMemo
	err     error
}

func (f *fakeSink) CreateMemo(ctx context.Context, memo *models.InvestmentMemo) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, memo)
	return nil
}

type fakeWatchlists struct {
	watchlist  *models.Watchlist
	err        error
	scannedAt  *time.Time
	marksCount int
}

func (f *fakeWatchlists) GetDefault(ctx context.Context) (*models.Watchlist, error) {
	return f.watchlist, f.err
}

func (f *fakeWatchlists) MarkScanned(ctx context.Context, name string, at time.Time) error {
	f.scannedAt = &at
	f.marksCount++
	return nil
}

type countingNotifier struct {
	scans int
	last  models.ScanSummary
}

func (n *countingNotifier) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error {
	return nil
}

func (n *countingNotifier) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	n.scans++
	n.last = summary
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testMemo(ticker string) *models.InvestmentMemo {
	return &models.InvestmentMemo{
		ID:      uuid.New(),
		Ticker:  ticker,
		Analyst: "michael_burry",
		Signal:  models.SignalBullish,
		Status:  models.MemoStatusPending,
	}
}

func defaultWatchlist(tickers ...string) *models.Watchlist {
	return &models.Watchlist{ID: uuid.New(), Name: models.DefaultWatchlistName, Tickers: tickers}
}

func TestRunWatchlistScanPersistsAndNotifies(t *testing.T) {
	runner := &fakeRunner{memos: []*models.InvestmentMemo{testMemo("AAPL"), testMemo("MSFT")}}
	sink := &fakeSink{}
	watchlists := &fakeWatchlists{watchlist: defaultWatchlist("AAPL", "MSFT", "GOOG")}
	notifier := &countingNotifier{}
	s := NewScheduler(runner, sink, watchlists, notifier, testLogger())

	result, err := s.RunWatchlistScan(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, runner.scannedUniverse)
	assert.Len(t, sink.created, 2)
	assert.Equal(t, 1, notifier.scans)
	assert.Equal(t, 2, notifier.last.MemosGenerated)
	assert.Equal(t, 1, watchlists.marksCount)
}

func TestRunWatchlistScanEmptyWatchlist(t *testing.T) {
	runner := &fakeRunner{}
	watchlists := &fakeWatchlists{watchlist: defaultWatchlist()}
	s := NewScheduler(runner, &fakeSink{}, watchlists, nil, testLogger())

	result, err := s.RunWatchlistScan(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Nil(t, runner.scannedUniverse)
	assert.Equal(t, 0, watchlists.marksCount)
}

func TestRunWatchlistScanWatchlistError(t *testing.T) {
	watchlists := &fakeWatchlists{err: errors.New("db down")}
	s := NewScheduler(&fakeRunner{}, &fakeSink{}, watchlists, nil, testLogger())

	result, err := s.RunWatchlistScan(context.Background())

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestRunWatchlistScanPersistFailureDoesNotFailScan(t *testing.T) {
	runner := &fakeRunner{memos: []*models.InvestmentMemo{testMemo("AAPL")}}
	sink := &fakeSink{err: errors.New("insert failed")}
	watchlists := &fakeWatchlists{watchlist: defaultWatchlist("AAPL")}
	s := NewScheduler(runner, sink, watchlists, nil, testLogger())

	result, err := s.RunWatchlistScan(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.ScanStatusCompleted, result.Status)
}

func TestRunTriggeredScanScansOnlyMovers(t *testing.T) {
	runner := &fakeRunner{
		memos:     []*models.InvestmentMemo{testMemo("NVDA")},
		triggered: []string{"NVDA"},
	}
	watchlists := &fakeWatchlists{watchlist: defaultWatchlist("AAPL", "NVDA")}
	s := NewScheduler(runner, &fakeSink{}, watchlists, nil, testLogger())

	result, err := s.RunTriggeredScan(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"NVDA"}, runner.scannedUniverse)
	assert.Equal(t, "default-triggered", runner.universeName)
}

func TestRunTriggeredScanNoMovers(t *testing.T) {
	runner := &fakeRunner{}
	watchlists := &fakeWatchlists{watchlist: defaultWatchlist("AAPL")}
	s := NewScheduler(runner, &fakeSink{}, watchlists, nil, testLogger())

	result, err := s.RunTriggeredScan(context.Background(), 5)

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Nil(t, runner.scannedUniverse)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, &fakeSink{}, &fakeWatchlists{watchlist: defaultWatchlist()}, nil, testLogger())

	assert.Error(t, s.Start(), "starting with no jobs should fail")

	require.NoError(t, s.ScheduleQuarterlyScan("0 9 15 1,4,7,10 *"))
	require.NoError(t, s.SchedulePriceTriggers("0 18 * * 1-5", 5))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Error(t, s.Start(), "double start should fail")
	assert.Error(t, s.ScheduleQuarterlyScan("@daily"), "scheduling while running should fail")

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestScheduleRejectsBadExpressions(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, &fakeSink{}, &fakeWatchlists{}, nil, testLogger())

	assert.Error(t, s.ScheduleQuarterlyScan("not a cron"))
	assert.Error(t, s.SchedulePriceTriggers("0 18 * * 1-5", 0))
}
