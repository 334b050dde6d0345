// Package scheduler drives the recurring research cadence: the
// quarterly watchlist scan after earnings season and the daily
// price-trigger sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/notify"
	"github.com/yourusername/stock-scout/internal/service"
)

// ScanRunner is the slice of the scan orchestrator the scheduler
// drives.
type ScanRunner interface {
	RunFullScan(ctx context.Context, universe []string, universeName string) *models.ScanResult
	TriggeredTickers(ctx context.Context, tickers []string, thresholdPct float64) []string
}

// MemoSink persists memos produced by scheduled scans.
type MemoSink interface {
	CreateMemo(ctx context.Context, memo *models.InvestmentMemo) error
}

// WatchlistSource provides the universe for scheduled scans.
type WatchlistSource interface {
	GetDefault(ctx context.Context) (*models.Watchlist, error)
	MarkScanned(ctx context.Context, name string, at time.Time) error
}

const scanTimeout = 2 * time.Hour

// Scheduler manages the cron-driven scan jobs.
type Scheduler struct {
	cron       *cron.Cron
	runner     ScanRunner
	sink       MemoSink
	watchlists WatchlistSource
	notifier   notify.Notifier
	logger     *logrus.Logger

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler over the scan orchestrator. All
// jobs run in UTC. A nil notifier disables notifications.
func NewScheduler(runner ScanRunner, sink MemoSink, watchlists WatchlistSource, notifier notify.Notifier, log *logrus.Logger) *Scheduler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		runner:     runner,
		sink:       sink,
		watchlists: watchlists,
		notifier:   notifier,
		logger:     log,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleQuarterlyScan registers the watchlist scan on the given cron
// expression, conventionally mid-January, April, July and October when
// fresh filings are in.
func (s *Scheduler) ScheduleQuarterlyScan(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		if _, err := s.RunWatchlistScan(ctx); err != nil {
			s.logger.WithError(err).Error("Quarterly scan failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("schedule quarterly scan: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Quarterly watchlist scan scheduled")
	return nil
}

// SchedulePriceTriggers registers the off-cycle sweep: watchlist names
// that moved more than thresholdPct in the last session get rescanned
// immediately instead of waiting for the quarter.
func (s *Scheduler) SchedulePriceTriggers(cronExpression string, thresholdPct float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if thresholdPct <= 0 {
		return fmt.Errorf("price trigger threshold must be positive, got %.2f", thresholdPct)
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		if _, err := s.RunTriggeredScan(ctx, thresholdPct); err != nil {
			s.logger.WithError(err).Error("Price-trigger scan failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("schedule price triggers: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":          cronExpression,
		"threshold_pct": thresholdPct,
	}).Info("Price-trigger sweep scheduled")
	return nil
}

// RunWatchlistScan scans the default watchlist end to end: run the
// personas, persist the surviving memos, stamp the watchlist and
// announce the summary. Also the entry point for manual scans.
func (s *Scheduler) RunWatchlistScan(ctx context.Context) (*models.ScanResult, error) {
	wl, err := s.watchlists.GetDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if len(wl.Tickers) == 0 {
		s.logger.Info("Watchlist empty, nothing to scan")
		return nil, nil
	}

	result := s.runScan(ctx, wl.Tickers, wl.Name)

	if err := s.watchlists.MarkScanned(ctx, wl.Name, time.Now().UTC()); err != nil {
		s.logger.WithError(err).Warn("Failed to stamp watchlist scan time")
	}

	return result, nil
}

// RunTriggeredScan scans only the watchlist names whose last session
// moved beyond the threshold.
func (s *Scheduler) RunTriggeredScan(ctx context.Context, thresholdPct float64) (*models.ScanResult, error) {
	wl, err := s.watchlists.GetDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	triggered := s.runner.TriggeredTickers(ctx, wl.Tickers, thresholdPct)
	if len(triggered) == 0 {
		s.logger.Debug("No price triggers fired")
		return nil, nil
	}

	return s.runScan(ctx, triggered, wl.Name+"-triggered"), nil
}

// runScan executes the scan and persists its memos. A memo that fails
// to persist is logged and dropped; the scan itself is not failed for
// it.
func (s *Scheduler) runScan(ctx context.Context, universe []string, universeName string) *models.ScanResult {
	result := s.runner.RunFullScan(ctx, universe, universeName)

	for _, m := range result.HighConvictionMemos {
		if err := s.sink.CreateMemo(ctx, m); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"ticker":  m.Ticker,
				"analyst": m.Analyst,
			}).Error("Failed to persist memo")
		}
	}

	if err := s.notifier.NotifyScanCompleted(ctx, result.Summary()); err != nil {
		s.logger.WithError(err).Warn("Scan notification failed")
	}

	return result
}

// Start starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

var _ WatchlistSource = (*service.WatchlistService)(nil)
var _ MemoSink = (*service.InboxService)(nil)
