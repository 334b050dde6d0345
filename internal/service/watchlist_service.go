package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

// WatchlistService manages named ticker sets. Every mutation
// normalizes the list: trimmed, uppercased, deduplicated, sorted.
type WatchlistService struct {
	watchlists repository.WatchlistRepository
	audit      *logger.AuditLogger
	logger     *logrus.Logger
}

// NewWatchlistService creates the watchlist service.
func NewWatchlistService(repos *repository.Repositories, log *logrus.Logger) *WatchlistService {
	return &WatchlistService{
		watchlists: repos.Watchlist,
		audit:      logger.NewAuditLogger(log),
		logger:     log,
	}
}

// Get returns a watchlist by name.
func (s *WatchlistService) Get(ctx context.Context, name string) (*models.Watchlist, error) {
	return s.watchlists.GetByName(ctx, name)
}

// GetDefault returns the scheduler's watchlist, creating it empty on
// first access.
func (s *WatchlistService) GetDefault(ctx context.Context) (*models.Watchlist, error) {
	return s.watchlists.GetOrCreate(ctx, models.DefaultWatchlistName)
}

// AddTickers merges tickers into the named watchlist, creating it if
// needed.
func (s *WatchlistService) AddTickers(ctx context.Context, name string, tickers []string) (*models.Watchlist, error) {
	if len(tickers) == 0 {
		return nil, models.ErrTickerRequired
	}

	wl, err := s.watchlists.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	merged := models.NormalizeTickers(append(wl.Tickers, tickers...))
	if err := s.watchlists.UpdateTickers(ctx, name, merged); err != nil {
		return nil, fmt.Errorf("update watchlist: %w", err)
	}
	wl.Tickers = merged

	s.audit.LogWatchlistChange(name, "add", tickers, len(merged))
	return wl, nil
}

// RemoveTickers drops tickers from the named watchlist. Removing
// tickers that are not present is a no-op.
func (s *WatchlistService) RemoveTickers(ctx context.Context, name string, tickers []string) (*models.Watchlist, error) {
	if len(tickers) == 0 {
		return nil, models.ErrTickerRequired
	}

	wl, err := s.watchlists.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	drop := make(map[string]struct{}, len(tickers))
	for _, t := range models.NormalizeTickers(tickers) {
		drop[t] = struct{}{}
	}

	kept := make([]string, 0, len(wl.Tickers))
	for _, t := range wl.Tickers {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}

	if err := s.watchlists.UpdateTickers(ctx, name, kept); err != nil {
		return nil, fmt.Errorf("update watchlist: %w", err)
	}
	wl.Tickers = kept

	s.audit.LogWatchlistChange(name, "remove", tickers, len(kept))
	return wl, nil
}

// Replace sets the watchlist contents wholesale.
func (s *WatchlistService) Replace(ctx context.Context, name string, tickers []string) (*models.Watchlist, error) {
	wl, err := s.watchlists.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	normalized := models.NormalizeTickers(tickers)
	if err := s.watchlists.UpdateTickers(ctx, name, normalized); err != nil {
		return nil, fmt.Errorf("update watchlist: %w", err)
	}
	wl.Tickers = normalized

	s.audit.LogWatchlistChange(name, "replace", tickers, len(normalized))
	return wl, nil
}

// Delete removes the named watchlist.
func (s *WatchlistService) Delete(ctx context.Context, name string) error {
	if err := s.watchlists.Delete(ctx, name); err != nil {
		return err
	}
	s.audit.LogWatchlistChange(name, "delete", nil, 0)
	return nil
}

// MarkScanned stamps the watchlist with the scan time.
func (s *WatchlistService) MarkScanned(ctx context.Context, name string, at time.Time) error {
	return s.watchlists.MarkScanned(ctx, name, at)
}
