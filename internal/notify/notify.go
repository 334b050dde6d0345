// Package notify delivers human-facing alerts for pipeline events.
// Delivery failures are logged and swallowed; notification problems
// never fail the operation that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/models"
)

// Notifier delivers pipeline event notifications.
type Notifier interface {
	// NotifyMemoCreated announces a new pending memo.
	NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error
	// NotifyScanCompleted announces a finished scan run.
	NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error
}

// Nop is a no-op notifier used when notifications are disabled.
type Nop struct{}

func (Nop) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error { return nil }
func (Nop) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	return nil
}

// Multi fans a notification out to several notifiers, collecting the
// first error after trying all of them.
type Multi struct {
	notifiers []Notifier
	logger    *logrus.Logger
}

// NewMulti builds a fan-out notifier.
func NewMulti(logger *logrus.Logger, notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers, logger: logger}
}

func (m *Multi) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyMemoCreated(ctx, memo); err != nil {
			m.logger.WithError(err).Warn("Memo notification delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Multi) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.NotifyScanCompleted(ctx, summary); err != nil {
			m.logger.WithError(err).Warn("Scan notification delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func memoSubject(memo *models.InvestmentMemo) string {
	return fmt.Sprintf("New %s memo: %s (%s, %.0f%% conviction)",
		memo.Signal, memo.Ticker, memo.Analyst, memo.Conviction)
}

func scanSubject(summary models.ScanSummary) string {
	return fmt.Sprintf("Scan %s: %d tickers, %d memos",
		summary.Status, summary.TickersScanned, summary.MemosGenerated)
}
