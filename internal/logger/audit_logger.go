// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for memo review
// and investment lifecycle events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogMemoApproval logs a memo approval event.
func (al *AuditLogger) LogMemoApproval(memoID, investmentID, ticker, analyst string, entryPrice float64, priceOverridden bool, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"memo_id":          memoID,
		"investment_id":    investmentID,
		"ticker":           ticker,
		"analyst":          analyst,
		"entry_price":      entryPrice,
		"price_overridden": priceOverridden,
		"timestamp":        timestamp.Unix(),
	}).Info("Memo approval recorded")
}

// LogMemoRejection logs a memo rejection event.
func (al *AuditLogger) LogMemoRejection(memoID, ticker, analyst string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"memo_id":   memoID,
		"ticker":    ticker,
		"analyst":   analyst,
		"timestamp": timestamp.Unix(),
	}).Info("Memo rejection recorded")
}

// LogInvestmentClose logs an investment close event.
func (al *AuditLogger) LogInvestmentClose(investmentID, ticker, analyst string, entryPrice, exitPrice, returnPct float64, isWin bool) {
	al.WithFields(logrus.Fields{
		"investment_id": investmentID,
		"ticker":        ticker,
		"analyst":       analyst,
		"entry_price":   entryPrice,
		"exit_price":    exitPrice,
		"return_pct":    returnPct,
		"is_win":        isWin,
	}).Info("Investment close recorded")
}

// LogStatsRefresh logs a stats reconciliation run.
func (al *AuditLogger) LogStatsRefresh(analyst string, totalMemos, approvedCount, winCount int, totalReturn float64) {
	al.WithFields(logrus.Fields{
		"analyst":        analyst,
		"total_memos":    totalMemos,
		"approved_count": approvedCount,
		"win_count":      winCount,
		"total_return":   totalReturn,
	}).Info("Analyst stats refreshed")
}

// LogWatchlistChange logs a watchlist mutation.
func (al *AuditLogger) LogWatchlistChange(name, action string, tickers []string, resultingSize int) {
	al.WithFields(logrus.Fields{
		"watchlist":      name,
		"action":         action,
		"tickers":        tickers,
		"resulting_size": resultingSize,
	}).Info("Watchlist changed")
}
