// Package logger provides scan-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ScanLogger provides dedicated logging for scan runs.
type ScanLogger struct {
	*logrus.Entry
}

// NewScanLogger creates a new scan logger.
func NewScanLogger(baseLogger *logrus.Logger) *ScanLogger {
	return &ScanLogger{
		Entry: baseLogger.WithField("component", "scan"),
	}
}

// LogScanStarted logs the start of a scan run.
func (sl *ScanLogger) LogScanStarted(scanID, universeName string, totalTickers, batchSize int, analysts []string) {
	sl.WithFields(logrus.Fields{
		"scan_id":       scanID,
		"universe":      universeName,
		"total_tickers": totalTickers,
		"batch_size":    batchSize,
		"analysts":      analysts,
	}).Info("Scan started")
}

// LogBatchCompleted logs completion of one scan batch.
func (sl *ScanLogger) LogBatchCompleted(scanID string, batchIndex, batchCount, tickersScanned, memosGenerated int) {
	sl.WithFields(logrus.Fields{
		"scan_id":         scanID,
		"batch":           batchIndex,
		"batches_total":   batchCount,
		"tickers_scanned": tickersScanned,
		"memos_generated": memosGenerated,
	}).Info("Scan batch completed")
}

// LogTickerError logs an absorbed per-ticker failure.
func (sl *ScanLogger) LogTickerError(scanID, ticker string, err error) {
	sl.WithFields(logrus.Fields{
		"scan_id": scanID,
		"ticker":  ticker,
		"error":   err.Error(),
	}).Warn("Ticker scan failed")
}

// LogScanCompleted logs a finished scan run.
func (sl *ScanLogger) LogScanCompleted(scanID, status string, tickersScanned, memosGenerated, errorCount int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"scan_id":         scanID,
		"status":          status,
		"tickers_scanned": tickersScanned,
		"memos_generated": memosGenerated,
		"errors":          errorCount,
		"duration_ms":     durationMs,
	}).Info("Scan completed")
}
