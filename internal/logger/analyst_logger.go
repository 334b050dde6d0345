// Package logger provides analyst-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalystLogger provides dedicated logging for persona scoring.
type AnalystLogger struct {
	*logrus.Entry
}

// NewAnalystLogger creates a new analyst logger.
func NewAnalystLogger(baseLogger *logrus.Logger) *AnalystLogger {
	return &AnalystLogger{
		Entry: baseLogger.WithField("component", "analyst"),
	}
}

// LogScoring logs a completed persona scoring pass for one ticker.
func (al *AnalystLogger) LogScoring(analyst, ticker, signal string, totalScore, maxScore float64, durationMs float64) {
	al.WithFields(logrus.Fields{
		"analyst":     analyst,
		"ticker":      ticker,
		"signal":      signal,
		"total_score": totalScore,
		"max_score":   maxScore,
		"duration_ms": durationMs,
	}).Info("Analyst scoring completed")
}

// LogLLMRefinement logs the LLM judgment pass over heuristic scores.
func (al *AnalystLogger) LogLLMRefinement(analyst, ticker, model string, confidence float64, fallbackUsed bool, latencyMs float64) {
	al.WithFields(logrus.Fields{
		"analyst":       analyst,
		"ticker":        ticker,
		"model":         model,
		"confidence":    confidence,
		"fallback_used": fallbackUsed,
		"latency_ms":    latencyMs,
	}).Info("LLM refinement completed")
}

// LogMemoGenerated logs a memo passing the conviction gate.
func (al *AnalystLogger) LogMemoGenerated(analyst, ticker, signal string, conviction float64, targetPrice float64) {
	al.WithFields(logrus.Fields{
		"analyst":      analyst,
		"ticker":       ticker,
		"signal":       signal,
		"conviction":   conviction,
		"target_price": targetPrice,
	}).Info("Investment memo generated")
}

// LogMemoSkipped logs a scoring result below the conviction gate.
func (al *AnalystLogger) LogMemoSkipped(analyst, ticker, signal string, conviction float64) {
	al.WithFields(logrus.Fields{
		"analyst":    analyst,
		"ticker":     ticker,
		"signal":     signal,
		"conviction": conviction,
	}).Debug("Scoring result below memo gate")
}
