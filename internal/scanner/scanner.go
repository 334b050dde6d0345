// Package scanner orchestrates full-universe research runs: every
// ticker through every configured analyst persona, in batches, with
// per-ticker failure isolation.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/analyst"
	"github.com/yourusername/stock-scout/internal/llm"
	"github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/memo"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
)

// Enricher computes the optional memo enrichment (macro regime and
// position sizing) for a gated memo.
type Enricher interface {
	Enrich(ctx context.Context, facts analyst.Facts, verdict analyst.Verdict) (*models.MacroContext, *models.PositionSizing)
}

// Broadcaster pushes scan progress to live subscribers. Implementations
// must not block the scan.
type Broadcaster interface {
	BroadcastScanProgress(progress Progress)
}

// Progress is one live scan progress event.
type Progress struct {
	ScanID         string `json:"scan_id"`
	Ticker         string `json:"ticker"`
	TickersScanned int    `json:"tickers_scanned"`
	TotalTickers   int    `json:"total_tickers"`
	MemosGenerated int    `json:"memos_generated"`
	Status         string `json:"status"`
}

// Scanner runs analyst personas over ticker universes.
type Scanner struct {
	provider    marketdata.Provider
	factory     *memo.Factory
	completer   llm.Completer
	scorers     []analyst.Scorer
	cfg         models.ScanConfig
	enricher    Enricher
	broadcaster Broadcaster
	logger      *logrus.Logger
	scanLog     *logger.ScanLogger
	analystLog  *logger.AnalystLogger

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a scanner. The enricher and broadcaster are optional;
// config zero values fall back to defaults.
func New(
	provider marketdata.Provider,
	factory *memo.Factory,
	completer llm.Completer,
	cfg models.ScanConfig,
	log *logrus.Logger,
) (*Scanner, error) {
	if provider == nil {
		return nil, fmt.Errorf("scanner requires a market data provider")
	}
	if factory == nil {
		return nil, fmt.Errorf("scanner requires a memo factory")
	}

	scorers, err := analyst.Resolve(cfg.Analysts)
	if err != nil {
		return nil, err
	}
	if len(scorers) == 0 {
		scorers = analyst.All()
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &Scanner{
		provider:   provider,
		factory:    factory,
		completer:  completer,
		scorers:    scorers,
		cfg:        cfg,
		logger:     log,
		scanLog:    logger.NewScanLogger(log),
		analystLog: logger.NewAnalystLogger(log),
		sleep:      sleepCtx,
	}, nil
}

// WithEnricher attaches memo enrichment.
func (s *Scanner) WithEnricher(e Enricher) *Scanner {
	s.enricher = e
	return s
}

// WithBroadcaster attaches live progress broadcasting.
func (s *Scanner) WithBroadcaster(b Broadcaster) *Scanner {
	s.broadcaster = b
	return s
}

// Analysts returns the persona keys this scanner runs.
func (s *Scanner) Analysts() []string {
	keys := make([]string, len(s.scorers))
	for i, sc := range s.scorers {
		keys[i] = sc.Key()
	}
	return keys
}

// RunFullScan scans the whole universe in batches. Per-ticker failures
// are recorded and skipped; only a driver-level failure marks the run
// failed. Context cancellation stops the run, preserving counters.
func (s *Scanner) RunFullScan(ctx context.Context, universe []string, universeName string) (result *models.ScanResult) {
	cfg := s.cfg
	cfg.Universe = universe
	cfg.UniverseName = universeName
	cfg.Analysts = s.Analysts()

	result = models.NewScanResult(cfg)
	s.scanLog.LogScanStarted(result.ScanID.String(), universeName, len(universe), cfg.BatchSize, cfg.Analysts)

	defer func() {
		if r := recover(); r != nil {
			result.Fail(fmt.Sprintf("scan driver panic: %v", r))
			s.finish(result)
		}
	}()

	batchCount := (len(universe) + cfg.BatchSize - 1) / cfg.BatchSize
	batchNum := 0

	for i := 0; i < len(universe); i += cfg.BatchSize {
		batchNum++
		end := i + cfg.BatchSize
		if end > len(universe) {
			end = len(universe)
		}

		if err := s.scanBatch(ctx, universe[i:end], result); err != nil {
			result.Cancel()
			s.finish(result)
			return result
		}

		s.scanLog.LogBatchCompleted(result.ScanID.String(), batchNum, batchCount, result.TickersScanned, result.MemosGenerated)

		if end < len(universe) && cfg.RateLimitDelay > 0 {
			if err := s.sleep(ctx, cfg.RateLimitDelay); err != nil {
				result.Cancel()
				s.finish(result)
				return result
			}
		}
	}

	result.Complete()
	s.finish(result)
	return result
}

// scanBatch analyzes each ticker in order. Only context cancellation
// returns an error; ticker failures are absorbed into the result.
func (s *Scanner) scanBatch(ctx context.Context, tickers []string, result *models.ScanResult) error {
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		memos, err := s.AnalyzeTicker(ctx, ticker)
		result.TickersScanned++
		metrics.RecordTickerScanned(time.Since(started).Seconds())

		if err != nil {
			result.AddError(fmt.Sprintf("error scanning %s: %v", ticker, err))
			s.scanLog.LogTickerError(result.ScanID.String(), ticker, err)
			metrics.RecordTickerError()
		} else {
			for _, m := range memos {
				result.AddMemo(m)
				metrics.RecordMemoGenerated(m.Analyst)
			}
		}

		s.broadcast(result, ticker)
	}
	return nil
}

// AnalyzeTicker runs every configured persona over one ticker and
// returns the memos that cleared the conviction gate. One persona's
// LLM failure degrades to the neutral fallback rather than erroring.
func (s *Scanner) AnalyzeTicker(ctx context.Context, ticker string) ([]*models.InvestmentMemo, error) {
	facts, err := s.fetchFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var memos []*models.InvestmentMemo
	for _, scorer := range s.scorers {
		started := time.Now()
		analysis := scorer.Score(facts)
		s.analystLog.LogScoring(scorer.Key(), ticker, string(analysis.Signal),
			analysis.TotalScore, analysis.MaxScore, float64(time.Since(started).Milliseconds()))

		verdict := analyst.Refine(ctx, s.completer, analysis)
		if verdict.FallbackUsed() {
			metrics.RecordLLMFallback()
		}

		in := memo.Input{Analysis: analysis, Verdict: verdict, Facts: facts}
		if s.enricher != nil {
			in.Macro, in.Sizing = s.enricher.Enrich(ctx, facts, verdict)
		}

		m, ok := s.factory.Generate(ctx, in)
		if !ok {
			s.analystLog.LogMemoSkipped(scorer.Key(), ticker, string(verdict.Signal), verdict.Confidence)
			continue
		}

		s.analystLog.LogMemoGenerated(scorer.Key(), ticker, string(m.Signal), m.Conviction, m.TargetPrice)
		memos = append(memos, m)
	}

	return memos, nil
}

// fetchFacts gathers everything the personas look at. The current
// price is required; everything else degrades to empty.
func (s *Scanner) fetchFacts(ctx context.Context, ticker string) (analyst.Facts, error) {
	facts := analyst.Facts{Ticker: ticker}

	price, err := s.provider.CurrentPrice(ctx, ticker)
	if err != nil {
		return facts, fmt.Errorf("current price: %w", err)
	}
	facts.CurrentPrice = price

	if metricsData, err := s.provider.FinancialMetrics(ctx, ticker, 5); err == nil {
		facts.Metrics = metricsData
	} else {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Financial metrics unavailable")
	}

	if lineItems, err := s.provider.LineItems(ctx, ticker, 5); err == nil {
		facts.LineItems = lineItems
	} else {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Line items unavailable")
	}

	if marketCap, err := s.provider.MarketCap(ctx, ticker); err == nil {
		facts.MarketCap = marketCap
	}

	if trades, err := s.provider.InsiderTrades(ctx, ticker, 50); err == nil {
		facts.InsiderTrades = trades
	}

	if news, err := s.provider.CompanyNews(ctx, ticker, 20); err == nil {
		facts.News = news
	}

	end := time.Now().UTC()
	if prices, err := s.provider.Prices(ctx, ticker, end.AddDate(0, -6, 0), end); err == nil {
		facts.Prices = prices
	}

	return facts, nil
}

func (s *Scanner) finish(result *models.ScanResult) {
	metrics.RecordScan(string(result.Status), result.Duration().Seconds())
	s.scanLog.LogScanCompleted(result.ScanID.String(), string(result.Status),
		result.TickersScanned, result.MemosGenerated, len(result.Errors),
		float64(result.Duration().Milliseconds()))
	s.broadcast(result, "")
}

func (s *Scanner) broadcast(result *models.ScanResult, ticker string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastScanProgress(Progress{
		ScanID:         result.ScanID.String(),
		Ticker:         ticker,
		TickersScanned: result.TickersScanned,
		TotalTickers:   result.TotalTickers,
		MemosGenerated: result.MemosGenerated,
		Status:         string(result.Status),
	})
}

// TriggeredTickers returns the tickers whose latest one-day move, in
// either direction, is at or above thresholdPct. Price fetch failures
// drop the ticker from the result.
func (s *Scanner) TriggeredTickers(ctx context.Context, tickers []string, thresholdPct float64) []string {
	var triggered []string
	end := time.Now().UTC()

	for _, ticker := range tickers {
		prices, err := s.provider.Prices(ctx, ticker, end.AddDate(0, 0, -7), end)
		if err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Trigger check failed")
			continue
		}
		move := marketdata.LastDayMovePct(prices)
		if move >= thresholdPct || move <= -thresholdPct {
			s.logger.WithFields(logrus.Fields{
				"ticker":   ticker,
				"move_pct": move,
			}).Info("Price trigger fired")
			triggered = append(triggered, ticker)
		}
	}

	return triggered
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
