package service

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/analyst"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/models"
)

// vixTicker is the volatility index symbol on the data provider.
const vixTicker = "^VIX"

// MacroService snapshots the market regime for memo enrichment. All
// lookups degrade to a neutral snapshot on provider failure.
type MacroService struct {
	provider marketdata.Provider
	logger   *logrus.Logger
}

// NewMacroService creates the macro context service.
func NewMacroService(provider marketdata.Provider, log *logrus.Logger) *MacroService {
	return &MacroService{provider: provider, logger: log}
}

// Snapshot fetches the current VIX and classifies the market regime
// relative to the memo's directional signal.
func (s *MacroService) Snapshot(ctx context.Context, signal models.Signal) *models.MacroContext {
	mc := &models.MacroContext{VIXLevel: "unknown", VIXTrend: "unknown", Regime: "neutral"}

	end := time.Now().UTC()
	bars, err := s.provider.Prices(ctx, vixTicker, end.AddDate(0, 0, -7), end)
	if err != nil || len(bars) == 0 {
		s.logger.WithError(err).Debug("VIX unavailable, neutral macro context")
		return mc
	}

	vix := math.Round(bars[len(bars)-1].Close*100) / 100
	mc.VIX = &vix
	mc.VIXLevel = classifyVIX(vix)
	mc.VIXTrend = vixTrend(bars)
	mc.Regime = regime(vix, signal)
	return mc
}

// classifyVIX buckets the index into the conventional bands.
func classifyVIX(vix float64) string {
	switch {
	case vix < 15:
		return "low"
	case vix < 20:
		return "normal"
	case vix < 30:
		return "elevated"
	default:
		return "high"
	}
}

// vixTrend compares the latest close against the window.
func vixTrend(bars []*models.Price) string {
	if len(bars) < 2 {
		return "flat"
	}
	first, last := bars[0].Close, bars[len(bars)-1].Close
	if first == 0 {
		return "flat"
	}
	change := (last - first) / first
	switch {
	case change > 0.05:
		return "rising"
	case change < -0.05:
		return "falling"
	default:
		return "flat"
	}
}

// regime classifies how favorable the environment is for the signal:
// a bearish call into a fearful market is risk-off confirmation, a
// bullish call into a calm market is risk-on.
func regime(vix float64, signal models.Signal) string {
	if vix > 25 && signal == models.SignalBearish {
		return "risk-off"
	}
	if vix < 18 && signal == models.SignalBullish {
		return "risk-on"
	}
	return "neutral"
}

// Enricher bundles macro and sizing enrichment behind the scanner's
// hook.
type Enricher struct {
	macro  *MacroService
	sizing *SizingService
}

// NewEnricher creates the memo enrichment pipeline.
func NewEnricher(macro *MacroService, sizing *SizingService) *Enricher {
	return &Enricher{macro: macro, sizing: sizing}
}

// Enrich computes macro context and position sizing for one verdict.
func (e *Enricher) Enrich(ctx context.Context, facts analyst.Facts, verdict analyst.Verdict) (*models.MacroContext, *models.PositionSizing) {
	var mc *models.MacroContext
	var ps *models.PositionSizing
	if e.macro != nil {
		mc = e.macro.Snapshot(ctx, verdict.Signal)
	}
	if e.sizing != nil {
		ps = e.sizing.Calculate(facts.Prices, verdict.Confidence)
	}
	return mc, ps
}
