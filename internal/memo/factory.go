// Package memo turns refined analyst verdicts into structured
// investment memos. Only high-conviction directional calls pass the
// gate; everything else is dropped before persistence.
package memo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/analyst"
	"github.com/yourusername/stock-scout/internal/llm"
	"github.com/yourusername/stock-scout/internal/models"
)

// DefaultConvictionThreshold is the minimum confidence a verdict needs
// before a memo is generated.
const DefaultConvictionThreshold = 70

// minUpsideAssumption is the target move assumed when no valuation
// model produced a margin of safety.
const minUpsideAssumption = 0.15

// maxDownsideAssumption bounds the bearish target mirror so an
// extreme margin of safety cannot push the target to zero or below.
const maxDownsideAssumption = 0.5

// intrinsicValuer is implemented by personas that can estimate a
// whole-company intrinsic value from the facts.
type intrinsicValuer interface {
	IntrinsicValue(analyst.Facts) (float64, bool)
}

// marginOfSafetyer is implemented by personas that can express their
// valuation view as a margin of safety against market cap.
type marginOfSafetyer interface {
	MarginOfSafety(analyst.Facts) (float64, bool)
}

// Factory generates memos from analysis results. A nil completer
// produces heuristic-only memos.
type Factory struct {
	completer llm.Completer
	threshold float64
	logger    *logrus.Logger
}

// NewFactory builds a memo factory. A threshold of 0 selects the
// default.
func NewFactory(completer llm.Completer, threshold float64, logger *logrus.Logger) *Factory {
	if threshold <= 0 {
		threshold = DefaultConvictionThreshold
	}
	return &Factory{completer: completer, threshold: threshold, logger: logger}
}

// Input carries everything memo generation needs for one
// ticker-analyst pair. Macro and Sizing are optional enrichment
// computed by the caller.
type Input struct {
	Analysis analyst.Analysis
	Verdict  analyst.Verdict
	Facts    analyst.Facts
	Macro    *models.MacroContext
	Sizing   *models.PositionSizing
}

// Generate builds a memo when the verdict clears the conviction gate:
// confidence at or above the threshold and a non-neutral signal. The
// returned bool reports whether a memo was produced.
func (f *Factory) Generate(ctx context.Context, in Input) (*models.InvestmentMemo, bool) {
	v := in.Verdict
	if v.Signal == models.SignalNeutral || v.Confidence < f.threshold {
		f.logger.WithFields(logrus.Fields{
			"ticker":     in.Analysis.Ticker,
			"analyst":    in.Analysis.Analyst,
			"signal":     v.Signal,
			"conviction": v.Confidence,
		}).Debug("Memo gate not met")
		return nil, false
	}

	if in.Facts.CurrentPrice <= 0 {
		f.logger.WithFields(logrus.Fields{
			"ticker":  in.Analysis.Ticker,
			"analyst": in.Analysis.Analyst,
		}).Warn("No current price, skipping memo")
		return nil, false
	}

	targetPrice := f.targetPrice(in)
	content := f.generateContent(ctx, in, targetPrice)

	now := time.Now().UTC()
	m := &models.InvestmentMemo{
		ID:                  uuid.New(),
		Ticker:              in.Analysis.Ticker,
		Analyst:             in.Analysis.Analyst,
		Signal:              v.Signal,
		Conviction:          v.Confidence,
		Thesis:              content.Thesis,
		BullCase:            content.BullCase,
		BearCase:            content.BearCase,
		KeyMetrics:          keyMetrics(in.Analysis, v),
		CurrentPrice:        in.Facts.CurrentPrice,
		TargetPrice:         targetPrice,
		TimeHorizon:         models.HorizonMedium,
		GeneratedAt:         now,
		Status:              models.MemoStatusPending,
		Catalysts:           content.Catalysts,
		ConvictionBreakdown: breakdown(in.Analysis),
		MacroContext:        in.Macro,
		PositionSizing:      in.Sizing,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	f.logger.WithFields(logrus.Fields{
		"ticker":     m.Ticker,
		"analyst":    m.Analyst,
		"signal":     m.Signal,
		"conviction": m.Conviction,
		"target":     m.TargetPrice,
	}).Info("Generated investment memo")

	return m, true
}

// targetPrice derives a target from the persona's valuation model:
// intrinsic value per share when available, otherwise the current
// price moved by the margin of safety, never less than the minimum
// upside assumption. Bearish targets mirror the move downward.
func (f *Factory) targetPrice(in Input) float64 {
	current := in.Facts.CurrentPrice
	scorer, ok := analyst.Get(in.Analysis.Analyst)

	// An intrinsic-value target only makes sense for longs; a bearish
	// verdict always takes the mirrored downside move.
	if in.Verdict.Signal != models.SignalBearish && ok {
		if iv, valOK := scorerIntrinsic(scorer, in.Facts); valOK {
			if shares := sharesOutstanding(in.Facts); shares > 0 {
				perShare := iv / shares
				if perShare > 0 {
					return round2(perShare)
				}
			}
		}
	}

	move := minUpsideAssumption
	if ok {
		if mos, mosOK := scorerMarginOfSafety(scorer, in.Facts); mosOK {
			move = math.Max(mos, minUpsideAssumption)
		}
	}

	if in.Verdict.Signal == models.SignalBearish {
		return round2(current * (1 - math.Min(move, maxDownsideAssumption)))
	}
	return round2(current * (1 + move))
}

func scorerIntrinsic(s analyst.Scorer, facts analyst.Facts) (float64, bool) {
	if v, ok := s.(intrinsicValuer); ok {
		return v.IntrinsicValue(facts)
	}
	return 0, false
}

func scorerMarginOfSafety(s analyst.Scorer, facts analyst.Facts) (float64, bool) {
	if v, ok := s.(marginOfSafetyer); ok {
		return v.MarginOfSafety(facts)
	}
	return 0, false
}

// sharesOutstanding prefers the reported share count and falls back
// to market cap over current price.
func sharesOutstanding(facts analyst.Facts) float64 {
	for _, li := range facts.LineItems {
		if li.OutstandingShares != nil && *li.OutstandingShares > 0 {
			return *li.OutstandingShares
		}
	}
	if facts.MarketCap != nil && *facts.MarketCap > 0 && facts.CurrentPrice > 0 {
		return *facts.MarketCap / facts.CurrentPrice
	}
	return 0
}

// memoContent is the narrative body of a memo, either model-written
// or heuristic fallback.
type memoContent struct {
	Thesis    string   `json:"thesis"`
	BullCase  []string `json:"bull_case"`
	BearCase  []string `json:"bear_case"`
	Catalysts []string `json:"catalysts"`
}

// generateContent asks the model to write the thesis and cases in the
// persona's voice; any failure yields the heuristic fallback so a
// gated memo is never lost to a narrative error.
func (f *Factory) generateContent(ctx context.Context, in Input, targetPrice float64) memoContent {
	fallback := func() memoContent { return heuristicContent(in) }
	if f.completer == nil {
		return fallback()
	}

	system := fmt.Sprintf(`You are %s writing a detailed investment memo.

Return JSON only with exactly these fields:
{
  "thesis": "2-3 sentence investment thesis",
  "bull_case": ["point 1", "point 2", "point 3"],
  "bear_case": ["point 1", "point 2", "point 3"],
  "catalysts": ["catalyst 1", "catalyst 2"]
}`, analystDisplayName(in.Analysis.Analyst))

	prompt := fmt.Sprintf(
		"Ticker: %s\nSignal: %s\nConviction: %.0f\nCurrent price: %.2f\nTarget price: %.2f\nReasoning: %s\n\nScore breakdown:\n%s\n\nGenerate the investment memo JSON.",
		in.Analysis.Ticker, in.Verdict.Signal, in.Verdict.Confidence,
		in.Facts.CurrentPrice, targetPrice, in.Verdict.Reasoning,
		componentSummary(in.Analysis),
	)

	content, ok := llm.Call(ctx, f.completer, system, prompt, fallback)
	if !ok {
		f.logger.WithFields(logrus.Fields{
			"ticker":  in.Analysis.Ticker,
			"analyst": in.Analysis.Analyst,
		}).Warn("Memo narrative generation failed, using heuristic content")
		return content
	}

	return sanitizeContent(content, in)
}

// heuristicContent builds a serviceable memo body from the verdict
// and sub-analysis details alone.
func heuristicContent(in Input) memoContent {
	thesis := in.Verdict.Reasoning
	if thesis == "" {
		thesis = fmt.Sprintf("%s signal on %s at %.0f%% conviction from heuristic scoring.",
			in.Verdict.Signal, in.Analysis.Ticker, in.Verdict.Confidence)
	}

	var bull, bear []string
	for _, c := range in.Analysis.Components {
		if c.Details == "" {
			continue
		}
		point := fmt.Sprintf("%s: %s", c.Name, c.Details)
		if c.MaxScore > 0 && c.Score >= 0.5*c.MaxScore {
			bull = append(bull, point)
		} else {
			bear = append(bear, point)
		}
	}
	if len(bull) == 0 {
		bull = []string{"See thesis"}
	}
	if len(bear) == 0 {
		bear = []string{"See thesis"}
	}

	return memoContent{Thesis: thesis, BullCase: clampCases(bull), BearCase: clampCases(bear)}
}

// sanitizeContent backfills anything the model left empty so the memo
// always validates.
func sanitizeContent(c memoContent, in Input) memoContent {
	h := heuristicContent(in)
	if c.Thesis == "" {
		c.Thesis = h.Thesis
	}
	if len(c.BullCase) == 0 {
		c.BullCase = h.BullCase
	}
	if len(c.BearCase) == 0 {
		c.BearCase = h.BearCase
	}
	c.BullCase = clampCases(c.BullCase)
	c.BearCase = clampCases(c.BearCase)
	return c
}

// clampCases keeps case lists inside the 1-5 bullet contract.
func clampCases(cases []string) []string {
	if len(cases) > 5 {
		return cases[:5]
	}
	return cases
}

// breakdown preserves the sub-analysis scores in scoring order.
func breakdown(a analyst.Analysis) []models.ConvictionComponent {
	out := make([]models.ConvictionComponent, 0, len(a.Components))
	for _, c := range a.Components {
		out = append(out, models.ConvictionComponent{
			Name:     c.Name,
			Score:    c.Score,
			MaxScore: c.MaxScore,
			Details:  c.Details,
		})
	}
	return out
}

func keyMetrics(a analyst.Analysis, v analyst.Verdict) map[string]any {
	return map[string]any{
		"score":            a.TotalScore,
		"max_score":        a.MaxScore,
		"heuristic_signal": string(a.Signal),
		"signal":           string(v.Signal),
		"confidence":       v.Confidence,
	}
}

func componentSummary(a analyst.Analysis) string {
	var out string
	for _, c := range a.Components {
		out += fmt.Sprintf("- %s %.1f/%.1f: %s\n", c.Name, c.Score, c.MaxScore, c.Details)
	}
	return out
}

func analystDisplayName(key string) string {
	if s, ok := analyst.Get(key); ok {
		return s.Name()
	}
	return key
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
