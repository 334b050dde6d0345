package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/stock-scout/internal/llm"
	"github.com/yourusername/stock-scout/internal/models"
)

// Verdict is a persona's final refined call for one ticker.
type Verdict struct {
	Signal     models.Signal `json:"signal"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
}

// FallbackUsed reports whether the reasoning came from the error
// fallback rather than a model response.
func (v Verdict) FallbackUsed() bool {
	return v.Reasoning == fallbackReasoning
}

const fallbackReasoning = "Error in analysis, defaulting to neutral"

// personaVoice maps a persona key to the register its reasoning is
// written in.
var personaVoice = map[string]string{
	"michael_burry": "Dr. Michael Burry: terse, data-driven deep value. Lead with the numbers that drove the call (FCF yield, EV/EBIT, leverage), name the downside first, and keep the words to a minimum.",
	"bill_ackman":   "Bill Ackman: confident and analytic. Emphasize business quality, brand and moat, capital discipline, valuation with numerical backup, and any activism catalyst.",
	"peter_lynch":   "Peter Lynch: plain-spoken growth at a reasonable price. Talk about growth you can understand, whether the PEG says you are overpaying, and whether the balance sheet lets you sleep at night.",
}

// HeuristicVerdict derives a verdict directly from the heuristic
// analysis, used when no completer is configured or refinement is
// disabled. Confidence is the score ratio on a 0-100 scale.
func HeuristicVerdict(a Analysis) Verdict {
	var details []string
	for _, c := range a.Components {
		if c.Details != "" {
			details = append(details, fmt.Sprintf("%s: %s", c.Name, c.Details))
		}
	}
	return Verdict{
		Signal:     a.Signal,
		Confidence: math.Round(a.Ratio() * 100),
		Reasoning:  strings.Join(details, ". "),
	}
}

// Refine asks the model to turn the heuristic analysis into a final
// verdict in the persona's voice. Any failure, transport or parse,
// yields the neutral fallback; it never returns an error.
func Refine(ctx context.Context, c llm.Completer, a Analysis) Verdict {
	if c == nil {
		return HeuristicVerdict(a)
	}

	facts, err := json.MarshalIndent(analysisFacts(a), "", "  ")
	if err != nil {
		return Verdict{Signal: models.SignalNeutral, Confidence: 0, Reasoning: fallbackReasoning}
	}

	voice := personaVoice[a.Analyst]
	system := fmt.Sprintf(`You are an investment analyst emulating %s

Based on the heuristic analysis you are given, produce a final trading signal.
Return strictly valid JSON with exactly these fields:
{
  "signal": "bullish" | "bearish" | "neutral",
  "confidence": float between 0 and 100,
  "reasoning": "string"
}`, voice)

	prompt := fmt.Sprintf("Analysis data for %s:\n%s\n\nReturn the trading signal JSON.", a.Ticker, facts)

	verdict, _ := llm.Call(ctx, c, system, prompt, func() Verdict {
		return Verdict{Signal: models.SignalNeutral, Confidence: 0, Reasoning: fallbackReasoning}
	})

	return normalizeVerdict(verdict)
}

// analysisFacts flattens an Analysis into the JSON shape the prompt
// carries.
func analysisFacts(a Analysis) map[string]any {
	components := make(map[string]string, len(a.Components))
	for _, c := range a.Components {
		components[c.Name] = fmt.Sprintf("%.1f/%.1f: %s", c.Score, c.MaxScore, c.Details)
	}
	return map[string]any{
		"ticker":    a.Ticker,
		"signal":    a.Signal,
		"score":     a.TotalScore,
		"max_score": a.MaxScore,
		"analyses":  components,
	}
}

// normalizeVerdict clamps model output into the contract: a known
// signal value and a confidence inside [0, 100].
func normalizeVerdict(v Verdict) Verdict {
	switch v.Signal {
	case models.SignalBullish, models.SignalBearish, models.SignalNeutral:
	default:
		v.Signal = models.SignalNeutral
		v.Confidence = 0
		v.Reasoning = fallbackReasoning
		return v
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 100 {
		v.Confidence = 100
	}
	return v
}
