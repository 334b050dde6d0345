// Package analyst implements the persona scoring engine. Each persona
// scores a ticker's fundamentals into weighted sub-analyses; a shared
// aggregation rule turns the scores into a directional signal.
package analyst

import (
	"fmt"

	"github.com/yourusername/stock-scout/internal/models"
)

// Facts bundles everything a persona may look at for one ticker. Any
// field may be empty; sub-analyses score what they can and contribute
// zero for the rest.
type Facts struct {
	Ticker        string
	CurrentPrice  float64
	Metrics       []*models.FinancialMetrics // newest first
	LineItems     []*models.LineItem         // newest first
	MarketCap     *float64
	InsiderTrades []*models.InsiderTrade
	News          []*models.CompanyNews
	Prices        []*models.Price // oldest first
}

// SubResult is one sub-analysis contribution. MaxScore is counted even
// when inputs were missing so the denominator stays stable across
// tickers.
type SubResult struct {
	Name     string
	Score    float64
	MaxScore float64
	Details  string
}

// Analysis is a persona's complete heuristic verdict for one ticker.
type Analysis struct {
	Analyst    string
	Ticker     string
	Signal     models.Signal
	TotalScore float64
	MaxScore   float64
	Components []SubResult
}

// Ratio returns total over max score, 0 when max is 0.
func (a Analysis) Ratio() float64 {
	if a.MaxScore == 0 {
		return 0
	}
	return a.TotalScore / a.MaxScore
}

// Scorer is a closed analyst persona. Implementations live in this
// package and are registered statically in scoring order.
type Scorer interface {
	// Key returns the stable persona identifier used in config and
	// persistence.
	Key() string
	// Name returns the display name.
	Name() string
	// Score runs every sub-analysis over the facts and aggregates them.
	Score(facts Facts) Analysis
}

// registry holds all personas in a fixed evaluation order.
var registry = []Scorer{
	&BurryScorer{},
	&AckmanScorer{},
	&LynchScorer{},
}

// All returns every registered persona in evaluation order.
func All() []Scorer {
	out := make([]Scorer, len(registry))
	copy(out, registry)
	return out
}

// Get resolves a persona by key.
func Get(key string) (Scorer, bool) {
	for _, s := range registry {
		if s.Key() == key {
			return s, true
		}
	}
	return nil, false
}

// Resolve maps persona keys to scorers, preserving registry order and
// failing on unknown keys.
func Resolve(keys []string) ([]Scorer, error) {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	var out []Scorer
	for _, s := range registry {
		if want[s.Key()] {
			out = append(out, s)
			delete(want, s.Key())
		}
	}

	for k := range want {
		return nil, fmt.Errorf("unknown analyst persona: %s", k)
	}

	return out, nil
}

// Aggregate sums sub-analysis scores and derives the signal. The rule
// is shared by every persona: at or above 70% of max is bullish, at or
// below 30% is bearish, anything between is neutral.
func Aggregate(analyst, ticker string, components []SubResult) Analysis {
	var total, max float64
	for _, c := range components {
		total += c.Score
		max += c.MaxScore
	}

	signal := models.SignalNeutral
	if max > 0 {
		switch {
		case total >= 0.7*max:
			signal = models.SignalBullish
		case total <= 0.3*max:
			signal = models.SignalBearish
		}
	}

	return Analysis{
		Analyst:    analyst,
		Ticker:     ticker,
		Signal:     signal,
		TotalScore: total,
		MaxScore:   max,
		Components: components,
	}
}
