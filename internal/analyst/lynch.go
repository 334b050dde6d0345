package analyst

import (
	"fmt"
	"math"
	"strings"
)

// LynchScorer is a growth-at-a-reasonable-price persona: steady
// revenue and earnings growth, a PEG ratio that does not overpay for
// it, and clean fundamentals.
type LynchScorer struct{}

// Key returns the stable persona identifier
func (s *LynchScorer) Key() string { return "peter_lynch" }

// Name returns the display name
func (s *LynchScorer) Name() string { return "Peter Lynch" }

// Score runs the GARP sub-analyses and aggregates them.
func (s *LynchScorer) Score(facts Facts) Analysis {
	components := []SubResult{
		s.analyzeGrowth(facts),
		s.analyzeEarningsConsistency(facts),
		s.analyzePEG(facts),
		s.analyzeFundamentals(facts),
		s.analyzeOwnership(facts),
	}
	return Aggregate(s.Key(), facts.Ticker, components)
}

// analyzeGrowth scores multi-period revenue growth. Max 3.
func (s *LynchScorer) analyzeGrowth(facts Facts) SubResult {
	result := SubResult{Name: "revenue_growth", MaxScore: 3}

	var revenues []float64
	for _, li := range facts.LineItems {
		if li.Revenue != nil {
			revenues = append(revenues, *li.Revenue)
		}
	}
	if len(revenues) < 2 {
		result.Details = "not enough revenue data for a growth trend"
		return result
	}

	initial, final := revenues[len(revenues)-1], revenues[0]
	if initial == 0 {
		result.Details = "initial revenue is zero, growth undefined"
		return result
	}

	growth := (final - initial) / math.Abs(initial)
	switch {
	case growth > 0.25:
		result.Score = 3
	case growth > 0.10:
		result.Score = 2
	case growth > 0:
		result.Score = 1
	}
	result.Details = fmt.Sprintf("cumulative revenue growth %.1f%%", growth*100)
	return result
}

// analyzeEarningsConsistency rewards mostly-positive net income
// periods. Max 2.
func (s *LynchScorer) analyzeEarningsConsistency(facts Facts) SubResult {
	result := SubResult{Name: "earnings_consistency", MaxScore: 2}

	var earnings []float64
	for _, li := range facts.LineItems {
		if li.NetIncome != nil {
			earnings = append(earnings, *li.NetIncome)
		}
	}
	if len(earnings) == 0 {
		result.Details = "no net income data"
		return result
	}

	positive := 0
	for _, e := range earnings {
		if e > 0 {
			positive++
		}
	}

	switch {
	case positive == len(earnings):
		result.Score = 2
		result.Details = "profitable in every reported period"
	case positive >= len(earnings)/2+1:
		result.Score = 1
		result.Details = "profitable in most reported periods"
	default:
		result.Details = "earnings not consistently positive"
	}
	return result
}

// analyzePEG scores price against earnings growth: P/E divided by
// growth rate in percent. Max 3.
func (s *LynchScorer) analyzePEG(facts Facts) SubResult {
	result := SubResult{Name: "peg_valuation", MaxScore: 3}

	m := latestMetrics(facts.Metrics)
	if m == nil || m.PriceToEarnings == nil || m.EarningsGrowth == nil {
		result.Details = "P/E or earnings growth unavailable"
		return result
	}
	if *m.PriceToEarnings <= 0 || *m.EarningsGrowth <= 0 {
		result.Details = "negative P/E or earnings growth, PEG undefined"
		return result
	}

	peg := *m.PriceToEarnings / (*m.EarningsGrowth * 100)
	switch {
	case peg < 1:
		result.Score = 3
	case peg < 2:
		result.Score = 2
	case peg < 3:
		result.Score = 1
	}
	result.Details = fmt.Sprintf("PEG %.2f (P/E %.1f, growth %.1f%%)", peg, *m.PriceToEarnings, *m.EarningsGrowth*100)
	return result
}

// analyzeFundamentals scores leverage, margins and cash generation.
// Max 3.
func (s *LynchScorer) analyzeFundamentals(facts Facts) SubResult {
	result := SubResult{Name: "fundamentals", MaxScore: 3}

	var details []string

	if m := latestMetrics(facts.Metrics); m != nil && m.DebtToEquity != nil {
		if *m.DebtToEquity < 0.5 {
			result.Score += 1
			details = append(details, fmt.Sprintf("low D/E %.2f", *m.DebtToEquity))
		} else {
			details = append(details, fmt.Sprintf("D/E %.2f", *m.DebtToEquity))
		}
	} else {
		details = append(details, "D/E unavailable")
	}

	if m := latestMetrics(facts.Metrics); m != nil && m.OperatingMargin != nil {
		if *m.OperatingMargin > 0.10 {
			result.Score += 1
			details = append(details, fmt.Sprintf("operating margin %.1f%%", *m.OperatingMargin*100))
		} else {
			details = append(details, fmt.Sprintf("thin operating margin %.1f%%", *m.OperatingMargin*100))
		}
	} else {
		details = append(details, "operating margin unavailable")
	}

	if li := latestLineItem(facts.LineItems); li != nil && li.FreeCashFlow != nil {
		if *li.FreeCashFlow > 0 {
			result.Score += 1
			details = append(details, "positive free cash flow")
		} else {
			details = append(details, "negative free cash flow")
		}
	} else {
		details = append(details, "free cash flow unavailable")
	}

	result.Details = strings.Join(details, ", ")
	return result
}

// analyzeOwnership gives a point for net insider buying. Max 1.
func (s *LynchScorer) analyzeOwnership(facts Facts) SubResult {
	result := SubResult{Name: "ownership", MaxScore: 1}

	if len(facts.InsiderTrades) == 0 {
		result.Details = "no insider trade data"
		return result
	}

	var net float64
	for _, trade := range facts.InsiderTrades {
		if trade.TransactionShares != nil {
			net += *trade.TransactionShares
		}
	}

	if net > 0 {
		result.Score = 1
		result.Details = fmt.Sprintf("net insider buying of %.0f shares", net)
	} else {
		result.Details = "no net insider buying"
	}
	return result
}
