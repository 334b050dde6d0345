package analyst

import (
	"fmt"
	"math"
	"strings"
)

// BurryScorer is a deep-value contrarian persona: hard numbers over
// stories, free cash flow yield first, balance sheet second, and a
// taste for names the market hates.
type BurryScorer struct{}

// Key returns the stable persona identifier
func (s *BurryScorer) Key() string { return "michael_burry" }

// Name returns the display name
func (s *BurryScorer) Name() string { return "Michael Burry" }

// Score runs the deep-value sub-analyses and aggregates them.
func (s *BurryScorer) Score(facts Facts) Analysis {
	components := []SubResult{
		s.analyzeValue(facts),
		s.analyzeBalanceSheet(facts),
		s.analyzeInsiderActivity(facts),
		s.analyzeContrarianSentiment(facts),
	}
	return Aggregate(s.Key(), facts.Ticker, components)
}

// analyzeValue scores free cash flow yield and EV/EBIT. Max 6.
func (s *BurryScorer) analyzeValue(facts Facts) SubResult {
	result := SubResult{Name: "deep_value", MaxScore: 6}

	var details []string

	li := latestLineItem(facts.LineItems)
	if li != nil && li.FreeCashFlow != nil && facts.MarketCap != nil && *facts.MarketCap > 0 {
		fcfYield := *li.FreeCashFlow / *facts.MarketCap
		switch {
		case fcfYield >= 0.15:
			result.Score += 4
		case fcfYield >= 0.12:
			result.Score += 3
		case fcfYield >= 0.08:
			result.Score += 2
		}
		details = append(details, fmt.Sprintf("FCF yield %.1f%%", fcfYield*100))
	} else {
		details = append(details, "FCF yield unavailable")
	}

	if m := latestMetrics(facts.Metrics); m != nil && m.EVToEBIT != nil {
		switch {
		case *m.EVToEBIT > 0 && *m.EVToEBIT < 6:
			result.Score += 2
		case *m.EVToEBIT > 0 && *m.EVToEBIT < 10:
			result.Score += 1
		}
		details = append(details, fmt.Sprintf("EV/EBIT %.1f", *m.EVToEBIT))
	} else {
		details = append(details, "EV/EBIT unavailable")
	}

	result.Details = strings.Join(details, ", ")
	return result
}

// analyzeBalanceSheet scores leverage and liquidity. Max 3.
func (s *BurryScorer) analyzeBalanceSheet(facts Facts) SubResult {
	result := SubResult{Name: "balance_sheet", MaxScore: 3}

	var details []string

	if m := latestMetrics(facts.Metrics); m != nil && m.DebtToEquity != nil {
		switch {
		case *m.DebtToEquity < 0.5:
			result.Score += 2
		case *m.DebtToEquity < 1:
			result.Score += 1
		}
		details = append(details, fmt.Sprintf("D/E %.2f", *m.DebtToEquity))
	} else {
		details = append(details, "D/E unavailable")
	}

	li := latestLineItem(facts.LineItems)
	if li != nil && li.CashAndEquivalents != nil && li.TotalDebt != nil {
		if *li.CashAndEquivalents > *li.TotalDebt {
			result.Score += 1
			details = append(details, "net cash position")
		} else {
			details = append(details, "net debt position")
		}
	}

	result.Details = strings.Join(details, ", ")
	return result
}

// analyzeInsiderActivity scores net insider buying. Max 2.
func (s *BurryScorer) analyzeInsiderActivity(facts Facts) SubResult {
	result := SubResult{Name: "insider_activity", MaxScore: 2}

	if len(facts.InsiderTrades) == 0 {
		result.Details = "no insider trade data"
		return result
	}

	var bought, sold float64
	for _, trade := range facts.InsiderTrades {
		if trade.TransactionShares == nil {
			continue
		}
		if *trade.TransactionShares > 0 {
			bought += *trade.TransactionShares
		} else {
			sold += -*trade.TransactionShares
		}
	}

	net := bought - sold
	if net > 0 {
		if net/math.Max(sold, 1) > 1 {
			result.Score = 2
		} else {
			result.Score = 1
		}
		result.Details = fmt.Sprintf("net insider buying of %.0f shares", net)
	} else {
		result.Details = "net insider selling"
	}

	return result
}

// analyzeContrarianSentiment rewards a wall of negative press. Max 1.
func (s *BurryScorer) analyzeContrarianSentiment(facts Facts) SubResult {
	result := SubResult{Name: "contrarian_sentiment", MaxScore: 1}

	if len(facts.News) == 0 {
		result.Details = "no recent news"
		return result
	}

	negatives := 0
	for _, article := range facts.News {
		switch strings.ToLower(article.Sentiment) {
		case "negative", "bearish":
			negatives++
		}
	}

	if negatives >= 5 {
		result.Score = 1
		result.Details = fmt.Sprintf("%d negative headlines, contrarian opportunity", negatives)
	} else {
		result.Details = "limited negative press"
	}

	return result
}
