package analyst

import (
	"fmt"
	"math"
	"strings"
)

// AckmanScorer is an activist quality persona: durable high-quality
// businesses, disciplined capital allocation, and a margin of safety
// against a simplified DCF intrinsic value.
type AckmanScorer struct{}

// Key returns the stable persona identifier
func (s *AckmanScorer) Key() string { return "bill_ackman" }

// Name returns the display name
func (s *AckmanScorer) Name() string { return "Bill Ackman" }

// Score runs the quality sub-analyses and aggregates them.
func (s *AckmanScorer) Score(facts Facts) Analysis {
	valuation, _ := s.analyzeValuation(facts)
	components := []SubResult{
		s.analyzeBusinessQuality(facts),
		s.analyzeFinancialDiscipline(facts),
		s.analyzeActivismPotential(facts),
		valuation,
	}
	return Aggregate(s.Key(), facts.Ticker, components)
}

// IntrinsicValue exposes the DCF estimate so the memo factory can set
// a target price from it. Returns false when valuation inputs were
// missing.
func (s *AckmanScorer) IntrinsicValue(facts Facts) (float64, bool) {
	_, iv := s.analyzeValuation(facts)
	return iv, iv > 0
}

// analyzeBusinessQuality scores multi-period revenue growth, margin
// and cash flow consistency, and latest ROE. Max 8.
func (s *AckmanScorer) analyzeBusinessQuality(facts Facts) SubResult {
	result := SubResult{Name: "business_quality", MaxScore: 8}

	if len(facts.Metrics) == 0 || len(facts.LineItems) == 0 {
		result.Details = "insufficient data to analyze business quality"
		return result
	}

	var details []string

	var revenues []float64
	for _, li := range facts.LineItems {
		if li.Revenue != nil {
			revenues = append(revenues, *li.Revenue)
		}
	}
	if len(revenues) >= 2 {
		initial, final := revenues[len(revenues)-1], revenues[0]
		if initial != 0 && final > initial {
			growth := (final - initial) / math.Abs(initial)
			if growth > 0.5 {
				result.Score += 2
				details = append(details, fmt.Sprintf("revenue grew %.1f%% over the period", growth*100))
			} else {
				result.Score += 1
				details = append(details, fmt.Sprintf("revenue growth positive but under 50%% (%.1f%%)", growth*100))
			}
		} else {
			details = append(details, "revenue did not grow significantly")
		}
	} else {
		details = append(details, "not enough revenue data for a multi-period trend")
	}

	var margins, fcfs []float64
	for _, li := range facts.LineItems {
		if li.OperatingMargin != nil {
			margins = append(margins, *li.OperatingMargin)
		}
		if li.FreeCashFlow != nil {
			fcfs = append(fcfs, *li.FreeCashFlow)
		}
	}

	if len(margins) > 0 {
		above := 0
		for _, m := range margins {
			if m > 0.15 {
				above++
			}
		}
		if above >= len(margins)/2+1 {
			result.Score += 2
			details = append(details, "operating margins consistently above 15%")
		} else {
			details = append(details, "operating margin not consistently above 15%")
		}
	} else {
		details = append(details, "no operating margin data")
	}

	if len(fcfs) > 0 {
		positive := 0
		for _, f := range fcfs {
			if f > 0 {
				positive++
			}
		}
		if positive >= len(fcfs)/2+1 {
			result.Score += 1
			details = append(details, "majority of periods show positive free cash flow")
		} else {
			details = append(details, "free cash flow not consistently positive")
		}
	} else {
		details = append(details, "no free cash flow data")
	}

	if m := latestMetrics(facts.Metrics); m != nil && m.ReturnOnEquity != nil {
		if *m.ReturnOnEquity > 0.15 {
			result.Score += 2
			details = append(details, fmt.Sprintf("high ROE of %.1f%%", *m.ReturnOnEquity*100))
		} else {
			details = append(details, fmt.Sprintf("moderate ROE of %.1f%%", *m.ReturnOnEquity*100))
		}
	} else {
		details = append(details, "ROE unavailable")
	}

	result.Details = strings.Join(details, "; ")
	return result
}

// analyzeFinancialDiscipline scores leverage trends and capital
// returns to shareholders. Max 5.
func (s *AckmanScorer) analyzeFinancialDiscipline(facts Facts) SubResult {
	result := SubResult{Name: "financial_discipline", MaxScore: 5}

	if len(facts.LineItems) == 0 {
		result.Details = "insufficient data to analyze financial discipline"
		return result
	}

	var details []string

	var dte []float64
	for _, m := range facts.Metrics {
		if m.DebtToEquity != nil {
			dte = append(dte, *m.DebtToEquity)
		}
	}
	if len(dte) > 0 {
		belowOne := 0
		for _, d := range dte {
			if d < 1.0 {
				belowOne++
			}
		}
		if belowOne >= len(dte)/2+1 {
			result.Score += 2
			details = append(details, "debt-to-equity below 1.0 for most periods")
		} else {
			details = append(details, "debt-to-equity at or above 1.0 in many periods")
		}
	} else {
		var liabToAssets []float64
		for _, li := range facts.LineItems {
			if li.TotalLiabilities != nil && li.TotalAssets != nil && *li.TotalAssets > 0 {
				liabToAssets = append(liabToAssets, *li.TotalLiabilities / *li.TotalAssets)
			}
		}
		if len(liabToAssets) > 0 {
			belowHalf := 0
			for _, r := range liabToAssets {
				if r < 0.5 {
					belowHalf++
				}
			}
			if belowHalf >= len(liabToAssets)/2+1 {
				result.Score += 2
				details = append(details, "liabilities-to-assets below 50% for most periods")
			} else {
				details = append(details, "liabilities-to-assets at or above 50% in many periods")
			}
		} else {
			details = append(details, "no leverage ratio data")
		}
	}

	// Distributions are reported as cash outflows, so paying periods
	// carry negative values.
	var dividends []float64
	for _, li := range facts.LineItems {
		if li.Dividends != nil {
			dividends = append(dividends, *li.Dividends)
		}
	}
	if len(dividends) > 0 {
		paying := 0
		for _, d := range dividends {
			if d < 0 {
				paying++
			}
		}
		if paying >= len(dividends)/2+1 {
			result.Score += 1
			details = append(details, "consistent history of dividend payments")
		} else {
			details = append(details, "dividends not consistently paid")
		}
	} else {
		details = append(details, "no dividend data")
	}

	var shares []float64
	for _, li := range facts.LineItems {
		if li.OutstandingShares != nil {
			shares = append(shares, *li.OutstandingShares)
		}
	}
	if len(shares) >= 2 {
		if shares[0] < shares[len(shares)-1] {
			result.Score += 2
			details = append(details, "outstanding shares decreased over time, likely buybacks")
		} else {
			details = append(details, "no reduction in outstanding shares")
		}
	} else {
		details = append(details, "no multi-period share count data")
	}

	result.Details = strings.Join(details, "; ")
	return result
}

// analyzeActivismPotential looks for healthy revenue growth with
// subpar margins, the setup an activist can work with. Max 2.
func (s *AckmanScorer) analyzeActivismPotential(facts Facts) SubResult {
	result := SubResult{Name: "activism_potential", MaxScore: 2}

	var revenues, margins []float64
	for _, li := range facts.LineItems {
		if li.Revenue != nil {
			revenues = append(revenues, *li.Revenue)
		}
		if li.OperatingMargin != nil {
			margins = append(margins, *li.OperatingMargin)
		}
	}

	if len(revenues) < 2 || len(margins) == 0 {
		result.Details = "not enough data to assess activism potential"
		return result
	}

	initial, final := revenues[len(revenues)-1], revenues[0]
	var growth float64
	if initial != 0 {
		growth = (final - initial) / math.Abs(initial)
	}

	var sum float64
	for _, m := range margins {
		sum += m
	}
	avgMargin := sum / float64(len(margins))

	if growth > 0.15 && avgMargin < 0.10 {
		result.Score = 2
		result.Details = fmt.Sprintf("revenue growth %.1f%% with low average margin %.1f%%, operational upside for an activist", growth*100, avgMargin*100)
	} else {
		result.Details = "no clear activism opportunity"
	}

	return result
}

// DCF assumptions for the reasonable-case intrinsic value.
const (
	dcfGrowthRate       = 0.06
	dcfDiscountRate     = 0.10
	dcfTerminalMultiple = 15
	dcfProjectionYears  = 5
)

// analyzeValuation runs a simplified FCF-based DCF and scores the
// margin of safety against market cap. Max 5. Also returns the
// intrinsic value estimate, 0 when inputs were missing.
func (s *AckmanScorer) analyzeValuation(facts Facts) (SubResult, float64) {
	result := SubResult{Name: "valuation", MaxScore: 5}

	li := latestLineItem(facts.LineItems)
	if li == nil || facts.MarketCap == nil || *facts.MarketCap <= 0 {
		result.Details = "insufficient data to perform valuation"
		return result, 0
	}
	if li.FreeCashFlow == nil || *li.FreeCashFlow <= 0 {
		result.Details = "no positive free cash flow for valuation"
		return result, 0
	}

	fcf := *li.FreeCashFlow
	var presentValue float64
	for year := 1; year <= dcfProjectionYears; year++ {
		futureFCF := fcf * math.Pow(1+dcfGrowthRate, float64(year))
		presentValue += futureFCF / math.Pow(1+dcfDiscountRate, float64(year))
	}
	terminalValue := fcf * math.Pow(1+dcfGrowthRate, dcfProjectionYears) * dcfTerminalMultiple /
		math.Pow(1+dcfDiscountRate, dcfProjectionYears)

	intrinsicValue := presentValue + terminalValue
	marginOfSafety := (intrinsicValue - *facts.MarketCap) / *facts.MarketCap

	switch {
	case marginOfSafety > 0.3:
		result.Score = 3
	case marginOfSafety > 0.1:
		result.Score = 1
	}

	result.Details = fmt.Sprintf("intrinsic value ~%.0f, market cap ~%.0f, margin of safety %.1f%%",
		intrinsicValue, *facts.MarketCap, marginOfSafety*100)
	return result, intrinsicValue
}

// MarginOfSafety recomputes the DCF margin of safety for position and
// target-price decisions. Returns false when valuation inputs were
// missing.
func (s *AckmanScorer) MarginOfSafety(facts Facts) (float64, bool) {
	_, iv := s.analyzeValuation(facts)
	if iv <= 0 || facts.MarketCap == nil || *facts.MarketCap <= 0 {
		return 0, false
	}
	return (iv - *facts.MarketCap) / *facts.MarketCap, true
}
