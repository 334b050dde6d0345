package marketdata

import (
	"math"

	"github.com/yourusername/stock-scout/internal/models"
)

const tradingDaysPerYear = 252

// AnnualizedVolatility computes the annualized standard deviation of
// daily log returns over the given bars. Returns 0 when there are
// fewer than two bars.
func AnnualizedVolatility(prices []*models.Price) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Close
		curr := prices[i].Close
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}

// LastDayMovePct returns the percentage move between the two most
// recent closes, 0 when unavailable.
func LastDayMovePct(prices []*models.Price) float64 {
	if len(prices) < 2 {
		return 0
	}
	prev := prices[len(prices)-2].Close
	curr := prices[len(prices)-1].Close
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev * 100
}
