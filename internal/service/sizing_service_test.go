package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/models"
)

func priceSeries(closes ...float64) []*models.Price {
	bars := make([]*models.Price, 0, len(closes))
	day := time.Now().UTC().AddDate(0, 0, -len(closes))
	for i, c := range closes {
		bars = append(bars, &models.Price{Ticker: "AAPL", Close: c, Time: day.AddDate(0, 0, i)})
	}
	return bars
}

func flatSeries(n int, close float64) []*models.Price {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = close
	}
	return priceSeries(closes...)
}

func choppySeries(n int) []*models.Price {
	closes := make([]float64, n)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 120
		}
	}
	return priceSeries(closes...)
}

func newSizingService() *SizingService {
	return NewSizingService(config.SizingConfig{
		MaxPositionPct:   10,
		TargetVolatility: 0.15,
		FloorVolatility:  0.10,
	}, testLogger())
}

func TestCalculateScalesWithConviction(t *testing.T) {
	svc := newSizingService()

	// a flat series realizes zero volatility, so only conviction matters
	ps := svc.Calculate(flatSeries(30, 100), 80)

	assert.InDelta(t, 8.0, ps.RecommendedPct, 1e-9)
	assert.Equal(t, 10.0, ps.MaxPositionPct)
}

func TestCalculateDiscountsVolatility(t *testing.T) {
	svc := newSizingService()

	calm := svc.Calculate(flatSeries(30, 100), 80)
	rough := svc.Calculate(choppySeries(30), 80)

	assert.Less(t, rough.RecommendedPct, calm.RecommendedPct)
	assert.GreaterOrEqual(t, rough.RecommendedPct, minPositionPct)
	assert.Greater(t, rough.AnnualVolatility, calm.AnnualVolatility)
}

func TestCalculateClampsToMaxPosition(t *testing.T) {
	svc := newSizingService()

	ps := svc.Calculate(flatSeries(30, 100), 100)

	assert.InDelta(t, 10.0, ps.RecommendedPct, 1e-9)
}

func TestCalculateFloorsWithoutHistory(t *testing.T) {
	svc := newSizingService()

	tests := []struct {
		name   string
		prices []*models.Price
	}{
		{"nil history", nil},
		{"short history", flatSeries(10, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := svc.Calculate(tt.prices, 90)
			assert.Equal(t, minPositionPct, ps.RecommendedPct)
		})
	}
}

func TestCalculateNeverGoesBelowFloor(t *testing.T) {
	svc := newSizingService()

	// low conviction on a violently choppy name
	ps := svc.Calculate(choppySeries(40), 10)

	assert.Equal(t, minPositionPct, ps.RecommendedPct)
}
