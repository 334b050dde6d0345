package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/models"
)

// minPositionPct is the floor for any recommended position.
const minPositionPct = 1.0

// SizingService recommends position sizes from conviction and realized
// volatility: higher conviction sizes up, higher volatility sizes
// down.
type SizingService struct {
	cfg    config.SizingConfig
	logger *logrus.Logger
}

// NewSizingService creates the position sizing service.
func NewSizingService(cfg config.SizingConfig, log *logrus.Logger) *SizingService {
	return &SizingService{cfg: cfg, logger: log}
}

// Calculate derives a recommended portfolio percentage. Base size is
// conviction-scaled against the max position; the volatility factor
// discounts anything rougher than the target volatility and never
// boosts calm names above their conviction-implied size. With no
// usable price history the recommendation is the floor.
func (s *SizingService) Calculate(prices []*models.Price, conviction float64) *models.PositionSizing {
	ps := &models.PositionSizing{MaxPositionPct: s.cfg.MaxPositionPct}

	if len(prices) < 20 {
		ps.RecommendedPct = minPositionPct
		return ps
	}

	annualVol := marketdata.AnnualizedVolatility(prices)
	ps.AnnualVolatility = round2(annualVol * 100)

	base := (conviction / 100) * s.cfg.MaxPositionPct

	floor := s.cfg.FloorVolatility
	if floor <= 0 {
		floor = 0.10
	}
	volFactor := s.cfg.TargetVolatility / math.Max(annualVol, floor)
	if volFactor > 1 {
		volFactor = 1
	}

	recommended := base * volFactor
	if recommended < minPositionPct {
		recommended = minPositionPct
	}
	if recommended > s.cfg.MaxPositionPct {
		recommended = s.cfg.MaxPositionPct
	}

	ps.RecommendedPct = round2(recommended)
	return ps
}
