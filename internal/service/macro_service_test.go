package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-scout/internal/models"
)

func vixBars(closes ...float64) []*models.Price {
	bars := make([]*models.Price, 0, len(closes))
	day := time.Now().UTC().AddDate(0, 0, -len(closes))
	for i, c := range closes {
		bars = append(bars, &models.Price{Ticker: vixTicker, Close: c, Time: day.AddDate(0, 0, i)})
	}
	return bars
}

func TestSnapshotClassifiesRegime(t *testing.T) {
	tests := []struct {
		name       string
		vix        float64
		signal     models.Signal
		wantLevel  string
		wantRegime string
	}{
		{"calm bullish market is risk-on", 14, models.SignalBullish, "low", "risk-on"},
		{"calm bearish call stays neutral", 14, models.SignalBearish, "low", "neutral"},
		{"fearful bearish call is risk-off", 28, models.SignalBearish, "elevated", "risk-off"},
		{"fearful bullish call stays neutral", 28, models.SignalBullish, "elevated", "neutral"},
		{"normal band", 18, models.SignalNeutral, "normal", "neutral"},
		{"panic band", 35, models.SignalNeutral, "high", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMacroService(&stubProvider{prices: vixBars(tt.vix, tt.vix)}, testLogger())

			mc := svc.Snapshot(context.Background(), tt.signal)

			require.NotNil(t, mc.VIX)
			assert.Equal(t, tt.vix, *mc.VIX)
			assert.Equal(t, tt.wantLevel, mc.VIXLevel)
			assert.Equal(t, tt.wantRegime, mc.Regime)
		})
	}
}

func TestSnapshotVIXTrend(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   string
	}{
		{"rising above five percent", []float64{20, 21, 22}, "rising"},
		{"falling below five percent", []float64{22, 21, 20}, "falling"},
		{"small moves are flat", []float64{20, 20.5}, "flat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMacroService(&stubProvider{prices: vixBars(tt.closes...)}, testLogger())

			mc := svc.Snapshot(context.Background(), models.SignalNeutral)

			assert.Equal(t, tt.want, mc.VIXTrend)
		})
	}
}

func TestSnapshotDegradesWithoutData(t *testing.T) {
	svc := NewMacroService(&stubProvider{pricesErr: errors.New("provider down")}, testLogger())

	mc := svc.Snapshot(context.Background(), models.SignalBullish)

	assert.Nil(t, mc.VIX)
	assert.Equal(t, "unknown", mc.VIXLevel)
	assert.Equal(t, "unknown", mc.VIXTrend)
	assert.Equal(t, "neutral", mc.Regime)
}
