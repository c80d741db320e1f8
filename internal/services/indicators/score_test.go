package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
	"FinEdge/pkg/config"
)

func testThresholds() config.TechnicalThresholds {
	return config.TechnicalThresholds{
		MinBars:         50,
		RSIOversold:     30,
		RSIBullish:      40,
		RSIBearish:      60,
		RSIOverbought:   70,
		MACDCap:         25,
		BBLowerPct:      0.1,
		BBUpperPct:      0.9,
		VolumeHigh:      2.0,
		VolumeLow:       0.5,
		StochOversold:   20,
		StochOverbought: 80,
	}
}

func scoringBars(n int, mutate func(*models.EnrichedBar)) []models.EnrichedBar {
	bars := make([]models.EnrichedBar, n)
	for i := range bars {
		bars[i] = models.NewEnrichedBar(models.PriceBar{Symbol: "TEST", Close: 100})
	}
	last := &bars[n-1]
	last.RSI = 50
	last.MACDHist = 0
	last.BBPct = 0.5
	last.SMACross1020 = 1
	last.VolumeRatio = 1
	last.StochK = 50
	if mutate != nil {
		mutate(last)
	}
	return bars
}

func TestScoreShortHistory(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(49, nil))
	assert.Zero(t, score)
	assert.Nil(t, components)
}

func TestScoreNeutralReadings(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(50, nil))

	// golden cross is the only non-neutral component
	assert.InDelta(t, 15, score, 1e-9)
	require.Len(t, components, 6)
	for _, c := range components {
		if c.Indicator == "SMA_Cross" {
			assert.Equal(t, SignalGoldenX, c.Signal)
			continue
		}
		assert.Equal(t, SignalNeutral, c.Signal)
		assert.Zero(t, c.Score)
	}
}

func TestScoreBullishExtremesClamp(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.RSI = 25       // oversold +30
		b.MACDHist = 0.5 // capped +25
		b.BBPct = 0.05   // oversold +20
		b.SMACross1020 = 1
		b.VolumeRatio = 3 // high volume +10
		b.StochK = 15     // oversold +15
	}))

	// parts sum to 115 and clamp at the ceiling
	assert.InDelta(t, 100, score, 1e-9)

	byName := map[string]models.ComponentScore{}
	for _, c := range components {
		byName[c.Indicator] = c
	}
	assert.InDelta(t, 30, byName["RSI"].Score, 1e-9)
	assert.InDelta(t, 25, byName["MACD"].Score, 1e-9)
	assert.InDelta(t, 20, byName["Bollinger"].Score, 1e-9)
	assert.InDelta(t, 15, byName["SMA_Cross"].Score, 1e-9)
	assert.InDelta(t, 10, byName["Volume"].Score, 1e-9)
	assert.InDelta(t, 15, byName["Stochastic"].Score, 1e-9)
}

func TestScoreBearishReadings(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.RSI = 75        // overbought -30
		b.MACDHist = -0.1 // -10
		b.BBPct = 0.95    // overbought -20
		b.SMACross1020 = -1
		b.VolumeRatio = 0.3 // low volume -5
		b.StochK = 85       // overbought -15
	}))

	assert.InDelta(t, -95, score, 1e-9)

	byName := map[string]models.ComponentScore{}
	for _, c := range components {
		byName[c.Indicator] = c
	}
	assert.Equal(t, SignalOverbought, byName["RSI"].Signal)
	assert.InDelta(t, -10, byName["MACD"].Score, 1e-9)
	assert.Equal(t, SignalDeathX, byName["SMA_Cross"].Signal)
	assert.Equal(t, SignalLowVolume, byName["Volume"].Signal)
}

func TestScoreMACDCap(t *testing.T) {
	s := NewScorer(testThresholds())

	_, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.MACDHist = -3
	}))
	for _, c := range components {
		if c.Indicator == "MACD" {
			assert.InDelta(t, -25, c.Score, 1e-9)
			assert.Equal(t, SignalBearish, c.Signal)
		}
	}

	_, components = s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.MACDHist = 0.12
	}))
	for _, c := range components {
		if c.Indicator == "MACD" {
			assert.InDelta(t, 12, c.Score, 1e-9)
		}
	}
}

func TestScoreRSIBands(t *testing.T) {
	s := NewScorer(testThresholds())
	cases := []struct {
		rsi    float64
		signal string
		score  float64
	}{
		{25, SignalOversold, 30},
		{35, SignalBullish, 15},
		{50, SignalNeutral, 0},
		{65, SignalBearish, -15},
		{75, SignalOverbought, -30},
	}
	for _, tc := range cases {
		_, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
			b.RSI = tc.rsi
		}))
		for _, c := range components {
			if c.Indicator == "RSI" {
				assert.Equal(t, tc.signal, c.Signal, "rsi=%v", tc.rsi)
				assert.InDelta(t, tc.score, c.Score, 1e-9, "rsi=%v", tc.rsi)
			}
		}
	}
}

func TestScoreUndefinedReadingsAreNeutral(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.RSI = math.NaN()
		b.MACDHist = math.NaN()
		b.BBPct = math.NaN()
		b.VolumeRatio = math.NaN()
		b.StochK = math.NaN()
		b.SMACross1020 = -1
	}))

	assert.InDelta(t, -15, score, 1e-9)
	for _, c := range components {
		if c.Indicator != "SMA_Cross" {
			assert.Zero(t, c.Score)
		}
	}
}

func TestScoreUndefinedCrossIsNeutral(t *testing.T) {
	s := NewScorer(testThresholds())
	score, components := s.Score(scoringBars(50, func(b *models.EnrichedBar) {
		b.SMACross1020 = math.NaN()
	}))

	assert.Zero(t, score)
	for _, c := range components {
		if c.Indicator == "SMA_Cross" {
			assert.Equal(t, SignalNeutral, c.Signal)
			assert.Zero(t, c.Score)
		}
	}
}
