package indicators

import (
	"math"

	"FinEdge/internal/domain/models"
	"FinEdge/pkg/config"
)

// Signal labels attached to component scores.
const (
	SignalOversold   = "OVERSOLD"
	SignalOverbought = "OVERBOUGHT"
	SignalBullish    = "BULLISH"
	SignalBearish    = "BEARISH"
	SignalNeutral    = "NEUTRAL"
	SignalGoldenX    = "GOLDEN CROSS"
	SignalDeathX     = "DEATH CROSS"
	SignalHighVolume = "HIGH VOLUME"
	SignalLowVolume  = "LOW VOLUME"
)

// Scorer turns the latest enriched bar into a technical score in
// [-100, 100] plus the per-indicator breakdown behind it.
type Scorer struct {
	cfg config.TechnicalThresholds
}

func NewScorer(cfg config.TechnicalThresholds) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score reads the last bar of the series. Histories shorter than the
// minimum return a zero score with no components. Undefined indicator
// values contribute a neutral zero.
func (s *Scorer) Score(bars []models.EnrichedBar) (float64, []models.ComponentScore) {
	if len(bars) < s.cfg.MinBars {
		return 0, nil
	}
	last := bars[len(bars)-1]

	components := []models.ComponentScore{
		s.scoreRSI(last.RSI),
		s.scoreMACD(last.MACDHist),
		s.scoreBollinger(last.BBPct),
		s.scoreSMACross(last.SMACross1020),
		s.scoreVolume(last.VolumeRatio),
		s.scoreStochastic(last.StochK),
	}

	var total float64
	for _, c := range components {
		total += c.Score
	}
	return clampScore(total), components
}

func (s *Scorer) scoreRSI(rsi float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "RSI", Value: rsi, Signal: SignalNeutral}
	switch {
	case !models.Defined(rsi):
	case rsi < s.cfg.RSIOversold:
		c.Signal, c.Score = SignalOversold, 30
	case rsi < s.cfg.RSIBullish:
		c.Signal, c.Score = SignalBullish, 15
	case rsi > s.cfg.RSIOverbought:
		c.Signal, c.Score = SignalOverbought, -30
	case rsi > s.cfg.RSIBearish:
		c.Signal, c.Score = SignalBearish, -15
	}
	return c
}

func (s *Scorer) scoreMACD(hist float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "MACD", Value: hist}
	switch {
	case !models.Defined(hist):
		c.Signal = SignalNeutral
	case hist > 0:
		c.Signal = SignalBullish
		c.Score = math.Min(s.cfg.MACDCap, hist*100)
	default:
		c.Signal = SignalBearish
		c.Score = math.Max(-s.cfg.MACDCap, hist*100)
	}
	return c
}

func (s *Scorer) scoreBollinger(pct float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "Bollinger", Value: pct, Signal: SignalNeutral}
	switch {
	case !models.Defined(pct):
	case pct < s.cfg.BBLowerPct:
		c.Signal, c.Score = SignalOversold, 20
	case pct > s.cfg.BBUpperPct:
		c.Signal, c.Score = SignalOverbought, -20
	}
	return c
}

func (s *Scorer) scoreSMACross(cross float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "SMA_Cross", Value: cross, Signal: SignalNeutral}
	switch {
	case !models.Defined(cross):
	case cross > 0:
		c.Signal, c.Score = SignalGoldenX, 15
	default:
		c.Signal, c.Score = SignalDeathX, -15
	}
	return c
}

func (s *Scorer) scoreVolume(ratio float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "Volume", Value: ratio, Signal: SignalNeutral}
	switch {
	case !models.Defined(ratio):
	case ratio > s.cfg.VolumeHigh:
		c.Signal, c.Score = SignalHighVolume, 10
	case ratio < s.cfg.VolumeLow:
		c.Signal, c.Score = SignalLowVolume, -5
	}
	return c
}

func (s *Scorer) scoreStochastic(k float64) models.ComponentScore {
	c := models.ComponentScore{Indicator: "Stochastic", Value: k, Signal: SignalNeutral}
	switch {
	case !models.Defined(k):
	case k < s.cfg.StochOversold:
		c.Signal, c.Score = SignalOversold, 15
	case k > s.cfg.StochOverbought:
		c.Signal, c.Score = SignalOverbought, -15
	}
	return c
}

func clampScore(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}
