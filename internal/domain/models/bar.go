package models

import (
	"math"
	"time"
)

// PriceBar is one daily OHLCV observation for a symbol. Series are ordered
// ascending by Date with no duplicate dates per symbol.
type PriceBar struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// EnrichedBar is a PriceBar plus derived indicator fields. A derived field
// holds NaN until its look-back window is satisfied; consumers must check
// Defined before treating a value as a number.
type EnrichedBar struct {
	PriceBar

	SMA10 float64
	SMA20 float64
	SMA50 float64
	EMA9  float64
	EMA12 float64
	EMA26 float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	RSI float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64
	BBWidth  float64
	BBPct    float64

	ATR float64

	StochK float64
	StochD float64

	VolumeSMA20 float64
	VolumeRatio float64
	OBV         float64

	ROC5       float64
	ROC10      float64
	ROC20      float64
	Momentum10 float64

	// Crossover flags hold +1 when the faster SMA is strictly above the
	// slower and -1 otherwise; NaN until both averages are defined.
	SMACross1020 float64
	SMACross2050 float64

	VWAP      float64
	WilliamsR float64
	CCI       float64
}

// NewEnrichedBar wraps a raw bar with every derived field undefined.
func NewEnrichedBar(b PriceBar) EnrichedBar {
	nan := math.NaN()
	return EnrichedBar{
		PriceBar:     b,
		SMA10:        nan,
		SMA20:        nan,
		SMA50:        nan,
		EMA9:         nan,
		EMA12:        nan,
		EMA26:        nan,
		MACD:         nan,
		MACDSignal:   nan,
		MACDHist:     nan,
		RSI:          nan,
		BBUpper:      nan,
		BBMiddle:     nan,
		BBLower:      nan,
		BBWidth:      nan,
		BBPct:        nan,
		ATR:          nan,
		StochK:       nan,
		StochD:       nan,
		VolumeSMA20:  nan,
		VolumeRatio:  nan,
		OBV:          nan,
		ROC5:         nan,
		ROC10:        nan,
		ROC20:        nan,
		Momentum10:   nan,
		SMACross1020: nan,
		SMACross2050: nan,
		VWAP:         nan,
		WilliamsR:    nan,
		CCI:          nan,
	}
}

// Defined reports whether a derived value has left its warm-up window.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// DefinedValues lists the derived fields that have left their warm-up
// window, keyed by indicator name. Undefined fields are omitted so the
// map is always JSON-safe.
func (e EnrichedBar) DefinedValues() map[string]float64 {
	out := make(map[string]float64, 28)
	put := func(name string, v float64) {
		if Defined(v) {
			out[name] = v
		}
	}
	put("sma_10", e.SMA10)
	put("sma_20", e.SMA20)
	put("sma_50", e.SMA50)
	put("ema_9", e.EMA9)
	put("ema_12", e.EMA12)
	put("ema_26", e.EMA26)
	put("macd", e.MACD)
	put("macd_signal", e.MACDSignal)
	put("macd_hist", e.MACDHist)
	put("rsi", e.RSI)
	put("bb_upper", e.BBUpper)
	put("bb_middle", e.BBMiddle)
	put("bb_lower", e.BBLower)
	put("bb_width", e.BBWidth)
	put("bb_pct", e.BBPct)
	put("atr", e.ATR)
	put("stoch_k", e.StochK)
	put("stoch_d", e.StochD)
	put("volume_sma_20", e.VolumeSMA20)
	put("volume_ratio", e.VolumeRatio)
	put("obv", e.OBV)
	put("roc_5", e.ROC5)
	put("roc_10", e.ROC10)
	put("roc_20", e.ROC20)
	put("momentum_10", e.Momentum10)
	put("sma_cross_10_20", e.SMACross1020)
	put("sma_cross_20_50", e.SMACross2050)
	put("vwap", e.VWAP)
	put("williams_r", e.WilliamsR)
	put("cci", e.CCI)
	return out
}

// IndicatorSnapshot is the read-only indicator view of one symbol: the
// latest derived values plus the technical score behind them.
type IndicatorSnapshot struct {
	Symbol     string             `json:"symbol"`
	AsOf       time.Time          `json:"as_of"`
	Close      float64            `json:"close"`
	TAScore    float64            `json:"ta_score"`
	Components []ComponentScore   `json:"components,omitempty"`
	Indicators map[string]float64 `json:"indicators"`
}
