package indicators

import (
	"math"

	"FinEdge/internal/domain/models"
)

// minBars is the floor below which derived fields stay undefined. Shorter
// histories produce windows too incomplete to score.
const minBars = 30

// Compute derives the full indicator set for a daily price series. Bars
// must be ordered oldest first. Every derived field is NaN until its
// warm-up window has filled; callers check models.Defined before use.
func Compute(bars []models.PriceBar) []models.EnrichedBar {
	n := len(bars)
	out := make([]models.EnrichedBar, n)
	for i, b := range bars {
		out[i] = models.NewEnrichedBar(b)
	}
	if n < minBars {
		return out
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	sma10 := rollingMean(closes, 10)
	sma20 := rollingMean(closes, 20)
	sma50 := rollingMean(closes, 50)
	ema9 := ewm(closes, 9)
	ema12 := ewm(closes, 12)
	ema26 := ewm(closes, 26)

	macd := make([]float64, n)
	for i := range macd {
		macd[i] = ema12[i] - ema26[i]
	}
	macdSignal := ewm(macd, 9)

	rsi := wilderRSI(closes, 14)
	bbStd := rollingStd(closes, 20)
	atr := averageTrueRange(highs, lows, closes, 14)
	stochK := stochasticK(highs, lows, closes, 14)
	stochD := rollingMeanNaN(stochK, 3)
	volSMA := rollingMean(volumes, 20)
	obv := onBalanceVolume(closes, volumes)
	vwap := cumulativeVWAP(bars)
	willR := williamsR(highs, lows, closes, 14)
	cci := commodityChannelIndex(highs, lows, closes, 20)

	for i := range out {
		e := &out[i]
		e.SMA10 = sma10[i]
		e.SMA20 = sma20[i]
		e.SMA50 = sma50[i]
		e.EMA9 = ema9[i]
		e.EMA12 = ema12[i]
		e.EMA26 = ema26[i]
		e.MACD = macd[i]
		e.MACDSignal = macdSignal[i]
		e.MACDHist = macd[i] - macdSignal[i]
		e.RSI = rsi[i]

		e.BBMiddle = sma20[i]
		e.BBUpper = sma20[i] + 2*bbStd[i]
		e.BBLower = sma20[i] - 2*bbStd[i]
		if models.Defined(e.BBMiddle) && e.BBMiddle != 0 {
			e.BBWidth = (e.BBUpper - e.BBLower) / e.BBMiddle * 100
		}
		if band := e.BBUpper - e.BBLower; models.Defined(band) && band != 0 {
			e.BBPct = (closes[i] - e.BBLower) / band
		}

		e.ATR = atr[i]
		e.StochK = stochK[i]
		e.StochD = stochD[i]

		e.VolumeSMA20 = volSMA[i]
		if models.Defined(volSMA[i]) && volSMA[i] != 0 {
			e.VolumeRatio = volumes[i] / volSMA[i]
		}
		e.OBV = obv[i]

		e.ROC5 = rateOfChange(closes, 5, i)
		e.ROC10 = rateOfChange(closes, 10, i)
		e.ROC20 = rateOfChange(closes, 20, i)
		if i >= 10 {
			e.Momentum10 = closes[i] - closes[i-10]
		}

		e.SMACross1020 = crossFlag(sma10[i], sma20[i])
		e.SMACross2050 = crossFlag(sma20[i], sma50[i])

		e.VWAP = vwap[i]
		e.WilliamsR = willR[i]
		e.CCI = cci[i]
	}
	return out
}

// crossFlag is +1 when fast sits above slow and -1 otherwise, including
// during warm-up when either average is still NaN.
func crossFlag(fast, slow float64) float64 {
	if math.IsNaN(fast) || math.IsNaN(slow) {
		return math.NaN()
	}
	if fast > slow {
		return 1
	}
	return -1
}

func rollingMean(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	var sum float64
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingMeanNaN averages a window that may contain NaN warm-up values;
// any NaN inside the window keeps the output undefined.
func rollingMeanNaN(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	for i := window - 1; i < len(vals); i++ {
		var sum float64
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if !models.Defined(vals[j]) {
				ok = false
				break
			}
			sum += vals[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the sample standard deviation over the window.
func rollingStd(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	for i := window - 1; i < len(vals); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += vals[j]
		}
		mean := sum / float64(window)
		var sq float64
		for j := i - window + 1; j <= i; j++ {
			d := vals[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	return out
}

// ewm is the recursive exponential average seeded with the first value.
func ewm(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// wilderRSI smooths gains and losses with alpha 1/period, seeded from the
// first price change.
func wilderRSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < 2 {
		return out
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain = gain
			avgLoss = loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i < period {
			continue
		}
		switch {
		case avgLoss == 0 && avgGain == 0:
			// flat series, undefined
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

func averageTrueRange(highs, lows, closes []float64, period int) []float64 {
	n := len(highs)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return rollingMean(tr, period)
}

func stochasticK(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		hi := highs[i]
		lo := lows[i]
		for j := i - period + 1; j < i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			continue
		}
		out[i] = 100 * (closes[i] - lo) / (hi - lo)
	}
	return out
}

func williamsR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		hi := highs[i]
		lo := lows[i]
		for j := i - period + 1; j < i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			continue
		}
		out[i] = -100 * (hi - closes[i]) / (hi - lo)
	}
	return out
}

func commodityChannelIndex(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}

	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += tp[j]
		}
		mean := sum / float64(period)
		var mad float64
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - mean)
		}
		mad /= float64(period)
		if mad == 0 {
			continue
		}
		out[i] = (tp[i] - mean) / (0.015 * mad)
	}
	return out
}

func onBalanceVolume(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	var running float64
	for i := range closes {
		if i > 0 {
			switch {
			case closes[i] > closes[i-1]:
				running += volumes[i]
			case closes[i] < closes[i-1]:
				running -= volumes[i]
			}
		}
		out[i] = running
	}
	return out
}

// cumulativeVWAP accumulates typical price times volume from the start of
// the series.
func cumulativeVWAP(bars []models.PriceBar) []float64 {
	out := nanSlice(len(bars))
	var pvSum, vSum float64
	for i, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		pvSum += tp * b.Volume
		vSum += b.Volume
		if vSum != 0 {
			out[i] = pvSum / vSum
		}
	}
	return out
}

func rateOfChange(closes []float64, period, i int) float64 {
	if i < period || closes[i-period] == 0 {
		return math.NaN()
	}
	return 100 * (closes[i] - closes[i-period]) / closes[i-period]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
