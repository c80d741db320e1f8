package indicators

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Symbol: "TEST",
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func rampCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	return closes
}

func TestComputeShortSeriesStaysUndefined(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(20)))
	require.Len(t, out, 20)
	last := out[len(out)-1]
	assert.False(t, models.Defined(last.SMA10))
	assert.False(t, models.Defined(last.RSI))
	assert.False(t, models.Defined(last.MACD))
	assert.Equal(t, 20.0, last.Close)
}

func TestComputeMovingAverages(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))

	// rolling windows stay undefined until filled
	assert.False(t, models.Defined(out[8].SMA10))
	assert.InDelta(t, 5.5, out[9].SMA10, 1e-9)
	assert.False(t, models.Defined(out[48].SMA50))
	assert.InDelta(t, 25.5, out[49].SMA50, 1e-9)

	// exponential averages are seeded from the first close
	assert.InDelta(t, 1.0, out[0].EMA12, 1e-9)
	assert.Greater(t, out[59].EMA12, out[59].EMA26)
	assert.Greater(t, out[59].MACD, 0.0)
}

func TestComputeRSIOnMonotonicSeries(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))

	assert.False(t, models.Defined(out[13].RSI))
	// every change is a gain, so RSI saturates
	assert.InDelta(t, 100, out[14].RSI, 1e-9)
	assert.InDelta(t, 100, out[59].RSI, 1e-9)
}

func TestComputeFlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	bars := barsFromCloses(closes)
	for i := range bars {
		bars[i].High = 100
		bars[i].Low = 100
	}
	out := Compute(bars)
	last := out[len(out)-1]

	assert.False(t, models.Defined(last.RSI))
	assert.False(t, models.Defined(last.StochK))
	assert.False(t, models.Defined(last.BBPct))
	assert.False(t, models.Defined(last.CCI))
	assert.InDelta(t, 0, last.BBWidth, 1e-9)
	assert.InDelta(t, 1, last.VolumeRatio, 1e-9)
	assert.InDelta(t, 0, last.OBV, 1e-9)
	assert.InDelta(t, 100, last.VWAP, 1e-9)
}

func TestComputeMomentumAndROC(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))

	assert.False(t, models.Defined(out[4].ROC5))
	assert.InDelta(t, 500, out[5].ROC5, 1e-9) // (6-1)/1
	assert.InDelta(t, 10, out[59].Momentum10, 1e-9)
	assert.False(t, models.Defined(out[9].Momentum10))
}

func TestComputeCrossFlags(t *testing.T) {
	up := Compute(barsFromCloses(rampCloses(60)))
	last := up[len(up)-1]
	assert.Equal(t, 1.0, last.SMACross1020)
	assert.Equal(t, 1.0, last.SMACross2050)

	// flags stay undefined until the slower average fills its window
	assert.False(t, models.Defined(up[18].SMACross1020))
	assert.True(t, models.Defined(up[19].SMACross1020))
	assert.False(t, models.Defined(up[48].SMACross2050))
	assert.True(t, models.Defined(up[49].SMACross2050))

	down := make([]float64, 60)
	for i := range down {
		down[i] = float64(200 - i)
	}
	out := Compute(barsFromCloses(down))
	last = out[len(out)-1]
	assert.Equal(t, -1.0, last.SMACross1020)
	assert.Equal(t, -1.0, last.SMACross2050)
}

func TestComputeStochastic(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))

	assert.False(t, models.Defined(out[12].StochK))
	// window lows bottom at 0, highs top at close+1
	assert.InDelta(t, 100*14.0/15.0, out[13].StochK, 1e-9)
	assert.False(t, models.Defined(out[14].StochD))
	assert.True(t, models.Defined(out[15].StochD))

	// Williams %R mirrors the stochastic range position
	assert.InDelta(t, -100*1.0/15.0, out[13].WilliamsR, 1e-9)
}

func TestComputeOBVDirection(t *testing.T) {
	closes := []float64{10, 11, 10, 10, 12}
	closes = append(closes, rampCloses(40)...)
	out := Compute(barsFromCloses(closes))

	assert.InDelta(t, 0, out[0].OBV, 1e-9)
	assert.InDelta(t, 1000, out[1].OBV, 1e-9)
	assert.InDelta(t, 0, out[2].OBV, 1e-9)
	assert.InDelta(t, 0, out[3].OBV, 1e-9) // unchanged close carries OBV forward
	assert.InDelta(t, 1000, out[4].OBV, 1e-9)
}

func TestComputeBollingerPosition(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))
	last := out[len(out)-1]

	require.True(t, models.Defined(last.BBPct))
	// rising series trades near the upper band
	assert.Greater(t, last.BBPct, 0.5)
	assert.Greater(t, last.BBUpper, last.BBMiddle)
	assert.Less(t, last.BBLower, last.BBMiddle)
	assert.InDelta(t, last.SMA20, last.BBMiddle, 1e-9)
}

func TestComputeATR(t *testing.T) {
	out := Compute(barsFromCloses(rampCloses(60)))

	assert.False(t, models.Defined(out[12].ATR))
	// constant 1-step ramp with 2-point daily range keeps true range at 2
	last := out[len(out)-1]
	assert.InDelta(t, 2, last.ATR, 1e-9)
}

func TestComputeRepeatedCallsAreIdentical(t *testing.T) {
	bars := barsFromCloses(rampCloses(60))
	first := Compute(bars)
	second := Compute(bars)

	// %#v prints NaN deterministically, so equal strings mean every
	// derived column matches bit for bit
	assert.Equal(t, fmt.Sprintf("%#v", first), fmt.Sprintf("%#v", second))

	// the input series is never mutated
	assert.Equal(t, barsFromCloses(rampCloses(60)), bars)
}
