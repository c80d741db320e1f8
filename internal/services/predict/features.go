package predict

import (
	"FinEdge/internal/domain/models"
)

// FeatureColumns is the fixed feature order fed to the classifier. The
// persisted model bundle records this list so stale bundles surface as a
// column mismatch instead of silently misaligned features.
var FeatureColumns = []string{
	"RSI", "MACD", "MACD_Hist", "BB_Pct", "BB_Width",
	"ATR", "Stoch_K", "Stoch_D", "Volume_Ratio",
	"ROC_5", "ROC_10", "ROC_20", "Momentum_10",
	"SMA_Cross_10_20", "SMA_Cross_20_50", "CCI", "Williams_R",
}

func featureVector(b models.EnrichedBar) []float64 {
	return []float64{
		b.RSI, b.MACD, b.MACDHist, b.BBPct, b.BBWidth,
		b.ATR, b.StochK, b.StochD, b.VolumeRatio,
		b.ROC5, b.ROC10, b.ROC20, b.Momentum10,
		b.SMACross1020, b.SMACross2050, b.CCI, b.WilliamsR,
	}
}

func featuresDefined(row []float64) bool {
	for _, v := range row {
		if !models.Defined(v) {
			return false
		}
	}
	return true
}

// BuildDataset turns an enriched series into a training matrix. The label
// is 1 when the next close is strictly higher. Rows with any undefined
// feature are dropped, as is the final bar, which has no next close.
func BuildDataset(bars []models.EnrichedBar) ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < len(bars)-1; i++ {
		row := featureVector(bars[i])
		if !featuresDefined(row) {
			continue
		}
		label := 0.0
		if bars[i+1].Close > bars[i].Close {
			label = 1
		}
		x = append(x, row)
		y = append(y, label)
	}
	return x, y
}

// LatestFeatures extracts the feature row for the most recent bar.
func LatestFeatures(bars []models.EnrichedBar) ([]float64, error) {
	if len(bars) == 0 {
		return nil, models.ErrNoData
	}
	row := featureVector(bars[len(bars)-1])
	if !featuresDefined(row) {
		return nil, models.ErrInvalidFeature
	}
	return row, nil
}

// RecentVolatility is the mean absolute daily percent change over the most
// recent window, used to size the expected move.
func RecentVolatility(bars []models.EnrichedBar, window int) float64 {
	n := len(bars)
	if n < 2 {
		return 0
	}
	start := n - window
	if start < 1 {
		start = 1
	}
	var sum float64
	var count int
	for i := start; i < n; i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		change := (bars[i].Close - prev) / prev
		if change < 0 {
			change = -change
		}
		sum += change
		count++
	}
	if count == 0 {
		return 0
	}
	return 100 * sum / float64(count)
}
