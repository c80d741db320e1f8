package predict

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/ml"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

type fakeModelStore struct {
	bundles map[string][]byte
	saves   int
}

func newFakeModelStore() *fakeModelStore {
	return &fakeModelStore{bundles: map[string][]byte{}}
}

func (s *fakeModelStore) Save(_ context.Context, symbol string, b *ml.Bundle) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}
	s.bundles[symbol] = data
	s.saves++
	return nil
}

func (s *fakeModelStore) Load(_ context.Context, symbol string) (*ml.Bundle, error) {
	data, ok := s.bundles[symbol]
	if !ok {
		return nil, models.ErrModelNotFound
	}
	return ml.DecodeBundle(data)
}

type fakeMetricsStore struct {
	saved []models.ModelMetrics
}

func (s *fakeMetricsStore) SaveMetrics(_ context.Context, m models.ModelMetrics) error {
	s.saved = append(s.saved, m)
	return nil
}

func (s *fakeMetricsStore) LatestMetrics(_ context.Context, symbol string) (*models.ModelMetrics, error) {
	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].Symbol == symbol {
			return &s.saved[i], nil
		}
	}
	return nil, nil
}

type fakePredictionStore struct {
	saved []models.Prediction
}

func (s *fakePredictionStore) SavePrediction(_ context.Context, p models.Prediction) error {
	s.saved = append(s.saved, p)
	return nil
}

func (s *fakePredictionStore) Accuracy(_ context.Context, _ string) (models.PredictionAccuracy, error) {
	return models.PredictionAccuracy{}, nil
}

type noopRecorder struct{}

func (noopRecorder) RecordSignal(string, string)        {}
func (noopRecorder) RecordEdgeScore(string, float64)    {}
func (noopRecorder) RecordTrainingRun(string, string)   {}
func (noopRecorder) RecordError(string)                 {}
func (noopRecorder) RecordLatency(string, float64)      {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		Family:             ml.FamilyGradientBoosting,
		MinTrainingSamples: 60,
		Estimators:         30,
		MaxDepth:           3,
		MinSamplesSplit:    4,
		MinSamplesLeaf:     2,
		LearningRate:       0.1,
		Seed:               42,
		CVFolds:            5,
	}
}

// learnableBars alternates an oversold/overbought RSI reading in lockstep
// with the next day's close direction, giving the model a clean pattern.
func learnableBars(n int) []models.EnrichedBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.EnrichedBar, n)
	close := 100.0
	for i := 0; i < n; i++ {
		bars[i] = models.NewEnrichedBar(models.PriceBar{
			Symbol: "TEST",
			Date:   start.AddDate(0, 0, i),
			Close:  close,
			Volume: 1000,
		})
		b := &bars[i]
		b.MACD, b.MACDHist = 0.1, 0.05
		b.BBPct, b.BBWidth = 0.5, 4
		b.ATR = 1.5
		b.StochK, b.StochD = 50, 50
		b.VolumeRatio = 1
		b.ROC5, b.ROC10, b.ROC20 = 0.5, 1, 2
		b.Momentum10 = 1
		b.SMACross1020, b.SMACross2050 = 1, 1
		b.CCI, b.WilliamsR = 10, -50

		if i%2 == 0 {
			b.RSI = 20
			close += 1
		} else {
			b.RSI = 80
			close -= 0.5
		}
	}
	return bars
}

func newTestEngine(t *testing.T) (*Engine, *fakeModelStore, *fakeMetricsStore, *fakePredictionStore) {
	t.Helper()
	ms := newFakeModelStore()
	mets := &fakeMetricsStore{}
	preds := &fakePredictionStore{}
	e := NewEngine(testModelConfig(), ms, mets, preds, noopRecorder{}, testLogger(t))
	return e, ms, mets, preds
}

func TestTrainPersistsBundleAndMetrics(t *testing.T) {
	e, ms, mets, _ := newTestEngine(t)

	metrics, err := e.Train(context.Background(), "TEST", learnableBars(150))
	require.NoError(t, err)

	assert.Equal(t, "TEST", metrics.Symbol)
	assert.Equal(t, ml.FamilyGradientBoosting, metrics.Family)
	assert.Greater(t, metrics.Accuracy, 0.9)
	assert.Equal(t, FeatureColumns, metrics.Features)
	assert.Equal(t, 1, ms.saves)
	require.Len(t, mets.saved, 1)

	bundle, err := ms.Load(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Equal(t, FeatureColumns, bundle.Columns)
}

func TestTrainInsufficientData(t *testing.T) {
	e, ms, _, _ := newTestEngine(t)

	_, err := e.Train(context.Background(), "TEST", learnableBars(30))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Zero(t, ms.saves)
}

func TestPredictTrainsLazily(t *testing.T) {
	e, ms, _, preds := newTestEngine(t)
	bars := learnableBars(151) // last bar carries the oversold reading

	pred, err := e.Predict(context.Background(), "TEST", bars)
	require.NoError(t, err)

	assert.Equal(t, 1, ms.saves)
	assert.Equal(t, models.DirectionUp, pred.Direction)
	assert.GreaterOrEqual(t, pred.Confidence, 0.5)
	assert.Positive(t, pred.ChangePct)
	assert.InDelta(t, pred.ProbUp, pred.Confidence, 1e-9)
	require.Len(t, preds.saved, 1)
}

func TestPredictDownDirection(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	bars := learnableBars(150) // last bar carries the overbought reading

	pred, err := e.Predict(context.Background(), "TEST", bars)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionDown, pred.Direction)
	assert.Negative(t, pred.ChangePct)
	assert.InDelta(t, pred.ProbDown, pred.Confidence, 1e-9)
}

func TestPredictNeutralWhenTrainingImpossible(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	pred, err := e.Predict(context.Background(), "TEST", learnableBars(20))
	require.NoError(t, err)
	assert.Equal(t, models.DirectionNeutral, pred.Direction)
	assert.Zero(t, pred.Confidence)
}

func TestPredictNeutralOnUndefinedFeatures(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	bars := learnableBars(150)
	_, err := e.Train(context.Background(), "TEST", bars)
	require.NoError(t, err)

	bars[len(bars)-1].RSI = math.NaN()
	pred, err := e.Predict(context.Background(), "TEST", bars)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionNeutral, pred.Direction)
}

func TestBuildDatasetDropsDirtyRows(t *testing.T) {
	bars := learnableBars(100)
	bars[10].CCI = math.NaN()

	x, y := BuildDataset(bars)
	// one NaN row and the final unlabeled bar are dropped
	assert.Len(t, x, 98)
	assert.Len(t, y, 98)
}

func TestRecentVolatility(t *testing.T) {
	bars := []models.EnrichedBar{
		models.NewEnrichedBar(models.PriceBar{Close: 100}),
		models.NewEnrichedBar(models.PriceBar{Close: 110}),
		models.NewEnrichedBar(models.PriceBar{Close: 99}),
	}
	// |+10%| and |-10%| average to 10
	assert.InDelta(t, 10, RecentVolatility(bars, 20), 1e-9)
	assert.Zero(t, RecentVolatility(bars[:1], 20))
}

func TestScoreMapping(t *testing.T) {
	assert.Zero(t, Score(nil))
	assert.Zero(t, Score(models.NeutralPrediction("TEST")))

	up := &models.Prediction{Direction: models.DirectionUp, Confidence: 0.8}
	assert.InDelta(t, 80, Score(up), 1e-9)

	down := &models.Prediction{Direction: models.DirectionDown, Confidence: 0.6}
	assert.InDelta(t, -60, Score(down), 1e-9)
}
