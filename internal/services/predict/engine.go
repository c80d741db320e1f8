package predict

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/internal/ml"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

const volatilityWindow = 20

// Engine trains and serves the per-symbol direction classifiers.
type Engine struct {
	cfg         config.ModelConfig
	modelStore  repository.ModelStore
	metricStore repository.ModelMetricsStore
	predictions repository.PredictionStore
	recorder    repository.Metrics
	log         *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(
	cfg config.ModelConfig,
	modelStore repository.ModelStore,
	metricStore repository.ModelMetricsStore,
	predictions repository.PredictionStore,
	recorder repository.Metrics,
	log *logger.Logger,
) *Engine {
	return &Engine{
		cfg:         cfg,
		modelStore:  modelStore,
		metricStore: metricStore,
		predictions: predictions,
		recorder:    recorder,
		log:         log,
		locks:       map[string]*sync.Mutex{},
	}
}

// symbolLock serializes training per symbol so concurrent refresh and
// retrain jobs never race on the same bundle.
func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		e.locks[symbol] = l
	}
	return l
}

// Train fits a fresh model on the enriched series and persists the bundle
// with its training metrics. Returns models.ErrInsufficientData when too
// few clean rows remain; nothing is written in that case.
func (e *Engine) Train(ctx context.Context, symbol string, bars []models.EnrichedBar) (*models.ModelMetrics, error) {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()
	return e.train(ctx, symbol, bars)
}

func (e *Engine) train(ctx context.Context, symbol string, bars []models.EnrichedBar) (*models.ModelMetrics, error) {
	started := time.Now()

	x, y := BuildDataset(bars)
	if len(x) < e.cfg.MinTrainingSamples {
		e.recorder.RecordTrainingRun(symbol, "insufficient_data")
		return nil, fmt.Errorf("%w: %d clean samples for %s, need %d",
			models.ErrInsufficientData, len(x), symbol, e.cfg.MinTrainingSamples)
	}

	scaler := ml.NewStandardScaler()
	scaled, err := scaler.FitTransform(x)
	if err != nil {
		e.recorder.RecordTrainingRun(symbol, "error")
		return nil, fmt.Errorf("scale features for %s: %w", symbol, err)
	}

	params := e.params()
	cvMean, cvStd, err := ml.CrossValidate(e.cfg.Family, params, scaled, y, e.cfg.CVFolds)
	if err != nil {
		e.recorder.RecordTrainingRun(symbol, "error")
		return nil, fmt.Errorf("cross-validate %s: %w", symbol, err)
	}

	model, err := ml.NewClassifier(e.cfg.Family, params)
	if err != nil {
		e.recorder.RecordTrainingRun(symbol, "error")
		return nil, err
	}
	if err := model.Fit(scaled, y); err != nil {
		e.recorder.RecordTrainingRun(symbol, "error")
		return nil, fmt.Errorf("fit %s: %w", symbol, err)
	}

	ev := ml.Evaluate(model, scaled, y)
	metrics := models.ModelMetrics{
		Symbol:     symbol,
		TrainedAt:  time.Now().UTC(),
		Accuracy:   ev.Accuracy,
		Precision:  ev.Precision,
		Recall:     ev.Recall,
		F1:         ev.F1,
		CVAccuracy: cvMean,
		CVStd:      cvStd,
		Samples:    len(x),
		Features:   FeatureColumns,
		Family:     model.Family(),
	}

	bundle := &ml.Bundle{Model: model, Scaler: scaler, Columns: FeatureColumns}
	if err := e.modelStore.Save(ctx, symbol, bundle); err != nil {
		e.recorder.RecordTrainingRun(symbol, "error")
		return nil, fmt.Errorf("save model for %s: %w", symbol, err)
	}
	if err := e.metricStore.SaveMetrics(ctx, metrics); err != nil {
		e.log.Warn("failed to save model metrics",
			logger.String("symbol", symbol), logger.Error(err))
	}

	e.recorder.RecordTrainingRun(symbol, "success")
	e.recorder.RecordLatency("model_train", time.Since(started).Seconds())
	e.log.Info("model trained",
		logger.String("symbol", symbol),
		logger.String("family", metrics.Family),
		logger.Int("samples", metrics.Samples),
		logger.Float64("accuracy", metrics.Accuracy),
		logger.Float64("cv_accuracy", metrics.CVAccuracy))

	return &metrics, nil
}

// Predict classifies the next-day direction from the latest bar. A missing
// model triggers one training attempt; any failure on that path degrades
// to a neutral prediction rather than an error.
func (e *Engine) Predict(ctx context.Context, symbol string, bars []models.EnrichedBar) (*models.Prediction, error) {
	bundle, err := e.modelStore.Load(ctx, symbol)
	if errors.Is(err, models.ErrModelNotFound) {
		e.log.Info("no model on disk, training", logger.String("symbol", symbol))
		if _, trainErr := e.Train(ctx, symbol, bars); trainErr != nil {
			e.log.Warn("lazy training failed",
				logger.String("symbol", symbol), logger.Error(trainErr))
			return models.NeutralPrediction(symbol), nil
		}
		bundle, err = e.modelStore.Load(ctx, symbol)
	}
	if err != nil {
		e.recorder.RecordError("model_load")
		return nil, fmt.Errorf("load model for %s: %w", symbol, err)
	}

	if len(bundle.Columns) != len(FeatureColumns) {
		e.recorder.RecordError("model_stale")
		return nil, fmt.Errorf("model for %s trained on %d features, want %d",
			symbol, len(bundle.Columns), len(FeatureColumns))
	}

	row, err := LatestFeatures(bars)
	if err != nil {
		e.log.Warn("undefined features, neutral prediction",
			logger.String("symbol", symbol), logger.Error(err))
		return models.NeutralPrediction(symbol), nil
	}

	scaled, err := bundle.Scaler.Transform([][]float64{row})
	if err != nil {
		return nil, fmt.Errorf("scale features for %s: %w", symbol, err)
	}

	probUp := bundle.Model.PredictProba(scaled[0])
	direction := models.DirectionDown
	confidence := 1 - probUp
	if probUp >= 0.5 {
		direction = models.DirectionUp
		confidence = probUp
	}

	change := RecentVolatility(bars, volatilityWindow)
	if direction == models.DirectionDown {
		change = -change
	}

	pred := &models.Prediction{
		Symbol:     symbol,
		CreatedAt:  time.Now().UTC(),
		Direction:  direction,
		Confidence: confidence,
		ChangePct:  change,
		ProbUp:     probUp,
		ProbDown:   1 - probUp,
		Family:     bundle.Model.Family(),
	}

	if err := e.predictions.SavePrediction(ctx, *pred); err != nil {
		e.log.Warn("failed to record prediction",
			logger.String("symbol", symbol), logger.Error(err))
	}
	return pred, nil
}

// Score maps a prediction onto the [-100, 100] scale used by the edge
// composer. Neutral predictions contribute nothing.
func Score(p *models.Prediction) float64 {
	if p == nil || p.Direction == models.DirectionNeutral {
		return 0
	}
	score := p.Confidence * 100
	if p.Direction == models.DirectionDown {
		score = -score
	}
	if score > 100 {
		return 100
	}
	if score < -100 {
		return -100
	}
	return score
}

func (e *Engine) params() ml.Params {
	return ml.Params{
		Estimators:      e.cfg.Estimators,
		MaxDepth:        e.cfg.MaxDepth,
		MinSamplesSplit: e.cfg.MinSamplesSplit,
		MinSamplesLeaf:  e.cfg.MinSamplesLeaf,
		LearningRate:    e.cfg.LearningRate,
		Seed:            e.cfg.Seed,
	}
}
