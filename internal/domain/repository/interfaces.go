package repository

import (
	"context"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/ml"
)

// PriceStore persists daily bars. Bars are immutable once stored; writes of
// an existing (symbol, date) pair replace the row idempotently.
type PriceStore interface {
	SaveBars(ctx context.Context, bars []models.PriceBar) error
	// GetSeries returns up to lookback bars ordered ascending by date.
	// An empty slice means no data, not an error.
	GetSeries(ctx context.Context, symbol string, lookback int) ([]models.PriceBar, error)
	LatestBar(ctx context.Context, symbol string) (*models.PriceBar, error)
}

// WatchlistStore manages tracked instruments.
type WatchlistStore interface {
	List(ctx context.Context) ([]models.WatchlistEntry, error)
	Add(ctx context.Context, e models.WatchlistEntry) error
	Remove(ctx context.Context, symbol string) error
}

// SignalStore is an append-only signal log.
type SignalStore interface {
	SaveSignal(ctx context.Context, s models.Signal) error
	// LatestSignals returns the max-timestamp signal per symbol, ordered
	// by edge score descending.
	LatestSignals(ctx context.Context) ([]models.Signal, error)
	SignalHistory(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
}

// PredictionStore is an append-only prediction audit log.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p models.Prediction) error
	Accuracy(ctx context.Context, symbol string) (models.PredictionAccuracy, error)
}

// ModelMetricsStore is an append-only training history.
type ModelMetricsStore interface {
	SaveMetrics(ctx context.Context, m models.ModelMetrics) error
	LatestMetrics(ctx context.Context, symbol string) (*models.ModelMetrics, error)
}

// ModelStore persists the fitted model and scaler as one versioned unit.
// Save must be atomic: a reader never observes a model without its matching
// scaler. Load returns models.ErrModelNotFound before the first Save.
type ModelStore interface {
	Save(ctx context.Context, symbol string, b *ml.Bundle) error
	Load(ctx context.Context, symbol string) (*ml.Bundle, error)
}

// SentimentStore caches the latest sentiment reading per symbol.
type SentimentStore interface {
	SaveReading(ctx context.Context, r models.SentimentReading) error
	LatestReading(ctx context.Context, symbol string) (*models.SentimentReading, error)
}

// SignalPublisher pushes generated signals onto the event bus. Publish
// failures are logged by callers and never propagated to the scoring path.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, s models.Signal) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordSignal(symbol string, class string)
	RecordEdgeScore(symbol string, score float64)
	RecordTrainingRun(symbol string, result string)
	RecordError(kind string)
	RecordLatency(operation string, seconds float64)
}
