package usecase

import (
	"context"
	"errors"
	"fmt"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/internal/domain/service"
	"FinEdge/pkg/logger"
)

// Trainer fits and persists a fresh model for a symbol.
type Trainer interface {
	Train(ctx context.Context, symbol string, bars []models.EnrichedBar) (*models.ModelMetrics, error)
}

// Statuses reported per symbol by a retrain sweep.
const (
	RetrainOK           = "ok"
	RetrainInsufficient = "insufficient_data"
	RetrainNoData       = "no_data"
	RetrainError        = "error"
)

// RetrainResult is the outcome of one symbol in a retrain sweep.
type RetrainResult struct {
	Symbol  string               `json:"symbol"`
	Status  string               `json:"status"`
	Metrics *models.ModelMetrics `json:"metrics,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Retrainer refreshes the per-symbol models from stored history.
type Retrainer struct {
	lookback  int
	prices    service.PriceSeriesProvider
	enrich    Enricher
	trainer   Trainer
	watchlist repository.WatchlistStore
	log       *logger.Logger
}

func NewRetrainer(
	lookback int,
	prices service.PriceSeriesProvider,
	enrich Enricher,
	trainer Trainer,
	watchlist repository.WatchlistStore,
	log *logger.Logger,
) *Retrainer {
	return &Retrainer{
		lookback:  lookback,
		prices:    prices,
		enrich:    enrich,
		trainer:   trainer,
		watchlist: watchlist,
		log:       log,
	}
}

// Retrain fits a fresh model for one symbol from its stored series.
func (r *Retrainer) Retrain(ctx context.Context, symbol string) (*models.ModelMetrics, error) {
	bars, err := r.prices.GetSeries(ctx, symbol, r.lookback)
	if err != nil {
		return nil, fmt.Errorf("load price series for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}
	return r.trainer.Train(ctx, symbol, r.enrich(bars))
}

// RetrainAll sweeps the watchlist. Individual failures are reported in
// the result set, never propagated.
func (r *Retrainer) RetrainAll(ctx context.Context) ([]RetrainResult, error) {
	entries, err := r.watchlist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	results := make([]RetrainResult, 0, len(entries))
	for _, e := range entries {
		res := RetrainResult{Symbol: e.Symbol, Status: RetrainOK}
		metrics, err := r.Retrain(ctx, e.Symbol)
		switch {
		case errors.Is(err, models.ErrInsufficientData):
			res.Status = RetrainInsufficient
			res.Error = err.Error()
		case errors.Is(err, models.ErrNoData):
			res.Status = RetrainNoData
			res.Error = err.Error()
		case err != nil:
			res.Status = RetrainError
			res.Error = err.Error()
			r.log.Error("retrain failed",
				logger.String("symbol", e.Symbol), logger.Error(err))
		default:
			res.Metrics = metrics
		}
		results = append(results, res)
	}
	return results, nil
}
