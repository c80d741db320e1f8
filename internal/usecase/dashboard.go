package usecase

import (
	"context"
	"fmt"
	"sort"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/pkg/logger"
)

// Dashboard assembles the per-symbol overview rows.
type Dashboard struct {
	watchlist   repository.WatchlistStore
	signals     repository.SignalStore
	prices      repository.PriceStore
	metrics     repository.ModelMetricsStore
	predictions repository.PredictionStore
	log         *logger.Logger
}

func NewDashboard(
	watchlist repository.WatchlistStore,
	signals repository.SignalStore,
	prices repository.PriceStore,
	metrics repository.ModelMetricsStore,
	predictions repository.PredictionStore,
	log *logger.Logger,
) *Dashboard {
	return &Dashboard{
		watchlist:   watchlist,
		signals:     signals,
		prices:      prices,
		metrics:     metrics,
		predictions: predictions,
		log:         log,
	}
}

// Rows builds one row per watchlist symbol, ordered by edge score
// descending. Missing sub-data leaves zero values rather than failing the
// whole view.
func (d *Dashboard) Rows(ctx context.Context) ([]models.DashboardRow, error) {
	entries, err := d.watchlist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	latest, err := d.signals.LatestSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest signals: %w", err)
	}
	bySymbol := make(map[string]models.Signal, len(latest))
	for _, s := range latest {
		bySymbol[s.Symbol] = s
	}

	rows := make([]models.DashboardRow, 0, len(entries))
	for _, e := range entries {
		row := models.DashboardRow{
			Symbol:    e.Symbol,
			Name:      e.Name,
			AssetType: e.AssetType,
		}

		if sig, ok := bySymbol[e.Symbol]; ok {
			row.Signal = sig.Class
			row.EdgeScore = sig.EdgeScore
			row.MLScore = sig.MLScore
			row.TAScore = sig.TAScore
			row.SentimentScore = sig.SentimentScore
			row.LastSignalAt = sig.CreatedAt
		}

		if bar, err := d.prices.LatestBar(ctx, e.Symbol); err != nil {
			d.log.Warn("latest price unavailable",
				logger.String("symbol", e.Symbol), logger.Error(err))
		} else {
			row.Price = bar
		}

		if m, err := d.metrics.LatestMetrics(ctx, e.Symbol); err != nil {
			d.log.Warn("model metrics unavailable",
				logger.String("symbol", e.Symbol), logger.Error(err))
		} else if m != nil {
			row.ModelAccuracy = m.Accuracy
		}

		if acc, err := d.predictions.Accuracy(ctx, e.Symbol); err != nil {
			d.log.Warn("prediction accuracy unavailable",
				logger.String("symbol", e.Symbol), logger.Error(err))
		} else if acc.Total > 0 {
			row.PredictionAccuracy = &acc
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EdgeScore > rows[j].EdgeScore
	})
	return rows, nil
}
