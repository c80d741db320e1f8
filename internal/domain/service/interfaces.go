package service

import (
	"context"

	"FinEdge/internal/domain/models"
)

// PriceSeriesProvider yields an ordered daily bar series for a symbol.
// An empty series is tolerated by callers and treated as NoData.
type PriceSeriesProvider interface {
	GetSeries(ctx context.Context, symbol string, lookback int) ([]models.PriceBar, error)
}

// HeadlineProvider fetches news headlines for a symbol, oldest-first.
// An empty result is neutral, not an error.
type HeadlineProvider interface {
	GetHeadlines(ctx context.Context, symbol string) ([]models.Headline, error)
}
