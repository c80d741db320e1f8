package marketdata

import (
	"context"
	"fmt"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/pkg/logger"
)

// Service is the read path for price series: stored history first, with a
// one-shot fetch when the store is empty. Refresh is the write path run by
// the scheduler.
type Service struct {
	client *Client
	store  repository.PriceStore
	log    *logger.Logger
}

func NewService(client *Client, store repository.PriceStore, log *logger.Logger) *Service {
	return &Service{client: client, store: store, log: log}
}

// Refresh fetches the latest daily history for a symbol and persists it.
func (s *Service) Refresh(ctx context.Context, symbol string, rangeDays int) (int, error) {
	bars, err := s.client.FetchDaily(ctx, symbol, rangeDays)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}
	if err := s.store.SaveBars(ctx, bars); err != nil {
		return 0, err
	}
	s.log.Info("price history refreshed",
		logger.String("symbol", symbol), logger.Int("bars", len(bars)))
	return len(bars), nil
}

// GetSeries serves from the store and falls back to a live fetch for
// symbols that have never been refreshed.
func (s *Service) GetSeries(ctx context.Context, symbol string, lookback int) ([]models.PriceBar, error) {
	bars, err := s.store.GetSeries(ctx, symbol, lookback)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		return bars, nil
	}

	s.log.Info("no stored history, fetching", logger.String("symbol", symbol))
	fetched, err := s.client.FetchDaily(ctx, symbol, lookback)
	if err != nil {
		s.log.Warn("live fetch failed",
			logger.String("symbol", symbol), logger.Error(err))
		return nil, nil
	}
	if len(fetched) == 0 {
		return nil, nil
	}
	if err := s.store.SaveBars(ctx, fetched); err != nil {
		s.log.Warn("failed to persist fetched history",
			logger.String("symbol", symbol), logger.Error(err))
	}
	if len(fetched) > lookback {
		fetched = fetched[len(fetched)-lookback:]
	}
	return fetched, nil
}
