package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"FinEdge/internal/domain/repository"
	"FinEdge/internal/service/marketdata"
	"FinEdge/internal/usecase"
	"FinEdge/pkg/logger"
	"FinEdge/pkg/queue"
)

// RefreshJobName routes market refresh tasks.
const RefreshJobName = "signal.refresh"

// RefreshPayload narrows a refresh to one symbol. An empty payload sweeps
// the whole watchlist.
type RefreshPayload struct {
	Symbol string `json:"symbol,omitempty"`
	Days   int    `json:"days,omitempty"`
}

// RefreshJob pulls fresh bars and regenerates signals.
type RefreshJob struct {
	market    *marketdata.Service
	composer  *usecase.Composer
	watchlist repository.WatchlistStore
	days      int
	log       *logger.Logger
}

func NewRefreshJob(
	market *marketdata.Service,
	composer *usecase.Composer,
	watchlist repository.WatchlistStore,
	lookbackDays int,
	log *logger.Logger,
) *RefreshJob {
	return &RefreshJob{
		market:    market,
		composer:  composer,
		watchlist: watchlist,
		days:      lookbackDays,
		log:       log,
	}
}

func (j *RefreshJob) Name() string { return RefreshJobName }

func (j *RefreshJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	days := p.Days
	if days <= 0 {
		days = j.days
	}

	if p.Symbol != "" {
		return j.refreshOne(ctx, p.Symbol, days)
	}
	return j.refreshAll(ctx, days)
}

func (j *RefreshJob) refreshOne(ctx context.Context, symbol string, days int) error {
	if _, err := j.market.Refresh(ctx, symbol, days); err != nil {
		return fmt.Errorf("refresh %s: %w", symbol, err)
	}
	if _, err := j.composer.Generate(ctx, symbol); err != nil {
		return fmt.Errorf("generate %s: %w", symbol, err)
	}
	return nil
}

// refreshAll tolerates per-symbol fetch failures so stale data on one
// instrument never starves the rest of the sweep.
func (j *RefreshJob) refreshAll(ctx context.Context, days int) error {
	entries, err := j.watchlist.List(ctx)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.market.Refresh(ctx, e.Symbol, days); err != nil {
			j.log.Warn("refresh failed",
				logger.String("symbol", e.Symbol), logger.Error(err))
		}
	}

	signals, err := j.composer.GenerateAll(ctx)
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}
	j.log.Info("refresh sweep done",
		logger.Int("watchlist", len(entries)),
		logger.Int("signals", len(signals)))
	return nil
}
