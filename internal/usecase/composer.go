package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/internal/domain/service"
	"FinEdge/internal/services/predict"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

// TechnicalScorer scores an enriched series into [-100, 100].
type TechnicalScorer interface {
	Score(bars []models.EnrichedBar) (float64, []models.ComponentScore)
}

// Predictor classifies the next-day direction for the latest bar.
type Predictor interface {
	Predict(ctx context.Context, symbol string, bars []models.EnrichedBar) (*models.Prediction, error)
}

// SentimentScorer scores recent news into [-100, 100].
type SentimentScorer interface {
	Score(ctx context.Context, symbol string) (float64, *models.SentimentDetail, error)
}

// Enricher derives indicator fields over a raw bar series.
type Enricher func(bars []models.PriceBar) []models.EnrichedBar

// Notifier pushes one finished signal to the alerting channel.
type Notifier interface {
	NotifySignal(ctx context.Context, s models.Signal)
}

// Composer fuses the three sub-scores into one edge score per symbol.
// A failed sub-source contributes zero and is annotated in the breakdown;
// only a missing price series aborts the whole signal.
type Composer struct {
	cfg       config.ScoringConfig
	lookback  int
	prices    service.PriceSeriesProvider
	enrich    Enricher
	technical TechnicalScorer
	predictor Predictor
	sentiment SentimentScorer
	watchlist repository.WatchlistStore
	signals   repository.SignalStore
	publisher repository.SignalPublisher
	notifier  Notifier
	recorder  repository.Metrics
	log       *logger.Logger
}

func NewComposer(
	cfg config.ScoringConfig,
	lookback int,
	prices service.PriceSeriesProvider,
	enrich Enricher,
	technical TechnicalScorer,
	predictor Predictor,
	sentiment SentimentScorer,
	watchlist repository.WatchlistStore,
	signals repository.SignalStore,
	publisher repository.SignalPublisher,
	notifier Notifier,
	recorder repository.Metrics,
	log *logger.Logger,
) *Composer {
	return &Composer{
		cfg:       cfg,
		lookback:  lookback,
		prices:    prices,
		enrich:    enrich,
		technical: technical,
		predictor: predictor,
		sentiment: sentiment,
		watchlist: watchlist,
		signals:   signals,
		publisher: publisher,
		notifier:  notifier,
		recorder:  recorder,
		log:       log,
	}
}

// Generate produces and persists the signal for one symbol.
func (c *Composer) Generate(ctx context.Context, symbol string) (*models.Signal, error) {
	started := time.Now()
	c.log.Info("generating signal", logger.String("symbol", symbol))

	bars, err := c.prices.GetSeries(ctx, symbol, c.lookback)
	if err != nil {
		c.recorder.RecordError("price_series")
		return nil, fmt.Errorf("load price series for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}
	enriched := c.enrich(bars)

	breakdown := models.Breakdown{
		Weights: models.Weights{
			ML:        c.cfg.WeightML,
			Technical: c.cfg.WeightTechnical,
			Sentiment: c.cfg.WeightSentiment,
		},
		Errors: map[string]string{},
	}

	var mlScore float64
	pred, err := c.predictor.Predict(ctx, symbol, enriched)
	if err != nil {
		c.log.Error("ml prediction failed", logger.String("symbol", symbol), logger.Error(err))
		c.recorder.RecordError("ml_predict")
		breakdown.Errors["ml"] = err.Error()
	} else {
		mlScore = predict.Score(pred)
		breakdown.ML = pred
	}

	taScore, components := c.technical.Score(enriched)
	breakdown.Technical = components

	var sentScore float64
	sentScore, detail, err := c.sentiment.Score(ctx, symbol)
	if err != nil {
		c.log.Error("sentiment failed", logger.String("symbol", symbol), logger.Error(err))
		c.recorder.RecordError("sentiment")
		breakdown.Errors["sentiment"] = err.Error()
		sentScore = 0
	} else {
		breakdown.Sentiment = detail
	}
	if len(breakdown.Errors) == 0 {
		breakdown.Errors = nil
	}

	edge := mlScore*c.cfg.WeightML + taScore*c.cfg.WeightTechnical + sentScore*c.cfg.WeightSentiment
	edge = round1(clamp100(edge))

	sig := models.Signal{
		Symbol:         symbol,
		CreatedAt:      time.Now().UTC(),
		Class:          Classify(edge, c.cfg.Bands),
		EdgeScore:      edge,
		MLScore:        round1(mlScore),
		TAScore:        round1(taScore),
		SentimentScore: round1(sentScore),
		Breakdown:      breakdown,
	}

	if err := c.signals.SaveSignal(ctx, sig); err != nil {
		return nil, fmt.Errorf("save signal for %s: %w", symbol, err)
	}
	if c.publisher != nil {
		if err := c.publisher.PublishSignal(ctx, sig); err != nil {
			c.log.Warn("signal publish failed", logger.String("symbol", symbol), logger.Error(err))
			c.recorder.RecordError("publish")
		}
	}
	if c.notifier != nil {
		c.notifier.NotifySignal(ctx, sig)
	}

	c.recorder.RecordSignal(symbol, string(sig.Class))
	c.recorder.RecordEdgeScore(symbol, sig.EdgeScore)
	c.recorder.RecordLatency("signal_generate", time.Since(started).Seconds())
	c.log.Info("signal generated",
		logger.String("symbol", symbol),
		logger.String("class", string(sig.Class)),
		logger.Float64("edge_score", sig.EdgeScore))

	return &sig, nil
}

// LatestIndicators derives the indicator view for one symbol without
// generating or persisting a signal.
func (c *Composer) LatestIndicators(ctx context.Context, symbol string) (*models.IndicatorSnapshot, error) {
	bars, err := c.prices.GetSeries(ctx, symbol, c.lookback)
	if err != nil {
		return nil, fmt.Errorf("load price series for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}

	enriched := c.enrich(bars)
	score, components := c.technical.Score(enriched)
	last := enriched[len(enriched)-1]
	return &models.IndicatorSnapshot{
		Symbol:     symbol,
		AsOf:       last.Date,
		Close:      last.Close,
		TAScore:    round1(score),
		Components: components,
		Indicators: last.DefinedValues(),
	}, nil
}

// Predict runs the ML leg alone. The prediction is persisted by the
// engine as usual but no signal is composed.
func (c *Composer) Predict(ctx context.Context, symbol string) (*models.Prediction, error) {
	bars, err := c.prices.GetSeries(ctx, symbol, c.lookback)
	if err != nil {
		return nil, fmt.Errorf("load price series for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}
	return c.predictor.Predict(ctx, symbol, c.enrich(bars))
}

// GenerateAll runs the watchlist and returns the successful signals
// ordered by edge score descending. Per-symbol failures are logged and
// skipped so one bad instrument never blocks the sweep.
func (c *Composer) GenerateAll(ctx context.Context) ([]models.Signal, error) {
	entries, err := c.watchlist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	signals := make([]models.Signal, 0, len(entries))
	for _, e := range entries {
		sig, err := c.Generate(ctx, e.Symbol)
		if err != nil {
			c.log.Error("signal generation failed",
				logger.String("symbol", e.Symbol), logger.Error(err))
			c.recorder.RecordError("signal_generate")
			continue
		}
		signals = append(signals, *sig)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].EdgeScore > signals[j].EdgeScore
	})
	return signals, nil
}

// Classify maps an edge score onto a signal class. HOLD is closed on both
// ends, so band edges never escalate to the stronger class.
func Classify(score float64, bands config.Bands) models.SignalClass {
	switch {
	case score < bands.StrongSellBelow:
		return models.StrongSell
	case score < bands.SellBelow:
		return models.Sell
	case score <= bands.BuyAbove:
		return models.Hold
	case score <= bands.StrongBuyAbove:
		return models.Buy
	default:
		return models.StrongBuy
	}
}

func clamp100(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
