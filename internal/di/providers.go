package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "FinEdge/internal/domain/repository"
	domservice "FinEdge/internal/domain/service"
	"FinEdge/internal/handler/api"
	"FinEdge/internal/jobs"
	"FinEdge/internal/notifications"
	internalrepo "FinEdge/internal/repository"
	"FinEdge/internal/scheduler"
	"FinEdge/internal/service/marketdata"
	"FinEdge/internal/service/news"
	"FinEdge/internal/service/ratelimit"
	"FinEdge/internal/services/indicators"
	"FinEdge/internal/services/predict"
	"FinEdge/internal/services/sentiment"
	"FinEdge/internal/usecase"
	pkgch "FinEdge/pkg/clickhouse"
	"FinEdge/pkg/config"
	xhttp "FinEdge/pkg/http"
	pkgkafka "FinEdge/pkg/kafka"
	applogger "FinEdge/pkg/logger"
	"FinEdge/pkg/metrics"
	"FinEdge/pkg/queue"
	"FinEdge/pkg/server"
)

// ProvideLogger creates the application logger. Development gets a console
// format, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client. Schema init happens
// on App.Run.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates the Redis client shared by the task queue and
// the sentiment cache.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the event bus
// is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, 10*time.Second),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMarketStore creates the ClickHouse price and watchlist store.
func ProvideMarketStore(ch *pkgch.Client, l *applogger.Logger) *internalrepo.CHMarketStore {
	store := internalrepo.NewCHMarketStore(ch)
	store.SetLogger(l)
	return store
}

// ProvideSignalStore creates the ClickHouse signal, prediction, and model
// metrics store.
func ProvideSignalStore(ch *pkgch.Client, l *applogger.Logger) *internalrepo.CHSignalStore {
	store := internalrepo.NewCHSignalStore(ch)
	store.SetLogger(l)
	return store
}

func ProvidePriceStore(s *internalrepo.CHMarketStore) domrepo.PriceStore         { return s }
func ProvideWatchlistStore(s *internalrepo.CHMarketStore) domrepo.WatchlistStore { return s }

func ProvideSignalLog(s *internalrepo.CHSignalStore) domrepo.SignalStore        { return s }
func ProvidePredictionStore(s *internalrepo.CHSignalStore) domrepo.PredictionStore {
	return s
}
func ProvideModelMetricsStore(s *internalrepo.CHSignalStore) domrepo.ModelMetricsStore {
	return s
}

// ProvideModelStore creates the on-disk model bundle store.
func ProvideModelStore(cfg *config.Config, l *applogger.Logger) (domrepo.ModelStore, error) {
	store, err := internalrepo.NewFileModelStore(cfg.Model.Dir)
	if err != nil {
		return nil, fmt.Errorf("model store: %w", err)
	}
	store.SetLogger(l)
	return store, nil
}

// ProvideSentimentStore creates the Redis sentiment reading cache.
func ProvideSentimentStore(rdb *redis.Client, l *applogger.Logger) domrepo.SentimentStore {
	cache := internalrepo.NewRedisSentimentCache(rdb, 30*time.Minute)
	cache.SetLogger(l)
	return cache
}

// ProvideSignalPublisher creates the Kafka signal publisher, or a noop one
// when the event bus is disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.SignalPublisher {
	if producer == nil {
		return internalrepo.NoopSignalPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketDataService creates the chart API client and series service.
func ProvideMarketDataService(cfg *config.Config, prices domrepo.PriceStore, l *applogger.Logger) *marketdata.Service {
	client := marketdata.NewClient(cfg.Market.BaseURL, cfg.Market.Timeout)
	return marketdata.NewService(client, prices, l)
}

// ProvideHeadlineProvider creates the RSS fetcher. Feed hosts share a
// token-bucket limiter.
func ProvideHeadlineProvider(cfg *config.Config, l *applogger.Logger) domservice.HeadlineProvider {
	limiter := ratelimit.New(3, 1)
	return news.NewFetcher(cfg.News, limiter, l)
}

// ProvideSentimentScorer creates the recency-weighted sentiment leg.
func ProvideSentimentScorer(
	cfg *config.Config,
	headlines domservice.HeadlineProvider,
	readings domrepo.SentimentStore,
	l *applogger.Logger,
) usecase.SentimentScorer {
	return sentiment.NewScorer(cfg.News.Enabled, headlines, readings, l)
}

// ProvideTechnicalScorer creates the indicator scoring leg.
func ProvideTechnicalScorer(cfg *config.Config) usecase.TechnicalScorer {
	return indicators.NewScorer(cfg.Scoring.Technical)
}

// ProvideEnricher exposes the indicator computation as the series enricher.
func ProvideEnricher() usecase.Enricher {
	return indicators.Compute
}

// ProvidePredictEngine creates the ML leg.
func ProvidePredictEngine(
	cfg *config.Config,
	modelStore domrepo.ModelStore,
	metricsStore domrepo.ModelMetricsStore,
	predictions domrepo.PredictionStore,
	recorder domrepo.Metrics,
	l *applogger.Logger,
) *predict.Engine {
	return predict.NewEngine(cfg.Model, modelStore, metricsStore, predictions, recorder, l)
}

func ProvidePredictor(e *predict.Engine) usecase.Predictor { return e }
func ProvideTrainer(e *predict.Engine) usecase.Trainer     { return e }

// ProvideNotifier creates the webhook alert dispatcher.
func ProvideNotifier(cfg *config.Config, l *applogger.Logger) usecase.Notifier {
	return notifications.NewWebhookNotifier(cfg.Alerts, l)
}

// ProvideComposer creates the signal composer.
func ProvideComposer(
	cfg *config.Config,
	market *marketdata.Service,
	enrich usecase.Enricher,
	technical usecase.TechnicalScorer,
	predictor usecase.Predictor,
	sentimentScorer usecase.SentimentScorer,
	watchlist domrepo.WatchlistStore,
	signals domrepo.SignalStore,
	publisher domrepo.SignalPublisher,
	notifier usecase.Notifier,
	recorder domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Composer {
	return usecase.NewComposer(
		cfg.Scoring,
		cfg.Market.LookbackDays,
		market,
		enrich,
		technical,
		predictor,
		sentimentScorer,
		watchlist,
		signals,
		publisher,
		notifier,
		recorder,
		l,
	)
}

// ProvideRetrainer creates the watchlist retrainer.
func ProvideRetrainer(
	cfg *config.Config,
	market *marketdata.Service,
	enrich usecase.Enricher,
	trainer usecase.Trainer,
	watchlist domrepo.WatchlistStore,
	l *applogger.Logger,
) *usecase.Retrainer {
	return usecase.NewRetrainer(cfg.Market.LookbackDays, market, enrich, trainer, watchlist, l)
}

// ProvideDashboard creates the overview aggregator.
func ProvideDashboard(
	watchlist domrepo.WatchlistStore,
	signals domrepo.SignalStore,
	prices domrepo.PriceStore,
	modelMetrics domrepo.ModelMetricsStore,
	predictions domrepo.PredictionStore,
	l *applogger.Logger,
) *usecase.Dashboard {
	return usecase.NewDashboard(watchlist, signals, prices, modelMetrics, predictions, l)
}

// ProvideTaskQueue creates the Redis task queue with the refresh and
// retrain jobs registered.
func ProvideTaskQueue(
	cfg *config.Config,
	l *applogger.Logger,
	rdb *redis.Client,
	refresh *jobs.RefreshJob,
	retrain *jobs.RetrainJob,
) *queue.RedisQueue {
	q := queue.NewRedisQueue(l, queue.Config{
		Workers:    cfg.Scheduler.QueueWorkers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rdb)
	q.Register(refresh, retrain)
	return q
}

// ProvideTaskPublisher exposes the queue's publishing side.
func ProvideTaskPublisher(q *queue.RedisQueue) queue.Publisher { return q }

// ProvideRefreshJob creates the market refresh sweep job.
func ProvideRefreshJob(
	cfg *config.Config,
	market *marketdata.Service,
	composer *usecase.Composer,
	watchlist domrepo.WatchlistStore,
	l *applogger.Logger,
) *jobs.RefreshJob {
	return jobs.NewRefreshJob(market, composer, watchlist, cfg.Market.LookbackDays, l)
}

// ProvideRetrainJob creates the model retrain sweep job.
func ProvideRetrainJob(retrainer *usecase.Retrainer, l *applogger.Logger) *jobs.RetrainJob {
	return jobs.NewRetrainJob(retrainer, l)
}

// ProvideScheduler creates the recurring sweep scheduler.
func ProvideScheduler(cfg *config.Config, tasks queue.Publisher, l *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg.Scheduler, tasks, l)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	l *applogger.Logger,
	composer *usecase.Composer,
	retrainer *usecase.Retrainer,
	dashboard *usecase.Dashboard,
	watchlist domrepo.WatchlistStore,
	prices domrepo.PriceStore,
	signals domrepo.SignalStore,
	predictions domrepo.PredictionStore,
	modelMetrics domrepo.ModelMetricsStore,
	sentiments domrepo.SentimentStore,
	tasks queue.Publisher,
) xhttp.Handler {
	return api.NewHandler(l, composer, retrainer, dashboard,
		watchlist, prices, signals, predictions, modelMetrics, sentiments, tasks)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	chClient *pkgch.Client,
	rdb *redis.Client,
	producer *pkgkafka.Producer,
	tasks *queue.RedisQueue,
	sched *scheduler.Scheduler,
	watchlist domrepo.WatchlistStore,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, chClient, rdb, producer, tasks, sched, watchlist, handler)
}
