package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"FinEdge/internal/domain/models"
	domrepo "FinEdge/internal/domain/repository"
	"FinEdge/internal/repository"
	"FinEdge/internal/scheduler"
	pkgch "FinEdge/pkg/clickhouse"
	"FinEdge/pkg/config"
	xhttp "FinEdge/pkg/http"
	pkgkafka "FinEdge/pkg/kafka"
	applogger "FinEdge/pkg/logger"
	"FinEdge/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg *config.Config
	log *applogger.Logger

	chClient    *pkgch.Client
	redisClient *redis.Client
	producer    *pkgkafka.Producer
	tasks       *queue.RedisQueue
	sched       *scheduler.Scheduler
	watchlist   domrepo.WatchlistStore
	handler     xhttp.Handler

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. producer may be
// nil when the event bus is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	chClient *pkgch.Client,
	redisClient *redis.Client,
	producer *pkgkafka.Producer,
	tasks *queue.RedisQueue,
	sched *scheduler.Scheduler,
	watchlist domrepo.WatchlistStore,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		chClient:    chClient,
		redisClient: redisClient,
		producer:    producer,
		tasks:       tasks,
		sched:       sched,
		watchlist:   watchlist,
		handler:     handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.chClient.InitSchema(ctx, repository.SchemaStatements); err != nil {
		return err
	}
	a.seedWatchlist(ctx)

	if err := a.tasks.Start(); err != nil {
		return err
	}
	a.sched.Start()

	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.metricsPath()),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// seedWatchlist inserts configured instruments that are not tracked yet.
func (a *App) seedWatchlist(ctx context.Context) {
	if len(a.cfg.Watchlist) == 0 {
		return
	}

	existing, err := a.watchlist.List(ctx)
	if err != nil {
		a.log.Warn("watchlist seed skipped", applogger.Error(err))
		return
	}
	have := make(map[string]bool, len(existing))
	for _, e := range existing {
		have[e.Symbol] = true
	}

	added := 0
	for _, seed := range a.cfg.Watchlist {
		if have[seed.Symbol] {
			continue
		}
		entry := models.WatchlistEntry{
			Symbol:    seed.Symbol,
			Name:      seed.Name,
			AssetType: seed.AssetType,
			AddedAt:   time.Now().UTC(),
		}
		if err := a.watchlist.Add(ctx, entry); err != nil {
			a.log.Warn("watchlist seed failed",
				applogger.String("symbol", seed.Symbol), applogger.Error(err))
			continue
		}
		added++
	}
	if added > 0 {
		a.log.Info("watchlist seeded", applogger.Int("added", added))
	}
}

func (a *App) metricsPath() string {
	if !a.cfg.Metrics.Enabled {
		return ""
	}
	return a.cfg.Metrics.Path
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	a.sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.tasks.Stop(shutdownCtx); err != nil {
		a.log.Warn("queue stop error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if err := a.chClient.Close(); err != nil {
		a.log.Warn("clickhouse close error", applogger.Error(err))
	}
	if err := a.redisClient.Close(); err != nil {
		a.log.Warn("redis close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
