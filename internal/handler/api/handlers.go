package api

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"FinEdge/internal/domain/models"
	domrepo "FinEdge/internal/domain/repository"
	"FinEdge/internal/jobs"
	"FinEdge/internal/usecase"
	xhttp "FinEdge/pkg/http"
	xlogger "FinEdge/pkg/logger"
	"FinEdge/pkg/queue"
)

// Handler implements the Echo-based HTTP API.
type Handler struct {
	log *xlogger.Logger

	composer  *usecase.Composer
	retrainer *usecase.Retrainer
	dashboard *usecase.Dashboard

	watchlist   domrepo.WatchlistStore
	prices      domrepo.PriceStore
	signals     domrepo.SignalStore
	predictions domrepo.PredictionStore
	metrics     domrepo.ModelMetricsStore
	sentiments  domrepo.SentimentStore

	tasks queue.Publisher
}

func NewHandler(
	log *xlogger.Logger,
	composer *usecase.Composer,
	retrainer *usecase.Retrainer,
	dashboard *usecase.Dashboard,
	watchlist domrepo.WatchlistStore,
	prices domrepo.PriceStore,
	signals domrepo.SignalStore,
	predictions domrepo.PredictionStore,
	metrics domrepo.ModelMetricsStore,
	sentiments domrepo.SentimentStore,
	tasks queue.Publisher,
) *Handler {
	return &Handler{
		log:         log,
		composer:    composer,
		retrainer:   retrainer,
		dashboard:   dashboard,
		watchlist:   watchlist,
		prices:      prices,
		signals:     signals,
		predictions: predictions,
		metrics:     metrics,
		sentiments:  sentiments,
		tasks:       tasks,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)

	g.GET("/watchlist", h.ListWatchlist)
	g.POST("/watchlist", h.AddWatchlist)
	g.DELETE("/watchlist/:symbol", h.RemoveWatchlist)

	g.GET("/signals", h.LatestSignals)
	g.POST("/signals/generate", h.GenerateAll)
	g.POST("/signals/:symbol/generate", h.Generate)
	g.GET("/signals/:symbol/history", h.SignalHistory)

	g.GET("/symbols/:symbol/prices", h.PriceHistory)
	g.GET("/symbols/:symbol/indicators", h.Indicators)
	g.GET("/symbols/:symbol/prediction", h.Predict)
	g.GET("/symbols/:symbol/sentiment", h.Sentiment)
	g.GET("/symbols/:symbol/accuracy", h.Accuracy)

	g.POST("/models/retrain", h.Retrain)
	g.GET("/models/:symbol/metrics", h.ModelMetrics)
}

func (h *Handler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (h *Handler) Dashboard(c echo.Context) error {
	rows, err := h.dashboard.Rows(c.Request().Context())
	if err != nil {
		h.log.Error("dashboard failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *Handler) ListWatchlist(c echo.Context) error {
	entries, err := h.watchlist.List(c.Request().Context())
	if err != nil {
		h.log.Error("watchlist list failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *Handler) AddWatchlist(c echo.Context) error {
	req := &models.AddWatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry := models.WatchlistEntry{
		Symbol:    strings.ToUpper(req.Symbol),
		Name:      req.Name,
		AssetType: req.AssetType,
		AddedAt:   time.Now().UTC(),
	}
	if err := h.watchlist.Add(c.Request().Context(), entry); err != nil {
		h.log.Error("watchlist add failed",
			xlogger.String("symbol", entry.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	// warm up the new symbol in the background
	if h.tasks != nil {
		if err := h.tasks.Enqueue(c.Request().Context(), jobs.RefreshJobName,
			jobs.RefreshPayload{Symbol: entry.Symbol}); err != nil {
			h.log.Warn("refresh enqueue failed",
				xlogger.String("symbol", entry.Symbol), xlogger.Error(err))
		}
	}

	return xhttp.CreatedResponse(c, entry)
}

func (h *Handler) RemoveWatchlist(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}
	if err := h.watchlist.Remove(c.Request().Context(), symbol); err != nil {
		h.log.Error("watchlist remove failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *Handler) LatestSignals(c echo.Context) error {
	signals, err := h.signals.LatestSignals(c.Request().Context())
	if err != nil {
		h.log.Error("latest signals failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *Handler) Generate(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	sig, err := h.composer.Generate(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
		}
		h.log.Error("signal generation failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *Handler) GenerateAll(c echo.Context) error {
	signals, err := h.composer.GenerateAll(c.Request().Context())
	if err != nil {
		h.log.Error("signal sweep failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *Handler) SignalHistory(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	req := &models.SignalHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.signals.SignalHistory(c.Request().Context(), symbol, req.Limit)
	if err != nil {
		h.log.Error("signal history failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *Handler) PriceHistory(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.prices.GetSeries(c.Request().Context(), symbol, req.Days)
	if err != nil {
		h.log.Error("price history failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(bars) == 0 {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
	}
	return xhttp.ListResponse(c, bars, int64(len(bars)))
}

func (h *Handler) Indicators(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	snap, err := h.composer.LatestIndicators(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
		}
		h.log.Error("indicator read failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *Handler) Predict(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	pred, err := h.composer.Predict(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
		}
		h.log.Error("prediction read failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, pred)
}

func (h *Handler) Sentiment(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	reading, err := h.sentiments.LatestReading(c.Request().Context(), symbol)
	if err != nil {
		h.log.Error("sentiment read failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if reading == nil {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no sentiment reading for %s", symbol))
	}
	return xhttp.SuccessResponse(c, reading)
}

func (h *Handler) Accuracy(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	acc, err := h.predictions.Accuracy(c.Request().Context(), symbol)
	if err != nil {
		h.log.Error("accuracy failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, acc)
}

// Retrain runs synchronously for one symbol and asynchronously for the
// whole watchlist.
func (h *Handler) Retrain(c echo.Context) error {
	req := &models.RetrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Symbol != "" {
		symbol := strings.ToUpper(req.Symbol)
		metrics, err := h.retrainer.Retrain(c.Request().Context(), symbol)
		if err != nil {
			if errors.Is(err, models.ErrNoData) {
				return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
			}
			if errors.Is(err, models.ErrInsufficientData) {
				return xhttp.BadRequestResponse(c,
					xhttp.BadRequestErrorf("not enough history to train %s", symbol))
			}
			h.log.Error("retrain failed",
				xlogger.String("symbol", symbol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, metrics)
	}

	if h.tasks == nil {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}
	if err := h.tasks.Enqueue(c.Request().Context(), jobs.RetrainJobName, nil); err != nil {
		h.log.Error("retrain enqueue failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "scheduled"})
}

func (h *Handler) ModelMetrics(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	m, err := h.metrics.LatestMetrics(c.Request().Context(), symbol)
	if err != nil {
		h.log.Error("model metrics failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if m == nil {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no trained model for %s", symbol))
	}
	return xhttp.SuccessResponse(c, m)
}
