package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/jobs"
	"FinEdge/pkg/logger"
)

type fakeWatchlist struct {
	entries []models.WatchlistEntry
	removed []string
}

func (f *fakeWatchlist) List(context.Context) ([]models.WatchlistEntry, error) {
	return f.entries, nil
}

func (f *fakeWatchlist) Add(_ context.Context, e models.WatchlistEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeWatchlist) Remove(_ context.Context, symbol string) error {
	f.removed = append(f.removed, symbol)
	return nil
}

type fakePrices struct {
	bars []models.PriceBar
}

func (f *fakePrices) SaveBars(context.Context, []models.PriceBar) error { return nil }

func (f *fakePrices) GetSeries(_ context.Context, _ string, lookback int) ([]models.PriceBar, error) {
	if lookback < len(f.bars) {
		return f.bars[len(f.bars)-lookback:], nil
	}
	return f.bars, nil
}

func (f *fakePrices) LatestBar(context.Context, string) (*models.PriceBar, error) {
	return nil, models.ErrNoData
}

type fakeSignals struct {
	history      []models.Signal
	historyLimit int
}

func (f *fakeSignals) SaveSignal(context.Context, models.Signal) error { return nil }

func (f *fakeSignals) LatestSignals(context.Context) ([]models.Signal, error) {
	return f.history, nil
}

func (f *fakeSignals) SignalHistory(_ context.Context, _ string, limit int) ([]models.Signal, error) {
	f.historyLimit = limit
	return f.history, nil
}

type fakePredictions struct {
	acc models.PredictionAccuracy
}

func (f *fakePredictions) SavePrediction(context.Context, models.Prediction) error { return nil }

func (f *fakePredictions) Accuracy(context.Context, string) (models.PredictionAccuracy, error) {
	return f.acc, nil
}

type fakeMetricsStore struct {
	metrics *models.ModelMetrics
}

func (f *fakeMetricsStore) SaveMetrics(context.Context, models.ModelMetrics) error { return nil }

func (f *fakeMetricsStore) LatestMetrics(context.Context, string) (*models.ModelMetrics, error) {
	return f.metrics, nil
}

type fakeSentiments struct {
	reading *models.SentimentReading
}

func (f *fakeSentiments) SaveReading(context.Context, models.SentimentReading) error { return nil }

func (f *fakeSentiments) LatestReading(context.Context, string) (*models.SentimentReading, error) {
	return f.reading, nil
}

type fakeTasks struct {
	enqueued []string
}

func (f *fakeTasks) Enqueue(_ context.Context, job string, _ interface{}) error {
	f.enqueued = append(f.enqueued, job)
	return nil
}

type testDeps struct {
	watchlist   *fakeWatchlist
	prices      *fakePrices
	signals     *fakeSignals
	predictions *fakePredictions
	metrics     *fakeMetricsStore
	sentiments  *fakeSentiments
	tasks       *fakeTasks
}

func newTestHandler(t *testing.T) (*Handler, *testDeps) {
	t.Helper()
	deps := &testDeps{
		watchlist:   &fakeWatchlist{},
		prices:      &fakePrices{},
		signals:     &fakeSignals{},
		predictions: &fakePredictions{},
		metrics:     &fakeMetricsStore{},
		sentiments:  &fakeSentiments{},
		tasks:       &fakeTasks{},
	}
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	h := NewHandler(log, nil, nil, nil,
		deps.watchlist, deps.prices, deps.signals,
		deps.predictions, deps.metrics, deps.sentiments, deps.tasks)
	return h, deps
}

func doRequest(h *Handler, method, target string, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestAddWatchlistUppercasesAndEnqueues(t *testing.T) {
	h, deps := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/watchlist",
		`{"symbol":"aapl","name":"Apple Inc."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusCreated), out["status"])

	require.Len(t, deps.watchlist.entries, 1)
	entry := deps.watchlist.entries[0]
	assert.Equal(t, "AAPL", entry.Symbol)
	assert.Equal(t, "stock", entry.AssetType, "default asset type applied")

	require.Len(t, deps.tasks.enqueued, 1)
	assert.Equal(t, jobs.RefreshJobName, deps.tasks.enqueued[0])
}

func TestAddWatchlistValidation(t *testing.T) {
	h, deps := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/watchlist", `{"name":"missing symbol"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusBadRequest), out["status"])
	assert.Empty(t, deps.watchlist.entries)
}

func TestRemoveWatchlist(t *testing.T) {
	h, deps := newTestHandler(t)
	rec := doRequest(h, http.MethodDelete, "/api/watchlist/tsla", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"TSLA"}, deps.watchlist.removed)
}

func TestSignalHistoryDefaultLimit(t *testing.T) {
	h, deps := newTestHandler(t)
	deps.signals.history = []models.Signal{{Symbol: "AAPL", EdgeScore: 42}}

	rec := doRequest(h, http.MethodGet, "/api/signals/AAPL/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, deps.signals.historyLimit)
}

func TestSignalHistoryLimitBounds(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/signals/AAPL/history?limit=9999", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusBadRequest), out["status"])
}

func TestPriceHistoryNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/symbols/AAPL/prices", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusNotFound), out["status"])
}

func TestPriceHistoryReturnsBars(t *testing.T) {
	h, deps := newTestHandler(t)
	deps.prices.bars = []models.PriceBar{
		{Symbol: "AAPL", Date: time.Now().UTC(), Close: 190},
	}

	rec := doRequest(h, http.MethodGet, "/api/symbols/AAPL/prices?days=30", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusOK), out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestSentimentNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/symbols/AAPL/sentiment", "")

	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusNotFound), out["status"])
}

func TestSentimentReturnsReading(t *testing.T) {
	h, deps := newTestHandler(t)
	deps.sentiments.reading = &models.SentimentReading{
		Symbol: "AAPL", Score: 0.42, Articles: 7,
	}

	rec := doRequest(h, http.MethodGet, "/api/symbols/AAPL/sentiment", "")

	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusOK), out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, 0.42, data["score"])
}

func TestAccuracy(t *testing.T) {
	h, deps := newTestHandler(t)
	deps.predictions.acc = models.PredictionAccuracy{Total: 10, Correct: 7, Accuracy: 0.7}

	rec := doRequest(h, http.MethodGet, "/api/symbols/AAPL/accuracy", "")

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["total"])
	assert.Equal(t, 0.7, data["accuracy"])
}

func TestModelMetricsNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/models/AAPL/metrics", "")

	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusNotFound), out["status"])
}

func TestRetrainAllSchedules(t *testing.T) {
	h, deps := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/models/retrain", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, float64(http.StatusOK), out["status"])
	require.Len(t, deps.tasks.enqueued, 1)
	assert.Equal(t, jobs.RetrainJobName, deps.tasks.enqueued[0])
}
