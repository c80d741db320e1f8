package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
	"FinEdge/pkg/logger"
)

func chartBody(symbol string, ts []int64, closes []float64) string {
	tsJSON := "["
	closesJSON := "["
	for i := range ts {
		if i > 0 {
			tsJSON += ","
			closesJSON += ","
		}
		tsJSON += fmt.Sprintf("%d", ts[i])
		closesJSON += fmt.Sprintf("%g", closes[i])
	}
	tsJSON += "]"
	closesJSON += "]"

	return fmt.Sprintf(`{"chart":{"result":[{
        "meta":{"symbol":%q},
        "timestamp":%s,
        "indicators":{
            "quote":[{"open":%s,"high":%s,"low":%s,"close":%s,"volume":%s}],
            "adjclose":[{"adjclose":%s}]
        }
    }],"error":null}}`, symbol, tsJSON, closesJSON, closesJSON, closesJSON, closesJSON, closesJSON, closesJSON)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

type memPriceStore struct {
	bars map[string][]models.PriceBar
}

func newMemPriceStore() *memPriceStore {
	return &memPriceStore{bars: map[string][]models.PriceBar{}}
}

func (m *memPriceStore) SaveBars(_ context.Context, bars []models.PriceBar) error {
	for _, b := range bars {
		m.bars[b.Symbol] = append(m.bars[b.Symbol], b)
	}
	return nil
}

func (m *memPriceStore) GetSeries(_ context.Context, symbol string, lookback int) ([]models.PriceBar, error) {
	bars := m.bars[symbol]
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

func (m *memPriceStore) LatestBar(_ context.Context, symbol string) (*models.PriceBar, error) {
	bars := m.bars[symbol]
	if len(bars) == 0 {
		return nil, models.ErrNoData
	}
	return &bars[len(bars)-1], nil
}

func TestFetchDailyParsesChart(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartBody("AAPL",
			[]int64{day.Unix(), day.AddDate(0, 0, 1).Unix()},
			[]float64{180.5, 182.25}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	bars, err := client.FetchDaily(context.Background(), "aapl", 365)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, day, bars[0].Date)
	assert.InDelta(t, 180.5, bars[0].Close, 1e-9)
	assert.InDelta(t, 182.25, bars[1].AdjClose, 1e-9)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
}

func TestFetchDailyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchDaily(context.Background(), "NOPE", 365)
	assert.ErrorContains(t, err, "No data found")
}

func TestFetchDailyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchDaily(context.Background(), "AAPL", 365)
	assert.ErrorContains(t, err, "429")
}

func TestRefreshPersistsBars(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartBody("AAPL", []int64{day.Unix()}, []float64{180.5}))
	}))
	defer srv.Close()

	store := newMemPriceStore()
	svc := NewService(NewClient(srv.URL, 5*time.Second), store, testLogger(t))

	n, err := svc.Refresh(context.Background(), "AAPL", 365)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.bars["AAPL"], 1)
}

func TestGetSeriesPrefersStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("store had data, fetch should not happen")
	}))
	defer srv.Close()

	store := newMemPriceStore()
	store.bars["AAPL"] = []models.PriceBar{{Symbol: "AAPL", Close: 100}}
	svc := NewService(NewClient(srv.URL, 5*time.Second), store, testLogger(t))

	bars, err := svc.GetSeries(context.Background(), "AAPL", 365)
	require.NoError(t, err)
	require.Len(t, bars, 1)
}

func TestGetSeriesFallsBackToFetch(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartBody("AAPL", []int64{day.Unix()}, []float64{180.5}))
	}))
	defer srv.Close()

	store := newMemPriceStore()
	svc := NewService(NewClient(srv.URL, 5*time.Second), store, testLogger(t))

	bars, err := svc.GetSeries(context.Background(), "AAPL", 365)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	// fetched history is persisted for next time
	assert.Len(t, store.bars["AAPL"], 1)
}

func TestGetSeriesEmptyWhenFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(NewClient(srv.URL, 5*time.Second), newMemPriceStore(), testLogger(t))
	bars, err := svc.GetSeries(context.Background(), "AAPL", 365)
	require.NoError(t, err)
	assert.Empty(t, bars)
}
