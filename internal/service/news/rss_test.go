package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/service/ratelimit"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func rssBody(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test feed</title>`)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func rssItem(title string, published time.Time) string {
	return fmt.Sprintf(
		`<item><title>%s</title><link>https://example.com/a</link><description>%s body</description><pubDate>%s</pubDate></item>`,
		title, title, published.Format(time.RFC1123Z))
}

func newsConfig(feedURL string, maxItems int) config.NewsConfig {
	return config.NewsConfig{
		Enabled:  true,
		Feeds:    []string{feedURL},
		MaxItems: maxItems,
		Timeout:  5 * time.Second,
	}
}

func TestFetcherParsesAndSortsOldestFirst(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody(
			rssItem("newest", now),
			rssItem("oldest", now.Add(-2*time.Hour)),
			rssItem("middle", now.Add(-time.Hour)),
		))
	}))
	defer srv.Close()

	f := NewFetcher(newsConfig(srv.URL+"/rss?q={symbol}", 20), nil, testLogger(t))
	headlines, err := f.GetHeadlines(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "q=AAPL")
	require.Len(t, headlines, 3)
	assert.Equal(t, "oldest", headlines[0].Title)
	assert.Equal(t, "middle", headlines[1].Title)
	assert.Equal(t, "newest", headlines[2].Title)
	assert.Equal(t, "oldest body", headlines[0].Summary)
	assert.True(t, headlines[2].PublishedAt.Equal(now))
}

func TestFetcherCapsItemsPerFeed(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, 0, 8)
		for i := 0; i < 8; i++ {
			items = append(items, rssItem(fmt.Sprintf("story %d", i), now.Add(-time.Duration(i)*time.Minute)))
		}
		fmt.Fprint(w, rssBody(items...))
	}))
	defer srv.Close()

	f := NewFetcher(newsConfig(srv.URL, 3), nil, testLogger(t))
	headlines, err := f.GetHeadlines(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Len(t, headlines, 3)
}

func TestFetcherSkipsDeadFeed(t *testing.T) {
	now := time.Now().UTC()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(rssItem("alive", now)))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	cfg := config.NewsConfig{
		Enabled:  true,
		Feeds:    []string{bad.URL, good.URL},
		MaxItems: 10,
		Timeout:  5 * time.Second,
	}
	f := NewFetcher(cfg, nil, testLogger(t))
	headlines, err := f.GetHeadlines(context.Background(), "MSFT")
	require.NoError(t, err)
	require.Len(t, headlines, 1)
	assert.Equal(t, "alive", headlines[0].Title)
}

func TestFetcherHonorsRateLimit(t *testing.T) {
	now := time.Now().UTC()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, rssBody(rssItem("story", now)))
	}))
	defer srv.Close()

	limiter := ratelimit.New(1, 0)
	f := NewFetcher(newsConfig(srv.URL, 10), limiter, testLogger(t))

	first, err := f.GetHeadlines(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := f.GetHeadlines(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, hits)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Shares rally after earnings beat",
		stripMarkup(`<p>Shares <b>rally</b> after earnings beat</p>`))
	assert.Equal(t, "plain text", stripMarkup("plain text"))
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	// the limit lands inside the 3-byte euro sign; the cut backs off to
	// the previous boundary instead of emitting a partial sequence
	s := strings.Repeat("a", 199) + "€ and more"
	got := truncate(s, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 199), got)

	whole := strings.Repeat("€", 10)
	got = truncate(whole, 7)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("€", 2), got)
}
