package news

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/service/ratelimit"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

const summaryMaxLen = 200

// Fetcher pulls headlines from the configured RSS feeds. Feed URLs carry a
// {symbol} placeholder. A dead feed is logged and skipped; the sentiment
// leg degrades to fewer articles instead of failing.
type Fetcher struct {
	cfg     config.NewsConfig
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewFetcher(cfg config.NewsConfig, limiter *ratelimit.Limiter, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		parser:  gofeed.NewParser(),
		limiter: limiter,
		log:     log,
	}
}

// GetHeadlines returns up to max_items headlines per feed, merged across
// feeds and sorted oldest-first for the recency-weighted scorer.
func (f *Fetcher) GetHeadlines(ctx context.Context, symbol string) ([]models.Headline, error) {
	symbol = strings.ToUpper(symbol)
	var out []models.Headline

	for _, tmpl := range f.cfg.Feeds {
		feedURL := strings.ReplaceAll(tmpl, "{symbol}", url.QueryEscape(symbol))

		if f.limiter != nil && !f.limiter.Allow(hostOf(feedURL)) {
			f.log.Warn("feed rate limited",
				logger.String("symbol", symbol), logger.String("url", feedURL))
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
		feed, err := f.parser.ParseURLWithContext(feedURL, fetchCtx)
		cancel()
		if err != nil {
			f.log.Error("feed fetch failed",
				logger.String("symbol", symbol),
				logger.String("url", feedURL),
				logger.Error(err))
			continue
		}

		count := 0
		for _, item := range feed.Items {
			if count >= f.cfg.MaxItems {
				break
			}
			h := models.Headline{
				Title:   item.Title,
				Summary: truncate(stripMarkup(item.Description), summaryMaxLen),
				Link:    item.Link,
			}
			if item.PublishedParsed != nil {
				h.PublishedAt = item.PublishedParsed.UTC()
			}
			out = append(out, h)
			count++
		}
	}

	// undated items sort first and get the lowest recency weight
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.Before(out[j].PublishedAt)
	})
	return out, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// truncate cuts on a rune boundary so a multi-byte character is never
// split mid-sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripMarkup drops HTML tags that RSS descriptions commonly carry so only
// prose reaches the sentiment lexicon.
func stripMarkup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
