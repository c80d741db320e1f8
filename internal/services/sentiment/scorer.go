package sentiment

import (
	"context"
	"time"

	"FinEdge/internal/domain/models"
	"FinEdge/internal/domain/repository"
	"FinEdge/internal/domain/service"
	"FinEdge/pkg/logger"
)

// displayHeadlines caps how many analyzed headlines travel with a signal.
const displayHeadlines = 10

// Scorer fuses recent headlines into a single sentiment score. Headlines
// arrive oldest-first, so a recency weight of k on the k-th headline tilts
// the average toward the latest news.
type Scorer struct {
	enabled  bool
	news     service.HeadlineProvider
	readings repository.SentimentStore
	log      *logger.Logger
}

func NewScorer(enabled bool, news service.HeadlineProvider, readings repository.SentimentStore, log *logger.Logger) *Scorer {
	return &Scorer{enabled: enabled, news: news, readings: readings, log: log}
}

// Score returns the sentiment score in [-100, 100] with the analyzed
// detail behind it. Disabled sentiment and empty news are both neutral.
func (s *Scorer) Score(ctx context.Context, symbol string) (float64, *models.SentimentDetail, error) {
	detail := &models.SentimentDetail{}
	if !s.enabled {
		return 0, detail, nil
	}

	headlines, err := s.news.GetHeadlines(ctx, symbol)
	if err != nil {
		return 0, nil, err
	}
	if len(headlines) == 0 {
		s.log.Debug("no news found", logger.String("symbol", symbol))
		return 0, detail, nil
	}

	analyzed := make([]models.AnalyzedHeadline, 0, len(headlines))
	var weightedSum, weightSum float64
	for i, h := range headlines {
		text := h.Title
		if h.Summary != "" {
			text += ". " + h.Summary
		}
		polarity := Polarity(text)

		weight := float64(i + 1)
		weightedSum += polarity * weight
		weightSum += weight

		analyzed = append(analyzed, models.AnalyzedHeadline{
			Title:       h.Title,
			Link:        h.Link,
			PublishedAt: h.PublishedAt,
			Polarity:    polarity,
			Label:       Label(polarity),
		})
	}

	raw := weightedSum / weightSum
	detail.RawScore = raw
	detail.Articles = len(analyzed)
	if len(analyzed) > displayHeadlines {
		analyzed = analyzed[len(analyzed)-displayHeadlines:]
	}
	detail.Headlines = analyzed

	reading := models.SentimentReading{
		Symbol:    symbol,
		FetchedAt: time.Now().UTC(),
		Score:     raw,
		Articles:  detail.Articles,
		Headlines: analyzed,
	}
	if err := s.readings.SaveReading(ctx, reading); err != nil {
		s.log.Warn("failed to cache sentiment reading",
			logger.String("symbol", symbol), logger.Error(err))
	}

	score := raw * 100
	if score > 100 {
		score = 100
	}
	if score < -100 {
		score = -100
	}
	return score, detail, nil
}
