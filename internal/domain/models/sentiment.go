package models

import "time"

// Headline is one news item supplied to the sentiment scorer. Providers
// must supply headlines oldest-first: the aggregation weights later
// positions more heavily, so the most recent headline dominates.
type Headline struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// AnalyzedHeadline is a headline with its lexical polarity in [-1, 1] and
// the discrete band label for that polarity.
type AnalyzedHeadline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Polarity    float64   `json:"sentiment"`
	Label       string    `json:"label"`
}

// SentimentDetail is the explainable part of a sentiment score.
type SentimentDetail struct {
	RawScore  float64            `json:"raw_score"`
	Articles  int                `json:"articles"`
	Headlines []AnalyzedHeadline `json:"headlines,omitempty"`
}

// SentimentReading is the cached per-symbol sentiment snapshot. The latest
// reading replaces the prior one; there is a single cached row per symbol.
type SentimentReading struct {
	Symbol    string             `json:"symbol"`
	FetchedAt time.Time          `json:"fetched_at"`
	Score     float64            `json:"score"`
	Articles  int                `json:"article_count"`
	Headlines []AnalyzedHeadline `json:"headlines,omitempty"`
}
