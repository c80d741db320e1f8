package models

import "time"

// SignalClass is the trading recommendation derived from the edge score.
type SignalClass string

const (
	StrongBuy  SignalClass = "STRONG_BUY"
	Buy        SignalClass = "BUY"
	Hold       SignalClass = "HOLD"
	Sell       SignalClass = "SELL"
	StrongSell SignalClass = "STRONG_SELL"
)

// ComponentScore is one indicator's contribution to the technical score.
// The breakdown is part of the public result, not an internal detail.
type ComponentScore struct {
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Signal    string  `json:"signal"`
	Score     float64 `json:"score"`
}

// Weights are the fusion weights applied to each sub-source.
type Weights struct {
	ML        float64 `json:"ml"`
	Technical float64 `json:"technical"`
	Sentiment float64 `json:"sentiment"`
}

// Breakdown explains how an edge score was assembled. Sub-sources that
// failed contribute zero and leave a note in Errors keyed by source name.
type Breakdown struct {
	ML        *Prediction      `json:"ml,omitempty"`
	Technical []ComponentScore `json:"technical,omitempty"`
	Sentiment *SentimentDetail `json:"sentiment,omitempty"`
	Weights   Weights          `json:"weights"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Signal is one fused scoring result for a symbol. Signals form an
// append-only log; the latest signal is the max-timestamp row per symbol.
type Signal struct {
	Symbol         string      `json:"symbol"`
	CreatedAt      time.Time   `json:"created_at"`
	Class          SignalClass `json:"signal"`
	EdgeScore      float64     `json:"edge_score"`
	MLScore        float64     `json:"ml_score"`
	TAScore        float64     `json:"ta_score"`
	SentimentScore float64     `json:"sentiment_score"`
	Breakdown      Breakdown   `json:"breakdown"`
}

// WatchlistEntry is a tracked instrument.
type WatchlistEntry struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	AssetType string    `json:"asset_type"`
	AddedAt   time.Time `json:"added_at"`
}

// DashboardRow aggregates the latest state of one watchlist symbol.
type DashboardRow struct {
	Symbol             string      `json:"symbol"`
	Name               string      `json:"name"`
	AssetType          string      `json:"asset_type"`
	Price              *PriceBar   `json:"price,omitempty"`
	Signal             SignalClass `json:"signal"`
	EdgeScore          float64     `json:"edge_score"`
	MLScore            float64     `json:"ml_score"`
	TAScore            float64     `json:"ta_score"`
	SentimentScore     float64     `json:"sentiment_score"`
	ModelAccuracy      float64     `json:"model_accuracy"`
	PredictionAccuracy *PredictionAccuracy `json:"prediction_accuracy,omitempty"`
	LastSignalAt       time.Time   `json:"last_signal_at"`
}
