package models

import "time"

// Direction is the predicted next-period price direction.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// Prediction is one inference result. A neutral prediction carries zero
// confidence and zero change and is the designated fallback when the model
// or its features are unavailable.
type Prediction struct {
	Symbol     string    `json:"symbol"`
	CreatedAt  time.Time `json:"created_at"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	ChangePct  float64   `json:"change_pct"`
	ProbUp     float64   `json:"prob_up"`
	ProbDown   float64   `json:"prob_down"`
	Family     string    `json:"model_family,omitempty"`
}

// NeutralPrediction is the zero-contribution fallback result.
func NeutralPrediction(symbol string) *Prediction {
	return &Prediction{
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
		Direction: DirectionNeutral,
	}
}

// ModelMetrics records one training run. Rows are append-only per symbol.
type ModelMetrics struct {
	Symbol     string    `json:"symbol"`
	TrainedAt  time.Time `json:"trained_at"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	F1         float64   `json:"f1"`
	CVAccuracy float64   `json:"cv_accuracy"`
	CVStd      float64   `json:"cv_std"`
	Samples    int       `json:"samples"`
	Features   []string  `json:"features"`
	Family     string    `json:"model_family"`
}

// PredictionAccuracy summarizes the audited outcomes of past predictions.
type PredictionAccuracy struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
