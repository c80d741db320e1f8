package ml

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

const (
	FamilyRandomForest     = "random_forest"
	FamilyGradientBoosting = "gradient_boosting"
)

// Classifier is the trained model surface the prediction engine works with.
type Classifier interface {
	Fit(x [][]float64, y []float64) error
	PredictProba(row []float64) float64
	Family() string
}

// NewClassifier builds an untrained model of the given family.
func NewClassifier(family string, p Params) (Classifier, error) {
	switch family {
	case FamilyRandomForest:
		return NewRandomForest(p), nil
	case FamilyGradientBoosting:
		return NewGradientBoosting(p), nil
	default:
		return nil, fmt.Errorf("unknown model family %q", family)
	}
}

// Bundle pairs a trained classifier with the scaler fit on its training
// set, so the two are always persisted and loaded together.
type Bundle struct {
	Model   Classifier
	Scaler  *StandardScaler
	Columns []string
}

func init() {
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
}

func (b *Bundle) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode model bundle: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	return &b, nil
}
