package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each feature to zero mean and unit variance.
// Columns with zero variance are passed through centered only.
type StandardScaler struct {
	Mean  []float64
	Std   []float64
	NCols int
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("scaler: empty training matrix")
	}
	s.NCols = len(rows[0])
	s.Mean = make([]float64, s.NCols)
	s.Std = make([]float64, s.NCols)

	col := make([]float64, len(rows))
	for j := 0; j < s.NCols; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.StdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != s.NCols {
			return nil, fmt.Errorf("scaler: row has %d columns, want %d", len(row), s.NCols)
		}
		scaled := make([]float64, s.NCols)
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

func (s *StandardScaler) FitTransform(rows [][]float64) ([][]float64, error) {
	if err := s.Fit(rows); err != nil {
		return nil, err
	}
	return s.Transform(rows)
}
