package ml

import "gonum.org/v1/gonum/stat"

// Evaluation holds in-sample quality numbers for a trained classifier.
type Evaluation struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluate scores predictions at the 0.5 threshold against binary labels.
func Evaluate(model Classifier, x [][]float64, y []float64) Evaluation {
	var tp, fp, fn, correct float64
	for i, row := range x {
		pred := 0.0
		if model.PredictProba(row) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
		switch {
		case pred == 1 && y[i] == 1:
			tp++
		case pred == 1 && y[i] == 0:
			fp++
		case pred == 0 && y[i] == 1:
			fn++
		}
	}

	var ev Evaluation
	if len(y) > 0 {
		ev.Accuracy = correct / float64(len(y))
	}
	if tp+fp > 0 {
		ev.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		ev.Recall = tp / (tp + fn)
	}
	if ev.Precision+ev.Recall > 0 {
		ev.F1 = 2 * ev.Precision * ev.Recall / (ev.Precision + ev.Recall)
	}
	return ev
}

// CrossValidate runs k-fold validation with contiguous folds, training a
// fresh model per fold. Returns the mean fold accuracy and its std dev.
func CrossValidate(family string, p Params, x [][]float64, y []float64, folds int) (float64, float64, error) {
	n := len(x)
	if folds < 2 || n < folds {
		return 0, 0, nil
	}

	accs := make([]float64, 0, folds)
	foldSize := n / folds
	for f := 0; f < folds; f++ {
		lo := f * foldSize
		hi := lo + foldSize
		if f == folds-1 {
			hi = n
		}

		trainX := make([][]float64, 0, n-(hi-lo))
		trainY := make([]float64, 0, n-(hi-lo))
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				continue
			}
			trainX = append(trainX, x[i])
			trainY = append(trainY, y[i])
		}

		model, err := NewClassifier(family, p)
		if err != nil {
			return 0, 0, err
		}
		if err := model.Fit(trainX, trainY); err != nil {
			return 0, 0, err
		}

		var correct float64
		for i := lo; i < hi; i++ {
			pred := 0.0
			if model.PredictProba(x[i]) >= 0.5 {
				pred = 1
			}
			if pred == y[i] {
				correct++
			}
		}
		accs = append(accs, correct/float64(hi-lo))
	}

	return stat.Mean(accs, nil), stat.StdDev(accs, nil), nil
}
