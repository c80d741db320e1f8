package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest trains bagged regression trees on binary labels. Each tree
// sees a bootstrap sample and sqrt(n) features per split; the averaged leaf
// values give the probability of the positive class.
type RandomForest struct {
	Trees  []*regressionTree
	Params Params
}

// Params are the knobs shared by both model families.
type Params struct {
	Estimators      int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	LearningRate    float64
	Seed            int64
}

func NewRandomForest(p Params) *RandomForest {
	return &RandomForest{Params: p}
}

func (f *RandomForest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("forest: invalid training set (%d rows, %d labels)", len(x), len(y))
	}
	rng := rand.New(rand.NewSource(f.Params.Seed))
	n := len(x)
	maxFeatures := int(math.Sqrt(float64(len(x[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f.Trees = make([]*regressionTree, 0, f.Params.Estimators)
	for t := 0; t < f.Params.Estimators; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		tree := fitTree(x, y, idx, treeParams{
			maxDepth:        f.Params.MaxDepth,
			minSamplesSplit: f.Params.MinSamplesSplit,
			minSamplesLeaf:  f.Params.MinSamplesLeaf,
			maxFeatures:     maxFeatures,
			rng:             rng,
		})
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// PredictProba returns the probability of the positive class for one row.
func (f *RandomForest) PredictProba(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0.5
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	p := sum / float64(len(f.Trees))
	return clamp01(p)
}

func (f *RandomForest) Family() string { return FamilyRandomForest }

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
