package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// GradientBoosting fits shallow regression trees to the gradient of the
// logistic loss. The raw score starts at the prior log-odds and each round
// adds learning_rate times the tree fit to the residuals.
type GradientBoosting struct {
	Trees  []*regressionTree
	Init   float64
	Params Params
}

func NewGradientBoosting(p Params) *GradientBoosting {
	return &GradientBoosting{Params: p}
}

func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("boosting: invalid training set (%d rows, %d labels)", n, len(y))
	}

	var pos float64
	for _, v := range y {
		pos += v
	}
	prior := pos / float64(n)
	// keep the log-odds finite on degenerate all-one-class sets
	prior = math.Min(math.Max(prior, 1e-6), 1-1e-6)
	g.Init = math.Log(prior / (1 - prior))

	rng := rand.New(rand.NewSource(g.Params.Seed))
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = g.Init
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	residual := make([]float64, n)

	g.Trees = make([]*regressionTree, 0, g.Params.Estimators)
	for t := 0; t < g.Params.Estimators; t++ {
		for i := range residual {
			residual[i] = y[i] - sigmoid(raw[i])
		}
		tree := fitTree(x, residual, idx, treeParams{
			maxDepth:        g.Params.MaxDepth,
			minSamplesSplit: g.Params.MinSamplesSplit,
			minSamplesLeaf:  g.Params.MinSamplesLeaf,
			rng:             rng,
		})
		g.Trees = append(g.Trees, tree)
		for i, row := range x {
			raw[i] += g.Params.LearningRate * tree.Predict(row)
		}
	}
	return nil
}

func (g *GradientBoosting) PredictProba(row []float64) float64 {
	score := g.Init
	for _, t := range g.Trees {
		score += g.Params.LearningRate * t.Predict(row)
	}
	return sigmoid(score)
}

func (g *GradientBoosting) Family() string { return FamilyGradientBoosting }

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
