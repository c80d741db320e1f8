package ml

import (
	"math/rand"
	"sort"
)

// regressionTree is a CART tree fit on squared error. Both the forest and
// the boosting machine build on it: the forest averages raw leaf values,
// boosting fits trees to pseudo-residuals.
type regressionTree struct {
	Root *treeNode
}

type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Value     float64
	Leaf      bool
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	// number of features examined per split; 0 means all
	maxFeatures int
	rng         *rand.Rand
}

func fitTree(x [][]float64, y []float64, idx []int, p treeParams) *regressionTree {
	return &regressionTree{Root: growNode(x, y, idx, 0, p)}
}

func growNode(x [][]float64, y []float64, idx []int, depth int, p treeParams) *treeNode {
	if depth >= p.maxDepth || len(idx) < p.minSamplesSplit || pure(y, idx) {
		return &treeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	feature, threshold, ok := bestSplit(x, y, idx, p)
	if !ok {
		return &treeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minSamplesLeaf || len(right) < p.minSamplesLeaf {
		return &treeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(x, y, left, depth+1, p),
		Right:     growNode(x, y, right, depth+1, p),
	}
}

// bestSplit minimizes weighted child variance over candidate features.
func bestSplit(x [][]float64, y []float64, idx []int, p treeParams) (int, float64, bool) {
	nFeatures := len(x[idx[0]])
	features := candidateFeatures(nFeatures, p)

	bestScore := float64(-1)
	bestFeature := -1
	bestThreshold := 0.0
	parentVar := varianceAt(y, idx) * float64(len(idx))

	vals := make([]float64, 0, len(idx))
	for _, f := range features {
		vals = vals[:0]
		for _, i := range idx {
			vals = append(vals, x[i][f])
		}
		sort.Float64s(vals)

		for k := 1; k < len(vals); k++ {
			if vals[k] == vals[k-1] {
				continue
			}
			threshold := (vals[k] + vals[k-1]) / 2

			var lSum, lSq, rSum, rSq float64
			var lN, rN int
			for _, i := range idx {
				v := y[i]
				if x[i][f] <= threshold {
					lSum += v
					lSq += v * v
					lN++
				} else {
					rSum += v
					rSq += v * v
					rN++
				}
			}
			if lN < p.minSamplesLeaf || rN < p.minSamplesLeaf {
				continue
			}
			childVar := (lSq - lSum*lSum/float64(lN)) + (rSq - rSum*rSum/float64(rN))
			gain := parentVar - childVar
			if gain > bestScore {
				bestScore = gain
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}
	if bestFeature < 0 || bestScore <= 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func candidateFeatures(n int, p treeParams) []int {
	if p.maxFeatures <= 0 || p.maxFeatures >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := p.rng.Perm(n)
	return perm[:p.maxFeatures]
}

func (t *regressionTree) Predict(row []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func pure(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

func meanAt(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func varianceAt(y []float64, idx []int) float64 {
	m := meanAt(y, idx)
	var sum float64
	for _, i := range idx {
		d := y[i] - m
		sum += d * d
	}
	return sum / float64(len(idx))
}
