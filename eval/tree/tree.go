package tree

import "slices"

// Node is a node of a binary classification tree. Leaf nodes
// hold class indices, inner nodes send samples with
// x[Feature] < Threshold to the left.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Class     int     `json:"class,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

func (n *Node) predict(row []float64) int {
	for !n.Leaf {
		if row[n.Feature] < n.Threshold {
			n = n.Left

		} else {
			n = n.Right
		}
	}
	return n.Class
}

// builder grows a single CART tree using weighted Gini impurity.
type builder struct {
	x               [][]float64
	y               []int
	w               []float64
	numClasses      int
	maxDepth        int
	minSamplesSplit int
}

func (b *builder) classWeights(indices []int) []float64 {
	ans := make([]float64, b.numClasses)
	for _, i := range indices {
		ans[b.y[i]] += b.w[i]
	}
	return ans
}

func gini(weights []float64) (float64, float64) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0, 0
	}
	impurity := 1.0
	for _, w := range weights {
		p := w / total
		impurity -= p * p
	}
	return impurity, total
}

func majority(weights []float64) int {
	ans := 0
	for i, w := range weights {
		if w > weights[ans] {
			ans = i
		}
	}
	return ans
}

func (b *builder) thresholds(indices []int, feature int) []float64 {
	values := make([]float64, len(indices))
	for k, i := range indices {
		values[k] = b.x[i][feature]
	}
	slices.Sort(values)
	values = slices.Compact(values)
	if len(values) < 2 {
		return nil
	}
	ans := make([]float64, len(values)-1)
	for k := 1; k < len(values); k++ {
		ans[k-1] = (values[k-1] + values[k]) / 2
	}
	return ans
}

func (b *builder) partition(indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] < threshold {
			left = append(left, i)

		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func (b *builder) build(indices []int, depth int) *Node {
	weights := b.classWeights(indices)
	impurity, total := gini(weights)
	leaf := &Node{Leaf: true, Class: majority(weights)}
	if depth >= b.maxDepth || len(indices) < b.minSamplesSplit || impurity == 0 {
		return leaf
	}
	bestGain := 0.0
	var best *Node
	var bestLeft, bestRight []int
	for feature := range len(b.x[0]) {
		for _, threshold := range b.thresholds(indices, feature) {
			left, right := b.partition(indices, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			lImp, lTotal := gini(b.classWeights(left))
			rImp, rTotal := gini(b.classWeights(right))
			gain := impurity - (lTotal*lImp+rTotal*rImp)/total
			if gain > bestGain {
				bestGain = gain
				best = &Node{Feature: feature, Threshold: threshold}
				bestLeft, bestRight = left, right
			}
		}
	}
	if best == nil {
		return leaf
	}
	best.Left = b.build(bestLeft, depth+1)
	best.Right = b.build(bestRight, depth+1)
	return best
}
