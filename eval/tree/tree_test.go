package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func threeClassData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		v := float64(i)
		x = append(x, []float64{v, 2 * v, -v})
		y = append(y, float64(i/10-1))
	}
	return x, y
}

func accuracy(pred, y []float64) float64 {
	var ok int
	for i := range y {
		if pred[i] == y[i] {
			ok++
		}
	}
	return float64(ok) / float64(len(y))
}

func TestSingleTreeSplitsPerfectly(t *testing.T) {
	x, y := threeClassData()
	yEnc := make([]int, len(y))
	for i, v := range y {
		yEnc[i] = int(v) + 1
	}
	b := &builder{x: x, y: yEnc, w: uniformWeights(len(x)), numClasses: 3, maxDepth: 5, minSamplesSplit: 2}
	root := b.build(allIndices(len(x)), 0)
	assert.False(t, root.Leaf)
	assert.Equal(t, 0, root.predict([]float64{3, 6, -3}))
	assert.Equal(t, 1, root.predict([]float64{14, 28, -14}))
	assert.Equal(t, 2, root.predict([]float64{27, 54, -27}))
}

func TestStumpDepthLimit(t *testing.T) {
	x, y := threeClassData()
	yEnc := make([]int, len(y))
	for i, v := range y {
		yEnc[i] = int(v) + 1
	}
	b := &builder{x: x, y: yEnc, w: uniformWeights(len(x)), numClasses: 3, maxDepth: stumpDepth, minSamplesSplit: 2}
	root := b.build(allIndices(len(x)), 0)
	assert.False(t, root.Leaf)
	assert.True(t, root.Left.Leaf)
	assert.True(t, root.Right.Leaf)
}
