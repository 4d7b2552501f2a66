package tree

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagging(t *testing.T) {
	x, y := threeClassData()
	e := NewBagged(KindBagging, 15)
	require.NoError(t, e.Train(context.Background(), x, y))
	assert.GreaterOrEqual(t, accuracy(e.Predict(x), y), 0.8)
}

func TestExtraTrees(t *testing.T) {
	x, y := threeClassData()
	e := NewBagged(KindExtraTrees, 25)
	require.NoError(t, e.Train(context.Background(), x, y))
	assert.Equal(t, 1, e.attrsPerNode(3))
	assert.GreaterOrEqual(t, accuracy(e.Predict(x), y), 0.8)
}

func TestBaggedSingleClass(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{1, 1, 1}
	for _, kind := range []Kind{KindBagging, KindExtraTrees} {
		e := NewBagged(kind, 3)
		require.NoError(t, e.Train(context.Background(), x, y))
		assert.Equal(t, y, e.Predict(x), string(kind))
	}
}

func TestBaggedUntrained(t *testing.T) {
	pred := NewBagged(KindBagging, 3).Predict([][]float64{{1}})
	assert.True(t, math.IsNaN(pred[0]))
}

func TestBaggedMarshalRefits(t *testing.T) {
	x, y := threeClassData()
	e := NewBagged(KindBagging, 5)
	require.NoError(t, e.Train(context.Background(), x, y))
	data, err := e.Marshal()
	require.NoError(t, err)
	e2, err := UnmarshalBagged(data)
	require.NoError(t, err)
	assert.Equal(t, KindBagging, e2.Kind)
	assert.GreaterOrEqual(t, accuracy(e2.Predict(x), y), 0.8)
}
