package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaBoostBinary(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x = append(x, []float64{float64(i)})
		if i < 8 {
			y = append(y, -1)

		} else {
			y = append(y, 1)
		}
	}
	e := NewAdaBoost(10)
	require.NoError(t, e.Train(context.Background(), x, y))
	assert.Equal(t, y, e.Predict(x))
}

func TestAdaBoostThreeClasses(t *testing.T) {
	x, y := threeClassData()
	e := NewAdaBoost(20)
	require.NoError(t, e.Train(context.Background(), x, y))
	assert.GreaterOrEqual(t, accuracy(e.Predict(x), y), 0.8)
	assert.Equal(t, len(e.Stumps), len(e.StumpWeights))
}

func TestAdaBoostSingleClass(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{1, 1, 1}
	e := NewAdaBoost(3)
	require.NoError(t, e.Train(context.Background(), x, y))
	assert.Equal(t, y, e.Predict(x))
}

func TestAdaBoostCancelled(t *testing.T) {
	x, y := threeClassData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewAdaBoost(5).Train(ctx, x, y), context.Canceled)
}

func TestAdaBoostMarshalRoundTrip(t *testing.T) {
	x, y := threeClassData()
	e := NewAdaBoost(5)
	require.NoError(t, e.Train(context.Background(), x, y))
	data, err := e.Marshal()
	require.NoError(t, err)
	e2, err := UnmarshalAdaBoost(data)
	require.NoError(t, err)
	assert.Equal(t, e.Predict(x), e2.Predict(x))
}
