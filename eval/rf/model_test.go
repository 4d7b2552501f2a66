package rf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separableData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		v := float64(i)
		x = append(x, []float64{v, 2 * v, -v})
		switch {
		case i < 10:
			y = append(y, -1)
		case i < 20:
			y = append(y, 0)
		default:
			y = append(y, 1)
		}
	}
	return x, y
}

func TestTrainAndPredict(t *testing.T) {
	x, y := separableData()
	m := NewModel(30)
	require.NoError(t, m.Train(context.Background(), x, y))
	pred := m.Predict([][]float64{{2, 4, -2}, {15, 30, -15}, {28, 56, -28}})
	assert.Equal(t, []float64{-1, 0, 1}, pred)
}

func TestMarshalRoundTrip(t *testing.T) {
	x, y := separableData()
	m := NewModel(10)
	require.NoError(t, m.Train(context.Background(), x, y))
	data, err := m.Marshal()
	require.NoError(t, err)
	m2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, m.Predict(x), m2.Predict(x))
	assert.Equal(t, 10, m2.NumTrees)
}

func TestTrainEmpty(t *testing.T) {
	assert.Error(t, NewModel(10).Train(context.Background(), nil, nil))
}
