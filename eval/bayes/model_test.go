package bayes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianClusters(t *testing.T) {
	x := [][]float64{
		{1.0, 10}, {1.2, 11}, {0.8, 9}, {1.1, 10.5},
		{5.0, 1}, {5.3, 1.5}, {4.7, 0.5}, {5.1, 1.2},
	}
	y := []float64{-1, -1, -1, -1, 1, 1, 1, 1}
	m := NewModel(0)
	require.NoError(t, m.Train(context.Background(), x, y))
	assert.Equal(t, []float64{-1, 1}, m.Predict([][]float64{{0.9, 9.8}, {5.2, 0.9}}))
	assert.InDelta(t, 1.025, m.FeatureMeans[0][0], 1e-9)

	data, err := m.Marshal()
	require.NoError(t, err)
	m2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, m.Predict(x), m2.Predict(x))
}
