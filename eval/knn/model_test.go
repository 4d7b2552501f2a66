package knn

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestNeighbors(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {10, 10}, {10, 11}, {11, 10}}
	y := []float64{0, 0, 0, 1, 1, 1}
	m := NewModel(3)
	require.NoError(t, m.Train(context.Background(), x, y))
	assert.Equal(t, []float64{0, 1}, m.Predict([][]float64{{0.5, 0.5}, {9, 9}}))
}

func TestKLargerThanData(t *testing.T) {
	m := NewModel(10)
	require.NoError(t, m.Train(context.Background(), [][]float64{{1}, {2}, {3}}, []float64{1, 1, 0}))
	assert.Equal(t, []float64{1}, m.Predict([][]float64{{3}}))
}

func TestMarshal(t *testing.T) {
	m := NewModel(1)
	require.NoError(t, m.Train(context.Background(), [][]float64{{1}, {5}}, []float64{-1, 1}))
	data, err := m.Marshal()
	require.NoError(t, err)
	m2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1}, m2.Predict([][]float64{{0}, {6}}))
}

func TestUntrainedPredictsNaN(t *testing.T) {
	pred := NewModel(3).Predict([][]float64{{1, 2}})
	assert.Len(t, pred, 1)
	assert.True(t, math.IsNaN(pred[0]))
}

func TestWrongRowSize(t *testing.T) {
	m := NewModel(1)
	require.NoError(t, m.Train(context.Background(), [][]float64{{1, 1}, {5, 5}}, []float64{-1, 1}))
	assert.True(t, math.IsNaN(m.Predict([][]float64{{1}})[0]))
}
