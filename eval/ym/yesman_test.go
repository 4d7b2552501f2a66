package ym

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlwaysYes(t *testing.T) {
	m := &Model{}
	require.NoError(t, m.Train(context.Background(), [][]float64{{1}}, []float64{-1}))
	assert.Equal(t, []float64{1, 1, 1}, m.Predict([][]float64{{0}, {1}, {2}}))
}

func TestMarshal(t *testing.T) {
	data, err := (&Model{Regression: true}).Marshal()
	require.NoError(t, err)
	m, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, m.Regression)
}
