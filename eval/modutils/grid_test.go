package modutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSchemaTrainingGrid(t *testing.T) {
	y := []float64{1, -1, 0}
	schema := NewGridSchema(2, NewLabelEncoder(y))
	grid, err := schema.TrainingGrid([][]float64{{1, 2}, {3, 4}, {5, 6}}, y)
	require.NoError(t, err)
	cols, rows := grid.Size()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, rows)
	assert.Equal(t, y, schema.DecodePredictions(grid))
}

func TestGridSchemaPredictionGrid(t *testing.T) {
	schema := NewGridSchema(2, NewLabelEncoder([]float64{0, 1}))
	grid, err := schema.PredictionGrid([][]float64{{1, 2}})
	require.NoError(t, err)
	_, rows := grid.Size()
	assert.Equal(t, 1, rows)
	_, err = schema.PredictionGrid([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestGridSchemaUnknownLabel(t *testing.T) {
	schema := NewGridSchema(1, NewLabelEncoder([]float64{0, 1}))
	_, err := schema.TrainingGrid([][]float64{{1}}, []float64{5})
	assert.Error(t, err)
	assert.True(t, math.IsNaN(schema.Labels.Decode(-1)))
}
