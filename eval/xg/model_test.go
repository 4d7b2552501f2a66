package xg

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestTrainingDataExport(t *testing.T) {
	m, err := NewModel("", false)
	require.NoError(t, err)
	assert.True(t, m.IsInferenceOnly())
	assert.False(t, m.IsReady())
	x := [][]float64{{1, 2}, {3, 4}}
	y := []float64{-1, 1}
	require.NoError(t, m.Train(context.Background(), x, y))
	path := filepath.Join(t.TempDir(), "train.xg.msgpack")
	require.NoError(t, m.SaveTrainingData(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out struct {
		Features [][]float64 `msgpack:"features"`
		Label    []float64   `msgpack:"label"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &out))
	assert.Equal(t, x, out.Features)
	assert.Equal(t, y, out.Label)
}

func TestPredictWithoutBooster(t *testing.T) {
	m, err := NewModel("", true)
	require.NoError(t, err)
	pred := m.Predict([][]float64{{1}})
	assert.True(t, math.IsNaN(pred[0]))
}

func TestMissingBooster(t *testing.T) {
	_, err := NewModel(filepath.Join(t.TempDir(), "nonexistent.txt"), true)
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	m, err := NewModel("", true)
	require.NoError(t, err)
	data, err := m.Marshal()
	require.NoError(t, err)
	m2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, m2.Regression)
	assert.Equal(t, "", m2.BoosterPath)
}
