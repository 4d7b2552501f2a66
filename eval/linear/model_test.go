package linear

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitsExactLinearRelation(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		a := float64(i)
		b := float64((i * 7) % 5)
		x = append(x, []float64{a, b})
		y = append(y, 3+2*a-0.5*b)
	}
	m := NewModel()
	require.NoError(t, m.Train(context.Background(), x, y))
	assert.InDelta(t, 3, m.Intercept, 1e-4)
	assert.InDelta(t, 2, m.Coef[0], 1e-4)
	assert.InDelta(t, -0.5, m.Coef[1], 1e-4)
	assert.InDelta(t, 3+2*100-0.5*2, m.Predict([][]float64{{100, 2}})[0], 1e-3)
}

func TestCollinearFeatures(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	y := []float64{1, 2, 3, 4}
	m := NewModel()
	require.NoError(t, m.Train(context.Background(), x, y))
	pred := m.Predict(x)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-3)
	}
}

func TestMarshal(t *testing.T) {
	m := &Model{Coef: []float64{1, 2}, Intercept: 0.5, Rank: 2}
	data, err := m.Marshal()
	require.NoError(t, err)
	m2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, m, m2)
}

func TestFewerRowsThanLargeFeatures(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 50))
	x := make([][]float64, 5)
	y := make([]float64, 5)
	for i := range x {
		x[i] = make([]float64, 50)
		for j := range x[i] {
			x[i][j] = 1e4 + rnd.Float64()*1e5
		}
		y[i] = 1 + x[i][0]*1e-5
	}
	for i := range x {
		x[i][48] = 7e9
	}
	m := NewModel()
	require.NoError(t, m.Train(context.Background(), x, y))
	assert.Equal(t, 4, m.Rank)
	assert.Equal(t, 0.0, m.Coef[48])
	pred := m.Predict(x)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-6)
	}
}

func TestSingleRow(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.Train(context.Background(), [][]float64{{3, 4}}, []float64{1.5}))
	assert.Equal(t, 0, m.Rank)
	assert.Equal(t, []float64{1.5}, m.Predict([][]float64{{10, 10}}))
}
