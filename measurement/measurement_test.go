package measurement

import (
	"context"
	"strings"
	"testing"

	"github.com/czcorpus/perfest/measurement/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []synth.Run {
	return []synth.Run{
		{
			Tag:          "O2",
			Bench:        "gemm",
			FixCounters:  map[string]float64{"*": 100, "FAdd": 0, "Add": 40},
			FltCounters:  map[string]float64{"*": 90, "FAdd": 30, "Add": 10},
			FixProfile:   map[string]float64{"T": 1.0},
			FloatProfile: map[string]float64{"T": 1.5},
		},
		{
			Tag:         "O2",
			Bench:       "durbin",
			FixCounters: map[string]float64{"*": 10},
			FltCounters: map[string]float64{"*": 10},
		},
		{
			Tag:          "O3",
			Bench:        "atax",
			FixCounters:  map[string]float64{"*": 50, "Mul": 5},
			FltCounters:  map[string]float64{"*": 60, "FMul": 5},
			FixProfile:   map[string]float64{"T": 2.0},
			FloatProfile: map[string]float64{"T": 1.0},
		},
	}
}

func TestReadCountersSkipsMalformedLines(t *testing.T) {
	src := "* 120\n\nFAdd 3\nbroken\nMul x\nB0_n_* 2 ignored\n"
	cm := make(counterMap)
	err := ReadCounters(context.Background(), strings.NewReader(src), "test", cm)
	require.NoError(t, err)
	assert.Equal(t, counterMap{"*": 120, "FAdd": 3, "B0_n_*": 2}, cm)
}

func TestReadCountersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadCounters(ctx, strings.NewReader("* 1\n"), "test", make(counterMap))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStatsCurrentLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, sampleRuns()...))
	table, err := LoadStats(context.Background(), dir, []string{"durbin"})
	require.NoError(t, err)

	assert.Equal(t, []RowKey{{Bench: "atax", Tag: "O3"}, {Bench: "gemm", Tag: "O2"}}, table.Rows())
	v, ok := table.Get(RowKey{Bench: "gemm", Tag: "O2"}, CounterKey{Name: "FAdd", Variant: VariantFloat})
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)
	_, ok = table.Get(RowKey{Bench: "atax", Tag: "O3"}, CounterKey{Name: "FAdd", Variant: VariantFloat})
	assert.False(t, ok)

	cols := table.Columns()
	assert.Equal(t, CounterKey{Name: "*", Variant: VariantFix}, cols[0])
	assert.Equal(t, CounterKey{Name: "*", Variant: VariantFloat}, cols[1])
}

func TestLoadStatsLegacyLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.WriteLegacy(dir, synth.Run{
		Tag:         "good",
		Bench:       "gemm",
		FixCounters: map[string]float64{"*": 10},
		FltCounters: map[string]float64{"*": 12},
	}))
	table, err := LoadStats(context.Background(), dir, nil)
	require.NoError(t, err)
	row := RowKey{Bench: "gemm", Tag: "good"}
	assert.Equal(t, 10.0, table.Value(row, CounterKey{Name: "*", Variant: VariantFix}))
	assert.Equal(t, 12.0, table.Value(row, CounterKey{Name: "*", Variant: VariantFloat}))
}

func TestLoadStatsEmptyDir(t *testing.T) {
	_, err := LoadStats(context.Background(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, sampleRuns()...))
	table, err := LoadProfile(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"fix_T", "flo_T"}, table.Columns())
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, 1.5, table.Value(RowKey{Bench: "gemm", Tag: "O2"}, "flo_T"))
}

func TestLoadStatsPair(t *testing.T) {
	dir := t.TempDir()
	run := sampleRuns()[0]
	require.NoError(t, synth.Write(dir, run))
	fixPath, fltPath := synth.CounterFilePaths(dir, run)
	row := RowKey{Bench: "gemm", Tag: "predict"}
	table, err := LoadStatsPair(context.Background(), row, fixPath, fltPath)
	require.NoError(t, err)
	assert.Equal(t, []RowKey{row}, table.Rows())
	assert.Equal(t, 40.0, table.Value(row, CounterKey{Name: "Add", Variant: VariantFix}))
}

func TestSyntheticKey(t *testing.T) {
	k := RowKey{Bench: "gemm", Tag: "O2"}
	assert.Equal(t, RowKey{Bench: "gemm_c3", Tag: "O2"}, k.Synthetic(3))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("FLOAT")
	assert.NoError(t, err)
	assert.Equal(t, VariantFloat, v)
	_, err = ParseVariant("double")
	assert.Error(t, err)
	assert.Equal(t, "flo_T", ProfileColumn(VariantFloat, TimeKey))
}
