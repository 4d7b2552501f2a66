package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/eval"
	"github.com/czcorpus/perfest/measurement"
	"github.com/czcorpus/perfest/measurement/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuns() []synth.Run {
	return []synth.Run{
		{
			Tag:          "O2",
			Bench:        "gemm",
			FixCounters:  map[string]float64{"*": 100, "Add": 40, "FAdd": 0, "B0_n_*": 10, "B0_cost_x": 3},
			FltCounters:  map[string]float64{"*": 90, "Add": 10, "FAdd": 30, "B0_n_*": 12, "B0_cost_x": 5},
			FixProfile:   map[string]float64{"T": 1.0},
			FloatProfile: map[string]float64{"T": 1.5},
		},
		{
			Tag:          "O2",
			Bench:        "atax",
			FixCounters:  map[string]float64{"*": 50, "Add": 20, "B0_n_*": 4, "B0_cost_x": 1},
			FltCounters:  map[string]float64{"*": 60, "Add": 5, "FAdd": 20, "B0_n_*": 0, "B0_cost_x": 1},
			FixProfile:   map[string]float64{"T": 2.0},
			FloatProfile: map[string]float64{"T": 1.0},
		},
		{
			Tag:          "O2",
			Bench:        "mvt",
			FixCounters:  map[string]float64{"*": 80, "Add": 30, "B0_n_*": 8, "B0_cost_x": 2},
			FltCounters:  map[string]float64{"*": 80, "Add": 30, "FAdd": 10, "B0_n_*": 8, "B0_cost_x": 2},
			FixProfile:   map[string]float64{"T": 1.0},
			FloatProfile: map[string]float64{"T": 1.1},
		},
	}
}

func trainTestBundle(t *testing.T, conf *cnf.Conf, dir string) *eval.Bundle {
	ds, err := loadDataset(context.Background(), conf, dir, dataset.TaskClassification, 0, nil, "")
	require.NoError(t, err)
	bundle, err := eval.TrainFinal(
		context.Background(),
		cnf.EstimatorConf{Name: eval.ModelKNN, K: 1},
		dataset.TaskClassification,
		ds,
	)
	require.NoError(t, err)
	return bundle
}

func TestPredictBenchmark(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, testRuns()...))
	conf := &cnf.Conf{}
	cnf.ValidateAndDefaults(conf)
	bundle := trainTestBundle(t, conf, dir)

	fixPath, fltPath := synth.CounterFilePaths(dir, testRuns()[0])
	pred, err := predictBenchmark(context.Background(), conf, fixPath, fltPath, bundle)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred)

	fixPath, fltPath = synth.CounterFilePaths(dir, testRuns()[1])
	pred, err = predictBenchmark(context.Background(), conf, fixPath, fltPath, bundle)
	require.NoError(t, err)
	assert.Equal(t, -1.0, pred)
}

func TestPredictWithExtractionTool(t *testing.T) {
	catPath, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, testRuns()...))
	conf := &cnf.Conf{}
	cnf.ValidateAndDefaults(conf)
	bundle := trainTestBundle(t, conf, dir)

	conf.MLFeatPath = catPath
	fixPath, fltPath := synth.CounterFilePaths(dir, testRuns()[2])
	pred, err := predictBenchmark(context.Background(), conf, fixPath, fltPath, bundle)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred)
}

func TestExtractCountersToolFailure(t *testing.T) {
	_, err := extractCounters(context.Background(), filepath.Join(t.TempDir(), "nonexistent"), "x.ll")
	assert.Error(t, err)
}

func TestLoadStatsMissingFile(t *testing.T) {
	dir := t.TempDir()
	row := measurement.RowKey{Bench: "gemm", Tag: predictionTag}
	_, err := loadStats(context.Background(), "", row, filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	assert.Error(t, err)
}

func TestBenchName(t *testing.T) {
	assert.Equal(t, "gemm", benchName("/data/O2/gemm.fix.mlfeat.txt"))
	assert.Equal(t, "atax", benchName("atax"))
}

func TestLoadDatasetFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, testRuns()...))
	conf := &cnf.Conf{}
	cnf.ValidateAndDefaults(conf)
	ds, err := loadDataset(context.Background(), conf, dir, dataset.TaskRegression, 0, nil, "")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "feats.msgpack")
	require.NoError(t, ds.SaveToFile(path))

	loaded, err := loadDataset(context.Background(), conf, path, dataset.TaskRegression, 0, nil, "")
	require.NoError(t, err)
	assert.Equal(t, ds.Features, loaded.Features)
	assert.Equal(t, 3, loaded.Len())

	_, err = loadDataset(context.Background(), conf, path, dataset.TaskClassification, 0, nil, "")
	assert.Error(t, err)
}

func TestLoadDatasetFileIgnoresBoostFail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, synth.Write(dir, testRuns()...))
	conf := &cnf.Conf{}
	cnf.ValidateAndDefaults(conf)
	ds, err := loadDataset(context.Background(), conf, dir, dataset.TaskClassification, 0, nil, "")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "feats.msgpack")
	require.NoError(t, ds.SaveToFile(path))

	loaded, err := loadDataset(context.Background(), conf, path, dataset.TaskClassification, 3, nil, "")
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), loaded.Len())

	boosted, err := loadDataset(context.Background(), conf, dir, dataset.TaskClassification, 3, nil, "")
	require.NoError(t, err)
	assert.Greater(t, boosted.Len(), ds.Len())
}
