// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/eval"
	"github.com/czcorpus/perfest/measurement"
	"github.com/rs/zerolog/log"
)

const (
	predictionTag = "predict"
)

// extractCounters runs a feature extraction tool on srcPath
// and reads the counters it writes to stdout.
func extractCounters(ctx context.Context, mlfeatPath, srcPath string) (map[string]float64, error) {
	cmd := exec.CommandContext(ctx, mlfeatPath, srcPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to extract features from %s: %w\nStderr: %s", srcPath, err, stderr.String())
	}
	return measurement.ReadCounterMap(ctx, &stdout, srcPath)
}

func benchName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// loadStats reads a fix/float pair of counter files or, with
// a feature extraction tool configured, the tool's output
// for a pair of source files.
func loadStats(
	ctx context.Context,
	mlfeatPath string,
	row measurement.RowKey,
	fixPath, fltPath string,
) (*measurement.StatsTable, error) {
	if mlfeatPath == "" {
		return measurement.LoadStatsPair(ctx, row, fixPath, fltPath)
	}
	fix, err := extractCounters(ctx, mlfeatPath, fixPath)
	if err != nil {
		return nil, err
	}
	flt, err := extractCounters(ctx, mlfeatPath, fltPath)
	if err != nil {
		return nil, err
	}
	return measurement.StatsFromCounters(row, fix, flt), nil
}

// predictBenchmark evaluates a single fix/float pair using a saved model
func predictBenchmark(
	ctx context.Context,
	conf *cnf.Conf,
	fixPath, fltPath string,
	bundle *eval.Bundle,
) (float64, error) {
	row := measurement.RowKey{Bench: benchName(fixPath), Tag: predictionTag}
	stats, err := loadStats(ctx, conf.MLFeatPath, row, fixPath, fltPath)
	if err != nil {
		return 0, err
	}
	task, err := bundle.GetTask()
	if err != nil {
		return 0, err
	}
	asm := dataset.NewAssembler(conf, task, 0)
	ds, err := asm.Assemble(stats, nil, bundle.Features, bundle.Response)
	if err != nil {
		return 0, err
	}
	model, err := bundle.Model()
	if err != nil {
		return 0, err
	}
	return model.Predict(ds.X())[0], nil
}

func runActionPredict(conf *cnf.Conf, fixPath, fltPath, modelPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if fixPath == "" || fltPath == "" {
		exitWithError(fmt.Errorf("both -fix and -flt must be specified"), exitErrorGeneralFailure)
	}
	bundle, err := eval.LoadBundle(modelPath)
	if err != nil {
		exitWithError(err, exitErrorLoadingData)
	}
	log.Info().
		Str("model", bundle.ModelName).
		Str("task", bundle.Task).
		Int("numFeatures", len(bundle.Features)).
		Msg("loaded model")
	pred, err := predictBenchmark(ctx, conf, fixPath, fltPath, bundle)
	if err != nil {
		exitWithError(err, exitErrorPredictionFailed)
	}
	fmt.Fprintln(os.Stdout, "Predict", pred)
}
