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

package eval

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/results"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ModelSummary contains results of all the trials of a single model
type ModelSummary struct {
	Name      string
	Info      string
	Scores    []float64
	Latencies []time.Duration

	// Skipped is set for models which cannot be trained by us
	// and have no pre-trained data available
	Skipped bool
}

func (s ModelSummary) MeanScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	return stat.Mean(s.Scores, nil)
}

func (s ModelSummary) MinScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	return floats.Min(s.Scores)
}

func (s ModelSummary) MaxScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	return floats.Max(s.Scores)
}

func (s ModelSummary) MedianLatency() time.Duration {
	return MedianDuration(s.Latencies)
}

// -----------------------------

// TrialRecorder stores results of individual trials
type TrialRecorder interface {
	AddTrial(rec results.Trial) error
}

// readinessChecker is implemented by inference-only models which
// may or may not have their pre-trained data available
type readinessChecker interface {
	IsReady() bool
}

// trainingDataExporter is implemented by models trained
// by an external program
type trainingDataExporter interface {
	SaveTrainingData(filePath string) error
}

// Experiment repeatedly trains and evaluates configured models.
type Experiment struct {
	Task       dataset.Task
	Estimators []cnf.EstimatorConf
	NumTrials  int

	// SingleRow makes models predict one benchmark at a time
	// (latency is then measured per benchmark)
	SingleRow bool

	TrainFraction float64
	Seed          uint64

	// ExportTrainingDataPath, if set, is where inference-only models
	// store their full training data
	ExportTrainingDataPath string

	Reporter     *Reporter
	Recorder     TrialRecorder
	ExperimentID string

	ShowProgress bool
}

func (exp *Experiment) evaluate(model MLModel, test *dataset.Dataset) ([]float64, []time.Duration) {
	x := test.X()
	if !exp.SingleRow {
		t0 := time.Now()
		pred := model.Predict(x)
		return pred, []time.Duration{time.Since(t0)}
	}
	pred := make([]float64, len(x))
	latencies := make([]time.Duration, len(x))
	for i, row := range x {
		t0 := time.Now()
		pred[i] = model.Predict([][]float64{row})[0]
		latencies[i] = time.Since(t0)
	}
	return pred, latencies
}

func (exp *Experiment) reportMisclassified(modelName string, test *dataset.Dataset, pred, actual []float64) {
	if exp.Reporter == nil || exp.Task != dataset.TaskClassification {
		return
	}
	for i, v := range actual {
		if pred[i] != v {
			exp.Reporter.AddMisclassified(
				fmt.Sprintf("%s:%s", modelName, test.Frame.Keys[i]), pred[i], v)
		}
	}
}

func (exp *Experiment) runTrial(
	ctx context.Context,
	estimator cnf.EstimatorConf,
	trial int,
	train, test *dataset.Dataset,
	summary *ModelSummary,
) error {
	model, err := NewMLModel(estimator, exp.Task)
	if err != nil {
		return err
	}
	if rc, ok := model.(readinessChecker); ok && !rc.IsReady() {
		summary.Skipped = true
		return nil
	}
	summary.Info = model.GetInfo()
	if err := model.Train(ctx, train.X(), train.Y()); err != nil {
		return fmt.Errorf("failed to train %s: %w", estimator.Name, err)
	}
	pred, latencies := exp.evaluate(model, test)
	actual := test.Y()
	score := Score(exp.Task, pred, actual)
	summary.Scores = append(summary.Scores, score)
	summary.Latencies = append(summary.Latencies, latencies...)
	exp.reportMisclassified(estimator.Name, test, pred, actual)
	if exp.Recorder != nil {
		err := exp.Recorder.AddTrial(results.Trial{
			ExperimentID: exp.ExperimentID,
			Model:        estimator.Name,
			Trial:        trial,
			Score:        score,
			Latency:      MedianDuration(latencies),
			TrainSize:    train.Len(),
			TestSize:     test.Len(),
		})
		if err != nil {
			log.Error().Err(err).Str("model", estimator.Name).Msg("failed to record trial")
		}
	}
	return nil
}

func (exp *Experiment) exportTrainingData(ctx context.Context, estimator cnf.EstimatorConf, train *dataset.Dataset) error {
	model, err := NewMLModel(estimator, exp.Task)
	if err != nil {
		return err
	}
	exporter, ok := model.(trainingDataExporter)
	if !ok || !model.IsInferenceOnly() {
		return nil
	}
	if err := model.Train(ctx, train.X(), train.Y()); err != nil {
		return err
	}
	if err := exporter.SaveTrainingData(exp.ExportTrainingDataPath); err != nil {
		return err
	}
	log.Info().
		Str("model", estimator.Name).
		Str("path", exp.ExportTrainingDataPath).
		Msg("exported training data")
	return nil
}

// Run performs the trials. With evalSet == nil, each trial
// evaluates models on a random split of the training set (self-test).
// Otherwise, models are trained on the whole training set and
// evaluated on evalSet.
func (exp *Experiment) Run(ctx context.Context, trainSet, evalSet *dataset.Dataset) ([]ModelSummary, error) {
	estimators := make([]cnf.EstimatorConf, 0, len(exp.Estimators))
	for _, est := range exp.Estimators {
		if est.Disabled {
			continue
		}
		if !SupportsTask(est.Name, exp.Task) {
			log.Warn().
				Str("model", est.Name).
				Str("task", exp.Task.String()).
				Msg("model does not support the task, skipping")
			continue
		}
		estimators = append(estimators, est)
	}
	if len(estimators) == 0 {
		return nil, fmt.Errorf("no usable estimators configured")
	}
	if exp.NumTrials <= 0 {
		return nil, fmt.Errorf("invalid number of trials: %d", exp.NumTrials)
	}
	if exp.ExportTrainingDataPath != "" {
		for _, est := range estimators {
			if err := exp.exportTrainingData(ctx, est, trainSet); err != nil {
				return nil, fmt.Errorf("failed to export training data: %w", err)
			}
		}
	}

	summaries := make([]ModelSummary, len(estimators))
	for i, est := range estimators {
		summaries[i].Name = est.Name
	}
	var bar *progressbar.ProgressBar
	if exp.ShowProgress {
		bar = progressbar.Default(int64(exp.NumTrials), "running trials")
	}
	splitter := dataset.NewSplitter(exp.TrainFraction, exp.Seed)
	for trial := 0; trial < exp.NumTrials; trial++ {
		select {
		case <-ctx.Done():
			return summaries, ctx.Err()
		default:
		}
		train, test := trainSet, evalSet
		if evalSet == nil {
			train, test = splitter.Split(trainSet)
		}
		if train.Len() == 0 || test.Len() == 0 {
			return summaries, fmt.Errorf("cannot run trial %d - empty train or test set", trial)
		}
		for i, est := range estimators {
			if summaries[i].Skipped {
				continue
			}
			if err := exp.runTrial(ctx, est, trial, train, test, &summaries[i]); err != nil {
				return summaries, err
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	for _, s := range summaries {
		if s.Skipped {
			log.Warn().Str("model", s.Name).Msg("model skipped - no pre-trained data available")
		}
	}
	return summaries, nil
}

const skippedModelNote = "inference only, no pre-trained model configured (boosterPath)"

// BestModel returns the name of the non-skipped model
// with the highest mean score
func BestModel(summaries []ModelSummary) (string, bool) {
	var best string
	bestScore := -1e300
	for _, s := range summaries {
		if s.Skipped || len(s.Scores) == 0 {
			continue
		}
		if s.MeanScore() > bestScore {
			best = s.Name
			bestScore = s.MeanScore()
		}
	}
	return best, best != ""
}

// TrainFinal trains the named model on the full training set
// and wraps it in a bundle.
func TrainFinal(
	ctx context.Context,
	estimator cnf.EstimatorConf,
	task dataset.Task,
	trainSet *dataset.Dataset,
) (*Bundle, error) {
	model, err := NewMLModel(estimator, task)
	if err != nil {
		return nil, err
	}
	if rc, ok := model.(readinessChecker); ok && !rc.IsReady() {
		return nil, fmt.Errorf("cannot dump %s: %w", estimator.Name, ErrInferenceOnly)
	}
	if err := model.Train(ctx, trainSet.X(), trainSet.Y()); err != nil {
		return nil, fmt.Errorf("failed to train %s: %w", estimator.Name, err)
	}
	return NewBundle(estimator.Name, task, trainSet, model)
}

// PrintSummary writes a per-model table of mean (in percent), min and
// max scores and median prediction latency.
func PrintSummary(w io.Writer, task dataset.Task, summaries []ModelSummary) {
	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	greenColor := color.New(color.FgGreen).SprintFunc()
	scoreName := "accuracy"
	if task == dataset.TaskRegression {
		scoreName = "R2"
	}
	best, _ := BestModel(summaries)
	fmt.Fprintf(w, "%s\n", titleColor(fmt.Sprintf(
		"%-28s %10s %8s %8s %14s", "model", scoreName+" %", "min", "max", "latency")))
	for _, s := range summaries {
		if s.Skipped {
			fmt.Fprintf(w, "%-28s %10s  (%s)\n", s.Name, "skipped", skippedModelNote)
			continue
		}
		line := fmt.Sprintf(
			"%-28s %10.2f %8.3f %8.3f %14s",
			s.Name, s.MeanScore()*100, s.MinScore(), s.MaxScore(), s.MedianLatency())
		if s.Name == best {
			line = greenColor(line)
		}
		fmt.Fprintln(w, line)
	}
}
