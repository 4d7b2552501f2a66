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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/eval"
	"github.com/czcorpus/perfest/results"
	"github.com/rs/zerolog/log"
)

const (
	dumpBestModel = "best"
)

type trainOptions struct {
	trainPath       string
	predPath        string
	selfTest        bool
	numTrials       int
	singleRow       bool
	boostFail       int
	dumpModel       string
	outPath         string
	regression      bool
	resultsDBPath   string
	misclassLogPath string
	exportPath      string
}

func findEstimator(estimators []cnf.EstimatorConf, name string) cnf.EstimatorConf {
	for _, v := range estimators {
		if v.Name == name {
			return v
		}
	}
	return cnf.EstimatorConf{Name: name}
}

func openResultsDB(path string, exp results.Experiment) (*results.Database, string, error) {
	db, err := results.NewDatabase(path)
	if err != nil {
		return nil, "", err
	}
	if err := db.Init(); err != nil {
		return nil, "", err
	}
	expID, err := db.CreateExperiment(exp)
	if err != nil {
		return nil, "", err
	}
	return db, expID, nil
}

// finishResultsTx keeps trials of a successful or an interrupted
// experiment and discards the ones of a failed experiment.
func finishResultsTx(db *results.Database, runErr error) {
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		if err := db.RollbackTx(); err != nil {
			log.Error().Err(err).Msg("failed to discard trial results")
		}
		return
	}
	if err := db.CommitTx(); err != nil {
		log.Error().Err(err).Msg("failed to store trial results")
	}
}

func runActionTrain(conf *cnf.Conf, opts trainOptions) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	task := dataset.TaskClassification
	if opts.regression {
		task = dataset.TaskRegression
	}
	if opts.boostFail < 0 {
		opts.boostFail = *conf.BoostFail
	}
	if opts.numTrials <= 0 {
		opts.numTrials = conf.NumTrials
	}
	if opts.outPath == "" {
		opts.outPath = conf.ModelFile
	}
	if opts.resultsDBPath == "" {
		opts.resultsDBPath = conf.ResultsDBPath
	}
	seed := conf.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	trainSet, err := loadDataset(ctx, conf, opts.trainPath, task, opts.boostFail, nil, "")
	if err != nil {
		exitWithError(fmt.Errorf("failed to load training set: %w", err), exitErrorLoadingData)
	}
	var evalSet *dataset.Dataset
	if !opts.selfTest {
		predPath := opts.predPath
		if predPath == "" {
			predPath = opts.trainPath
		}
		evalSet, err = loadDataset(ctx, conf, predPath, task, 0, trainSet.Features, trainSet.Response)
		if err != nil {
			exitWithError(fmt.Errorf("failed to load evaluation set: %w", err), exitErrorLoadingData)
		}
	}
	log.Info().
		Str("task", task.String()).
		Int("numFeatures", len(trainSet.Features)).
		Int("trainSize", trainSet.Len()).
		Bool("selfTest", opts.selfTest).
		Int("numTrials", opts.numTrials).
		Msg("starting experiment")

	estimators := conf.Estimators
	if len(estimators) == 0 {
		estimators = eval.DefaultEstimators(task)
	}
	experiment := &eval.Experiment{
		Task:                   task,
		Estimators:             estimators,
		NumTrials:              opts.numTrials,
		SingleRow:              opts.singleRow,
		TrainFraction:          conf.TrainFraction,
		Seed:                   seed,
		ExportTrainingDataPath: opts.exportPath,
		ShowProgress:           true,
	}
	if opts.misclassLogPath != "" {
		experiment.Reporter = &eval.Reporter{MisclassBenchOutPath: opts.misclassLogPath}
	}

	var resultsDB *results.Database
	if opts.resultsDBPath != "" {
		var expID string
		resultsDB, expID, err = openResultsDB(
			opts.resultsDBPath,
			results.Experiment{
				Task:        task.String(),
				FeatureMode: conf.FeatureMode,
				NumFeatures: len(trainSet.Features),
				SelfTest:    opts.selfTest,
			},
		)
		if err != nil {
			exitWithError(err, exitErrorFailedToOpenResultsDB)
		}
		defer resultsDB.Close()
		if err := resultsDB.StartTx(); err != nil {
			exitWithError(err, exitErrorFailedToOpenResultsDB)
		}
		experiment.Recorder = resultsDB
		experiment.ExperimentID = expID
		log.Info().Str("experimentId", expID).Msg("storing trial results")
	}

	summaries, err := experiment.Run(ctx, trainSet, evalSet)
	if resultsDB != nil {
		finishResultsTx(resultsDB, err)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("experiment interrupted, showing partial results")

	} else if err != nil {
		exitWithError(err, exitErrorTrainingFailed)
	}
	fmt.Println()
	eval.PrintSummary(os.Stdout, task, summaries)

	if experiment.Reporter != nil {
		if err := experiment.Reporter.SaveMisclassified(); err != nil {
			log.Error().Err(err).Msg("failed to save misclassified benchmarks")
		}
	}

	if opts.dumpModel == "" || ctx.Err() != nil {
		return
	}
	modelName := opts.dumpModel
	if modelName == dumpBestModel {
		var ok bool
		modelName, ok = eval.BestModel(summaries)
		if !ok {
			exitWithError(fmt.Errorf("no model available for saving"), exitErrorFailedToSaveModel)
		}
	}
	bundle, err := eval.TrainFinal(ctx, findEstimator(estimators, modelName), task, trainSet)
	if err != nil {
		exitWithError(err, exitErrorFailedToSaveModel)
	}
	if err := bundle.SaveToFile(opts.outPath); err != nil {
		exitWithError(err, exitErrorFailedToSaveModel)
	}
	log.Info().
		Str("model", modelName).
		Str("path", opts.outPath).
		Msg("saved model")
}
