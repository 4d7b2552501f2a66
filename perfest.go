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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/perfest/cnf"
)

const (
	actionTrain     = "train"
	actionFeaturize = "featurize"
	actionPredict   = "predict"
	actionResults   = "results"
	actionVersion   = "version"
	actionHelp      = "help"
)

const (
	exitErrorGeneralFailure = iota + 1
	exitErrorLoadingData
	exitErrorTrainingFailed
	exitErrorFailedToOpenResultsDB
	exitErrorFailedToSaveModel
	exitErrorPredictionFailed
)

var (
	version   string
	buildDate string
	gitCommit string
)

type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "PERFEST - fixed point vs. floating point performance estimator\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\ttrain and evaluate models\n", actionTrain)
	fmt.Fprintf(os.Stderr, "\t%s\t\tassemble a dataset and save it to a file\n", actionFeaturize)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tpredict using a saved model\n", actionPredict)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tshow trial results stored by the train action\n", actionResults)
	fmt.Fprintf(os.Stderr, "\nUse `perfest help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func runActionVersion(ver VersionInfo) {
	fmt.Fprintln(os.Stderr, "Perfest version: ", ver)
}

func main() {
	version := VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)
	cmdHelp.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdTrain := flag.NewFlagSet(actionTrain, flag.ExitOnError)
	var trainOpts trainOptions
	cmdTrain.StringVar(&trainOpts.trainPath, "train", "", "training set (a measurement directory or a file created by the featurize action)")
	cmdTrain.BoolVar(&trainOpts.selfTest, "test", false, "evaluate models on random splits of the training set")
	cmdTrain.IntVar(&trainOpts.numTrials, "ntry", 0, "number of trials (default: numTrials from the config, i.e. 100 if not set)")
	cmdTrain.BoolVar(&trainOpts.singleRow, "single", false, "predict one benchmark at a time")
	cmdTrain.IntVar(&trainOpts.boostFail, "boostfail", -1, "number of extra copies of each failing row (default: boostFail from the config, i.e. 5 if not set)")
	cmdTrain.StringVar(&trainOpts.dumpModel, "dump", "", "name of a model to be trained on the full training set and saved (or `best`)")
	cmdTrain.StringVar(&trainOpts.outPath, "out", "", "output model file (default: modelFile from the config)")
	cmdTrain.BoolVar(&trainOpts.regression, "regression", false, "predict speed-up ratio instead of the worth class")
	cmdTrain.StringVar(&trainOpts.resultsDBPath, "results-db", "", "SQLite file to store trial results in")
	cmdTrain.StringVar(&trainOpts.misclassLogPath, "misclass-log", "", "file to store misclassified benchmarks to")
	cmdTrain.StringVar(&trainOpts.exportPath, "export-train-data", "", "file to export training data for externally trained models to")
	cmdTrain.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json [pred-path]\n\t",
			filepath.Base(os.Args[0]), actionTrain)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdTrain.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nTrain models and evaluate them against pred-path (default: training set)\n")
		fmt.Fprintf(os.Stderr, "Gradient Tree is inference only: it is reported as skipped unless boosterPath\n")
		fmt.Fprintf(os.Stderr, "points to a model trained externally (see -export-train-data)\n")
	}

	cmdFeaturize := flag.NewFlagSet(actionFeaturize, flag.ExitOnError)
	featRegression := cmdFeaturize.Bool("regression", false, "use speed-up ratio as the response")
	featBoostFail := cmdFeaturize.Int("boostfail", 0, "number of extra copies of each failing row")
	featDebug := cmdFeaturize.Bool("debug", false, "print features instead of saving them")
	cmdFeaturize.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json measurement_dir out.msgpack\n\t",
			filepath.Base(os.Args[0]), actionFeaturize)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdFeaturize.PrintDefaults()
	}

	cmdPredict := flag.NewFlagSet(actionPredict, flag.ExitOnError)
	predFix := cmdPredict.String("fix", "", "fixed point feature file (or LLVM IR file if mlfeat-path is set)")
	predFlt := cmdPredict.String("flt", "", "floating point feature file (or LLVM IR file if mlfeat-path is set)")
	predModel := cmdPredict.String("model", "", "model file (default: modelFile from the config)")
	predMLFeat := cmdPredict.String("mlfeat-path", "", "path to a feature extraction tool (overrides the config and "+cnf.EnvMLFeatPath+")")
	cmdPredict.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json\n\t",
			filepath.Base(os.Args[0]), actionPredict)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdPredict.PrintDefaults()
	}

	cmdResults := flag.NewFlagSet(actionResults, flag.ExitOnError)
	var resultsOpts resultsOptions
	cmdResults.StringVar(&resultsOpts.dbPath, "results-db", "", "SQLite file with trial results (default: resultsDbPath from the config)")
	cmdResults.StringVar(&resultsOpts.experimentID, "experiment", "", "show only the specified experiment")
	cmdResults.StringVar(&resultsOpts.model, "model", "", "show only the specified model")
	cmdResults.BoolVar(&resultsOpts.showTrials, "trials", false, "show individual trials")
	cmdResults.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json\n\t",
			filepath.Base(os.Args[0]), actionResults)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdResults.PrintDefaults()
	}

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		if subj == "" {
			topLevelUsage()
			return
		}
		switch subj {
		case actionTrain:
			cmdTrain.Usage()
		case actionFeaturize:
			cmdFeaturize.Usage()
		case actionPredict:
			cmdPredict.Usage()
		case actionResults:
			cmdResults.Usage()
		default:
			topLevelUsage()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionTrain:
		cmdTrain.Parse(os.Args[2:])
		conf := setup(cmdTrain.Arg(0))
		trainOpts.predPath = cmdTrain.Arg(1)
		runActionTrain(conf, trainOpts)
	case actionFeaturize:
		cmdFeaturize.Parse(os.Args[2:])
		conf := setup(cmdFeaturize.Arg(0))
		runActionFeaturize(conf, cmdFeaturize.Arg(1), cmdFeaturize.Arg(2), *featRegression, *featBoostFail, *featDebug)
	case actionPredict:
		cmdPredict.Parse(os.Args[2:])
		conf := setup(cmdPredict.Arg(0))
		if *predMLFeat != "" {
			conf.MLFeatPath = *predMLFeat
		}
		modelPath := *predModel
		if modelPath == "" {
			modelPath = conf.ModelFile
		}
		runActionPredict(conf, *predFix, *predFlt, modelPath)
	case actionResults:
		cmdResults.Parse(os.Args[2:])
		conf := setup(cmdResults.Arg(0))
		if resultsOpts.dbPath == "" {
			resultsOpts.dbPath = conf.ResultsDBPath
		}
		runActionResults(resultsOpts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information")
		os.Exit(exitErrorGeneralFailure)
	}
}
