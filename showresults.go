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
	"fmt"
	"io"
	"os"

	"github.com/czcorpus/perfest/results"
	"github.com/fatih/color"
)

type resultsOptions struct {
	dbPath       string
	experimentID string
	model        string
	showTrials   bool
}

func (opts resultsOptions) filter() results.TrialFilter {
	var filter results.TrialFilter
	if opts.experimentID != "" {
		filter = filter.SetExperimentID(opts.experimentID)
	}
	if opts.model != "" {
		filter = filter.SetModel(opts.model)
	}
	return filter
}

// printResults writes stored trials grouped by experiment and model,
// each group with its average score.
func printResults(w io.Writer, db *results.Database, opts resultsOptions) error {
	trials, err := db.GetTrials(opts.filter())
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		fmt.Fprintln(w, "no trials found")
		return nil
	}
	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	var currExp, currModel string
	for i, trial := range trials {
		if trial.ExperimentID != currExp {
			currExp = trial.ExperimentID
			currModel = ""
			fmt.Fprintf(w, "\n%s\n", titleColor("experiment "+currExp))
		}
		if trial.Model != currModel {
			currModel = trial.Model
			avg, err := db.GetModelAvgScore(currExp, currModel)
			if err != nil {
				return fmt.Errorf("failed to get average score of %s: %w", currModel, err)
			}
			numTrials := 0
			for _, t := range trials[i:] {
				if t.ExperimentID != currExp || t.Model != currModel {
					break
				}
				numTrials++
			}
			fmt.Fprintf(w, "  %-24s trials: %4d, avg. score: %.4f\n", currModel, numTrials, avg)
		}
		if opts.showTrials {
			fmt.Fprintf(
				w, "    #%-4d score: %.4f, latency: %s, train/test: %d/%d\n",
				trial.Trial, trial.Score, trial.Latency, trial.TrainSize, trial.TestSize)
		}
	}
	return nil
}

func runActionResults(opts resultsOptions) {
	if opts.dbPath == "" {
		exitWithError(fmt.Errorf("no results database specified"), exitErrorFailedToOpenResultsDB)
	}
	db, err := results.NewDatabase(opts.dbPath)
	if err != nil {
		exitWithError(err, exitErrorFailedToOpenResultsDB)
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		exitWithError(err, exitErrorFailedToOpenResultsDB)
	}
	if err := printResults(os.Stdout, db, opts); err != nil {
		exitWithError(err, exitErrorFailedToOpenResultsDB)
	}
}
