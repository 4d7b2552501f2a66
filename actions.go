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
	"fmt"
	"os"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/measurement"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

const (
	errColor = color.FgHiRed
)

func exitWithError(err error, code int) {
	color.New(errColor).Fprintln(os.Stderr, err)
	os.Exit(code)
}

// loadDataset loads a dataset either from a measurement directory
// or from a file created by the featurize action. If features are
// provided, the dataset is reconciled with them.
func loadDataset(
	ctx context.Context,
	conf *cnf.Conf,
	srcPath string,
	task dataset.Task,
	boostFail int,
	features []string,
	response string,
) (*dataset.Dataset, error) {
	if srcPath == "" {
		return nil, fmt.Errorf("no dataset path specified")
	}
	isFile, err := fs.IsFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if isFile {
		ds, err := dataset.LoadFromFile(srcPath)
		if err != nil {
			return nil, err
		}
		if response == "" {
			response = task.DefaultResponse()
		}
		if ds.Response != response {
			return nil, fmt.Errorf(
				"dataset %s has response %s, expected %s", srcPath, ds.Response, response)
		}
		if len(features) > 0 {
			ds.Features = features
		}
		if boostFail > 0 {
			log.Warn().
				Str("path", srcPath).
				Int("boostFail", boostFail).
				Msg("boostfail is not applied to dataset files, rows were oversampled by the featurize action")
		}
		log.Info().Str("path", srcPath).Int("numRows", ds.Len()).Msg("loaded dataset file")
		return ds, nil
	}
	stats, err := measurement.LoadStats(ctx, srcPath, conf.ExcludedBenchmarks)
	if err != nil {
		return nil, err
	}
	profile, err := measurement.LoadProfile(ctx, srcPath, conf.ExcludedBenchmarks)
	if err != nil {
		return nil, err
	}
	asm := dataset.NewAssembler(conf, task, boostFail)
	return asm.Assemble(stats, profile, features, response)
}
