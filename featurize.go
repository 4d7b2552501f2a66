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
	"os/signal"
	"strings"
	"syscall"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/rs/zerolog/log"
)

func runActionFeaturize(
	conf *cnf.Conf,
	srcPath, dstPath string,
	regression bool,
	boostFail int,
	debug bool,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	task := dataset.TaskClassification
	if regression {
		task = dataset.TaskRegression
	}
	ds, err := loadDataset(ctx, conf, srcPath, task, boostFail, nil, "")
	if err != nil {
		exitWithError(err, exitErrorLoadingData)
	}

	if debug {
		x := ds.X()
		y := ds.Y()
		for i, key := range ds.Frame.Keys {
			fmt.Printf("feats[%d] for %s (%s: %.2f)\n", i, key, ds.Response, y[i])
			var buff strings.Builder
			for j, f := range ds.Features {
				buff.WriteString(fmt.Sprintf("\t%s: %.4f\n", f, x[i][j]))
			}
			fmt.Print(buff.String())
		}

	} else {
		if dstPath == "" {
			log.Fatal().Msg("no output file specified")
			return
		}
		fmt.Fprintln(os.Stderr, "importing features from ", srcPath)
		if err := ds.SaveToFile(dstPath); err != nil {
			log.Fatal().Err(err).Str("file", dstPath).Msg("failed to save features to a file")
			return
		}
		log.Info().
			Str("file", dstPath).
			Int("numRows", ds.Len()).
			Int("numFeatures", len(ds.Features)).
			Msg("saved dataset")
	}
}
