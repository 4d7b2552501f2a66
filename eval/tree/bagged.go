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

package tree

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/czcorpus/perfest/eval/modutils"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/meta"
	"github.com/sjwhitworth/golearn/trees"
)

// Kind specifies how the trees of a bagged ensemble are grown
type Kind string

const (
	// KindBagging grows trees considering all the features
	// at each node
	KindBagging Kind = "bagging"

	// KindExtraTrees grows trees considering only a random
	// subset of sqrt(num. features) at each node
	KindExtraTrees Kind = "extratrees"
)

// Bagged is a voting ensemble of golearn random trees, each grown
// on a bootstrap sample. golearn models cannot be serialized into
// memory so the training data are kept and the ensemble is refitted
// on load.
type Bagged struct {
	Kind          Kind                   `json:"kind"`
	NumEstimators int                    `json:"numEstimators"`
	XTrain        [][]float64            `json:"xTrain"`
	YTrain        []float64              `json:"yTrain"`
	Labels        *modutils.LabelEncoder `json:"labels"`
	schema        *modutils.GridSchema
	model         *meta.BaggedModel
}

func NewBagged(kind Kind, numEstimators int) *Bagged {
	if numEstimators <= 0 {
		numEstimators = dfltNumEstimators
	}
	return &Bagged{Kind: kind, NumEstimators: numEstimators}
}

func (e *Bagged) IsInferenceOnly() bool {
	return false
}

func (e *Bagged) GetInfo() string {
	return fmt.Sprintf("Tree ensemble (%s), num. estimators: %d", e.Kind, e.NumEstimators)
}

func (e *Bagged) attrsPerNode(numFeatures int) int {
	if e.Kind == KindExtraTrees {
		return max(1, int(math.Sqrt(float64(numFeatures))))
	}
	return numFeatures
}

func (e *Bagged) fit(ctx context.Context) error {
	if len(e.XTrain) == 0 {
		return fmt.Errorf("no training data provided")
	}
	e.schema = modutils.NewGridSchema(len(e.XTrain[0]), e.Labels)
	grid, err := e.schema.TrainingGrid(e.XTrain, e.YTrain)
	if err != nil {
		return err
	}
	e.model = new(meta.BaggedModel)
	numAttrs := e.attrsPerNode(len(e.XTrain[0]))
	for i := 0; i < e.NumEstimators; i++ {
		e.model.AddModel(trees.NewRandomTree(numAttrs))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.model.Fit(grid)
	return nil
}

func (e *Bagged) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train tree ensemble - data and labels size mismatch")
	}
	e.Labels = modutils.NewLabelEncoder(y)
	e.XTrain = x
	e.YTrain = y
	if err := e.fit(ctx); err != nil {
		return fmt.Errorf("failed to train tree ensemble: %w", err)
	}
	return nil
}

func nanPredictions(n int) []float64 {
	ans := make([]float64, n)
	for i := range ans {
		ans[i] = math.NaN()
	}
	return ans
}

func (e *Bagged) Predict(x [][]float64) []float64 {
	if e.model == nil {
		return nanPredictions(len(x))
	}
	var pred base.FixedDataGrid
	grid, err := e.schema.PredictionGrid(x)
	if err == nil {
		pred, err = e.model.Predict(grid)
	}
	if err != nil {
		return nanPredictions(len(x))
	}
	return e.schema.DecodePredictions(pred)
}

func (e *Bagged) Marshal() ([]byte, error) {
	ans, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize tree ensemble: %w", err)
	}
	return ans, nil
}

func UnmarshalBagged(data []byte) (*Bagged, error) {
	var e Bagged
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to load tree ensemble: %w", err)
	}
	if e.Labels == nil {
		return nil, fmt.Errorf("failed to load tree ensemble: invalid data")
	}
	if err := e.fit(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load tree ensemble: %w", err)
	}
	return &e, nil
}
