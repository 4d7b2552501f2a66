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

package rf

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/czcorpus/perfest/eval/modutils"
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

const (
	dfltNumTrees = 100
)

type jsonizedRFModel struct {
	Forest   json.RawMessage        `json:"forest"`
	Labels   *modutils.LabelEncoder `json:"labels"`
	NumTrees int                    `json:"numTrees"`
}

// Model wraps a Random Forest classifier
type Model struct {
	Forest   *randomforest.Forest
	NumTrees int
	labels   *modutils.LabelEncoder
}

// NewModel creates a new Random Forest model
func NewModel(numTrees int) *Model {
	if numTrees <= 0 {
		numTrees = dfltNumTrees
	}
	return &Model{
		Forest:   &randomforest.Forest{},
		NumTrees: numTrees,
	}
}

func (m *Model) IsInferenceOnly() bool {
	return false
}

func (m *Model) GetInfo() string {
	return fmt.Sprintf("RF model, num. trees: %d", m.NumTrees)
}

// Train trains the random forest on feature vectors and class labels
func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train RF model - data and labels size mismatch")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.labels = modutils.NewLabelEncoder(y)
	yData, err := m.labels.EncodeAll(y)
	if err != nil {
		return fmt.Errorf("failed to train RF model: %w", err)
	}
	log.Debug().
		Int("numClasses", m.labels.NumClasses()).
		Int("dataSize", len(x)).
		Msg("prepared training vectors")

	m.Forest = &randomforest.Forest{}
	m.Forest.Data = randomforest.ForestData{
		X:     x,
		Class: yData,
	}
	m.Forest.Train(m.NumTrees)
	return nil
}

// Predict returns the class with the highest number of votes
func (m *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	for i, row := range x {
		votes := m.Forest.Vote(row)
		ans[i] = m.labels.Decode(modutils.ArgMax(votes))
	}
	return ans
}

func (m *Model) Marshal() ([]byte, error) {
	forest, err := json.Marshal(m.Forest)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize RF model: %w", err)
	}
	ans, err := json.Marshal(jsonizedRFModel{
		Forest:   forest,
		Labels:   m.labels,
		NumTrees: m.NumTrees,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize RF model: %w", err)
	}
	return ans, nil
}

// Unmarshal loads a model serialized via Marshal
func Unmarshal(data []byte) (*Model, error) {
	var tmpModel jsonizedRFModel
	if err := json.Unmarshal(data, &tmpModel); err != nil {
		return nil, fmt.Errorf("failed to load Random Forest model: %w", err)
	}
	var forest randomforest.Forest
	if err := json.Unmarshal(tmpModel.Forest, &forest); err != nil {
		return nil, fmt.Errorf("failed to load Random Forest model: %w", err)
	}
	if tmpModel.Labels == nil {
		return nil, fmt.Errorf("failed to load Random Forest model: missing class labels")
	}
	return &Model{
		Forest:   &forest,
		NumTrees: tmpModel.NumTrees,
		labels:   tmpModel.Labels,
	}, nil
}
