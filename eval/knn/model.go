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

package knn

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/czcorpus/perfest/eval/modutils"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

const (
	dfltK = 5

	distanceFunc = "euclidean"
	searchAlgo   = "linear"
)

// Model is a k-nearest neighbors classifier using Euclidean
// distance over min-max normalized features.
type Model struct {
	K          int                    `json:"k"`
	DataRanges modutils.FeatureRanges `json:"dataRanges"`
	XTrain     [][]float64            `json:"xTrain"`
	YTrain     []float64              `json:"yTrain"`
	Labels     *modutils.LabelEncoder `json:"labels"`
	schema     *modutils.GridSchema
	classifier *knn.KNNClassifier
}

func NewModel(k int) *Model {
	if k <= 0 {
		k = dfltK
	}
	return &Model{K: k}
}

func (m *Model) IsInferenceOnly() bool {
	return false
}

func (m *Model) GetInfo() string {
	return fmt.Sprintf("KNN model, k: %d", m.K)
}

func (m *Model) fit() error {
	if len(m.XTrain) == 0 {
		return fmt.Errorf("no training data provided")
	}
	m.schema = modutils.NewGridSchema(len(m.XTrain[0]), m.Labels)
	grid, err := m.schema.TrainingGrid(m.XTrain, m.YTrain)
	if err != nil {
		return fmt.Errorf("failed to prepare KNN training data: %w", err)
	}
	// golearn's linear search needs at least k training rows
	m.classifier = knn.NewKnnClassifier(distanceFunc, searchAlgo, min(m.K, len(m.XTrain)))
	return m.classifier.Fit(grid)
}

func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train KNN model - data and labels size mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Labels = modutils.NewLabelEncoder(y)
	m.DataRanges = modutils.NewFeatureRanges(x)
	m.XTrain = m.DataRanges.NormalizeAll(x)
	m.YTrain = y
	if err := m.fit(); err != nil {
		return fmt.Errorf("failed to train KNN model: %w", err)
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

func (m *Model) Predict(x [][]float64) []float64 {
	if m.classifier == nil {
		return nanPredictions(len(x))
	}
	var pred base.FixedDataGrid
	grid, err := m.schema.PredictionGrid(m.DataRanges.NormalizeAll(x))
	if err == nil {
		pred, err = m.classifier.Predict(grid)
	}
	if err != nil {
		return nanPredictions(len(x))
	}
	return m.schema.DecodePredictions(pred)
}

func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to load KNN model: %w", err)
	}
	if m.Labels == nil {
		return nil, fmt.Errorf("failed to load KNN model: missing class labels")
	}
	if err := m.fit(); err != nil {
		return nil, fmt.Errorf("failed to load KNN model: %w", err)
	}
	return &m, nil
}
