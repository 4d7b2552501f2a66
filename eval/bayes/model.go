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

package bayes

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/czcorpus/perfest/eval/modutils"
	"gonum.org/v1/gonum/stat"
)

const (
	dfltVarSmoothing = 1e-9
)

// Model is a Gaussian Naive Bayes classifier
type Model struct {
	Labels         *modutils.LabelEncoder `json:"labels"`
	ClassLogPriors []float64              `json:"classLogPriors"`
	FeatureMeans   [][]float64            `json:"featureMeans"`
	FeatureVars    [][]float64            `json:"featureVars"`
	VarSmoothing   float64                `json:"varSmoothing"`
}

func NewModel(varSmoothing float64) *Model {
	if varSmoothing <= 0 {
		varSmoothing = dfltVarSmoothing
	}
	return &Model{VarSmoothing: varSmoothing}
}

func (m *Model) IsInferenceOnly() bool {
	return false
}

func (m *Model) GetInfo() string {
	return fmt.Sprintf("Gaussian Naive Bayes, var. smoothing: %g", m.VarSmoothing)
}

func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train NB model - data and labels size mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Labels = modutils.NewLabelEncoder(y)
	numFeats := len(x[0])
	numClasses := m.Labels.NumClasses()

	// variance smoothing is relative to the largest feature variance
	// (the same way as in scikit-learn)
	var maxVar float64
	column := make([]float64, len(x))
	for j := 0; j < numFeats; j++ {
		for i, row := range x {
			column[i] = row[j]
		}
		_, v := stat.PopMeanVariance(column, nil)
		maxVar = math.Max(maxVar, v)
	}
	epsilon := m.VarSmoothing * math.Max(maxVar, 1)

	m.ClassLogPriors = make([]float64, numClasses)
	m.FeatureMeans = make([][]float64, numClasses)
	m.FeatureVars = make([][]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		label := m.Labels.Decode(c)
		var classRows [][]float64
		for i, row := range x {
			if y[i] == label {
				classRows = append(classRows, row)
			}
		}
		m.ClassLogPriors[c] = math.Log(float64(len(classRows)) / float64(len(x)))
		m.FeatureMeans[c] = make([]float64, numFeats)
		m.FeatureVars[c] = make([]float64, numFeats)
		values := make([]float64, len(classRows))
		for j := 0; j < numFeats; j++ {
			for i, row := range classRows {
				values[i] = row[j]
			}
			mean, variance := stat.PopMeanVariance(values, nil)
			if math.IsNaN(variance) {
				variance = 0
			}
			m.FeatureMeans[c][j] = mean
			m.FeatureVars[c][j] = variance + epsilon
		}
	}
	return nil
}

func logGaussian(x, mean, variance float64) float64 {
	diff := x - mean
	return -0.5*math.Log(2*math.Pi*variance) - diff*diff/(2*variance)
}

func (m *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	logProbs := make([]float64, len(m.ClassLogPriors))
	for i, row := range x {
		for c := range logProbs {
			logProbs[c] = m.ClassLogPriors[c]
			for j, v := range row {
				logProbs[c] += logGaussian(v, m.FeatureMeans[c][j], m.FeatureVars[c][j])
			}
		}
		ans[i] = m.Labels.Decode(modutils.ArgMax(logProbs))
	}
	return ans
}

func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to load NB model: %w", err)
	}
	if m.Labels == nil {
		return nil, fmt.Errorf("failed to load NB model: missing class labels")
	}
	return &m, nil
}
