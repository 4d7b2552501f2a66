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

package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// rcond is the relative singular value cutoff used
	// to determine the effective rank of the data
	rcond = 1e-10
)

// Model is an ordinary least squares regression. The coefficients
// are the minimum norm least squares solution over standardized
// features, so the model can be fitted even with fewer rows
// than features or with collinear features.
type Model struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Rank      int       `json:"rank"`
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) IsInferenceOnly() bool {
	return false
}

func (m *Model) GetInfo() string {
	return fmt.Sprintf("Linear regression, num. coefficients: %d, rank: %d", len(m.Coef), m.Rank)
}

func column(x [][]float64, j int) []float64 {
	ans := make([]float64, len(x))
	for i, row := range x {
		ans[i] = row[j]
	}
	return ans
}

func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train linear model - data and targets size mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	numRows := len(x)
	numCols := len(x[0])
	means := make([]float64, numCols)
	scales := make([]float64, numCols)
	for j := range numCols {
		means[j], scales[j] = stat.PopMeanStdDev(column(x, j), nil)
	}
	yMean := stat.Mean(y, nil)

	m.Coef = make([]float64, numCols)
	m.Intercept = yMean
	m.Rank = 0
	if numCols == 0 {
		return nil
	}
	design := mat.NewDense(numRows, numCols, nil)
	for i, row := range x {
		for j, v := range row {
			if scales[j] > 0 {
				design.Set(i, j, (v-means[j])/scales[j])
			}
		}
	}
	target := make([]float64, numRows)
	for i, v := range y {
		target[i] = v - yMean
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return fmt.Errorf("failed to train linear model - SVD did not converge")
	}
	m.Rank = svd.Rank(rcond)
	if m.Rank == 0 {
		return nil
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, mat.NewVecDense(numRows, target), m.Rank)
	for j := range m.Coef {
		if scales[j] > 0 {
			m.Coef[j] = beta.AtVec(j) / scales[j]
			m.Intercept -= m.Coef[j] * means[j]
		}
	}
	if math.IsNaN(m.Intercept) {
		return fmt.Errorf("failed to train linear model - invalid data")
	}
	return nil
}

func (m *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	for i, row := range x {
		ans[i] = m.Intercept + floats.Dot(m.Coef, row)
	}
	return ans
}

func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to load linear model: %w", err)
	}
	return &m, nil
}
