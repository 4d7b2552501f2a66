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

package ym

import (
	"context"
	"encoding/json"
)

// Model is a constant model which evaluates any benchmark as worth
// converting to fixed point (ym = yes-man). For regression, it always
// predicts no change in run time. It serves as a baseline for other models.
type Model struct {
	Regression bool `json:"regression"`
}

func (ym *Model) IsInferenceOnly() bool {
	return true
}

func (ym *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	return nil
}

func (ym *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	for i := range ans {
		ans[i] = 1
	}
	return ans
}

func (ym *Model) Marshal() ([]byte, error) {
	return json.Marshal(ym)
}

func (ym *Model) GetInfo() string {
	if ym.Regression {
		return "Constant regression model (always 1.0)"
	}
	return "Constant classifier model (always 1)"
}

func Unmarshal(data []byte) (*Model, error) {
	var ans Model
	if err := json.Unmarshal(data, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}
