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

package eval

import (
	"context"
	"errors"
)

var ErrInferenceOnly = errors.New("model supports inference only")

// MLModel is a generalization of a Machine Learning model used to
// predict whether a fixed point version of a program pays off.
// Depending on the task, the predicted values are either worth
// classes (-1, 0, 1) or speed-up ratios.
type MLModel interface {

	// Train fits the model to the provided data. In case the model
	// supports only inference (e.g. our LightGBM model), this should just
	// prepare data to a format required by the actual program
	// performing the learning.
	Train(ctx context.Context, x [][]float64, y []float64) error

	Predict(x [][]float64) []float64

	// Marshal serializes the trained model so it can be
	// stored in a model bundle.
	Marshal() ([]byte, error)

	GetInfo() string

	// IsInferenceOnly specifies whether the model can be used
	// only for prediction (i.e. Train does not produce a usable model)
	IsInferenceOnly() bool
}
