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
	"github.com/rs/zerolog/log"
)

const (
	dfltNumEstimators = 50
	stumpDepth        = 1
)

// AdaBoost is a multi-class AdaBoost (SAMME) ensemble of weighted
// decision stumps. golearn provides no boosting meta-classifier
// so the stumps are grown by the local CART builder.
type AdaBoost struct {
	NumEstimators int                    `json:"numEstimators"`
	Stumps        []*Node                `json:"stumps"`
	StumpWeights  []float64              `json:"stumpWeights"`
	Labels        *modutils.LabelEncoder `json:"labels"`
}

func NewAdaBoost(numEstimators int) *AdaBoost {
	if numEstimators <= 0 {
		numEstimators = dfltNumEstimators
	}
	return &AdaBoost{NumEstimators: numEstimators}
}

func (e *AdaBoost) IsInferenceOnly() bool {
	return false
}

func (e *AdaBoost) GetInfo() string {
	return fmt.Sprintf("AdaBoost (SAMME), num. estimators: %d", e.NumEstimators)
}

func uniformWeights(n int) []float64 {
	ans := make([]float64, n)
	for i := range ans {
		ans[i] = 1
	}
	return ans
}

func allIndices(n int) []int {
	ans := make([]int, n)
	for i := range ans {
		ans[i] = i
	}
	return ans
}

func (e *AdaBoost) newBuilder(x [][]float64, y []int, w []float64) *builder {
	return &builder{
		x:               x,
		y:               y,
		w:               w,
		numClasses:      e.Labels.NumClasses(),
		maxDepth:        stumpDepth,
		minSamplesSplit: 2,
	}
}

func (e *AdaBoost) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train AdaBoost - data and labels size mismatch")
	}
	e.Labels = modutils.NewLabelEncoder(y)
	yEnc, err := e.Labels.EncodeAll(y)
	if err != nil {
		return fmt.Errorf("failed to train AdaBoost: %w", err)
	}
	e.Stumps = make([]*Node, 0, e.NumEstimators)
	e.StumpWeights = make([]float64, 0, e.NumEstimators)

	numClasses := float64(e.Labels.NumClasses())
	w := uniformWeights(len(x))
	for i := range w {
		w[i] /= float64(len(x))
	}
	indices := allIndices(len(x))
	for t := 0; t < e.NumEstimators; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stump := e.newBuilder(x, yEnc, w).build(indices, 0)
		var errSum float64
		for i, row := range x {
			if stump.predict(row) != yEnc[i] {
				errSum += w[i]
			}
		}
		if errSum <= 1e-12 {
			// perfect stump, nothing more to boost
			e.Stumps = append(e.Stumps, stump)
			e.StumpWeights = append(e.StumpWeights, 1)
			break
		}
		if errSum >= 1-1/numClasses {
			log.Debug().Int("round", t).Float64("error", errSum).Msg("AdaBoost stopped, weak learner too weak")
			break
		}
		alpha := math.Log((1-errSum)/errSum) + math.Log(numClasses-1)
		var total float64
		for i, row := range x {
			if stump.predict(row) != yEnc[i] {
				w[i] *= math.Exp(alpha)
			}
			total += w[i]
		}
		for i := range w {
			w[i] /= total
		}
		e.Stumps = append(e.Stumps, stump)
		e.StumpWeights = append(e.StumpWeights, alpha)
	}
	if len(e.Stumps) == 0 {
		// single class or hopeless data, fall back to a majority leaf
		e.Stumps = append(e.Stumps, &Node{Leaf: true, Class: majority(e.newBuilder(x, yEnc, w).classWeights(indices))})
		e.StumpWeights = append(e.StumpWeights, 1)
	}
	return nil
}

func (e *AdaBoost) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	votes := make([]float64, e.Labels.NumClasses())
	for i, row := range x {
		clear(votes)
		for t, stump := range e.Stumps {
			votes[stump.predict(row)] += e.StumpWeights[t]
		}
		ans[i] = e.Labels.Decode(modutils.ArgMax(votes))
	}
	return ans
}

func (e *AdaBoost) Marshal() ([]byte, error) {
	ans, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize AdaBoost: %w", err)
	}
	return ans, nil
}

func UnmarshalAdaBoost(data []byte) (*AdaBoost, error) {
	var e AdaBoost
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to load AdaBoost: %w", err)
	}
	if e.Labels == nil || len(e.Stumps) != len(e.StumpWeights) {
		return nil, fmt.Errorf("failed to load AdaBoost: invalid data")
	}
	return &e, nil
}
