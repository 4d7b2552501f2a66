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
	"math"
	"slices"
	"time"

	"github.com/czcorpus/perfest/dataset"
	"gonum.org/v1/gonum/stat"
)

// Accuracy returns the fraction of exactly matching predictions
func Accuracy(pred, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var hits int
	for i, v := range actual {
		if pred[i] == v {
			hits++
		}
	}
	return float64(hits) / float64(len(actual))
}

// RSquared returns the coefficient of determination. For constant
// actual values, it returns 1 on a perfect fit and 0 otherwise.
func RSquared(pred, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	if stat.Variance(actual, nil) == 0 || len(actual) == 1 {
		for i, v := range actual {
			if pred[i] != v {
				return 0
			}
		}
		return 1
	}
	ans := stat.RSquaredFrom(pred, actual, nil)
	if math.IsNaN(ans) {
		return 0
	}
	return ans
}

// Score evaluates predictions by accuracy (classification)
// or R² (regression)
func Score(task dataset.Task, pred, actual []float64) float64 {
	if task == dataset.TaskRegression {
		return RSquared(pred, actual)
	}
	return Accuracy(pred, actual)
}

func MedianDuration(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	tmp := slices.Clone(values)
	slices.Sort(tmp)
	mid := len(tmp) / 2
	if len(tmp)%2 == 1 {
		return tmp[mid]
	}
	return (tmp[mid-1] + tmp[mid]) / 2
}
