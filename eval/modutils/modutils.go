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

package modutils

import (
	"fmt"
	"math"
	"slices"
)

// LabelEncoder maps arbitrary numeric class labels to
// indices 0..n-1 as required by most classifiers.
type LabelEncoder struct {
	Classes []float64 `json:"classes"`
}

func NewLabelEncoder(y []float64) *LabelEncoder {
	classes := slices.Clone(y)
	slices.Sort(classes)
	return &LabelEncoder{Classes: slices.Compact(classes)}
}

func (le *LabelEncoder) NumClasses() int {
	return len(le.Classes)
}

func (le *LabelEncoder) Encode(label float64) (int, error) {
	idx, found := slices.BinarySearch(le.Classes, label)
	if !found {
		return -1, fmt.Errorf("unknown class %v", label)
	}
	return idx, nil
}

func (le *LabelEncoder) EncodeAll(y []float64) ([]int, error) {
	ans := make([]int, len(y))
	for i, v := range y {
		idx, err := le.Encode(v)
		if err != nil {
			return nil, err
		}
		ans[i] = idx
	}
	return ans, nil
}

func (le *LabelEncoder) Decode(idx int) float64 {
	if idx < 0 || idx >= len(le.Classes) {
		return math.NaN()
	}
	return le.Classes[idx]
}

// ArgMax returns an index of the highest value (the first one
// in case of ties)
func ArgMax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	ans := 0
	for i, v := range values {
		if v > values[ans] {
			ans = i
		}
	}
	return ans
}

// ---------------------------

type FeatureStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FeatureRanges holds per-feature value ranges used
// for min-max normalization.
type FeatureRanges []FeatureStats

func NewFeatureRanges(x [][]float64) FeatureRanges {
	if len(x) == 0 {
		return FeatureRanges{}
	}
	ans := make(FeatureRanges, len(x[0]))
	for i, v := range x[0] {
		ans[i] = FeatureStats{Min: v, Max: v}
	}
	for _, row := range x[1:] {
		for i, v := range row {
			ans[i].Min = math.Min(ans[i].Min, v)
			ans[i].Max = math.Max(ans[i].Max, v)
		}
	}
	return ans
}

// Normalize returns a copy of a feature vector scaled to [0, 1]
// (values outside of the training range may exceed it).
func (fr FeatureRanges) Normalize(row []float64) []float64 {
	ans := make([]float64, len(row))
	for i, v := range row {
		if i >= len(fr) || fr[i].Max == fr[i].Min {
			continue // constant feature
		}
		ans[i] = (v - fr[i].Min) / (fr[i].Max - fr[i].Min)
	}
	return ans
}

func (fr FeatureRanges) NormalizeAll(x [][]float64) [][]float64 {
	ans := make([][]float64, len(x))
	for i, row := range x {
		ans[i] = fr.Normalize(row)
	}
	return ans
}
