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

package dataset

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Task specifies what the assembled dataset is used for
type Task int

const (
	TaskClassification Task = iota
	TaskRegression
)

const (
	// ResponseWorth is the classification target column
	ResponseWorth = "worth"

	// ResponseRatio is the regression target column (float time / fix time)
	ResponseRatio = "ratio"
)

func (t Task) String() string {
	if t == TaskRegression {
		return "regression"
	}
	return "classification"
}

// DefaultResponse returns the target column used for the task
func (t Task) DefaultResponse() string {
	if t == TaskRegression {
		return ResponseRatio
	}
	return ResponseWorth
}

func ParseTask(s string) (Task, error) {
	switch s {
	case "classification", "":
		return TaskClassification, nil
	case "regression":
		return TaskRegression, nil
	}
	return TaskClassification, fmt.Errorf("unknown task %s", s)
}

// SpeedupRatio calculates float time / fix time. Runs without
// a fix time measured produce zero.
func SpeedupRatio(fixTime, floatTime float64) float64 {
	if fixTime == 0 {
		return 0
	}
	return floatTime / fixTime
}

// WorthLabel buckets a speed-up ratio into 1 (fix is faster by more
// than a step), -1 (fix is slower by more than a step) and 0 otherwise.
// Ratios are compared in decimal so that a ratio lying exactly on
// a bucket border (e.g. 1.2 for step 0.2) stays in the middle bucket.
func WorthLabel(ratio, step float64) float64 {
	switch {
	case math.IsNaN(ratio):
		return 0
	case math.IsInf(ratio, 1):
		return 1
	case math.IsInf(ratio, -1):
		return -1
	}
	r := decimal.NewFromFloat(ratio)
	delta := decimal.NewFromFloat(step)
	one := decimal.NewFromInt(1)
	switch {
	case r.GreaterThan(one.Add(delta)):
		return 1
	case r.LessThan(one.Sub(delta)):
		return -1
	}
	return 0
}

// IsFailing tells whether a target value represents a run where
// the fixed point version did not pay off.
func IsFailing(target float64) bool {
	return target < 1
}
