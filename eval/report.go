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
	"fmt"
	"math"
	"os"
	"slices"
)

type misclassification struct {
	Key       string  `json:"key"`
	Actual    float64 `json:"actual"`
	MLOutput  float64 `json:"mlOutput"`
	NumRepeat int     `json:"numRepeat"`
	Type      string  `json:"type"`
}

func (m misclassification) AbsErrorSize() float64 {
	return math.Abs(m.MLOutput/float64(m.NumRepeat) - m.Actual)
}

// ------------------------

// Reporter collects benchmarks the models repeatedly fail
// to evaluate correctly.
type Reporter struct {
	misclassBenchmarks   map[string]misclassification
	MisclassBenchOutPath string
}

// AddMisclassified registers a wrong prediction. The type is "FP"
// for a prediction overestimating the fixed point speed-up and "FN"
// otherwise. A benchmark with both types is marked with "*".
func (reporter *Reporter) AddMisclassified(key string, mlOut, actual float64) {
	tp := "FN"
	if mlOut > actual {
		tp = "FP"
	}
	if reporter.misclassBenchmarks == nil {
		reporter.misclassBenchmarks = make(map[string]misclassification)
	}
	curr, ok := reporter.misclassBenchmarks[key]
	if ok {
		curr.MLOutput += mlOut
		curr.NumRepeat += 1
		if tp != curr.Type {
			curr.Type = "*"
		}
		reporter.misclassBenchmarks[key] = curr

	} else {
		reporter.misclassBenchmarks[key] = misclassification{
			Key:       key,
			Actual:    actual,
			MLOutput:  mlOut,
			NumRepeat: 1,
			Type:      tp,
		}
	}
}

func (reporter *Reporter) NumMisclassified() int {
	return len(reporter.misclassBenchmarks)
}

func (reporter *Reporter) sortedMisclassified() []misclassification {
	ans := make([]misclassification, 0, len(reporter.misclassBenchmarks))
	for _, v := range reporter.misclassBenchmarks {
		ans = append(ans, v)
	}
	slices.SortFunc(
		ans,
		func(v1, v2 misclassification) int {
			if v1.NumRepeat < v2.NumRepeat {
				return 1

			} else if v1.NumRepeat > v2.NumRepeat {
				return -1

			} else {
				if v1.AbsErrorSize() < v2.AbsErrorSize() {
					return 1

				} else if v1.AbsErrorSize() > v2.AbsErrorSize() {
					return -1
				}
				if v1.Key < v2.Key {
					return -1
				}
				return 1
			}
		},
	)
	return ans
}

func (reporter *Reporter) SaveMisclassified() error {
	data := reporter.sortedMisclassified()
	if reporter.MisclassBenchOutPath == "" {
		return fmt.Errorf("misclassBenchOutPath is not set")
	}

	f, err := os.Create(reporter.MisclassBenchOutPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", reporter.MisclassBenchOutPath, err)
	}
	defer f.Close()

	for _, item := range data {
		_, err := fmt.Fprintf(f, "%s\t%.2f\t%.2f\t%s(%d)\n",
			item.Key, item.Actual, item.MLOutput/float64(item.NumRepeat), item.Type, item.NumRepeat)
		if err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
	}

	return nil
}
