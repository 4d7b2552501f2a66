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
	"math/rand/v2"
	"time"
)

const (
	maxSplitAttempts = 100
)

// Splitter partitions datasets into training and testing parts.
// Each row goes to the training part with probability TrainFraction,
// independently of other rows, so the actual sizes vary between splits.
type Splitter struct {
	TrainFraction float64
	rnd           *rand.Rand
}

// NewSplitter creates a splitter. A zero seed means a time based seed.
func NewSplitter(trainFraction float64, seed uint64) *Splitter {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Splitter{
		TrainFraction: trainFraction,
		rnd:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Mask draws a training membership flag for each of n rows.
func (s *Splitter) Mask(n int) []bool {
	ans := make([]bool, n)
	for i := range ans {
		ans[i] = s.rnd.Float64() < s.TrainFraction
	}
	return ans
}

// Split partitions a dataset. For datasets with at least two rows,
// the draw is repeated (a limited number of times) until both parts
// are non-empty.
func (s *Splitter) Split(ds *Dataset) (*Dataset, *Dataset) {
	var mask []bool
	var train, test []int
	for attempt := 0; attempt < maxSplitAttempts; attempt++ {
		mask = s.Mask(ds.Len())
		train = train[:0]
		test = test[:0]
		for i, inTrain := range mask {
			if inTrain {
				train = append(train, i)

			} else {
				test = append(test, i)
			}
		}
		if ds.Len() < 2 || (len(train) > 0 && len(test) > 0) {
			break
		}
	}
	return ds.Subset(train), ds.Subset(test)
}
