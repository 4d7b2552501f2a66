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
	"math"
	"slices"

	"github.com/czcorpus/perfest/measurement"
)

// Frame is a dense, column oriented table of named float columns
// sharing a common row index.
type Frame struct {
	Keys  []measurement.RowKey
	cols  map[string][]float64
	order []string
}

func NewFrame(keys []measurement.RowKey) *Frame {
	return &Frame{
		Keys: keys,
		cols: make(map[string][]float64),
	}
}

func (f *Frame) Len() int {
	return len(f.Keys)
}

// SetColumn adds or replaces a column. The values slice must
// have the same length as the frame.
func (f *Frame) SetColumn(name string, values []float64) {
	if len(values) != len(f.Keys) {
		panic("column length does not match frame length")
	}
	if _, ok := f.cols[name]; !ok {
		f.order = append(f.order, name)
	}
	f.cols[name] = values
}

func (f *Frame) Column(name string) ([]float64, bool) {
	v, ok := f.cols[name]
	return v, ok
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// ColumnNames returns column names in the order of their creation
func (f *Frame) ColumnNames() []string {
	return slices.Clone(f.order)
}

// Matrix returns rows of the frame restricted to the provided
// columns (in the provided order). Missing columns yield zeros.
func (f *Frame) Matrix(columns []string) [][]float64 {
	ans := make([][]float64, len(f.Keys))
	for i := range ans {
		ans[i] = make([]float64, len(columns))
	}
	for j, c := range columns {
		col, ok := f.cols[c]
		if !ok {
			continue
		}
		for i, v := range col {
			ans[i][j] = v
		}
	}
	return ans
}


// Select creates a new frame containing rows with the specified
// indices (duplicates allowed).
func (f *Frame) Select(indices []int) *Frame {
	keys := make([]measurement.RowKey, len(indices))
	for i, idx := range indices {
		keys[i] = f.Keys[idx]
	}
	ans := NewFrame(keys)
	for _, name := range f.order {
		src := f.cols[name]
		dst := make([]float64, len(indices))
		for i, idx := range indices {
			dst[i] = src[idx]
		}
		ans.SetColumn(name, dst)
	}
	return ans
}

// Concat appends rows of other below rows of f. Columns missing
// in either of the frames are zero-filled.
func (f *Frame) Concat(other *Frame) *Frame {
	keys := make([]measurement.RowKey, 0, f.Len()+other.Len())
	keys = append(keys, f.Keys...)
	keys = append(keys, other.Keys...)
	ans := NewFrame(keys)
	names := f.ColumnNames()
	for _, name := range other.order {
		if !f.HasColumn(name) {
			names = append(names, name)
		}
	}
	for _, name := range names {
		values := make([]float64, 0, len(keys))
		if col, ok := f.cols[name]; ok {
			values = append(values, col...)

		} else {
			values = append(values, make([]float64, f.Len())...)
		}
		if col, ok := other.cols[name]; ok {
			values = append(values, col...)

		} else {
			values = append(values, make([]float64, other.Len())...)
		}
		ans.SetColumn(name, values)
	}
	return ans
}

// FillMissing replaces all NaN and infinite values with zero
// and returns the number of replaced cells.
func (f *Frame) FillMissing() int {
	var num int
	for _, col := range f.cols {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col[i] = 0
				num++
			}
		}
	}
	return num
}

// NumMissing counts NaN and infinite cells in the specified columns
func (f *Frame) NumMissing(columns []string) int {
	var num int
	for _, c := range columns {
		col, ok := f.cols[c]
		if !ok {
			num += f.Len()
			continue
		}
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				num++
			}
		}
	}
	return num
}

func numDistinct(values []float64) int {
	uniq := make(map[float64]struct{})
	for _, v := range values {
		if !math.IsNaN(v) {
			uniq[v] = struct{}{}
		}
	}
	return len(uniq)
}
