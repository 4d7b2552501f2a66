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

package measurement

import (
	"slices"
)

// Table is a sparse two-dimensional table of measured values.
// Rows are benchmark runs, columns are generic keys (typically
// CounterKey for instrumentation counters and string for profile
// values). Missing cells are reported as such by Get and as zero
// by Value.
type Table[C comparable] struct {
	rows   []RowKey
	rowIdx map[RowKey]struct{}
	cols   []C
	colIdx map[C]struct{}
	cells  map[RowKey]map[C]float64
}

type StatsTable = Table[CounterKey]

type ProfileTable = Table[string]

func NewTable[C comparable]() *Table[C] {
	return &Table[C]{
		rowIdx: make(map[RowKey]struct{}),
		colIdx: make(map[C]struct{}),
		cells:  make(map[RowKey]map[C]float64),
	}
}

func (t *Table[C]) Set(row RowKey, col C, v float64) {
	if _, ok := t.rowIdx[row]; !ok {
		t.rowIdx[row] = struct{}{}
		t.rows = append(t.rows, row)
		t.cells[row] = make(map[C]float64)
	}
	if _, ok := t.colIdx[col]; !ok {
		t.colIdx[col] = struct{}{}
		t.cols = append(t.cols, col)
	}
	t.cells[row][col] = v
}

func (t *Table[C]) Get(row RowKey, col C) (float64, bool) {
	r, ok := t.cells[row]
	if !ok {
		return 0, false
	}
	v, ok := r[col]
	return v, ok
}

// Value returns a cell value with missing cells treated as zero
func (t *Table[C]) Value(row RowKey, col C) float64 {
	v, _ := t.Get(row, col)
	return v
}

func (t *Table[C]) HasRow(row RowKey) bool {
	_, ok := t.rowIdx[row]
	return ok
}

func (t *Table[C]) HasColumn(col C) bool {
	_, ok := t.colIdx[col]
	return ok
}

func (t *Table[C]) Rows() []RowKey {
	return slices.Clone(t.rows)
}

func (t *Table[C]) Columns() []C {
	return slices.Clone(t.cols)
}

func (t *Table[C]) NumRows() int {
	return len(t.rows)
}

func (t *Table[C]) NumColumns() int {
	return len(t.cols)
}

// DropBenchmarks removes all the rows of the specified benchmarks
// and returns the number of removed rows.
func (t *Table[C]) DropBenchmarks(benchmarks []string) int {
	var removed int
	t.rows = slices.DeleteFunc(t.rows, func(r RowKey) bool {
		if slices.Contains(benchmarks, r.Bench) {
			delete(t.rowIdx, r)
			delete(t.cells, r)
			removed++
			return true
		}
		return false
	})
	return removed
}

// Sort orders both rows and columns so that the table
// (and everything derived from it) does not depend on
// the order of the source files.
func (t *Table[C]) Sort(cmpCols func(a, b C) int) {
	slices.SortFunc(t.rows, CompareRowKeys)
	slices.SortFunc(t.cols, cmpCols)
}
