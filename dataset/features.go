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
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/czcorpus/perfest/measurement"
)

const (
	totalCounter     = "*"
	blockCountMetric = "n"
	blockContainment = "contain"
	blockMinDistance = "minDist"
	rawFeaturePrefix = "fix:"
)

// rawColumns provides zero-filled counter columns aligned
// with a fixed list of rows.
type rawColumns struct {
	rows  []measurement.RowKey
	stats *measurement.StatsTable
	cache map[measurement.CounterKey][]float64
}

func newRawColumns(rows []measurement.RowKey, stats *measurement.StatsTable) *rawColumns {
	return &rawColumns{
		rows:  rows,
		stats: stats,
		cache: make(map[measurement.CounterKey][]float64),
	}
}

func (rc *rawColumns) get(name string, variant measurement.Variant) []float64 {
	key := measurement.CounterKey{Name: name, Variant: variant}
	if v, ok := rc.cache[key]; ok {
		return v
	}
	ans := make([]float64, len(rc.rows))
	if rc.stats != nil {
		for i, row := range rc.rows {
			ans[i] = rc.stats.Value(row, key)
		}
	}
	rc.cache[key] = ans
	return ans
}

// counterNames returns sorted unique counter names regardless
// of the variant they were measured on.
func (rc *rawColumns) counterNames() []string {
	if rc.stats == nil {
		return []string{}
	}
	var ans []string
	for _, col := range rc.stats.Columns() {
		if !slices.Contains(ans, col.Name) {
			ans = append(ans, col.Name)
		}
	}
	slices.Sort(ans)
	return ans
}

// ---------------------------

// blockCounter is a decomposed per-block counter name
// (e.g. B1_n_FAdd -> id: 1, metric: n, rest: FAdd)
type blockCounter struct {
	block  string
	id     int
	metric string
	rest   string
}

func parseBlockCounter(name, prefix string) (blockCounter, bool) {
	if !strings.HasPrefix(name, prefix) {
		return blockCounter{}, false
	}
	block, tail, ok := strings.Cut(name, "_")
	if !ok {
		return blockCounter{}, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(block, prefix))
	if err != nil {
		return blockCounter{}, false
	}
	metric, rest, _ := strings.Cut(tail, "_")
	return blockCounter{block: block, id: id, metric: metric, rest: rest}, true
}

func (bc blockCounter) totalName() string {
	return bc.block + "_" + blockCountMetric + "_" + totalCounter
}

// ---------------------------

// featureSet collects derived feature columns. All the columns
// are stored in the frame but only those with more than one
// distinct value are selected as features.
type featureSet struct {
	frame    *Frame
	names    []string
	rejected int
}

func (fs *featureSet) add(name string, values []float64) {
	fs.frame.SetColumn(name, values)
	if numDistinct(values) <= 1 {
		fs.rejected++
		return
	}
	if !slices.Contains(fs.names, name) {
		fs.names = append(fs.names, name)
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func normalizedDiff(fix, flt, denom []float64) []float64 {
	ans := make([]float64, len(fix))
	for i := range fix {
		ans[i] = (fix[i] - flt[i]) / nonZero(denom[i])
	}
	return ans
}

// deriveInstFreq creates features describing how the instruction
// mix changes between the float and the fixed point version.
//
//   - plain counter C: (fix - float) / total float instruction count
//   - block counter B<i>_<m>_<x>: raw fix value (as fix:<name>) and,
//     for metrics other than "n", (fix - float) / float count of B<i>
func deriveInstFreq(rc *rawColumns, fs *featureSet, blockPrefix string) {
	totalFlt := rc.get(totalCounter, measurement.VariantFloat)
	for _, name := range rc.counterNames() {
		fix := rc.get(name, measurement.VariantFix)
		flt := rc.get(name, measurement.VariantFloat)
		bc, isBlock := parseBlockCounter(name, blockPrefix)
		if !isBlock {
			fs.add(name, normalizedDiff(fix, flt, totalFlt))
			continue
		}
		fs.add(rawFeaturePrefix+name, slices.Clone(fix))
		if bc.metric != blockCountMetric {
			fs.add(name, normalizedDiff(fix, flt, rc.get(bc.totalName(), measurement.VariantFloat)))
		}
	}
}

func isInstructionClass(s string) bool {
	if s == "" || s == totalCounter || strings.HasPrefix(s, "call(") {
		return false
	}
	return unicode.IsUpper([]rune(s)[0])
}

// deriveBlocks creates per-block features for the first few
// blocks only. Non-count metrics are used as they are (fix variant),
// instruction counts are normalized by the block's total count
// of the same variant.
func deriveBlocks(rc *rawColumns, fs *featureSet, blockPrefix string, maxBlockID int) {
	for _, name := range rc.counterNames() {
		bc, isBlock := parseBlockCounter(name, blockPrefix)
		if !isBlock || bc.id > maxBlockID || bc.metric == blockMinDistance {
			continue
		}
		if bc.metric == blockContainment {
			inner, _, _ := strings.Cut(bc.rest, "_")
			innerID, err := strconv.Atoi(strings.TrimPrefix(inner, blockPrefix))
			if err != nil || innerID > maxBlockID {
				continue
			}
		}
		if bc.metric != blockCountMetric {
			fs.add(name, slices.Clone(rc.get(name, measurement.VariantFix)))
			continue
		}
		instr, _, _ := strings.Cut(bc.rest, "_")
		if !isInstructionClass(instr) {
			continue
		}
		for _, variant := range []measurement.Variant{measurement.VariantFix, measurement.VariantFloat} {
			values := rc.get(name, variant)
			total := rc.get(bc.totalName(), variant)
			normalized := make([]float64, len(values))
			for i, v := range values {
				normalized[i] = v / nonZero(total[i])
			}
			fs.add(variant.String()+"_"+name, normalized)
		}
	}
}
