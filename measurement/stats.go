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
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	statsFileSuffix = ".mlfeat.txt"
)

// Layout describes how counter files are organized within
// a data directory.
type Layout int

const (
	// LayoutCurrent is <dir>/<tag>/<bench>.<...>.mlfeat.txt
	LayoutCurrent Layout = iota

	// LayoutLegacy is <dir>/*-*/<bench>_ic_<...> with the tag
	// encoded in the path (good, bad, worse)
	LayoutLegacy
)

func (l Layout) String() string {
	if l == LayoutLegacy {
		return "legacy"
	}
	return "current"
}

type counterFile struct {
	path    string
	row     RowKey
	variant Variant
}

func describeCurrent(path string) counterFile {
	base := filepath.Base(path)
	bench, _, _ := strings.Cut(base, ".")
	variant := VariantFix
	if strings.Contains(base, "float") {
		variant = VariantFloat
	}
	return counterFile{
		path:    path,
		row:     RowKey{Bench: bench, Tag: filepath.Base(filepath.Dir(path))},
		variant: variant,
	}
}

func describeLegacy(path string) counterFile {
	base := filepath.Base(path)
	bench, _, _ := strings.Cut(base, "_")
	tag := "worse"
	if strings.Contains(path, "good") {
		tag = "good"

	} else if strings.Contains(path, "bad") {
		tag = "bad"
	}
	variant := VariantFloat
	if strings.Contains(base, "fix") {
		variant = VariantFix
	}
	return counterFile{
		path:    path,
		row:     RowKey{Bench: bench, Tag: tag},
		variant: variant,
	}
}

// detectLayout determines the layout of a data directory
// along with the list of files to be loaded. The legacy layout
// wins whenever at least one legacy file is present.
func detectLayout(dir string) (Layout, []counterFile, error) {
	legacy, err := filepath.Glob(filepath.Join(dir, "*-*", "*_ic_*"))
	if err != nil {
		return LayoutLegacy, nil, fmt.Errorf("failed to search for legacy counter files: %w", err)
	}
	if len(legacy) > 0 {
		ans := make([]counterFile, 0, len(legacy))
		for _, p := range legacy {
			if strings.Contains(filepath.Base(p), "raw") {
				continue
			}
			ans = append(ans, describeLegacy(p))
		}
		return LayoutLegacy, ans, nil
	}
	current, err := filepath.Glob(filepath.Join(dir, "*", "*"+statsFileSuffix))
	if err != nil {
		return LayoutCurrent, nil, fmt.Errorf("failed to search for counter files: %w", err)
	}
	ans := make([]counterFile, len(current))
	for i, p := range current {
		ans[i] = describeCurrent(p)
	}
	return LayoutCurrent, ans, nil
}

// LoadStats loads all the counter files found in dir into a table
// with one row per (benchmark, tag) and one column per
// (counter, variant). Rows of excluded benchmarks are removed.
func LoadStats(ctx context.Context, dir string, excluded []string) (*StatsTable, error) {
	layout, files, err := detectLayout(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats from %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("failed to load stats from %s: no counter files found", dir)
	}
	table := NewTable[CounterKey]()
	for _, file := range files {
		counters, err := ReadCounterFile(ctx, file.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load stats from %s: %w", dir, err)
		}
		for name, value := range counters {
			table.Set(file.row, CounterKey{Name: name, Variant: file.variant}, value)
		}
	}
	table.Sort(CompareCounterKeys)
	numDropped := table.DropBenchmarks(excluded)
	log.Info().
		Str("dir", dir).
		Stringer("layout", layout).
		Int("numFiles", len(files)).
		Int("numRows", table.NumRows()).
		Int("numColumns", table.NumColumns()).
		Int("numDropped", numDropped).
		Msg("loaded raw stats")
	return table, nil
}

// StatsFromCounters creates a single row table out of
// fix and float counters of a benchmark.
func StatsFromCounters(row RowKey, fix, float map[string]float64) *StatsTable {
	table := NewTable[CounterKey]()
	for variant, counters := range map[Variant]map[string]float64{VariantFix: fix, VariantFloat: float} {
		for name, value := range counters {
			table.Set(row, CounterKey{Name: name, Variant: variant}, value)
		}
	}
	table.Sort(CompareCounterKeys)
	return table
}

// LoadStatsPair loads a single benchmark out of an explicit
// pair of fix/float counter files.
func LoadStatsPair(ctx context.Context, row RowKey, fixPath, floatPath string) (*StatsTable, error) {
	fix, err := ReadCounterFile(ctx, fixPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s stats: %w", VariantFix, err)
	}
	float, err := ReadCounterFile(ctx, floatPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s stats: %w", VariantFloat, err)
	}
	return StatsFromCounters(row, fix, float), nil
}
