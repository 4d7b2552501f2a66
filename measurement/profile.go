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
	profileFileSuffix = ".prof.txt"

	// TimeKey is the profile value holding the measured
	// wall-clock time of a benchmark run
	TimeKey = "T"
)

// ProfileColumn creates a name of a profile column for a variant
// (e.g. fix_T, flo_T)
func ProfileColumn(variant Variant, key string) string {
	return variant.ProfilePrefix() + "_" + key
}

func describeProfile(path string) counterFile {
	base := strings.TrimSuffix(filepath.Base(path), profileFileSuffix)
	bench, rest, _ := strings.Cut(base, ".")
	variant, err := ParseVariant(rest)
	if err != nil {
		variant = VariantFix
		if strings.Contains(rest, "float") {
			variant = VariantFloat
		}
	}
	return counterFile{
		path:    path,
		row:     RowKey{Bench: bench, Tag: filepath.Base(filepath.Dir(path))},
		variant: variant,
	}
}

// LoadProfile loads execution profiles (<dir>/<tag>/<bench>.<variant>.prof.txt)
// into a table where each profile key K of a variant becomes
// a column fix_K or flo_K.
func LoadProfile(ctx context.Context, dir string, excluded []string) (*ProfileTable, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*", "*"+profileFileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to search for profile files: %w", err)
	}
	table := NewTable[string]()
	for _, p := range files {
		file := describeProfile(p)
		values, err := ReadCounterFile(ctx, file.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile from %s: %w", dir, err)
		}
		for key, value := range values {
			table.Set(file.row, ProfileColumn(file.variant, key), value)
		}
	}
	table.Sort(strings.Compare)
	numDropped := table.DropBenchmarks(excluded)
	if table.NumRows() == 0 {
		log.Warn().Str("dir", dir).Msg("no profile data found, all the timings will be zero")
	}
	log.Info().
		Str("dir", dir).
		Int("numFiles", len(files)).
		Int("numRows", table.NumRows()).
		Int("numDropped", numDropped).
		Msg("loaded profile")
	return table, nil
}
