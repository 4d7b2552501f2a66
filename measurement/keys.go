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
	"cmp"
	"fmt"
	"strings"
)

// Variant identifies a compiled version of a benchmark
type Variant int

const (
	VariantFix Variant = iota
	VariantFloat
)

func (v Variant) String() string {
	switch v {
	case VariantFix:
		return "fix"
	case VariantFloat:
		return "float"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ProfilePrefix returns a prefix used for profile columns
// (e.g. fix_T, flo_T)
func (v Variant) ProfilePrefix() string {
	if v == VariantFloat {
		return "flo"
	}
	return "fix"
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "fix":
		return VariantFix, nil
	case "float", "flo", "flt":
		return VariantFloat, nil
	}
	return VariantFix, fmt.Errorf("unknown variant %s", s)
}

// ---------------------------

// CounterKey is a column of the raw measurement table.
// It pairs a counter name with the variant it was measured on.
type CounterKey struct {
	Name    string
	Variant Variant
}

func (k CounterKey) String() string {
	return k.Name + "@" + k.Variant.String()
}

func CompareCounterKeys(a, b CounterKey) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Variant, b.Variant)
}

// ---------------------------

// RowKey identifies a single benchmark run configuration
type RowKey struct {
	Bench string
	Tag   string
}

func (k RowKey) String() string {
	return k.Bench + "/" + k.Tag
}

// Synthetic creates a key for an i-th duplicate of the row.
func (k RowKey) Synthetic(i int) RowKey {
	return RowKey{Bench: fmt.Sprintf("%s_c%d", k.Bench, i), Tag: k.Tag}
}

func CompareRowKeys(a, b RowKey) int {
	if c := strings.Compare(a.Bench, b.Bench); c != 0 {
		return c
	}
	return strings.Compare(a.Tag, b.Tag)
}
