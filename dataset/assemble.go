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
	"slices"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/measurement"
	"github.com/rs/zerolog/log"
)

// Dataset is an assembled table along with the list
// of its feature columns and the name of the target column.
type Dataset struct {
	Frame    *Frame
	Features []string
	Response string
}

// X returns the feature matrix
func (ds *Dataset) X() [][]float64 {
	return ds.Frame.Matrix(ds.Features)
}

// Y returns the target vector
func (ds *Dataset) Y() []float64 {
	ans, ok := ds.Frame.Column(ds.Response)
	if !ok {
		return make([]float64, ds.Frame.Len())
	}
	return slices.Clone(ans)
}

func (ds *Dataset) Len() int {
	return ds.Frame.Len()
}

// Subset creates a dataset sharing the schema but containing
// only the rows with the specified indices.
func (ds *Dataset) Subset(indices []int) *Dataset {
	return &Dataset{
		Frame:    ds.Frame.Select(indices),
		Features: ds.Features,
		Response: ds.Response,
	}
}

// ---------------------------

// Assembler joins raw counters with profiles and derives
// features and targets.
type Assembler struct {
	Task        Task
	FeatureMode string
	BlockPrefix string
	MaxBlockID  int

	// WorthStep is the relative speed-up per one worth bucket
	WorthStep float64

	// BoostFail is the number of extra copies of each
	// failing row (0 = no oversampling)
	BoostFail int
}

func NewAssembler(conf *cnf.Conf, task Task, boostFail int) *Assembler {
	return &Assembler{
		Task:        task,
		FeatureMode: conf.FeatureMode,
		BlockPrefix: conf.BlockPrefix,
		MaxBlockID:  conf.MaxBlockID,
		WorthStep:   conf.WorthStep,
		BoostFail:   boostFail,
	}
}

func joinedRows(stats *measurement.StatsTable, profile *measurement.ProfileTable) []measurement.RowKey {
	var rows []measurement.RowKey
	if stats != nil {
		rows = append(rows, stats.Rows()...)
	}
	if profile != nil {
		for _, r := range profile.Rows() {
			if stats == nil || !stats.HasRow(r) {
				rows = append(rows, r)
			}
		}
	}
	slices.SortFunc(rows, measurement.CompareRowKeys)
	return rows
}

func (a *Assembler) addTargets(frame *Frame, profile *measurement.ProfileTable) {
	if profile != nil {
		for _, col := range profile.Columns() {
			values := make([]float64, frame.Len())
			for i, row := range frame.Keys {
				values[i] = profile.Value(row, col)
			}
			frame.SetColumn(col, values)
		}
	}
	fixCol := measurement.ProfileColumn(measurement.VariantFix, measurement.TimeKey)
	floCol := measurement.ProfileColumn(measurement.VariantFloat, measurement.TimeKey)
	ratio := make([]float64, frame.Len())
	worth := make([]float64, frame.Len())
	fixT, _ := frame.Column(fixCol)
	floT, _ := frame.Column(floCol)
	for i := range ratio {
		if fixT != nil && floT != nil {
			ratio[i] = SpeedupRatio(fixT[i], floT[i])
		}
		worth[i] = WorthLabel(ratio[i], a.WorthStep)
	}
	frame.SetColumn(ResponseRatio, ratio)
	frame.SetColumn(ResponseWorth, worth)
}

// boost appends BoostFail copies of every failing row.
// Copies get synthetic keys <bench>_c<i>.
func (a *Assembler) boost(frame *Frame) *Frame {
	if a.BoostFail <= 0 {
		return frame
	}
	target, _ := frame.Column(a.Task.DefaultResponse())
	var indices []int
	var keys []measurement.RowKey
	for i, key := range frame.Keys {
		if !IsFailing(target[i]) {
			continue
		}
		for c := 0; c < a.BoostFail; c++ {
			indices = append(indices, i)
			keys = append(keys, key.Synthetic(c))
		}
	}
	if len(indices) == 0 {
		return frame
	}
	dups := frame.Select(indices)
	dups.Keys = keys
	log.Debug().
		Int("numFailing", len(indices)/a.BoostFail).
		Int("numAdded", len(indices)).
		Msg("oversampled failing rows")
	return frame.Concat(dups)
}

func logSummary(frame *Frame, step float64) {
	ratio, _ := frame.Column(ResponseRatio)
	var worse, small, medium, large int
	for _, r := range ratio {
		switch {
		case r < 1:
			worse++
		case r < 1+step:
			small++
		case r < 2:
			medium++
		default:
			large++
		}
	}
	log.Info().
		Int("slower", worse).
		Int(fmt.Sprintf("<%.0f%%", step*100), small).
		Int("<100%", medium).
		Int(">100%", large).
		Msg("speed-up distribution")
}

// Assemble builds a dataset out of raw counters and profiles.
// If features is not empty, it is used as the resulting schema
// (missing features are zero-filled), otherwise the schema is
// derived from the data. An empty response means the default
// target of the assembler's task.
func (a *Assembler) Assemble(
	stats *measurement.StatsTable,
	profile *measurement.ProfileTable,
	features []string,
	response string,
) (*Dataset, error) {
	if a.WorthStep <= 0 {
		return nil, fmt.Errorf("failed to assemble dataset: invalid worth step %f", a.WorthStep)
	}
	rows := joinedRows(stats, profile)
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to assemble dataset: no data")
	}
	frame := NewFrame(rows)
	fs := &featureSet{frame: frame}
	rc := newRawColumns(rows, stats)
	switch a.FeatureMode {
	case cnf.FeatureModeInstFreq, "":
		deriveInstFreq(rc, fs, a.BlockPrefix)
	case cnf.FeatureModeBlocks:
		deriveBlocks(rc, fs, a.BlockPrefix, a.MaxBlockID)
	default:
		return nil, fmt.Errorf("failed to assemble dataset: unknown feature mode %s", a.FeatureMode)
	}
	log.Debug().
		Int("numSelected", len(fs.names)).
		Int("numRejected", fs.rejected).
		Msg("derived features")

	a.addTargets(frame, profile)
	if numFilled := frame.FillMissing(); numFilled > 0 {
		log.Warn().Int("numCells", numFilled).Msg("replaced missing values with zero")
	}
	logSummary(frame, a.WorthStep)
	frame = a.boost(frame)

	ans := &Dataset{
		Frame:    frame,
		Features: fs.names,
		Response: response,
	}
	if ans.Response == "" {
		ans.Response = a.Task.DefaultResponse()
	}
	if len(features) > 0 {
		ans.Features = slices.Clone(features)
		var numAdded int
		for _, f := range features {
			if !frame.HasColumn(f) {
				frame.SetColumn(f, make([]float64, frame.Len()))
				numAdded++
			}
		}
		if numAdded > 0 {
			log.Warn().Int("numFeatures", numAdded).Msg("features missing in data, using zeros")
		}
	}
	if !frame.HasColumn(ans.Response) {
		return nil, fmt.Errorf("failed to assemble dataset: unknown response column %s", ans.Response)
	}
	if len(ans.Features) == 0 {
		return nil, fmt.Errorf("failed to assemble dataset: no usable features")
	}
	return ans, nil
}
