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

package modutils

import (
	"fmt"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
)

// GridSchema converts plain feature matrices into golearn instances.
// Training and prediction grids built by the same schema share their
// attributes so golearn considers them compatible.
type GridSchema struct {
	Labels     *LabelEncoder
	attrs      []base.Attribute
	classAttr  *base.CategoricalAttribute
	classNames []string
}

func NewGridSchema(numFeatures int, labels *LabelEncoder) *GridSchema {
	schema := &GridSchema{
		Labels: labels,
		attrs:  make([]base.Attribute, numFeatures),
	}
	for i := range schema.attrs {
		schema.attrs[i] = base.NewFloatAttribute(fmt.Sprintf("f%d", i))
	}
	schema.classAttr = base.NewCategoricalAttribute()
	schema.classAttr.SetName("class")
	schema.classNames = make([]string, labels.NumClasses())
	for i := range schema.classNames {
		schema.classNames[i] = strconv.Itoa(i)
		schema.classAttr.GetSysValFromString(schema.classNames[i])
	}
	return schema
}

func (schema *GridSchema) newInstances(numRows int) (*base.DenseInstances, []base.AttributeSpec, base.AttributeSpec, error) {
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(schema.attrs))
	for i, attr := range schema.attrs {
		specs[i] = inst.AddAttribute(attr)
	}
	classSpec := inst.AddAttribute(schema.classAttr)
	if err := inst.AddClassAttribute(schema.classAttr); err != nil {
		return nil, nil, classSpec, fmt.Errorf("failed to create instances: %w", err)
	}
	if err := inst.Extend(numRows); err != nil {
		return nil, nil, classSpec, fmt.Errorf("failed to create instances: %w", err)
	}
	return inst, specs, classSpec, nil
}

func (schema *GridSchema) fillRows(inst *base.DenseInstances, specs []base.AttributeSpec, x [][]float64) error {
	for i, row := range x {
		if len(row) != len(specs) {
			return fmt.Errorf("invalid row %d: expected %d features, got %d", i, len(specs), len(row))
		}
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
	}
	return nil
}

// TrainingGrid creates labeled instances. Labels must be known
// to the schema's encoder.
func (schema *GridSchema) TrainingGrid(x [][]float64, y []float64) (base.FixedDataGrid, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("data and labels size mismatch")
	}
	inst, specs, classSpec, err := schema.newInstances(len(x))
	if err != nil {
		return nil, err
	}
	if err := schema.fillRows(inst, specs, x); err != nil {
		return nil, err
	}
	for i, label := range y {
		idx, err := schema.Labels.Encode(label)
		if err != nil {
			return nil, err
		}
		inst.Set(classSpec, i, schema.classAttr.GetSysValFromString(schema.classNames[idx]))
	}
	return inst, nil
}

// PredictionGrid creates instances with an unset class attribute
func (schema *GridSchema) PredictionGrid(x [][]float64) (base.FixedDataGrid, error) {
	inst, specs, _, err := schema.newInstances(len(x))
	if err != nil {
		return nil, err
	}
	if err := schema.fillRows(inst, specs, x); err != nil {
		return nil, err
	}
	return inst, nil
}

// DecodePredictions maps the class column of a golearn prediction
// grid back to the original labels. Unknown classes decode as NaN.
func (schema *GridSchema) DecodePredictions(pred base.FixedDataGrid) []float64 {
	_, numRows := pred.Size()
	ans := make([]float64, numRows)
	for i := range ans {
		idx, err := strconv.Atoi(base.GetClass(pred, i))
		if err != nil {
			idx = -1
		}
		ans[i] = schema.Labels.Decode(idx)
	}
	return ans
}
