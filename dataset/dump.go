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
	"os"

	"github.com/czcorpus/perfest/measurement"
	"github.com/vmihailenco/msgpack/v5"
)

type dumpedDataset struct {
	Keys     []measurement.RowKey `msgpack:"keys"`
	Columns  []string             `msgpack:"columns"`
	Values   map[string][]float64 `msgpack:"values"`
	Features []string             `msgpack:"features"`
	Response string               `msgpack:"response"`
}

// SaveToFile stores the dataset in the msgpack format
func (ds *Dataset) SaveToFile(path string) error {
	dump := dumpedDataset{
		Keys:     ds.Frame.Keys,
		Columns:  ds.Frame.ColumnNames(),
		Values:   ds.Frame.cols,
		Features: ds.Features,
		Response: ds.Response,
	}
	data, err := msgpack.Marshal(dump)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

// LoadFromFile loads a dataset previously stored via SaveToFile
func LoadFromFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	var dump dumpedDataset
	if err := msgpack.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	frame := NewFrame(dump.Keys)
	for _, c := range dump.Columns {
		values, ok := dump.Values[c]
		if !ok || len(values) != len(dump.Keys) {
			return nil, fmt.Errorf("failed to load dataset: invalid column %s", c)
		}
		frame.SetColumn(c, values)
	}
	return &Dataset{Frame: frame, Features: dump.Features, Response: dump.Response}, nil
}
