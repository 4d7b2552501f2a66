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

package eval

import (
	"fmt"
	"os"

	"github.com/czcorpus/perfest/dataset"
	"github.com/vmihailenco/msgpack/v5"
)

// Bundle is a persisted trained model along with the schema
// of the data it was trained on.
type Bundle struct {
	ModelName string   `msgpack:"modelName"`
	Task      string   `msgpack:"task"`
	Features  []string `msgpack:"features"`
	Response  string   `msgpack:"response"`
	Payload   []byte   `msgpack:"payload"`
}

func NewBundle(modelName string, task dataset.Task, ds *dataset.Dataset, model MLModel) (*Bundle, error) {
	payload, err := model.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to create model bundle: %w", err)
	}
	return &Bundle{
		ModelName: modelName,
		Task:      task.String(),
		Features:  ds.Features,
		Response:  ds.Response,
		Payload:   payload,
	}, nil
}

func (b *Bundle) GetTask() (dataset.Task, error) {
	return dataset.ParseTask(b.Task)
}

// Model restores the bundled model
func (b *Bundle) Model() (MLModel, error) {
	return LoadMLModel(b.ModelName, b.Payload)
}

func (b *Bundle) SaveToFile(path string) error {
	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to save model bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save model bundle: %w", err)
	}
	return nil
}

func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model bundle: %w", err)
	}
	var ans Bundle
	if err := msgpack.Unmarshal(data, &ans); err != nil {
		return nil, fmt.Errorf("failed to load model bundle %s: %w", path, err)
	}
	return &ans, nil
}
