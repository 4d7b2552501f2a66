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

package xg

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/dmitryikh/leaves"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

type metadata struct {
	Objective    string  `json:"objective"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	NumLeaves    int     `json:"num_leaves"`
	RandomState  int     `json:"random_state"`
}

type jsonizedModel struct {
	BoosterPath string `json:"boosterPath"`
	Regression  bool   `json:"regression"`
}

// Model is a gradient boosted trees model trained by LightGBM.
// We do not train the model here, Train only collects data
// which can be exported (SaveTrainingData) for an external training
// script. The resulting booster file is then used for inference.
type Model struct {
	BoosterPath string
	Regression  bool
	trainXData  [][]float64
	trainYData  []float64
	booster     *leaves.Ensemble
	metadata    metadata
}

func NewModel(boosterPath string, regression bool) (*Model, error) {
	m := &Model{BoosterPath: boosterPath, Regression: regression}
	if boosterPath != "" {
		if err := m.loadBooster(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) IsInferenceOnly() bool {
	return true
}

// IsReady tells whether a booster is loaded and the model can predict
func (m *Model) IsReady() bool {
	return m.booster != nil
}

func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to prepare XG data - data and labels size mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.trainXData = x
	m.trainYData = y
	return nil
}

// Predict returns raw booster output for regression. For classification,
// the booster is expected to be trained on worth labels as a regression
// objective so the output is rounded to the nearest class.
func (m *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	for i, row := range x {
		if m.booster == nil {
			ans[i] = math.NaN()
			continue
		}
		pred := m.booster.PredictSingle(row, 0)
		if !m.Regression {
			pred = math.Max(-1, math.Min(1, math.Round(pred)))
		}
		ans[i] = pred
	}
	return ans
}

// SaveTrainingData stores collected training data in the msgpack
// format for an external training script
func (m *Model) SaveTrainingData(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to save XG training data: %w", err)
	}
	defer file.Close()
	out := make(map[string]any)
	out["features"] = m.trainXData
	out["label"] = m.trainYData

	outData, err := msgpack.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to create XG training data: %w", err)
	}
	_, err = file.Write(outData)
	if err != nil {
		return fmt.Errorf("failed to create XG training data: %w", err)
	}
	return nil
}

func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(jsonizedModel{BoosterPath: m.BoosterPath, Regression: m.Regression})
}

func (m *Model) GetInfo() string {
	if m.booster == nil {
		return "LightGBM model (no booster loaded)"
	}
	return fmt.Sprintf(
		"LightGBM model, objective: %s, NL: %d, LR: %.2f, num. features: %d",
		m.metadata.Objective,
		m.metadata.NumLeaves,
		m.metadata.LearningRate,
		m.booster.NFeatures(),
	)
}

func loadMetadata(modelPath string) (metadata, error) {
	var mt metadata
	ext := filepath.Ext(modelPath)
	if ext == ".gz" || ext == ".gzip" {
		modelPath = modelPath[:len(modelPath)-len(ext)]
		ext = filepath.Ext(modelPath)
	}
	metadataFilePath := modelPath[:len(modelPath)-len(ext)] + ".metadata.json"
	isFile, err := fs.IsFile(metadataFilePath)
	if err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	if !isFile {
		log.Warn().Msg("Cannot load XG model metadata - no file found. For inference, this doesn't matter.")
		return mt, nil
	}
	data, err := os.ReadFile(metadataFilePath)
	if err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	if err := json.Unmarshal(data, &mt); err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	return mt, nil
}

func (m *Model) loadBooster() error {
	file, err := os.Open(m.BoosterPath)
	if err != nil {
		return fmt.Errorf("failed to open booster file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(m.BoosterPath, ".gz") || strings.HasSuffix(m.BoosterPath, ".gzip") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}
	m.booster, err = leaves.LGEnsembleFromReader(bufio.NewReader(reader), true)
	if err != nil {
		return fmt.Errorf("failed to load XG model: %w", err)
	}
	m.metadata, err = loadMetadata(m.BoosterPath)
	if err != nil {
		return fmt.Errorf("failed to load XG model: %w", err)
	}
	return nil
}

func Unmarshal(data []byte) (*Model, error) {
	var tmp jsonizedModel
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("failed to load XG model: %w", err)
	}
	return NewModel(tmp.BoosterPath, tmp.Regression)
}
