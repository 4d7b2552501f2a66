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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	FeatureModeInstFreq = "instfreq"
	FeatureModeBlocks   = "blocks"

	EnvMLFeatPath = "PERFEST_MLFEAT"

	dfltFeatureMode   = FeatureModeInstFreq
	dfltBlockPrefix   = "B"
	dfltMaxBlockID    = 2
	dfltWorthStep     = 0.2
	dfltTrainFraction = 0.8
	dfltNumTrials     = 100
	dfltBoostFail     = 5
	dfltModelFile     = "saved_model.bin"
)

var dfltExcludedBenchmarks = []string{"durbin"}

// EstimatorConf configures a single estimator used by the experiment driver.
// Only the fields relevant to the respective algorithm are used.
type EstimatorConf struct {
	Name          string  `json:"name" yaml:"name"`
	NumTrees      int     `json:"numTrees" yaml:"numTrees"`
	NumEstimators int     `json:"numEstimators" yaml:"numEstimators"`
	K             int     `json:"k" yaml:"k"`
	HiddenLayers  []int   `json:"hiddenLayers" yaml:"hiddenLayers"`
	Epochs        int     `json:"epochs" yaml:"epochs"`
	LearningRate  float64 `json:"learningRate" yaml:"learningRate"`
	BoosterPath   string  `json:"boosterPath" yaml:"boosterPath"`
	Disabled      bool    `json:"disabled" yaml:"disabled"`
}

type Conf struct {
	srcPath string
	Logging logging.LoggingConf `json:"logging" yaml:"logging"`

	// FeatureMode selects how derived features are computed from raw
	// counters ("instfreq" or "blocks")
	FeatureMode string `json:"featureMode" yaml:"featureMode"`

	// BlockPrefix marks per-block counter names (e.g. B0_n_*)
	BlockPrefix string `json:"blockPrefix" yaml:"blockPrefix"`

	// MaxBlockID limits the blocks considered by the "blocks" feature mode
	MaxBlockID int `json:"maxBlockId" yaml:"maxBlockId"`

	// WorthStep is the relative speed-up step used to bucket
	// the fix/float ratio into the worth label
	WorthStep float64 `json:"worthStep" yaml:"worthStep"`

	ExcludedBenchmarks []string `json:"excludedBenchmarks" yaml:"excludedBenchmarks"`
	TrainFraction      float64  `json:"trainFraction" yaml:"trainFraction"`
	NumTrials          int      `json:"numTrials" yaml:"numTrials"`

	// BoostFail is the number of extra copies of each failing row
	// added to training data. Unlike other numeric options, an explicit
	// zero disables the oversampling.
	BoostFail *int `json:"boostFail" yaml:"boostFail"`

	// RandomSeed, if non-zero, makes train/test splits reproducible
	RandomSeed uint64 `json:"randomSeed" yaml:"randomSeed"`

	Estimators    []EstimatorConf `json:"estimators" yaml:"estimators"`
	ResultsDBPath string          `json:"resultsDbPath" yaml:"resultsDbPath"`
	ModelFile     string          `json:"modelFile" yaml:"modelFile"`

	// MLFeatPath is a path to an external tool producing *.mlfeat.txt
	// files out of LLVM IR sources. It can be overridden by the PERFEST_MLFEAT
	// env. variable.
	MLFeatPath string `json:"mlfeatPath" yaml:"mlfeatPath"`
}

func (conf *Conf) SrcPath() string {
	return conf.srcPath
}

func parseConfig(path string) (*Conf, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var conf Conf
	conf.srcPath = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(rawData, &conf)
	default:
		err = json.Unmarshal(rawData, &conf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &conf, nil
}

func applyEnv(conf *Conf, envPath string) {
	if err := godotenv.Load(envPath); err != nil {
		log.Debug().Str("path", envPath).Msg("Skipping .env file")
	}
	if v := os.Getenv(EnvMLFeatPath); v != "" {
		conf.MLFeatPath = v
	}
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	conf, err := parseConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	applyEnv(conf, filepath.Join(filepath.Dir(path), ".env"))
	return conf
}

func ValidateAndDefaults(conf *Conf) {
	switch conf.FeatureMode {
	case "":
		conf.FeatureMode = dfltFeatureMode
		log.Warn().Str("featureMode", dfltFeatureMode).Msg("featureMode not specified, using default")
	case FeatureModeInstFreq, FeatureModeBlocks:
	default:
		log.Fatal().Str("featureMode", conf.FeatureMode).Msg("invalid featureMode")
	}
	if conf.BlockPrefix == "" {
		conf.BlockPrefix = dfltBlockPrefix
	}
	if conf.MaxBlockID <= 0 {
		conf.MaxBlockID = dfltMaxBlockID
	}
	if conf.WorthStep <= 0 {
		conf.WorthStep = dfltWorthStep
		log.Warn().Msgf("worthStep not specified, using default: %.2f", dfltWorthStep)
	}
	if conf.ExcludedBenchmarks == nil {
		conf.ExcludedBenchmarks = dfltExcludedBenchmarks
		log.Warn().Strs("benchmarks", dfltExcludedBenchmarks).Msg("excludedBenchmarks not specified, using default")
	}
	if conf.TrainFraction <= 0 || conf.TrainFraction >= 1 {
		if conf.TrainFraction != 0 {
			log.Warn().Float64("value", conf.TrainFraction).Msg("invalid trainFraction, must be in (0, 1)")
		}
		conf.TrainFraction = dfltTrainFraction
	}
	if conf.NumTrials <= 0 {
		conf.NumTrials = dfltNumTrials
	}
	if conf.BoostFail == nil {
		conf.BoostFail = new(int)
		*conf.BoostFail = dfltBoostFail
		log.Warn().Int("boostFail", dfltBoostFail).Msg("boostFail not specified, using default")

	} else if *conf.BoostFail < 0 {
		log.Warn().Int("value", *conf.BoostFail).Msg("negative boostFail, using default")
		*conf.BoostFail = dfltBoostFail
	}
	if conf.ModelFile == "" {
		conf.ModelFile = dfltModelFile
	}
}
