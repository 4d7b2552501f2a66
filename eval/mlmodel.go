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
	"errors"
	"fmt"

	"github.com/czcorpus/perfest/cnf"
	"github.com/czcorpus/perfest/dataset"
	"github.com/czcorpus/perfest/eval/bayes"
	"github.com/czcorpus/perfest/eval/knn"
	"github.com/czcorpus/perfest/eval/linear"
	"github.com/czcorpus/perfest/eval/nn"
	"github.com/czcorpus/perfest/eval/rf"
	"github.com/czcorpus/perfest/eval/tree"
	"github.com/czcorpus/perfest/eval/xg"
	"github.com/czcorpus/perfest/eval/ym"
)

const (
	ModelRandomForest     = "Random Forest"
	ModelExtraTrees       = "Extremely Randomized Trees"
	ModelBagging          = "Bagging"
	ModelAdaBoost         = "AdaBoost"
	ModelGradientTree     = "Gradient Tree"
	ModelMLP              = "Multilayer Perceptron"
	ModelNaiveBayes       = "Naive Bayes"
	ModelKNN              = "KNN"
	ModelYesMan           = "Yes Man"
	ModelLinearRegression = "Linear Regression"
	ModelNeuralNetwork    = "Neural Network"
)

var ErrNoSuchModel = errors.New("no such model")

var (
	classificationModels = []string{
		ModelRandomForest,
		ModelExtraTrees,
		ModelBagging,
		ModelAdaBoost,
		ModelGradientTree,
		ModelMLP,
		ModelNaiveBayes,
		ModelKNN,
		ModelYesMan,
	}
	regressionModels = []string{
		ModelLinearRegression,
		ModelNeuralNetwork,
		ModelGradientTree,
		ModelYesMan,
	}
)

// DefaultEstimators returns configuration of all the estimators
// available for the task, with default parameters.
func DefaultEstimators(task dataset.Task) []cnf.EstimatorConf {
	names := classificationModels
	if task == dataset.TaskRegression {
		names = regressionModels
	}
	ans := make([]cnf.EstimatorConf, len(names))
	for i, name := range names {
		ans[i] = cnf.EstimatorConf{Name: name}
	}
	return ans
}

// SupportsTask tells whether a named model can be used for the task
func SupportsTask(name string, task dataset.Task) bool {
	names := classificationModels
	if task == dataset.TaskRegression {
		names = regressionModels
	}
	for _, v := range names {
		if v == name {
			return true
		}
	}
	return false
}

// NewMLModel creates an untrained model based on the estimator configuration.
func NewMLModel(conf cnf.EstimatorConf, task dataset.Task) (MLModel, error) {
	if !SupportsTask(conf.Name, task) {
		return nil, fmt.Errorf("%w: %s (task %s)", ErrNoSuchModel, conf.Name, task)
	}
	regression := task == dataset.TaskRegression
	switch conf.Name {
	case ModelRandomForest:
		return rf.NewModel(conf.NumTrees), nil
	case ModelExtraTrees:
		return tree.NewBagged(tree.KindExtraTrees, conf.NumEstimators), nil
	case ModelBagging:
		return tree.NewBagged(tree.KindBagging, conf.NumEstimators), nil
	case ModelAdaBoost:
		return tree.NewAdaBoost(conf.NumEstimators), nil
	case ModelGradientTree:
		return xg.NewModel(conf.BoosterPath, regression)
	case ModelMLP, ModelNeuralNetwork:
		return nn.NewModel(conf.HiddenLayers, conf.Epochs, conf.LearningRate, regression), nil
	case ModelNaiveBayes:
		return bayes.NewModel(0), nil
	case ModelKNN:
		return knn.NewModel(conf.K), nil
	case ModelYesMan:
		return &ym.Model{Regression: regression}, nil
	case ModelLinearRegression:
		return linear.NewModel(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchModel, conf.Name)
}

// LoadMLModel restores a model from its serialized payload
// (as produced by MLModel.Marshal).
func LoadMLModel(name string, payload []byte) (MLModel, error) {
	var mlModel MLModel
	var err error
	switch name {
	case ModelRandomForest:
		mlModel, err = rf.Unmarshal(payload)
	case ModelExtraTrees, ModelBagging:
		mlModel, err = tree.UnmarshalBagged(payload)
	case ModelAdaBoost:
		mlModel, err = tree.UnmarshalAdaBoost(payload)
	case ModelGradientTree:
		mlModel, err = xg.Unmarshal(payload)
	case ModelMLP, ModelNeuralNetwork:
		mlModel, err = nn.Unmarshal(payload)
	case ModelNaiveBayes:
		mlModel, err = bayes.Unmarshal(payload)
	case ModelKNN:
		mlModel, err = knn.Unmarshal(payload)
	case ModelYesMan:
		mlModel, err = ym.Unmarshal(payload)
	case ModelLinearRegression:
		mlModel, err = linear.Unmarshal(payload)
	default:
		err = ErrNoSuchModel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", name, err)
	}
	return mlModel, nil
}
