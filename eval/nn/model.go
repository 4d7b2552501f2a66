package nn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/czcorpus/perfest/eval/modutils"
	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
)

var (
	dfltHiddenLayers = []int{50, 15}
	dfltNumEpochs    = 800
	dfltLearningRate = 0.0005
)

type jsonizedModel struct {
	NeuralNet    *deep.Dump             `json:"neuralNet"`
	DataRanges   modutils.FeatureRanges `json:"dataRanges"`
	Labels       *modutils.LabelEncoder `json:"labels,omitempty"`
	HiddenLayers []int                  `json:"hiddenLayers"`
	Epochs       int                    `json:"epochs"`
	LearningRate float64                `json:"learningRate"`
	Regression   bool                   `json:"regression"`
}

// Model is a multilayer perceptron working either as a multi-class
// classifier (softmax output) or as a regressor (single linear output).
type Model struct {
	NeuralNet    *deep.Neural
	DataRanges   modutils.FeatureRanges
	HiddenLayers []int
	Epochs       int
	LearningRate float64
	Regression   bool
	labels       *modutils.LabelEncoder
}

func NewModel(hiddenLayers []int, epochs int, learningRate float64, regression bool) *Model {
	if len(hiddenLayers) == 0 {
		hiddenLayers = dfltHiddenLayers
	}
	if epochs <= 0 {
		epochs = dfltNumEpochs
	}
	if learningRate <= 0 {
		learningRate = dfltLearningRate
	}
	return &Model{
		HiddenLayers: hiddenLayers,
		Epochs:       epochs,
		LearningRate: learningRate,
		Regression:   regression,
	}
}

func (m *Model) IsInferenceOnly() bool {
	return false
}

func (m *Model) GetInfo() string {
	tp := "classifier"
	if m.Regression {
		tp = "regressor"
	}
	return fmt.Sprintf("NN %s, layout: #%v, epochs: %d", tp, m.HiddenLayers, m.Epochs)
}

func (m *Model) numOutputs() int {
	if m.Regression {
		return 1
	}
	return m.labels.NumClasses()
}

func (m *Model) prepareExamples(x [][]float64, y []float64) (training.Examples, error) {
	examples := make(training.Examples, len(x))
	for i, row := range x {
		var response []float64
		if m.Regression {
			response = []float64{y[i]}

		} else {
			cls, err := m.labels.Encode(y[i])
			if err != nil {
				return nil, err
			}
			response = make([]float64, m.labels.NumClasses())
			response[cls] = 1
		}
		examples[i] = training.Example{
			Input:    m.DataRanges.Normalize(row),
			Response: response,
		}
	}
	return examples, nil
}

func (m *Model) Train(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train NN model - data and labels size mismatch")
	}
	if !m.Regression {
		m.labels = modutils.NewLabelEncoder(y)
	}
	m.DataRanges = modutils.NewFeatureRanges(x)
	examples, err := m.prepareExamples(x, y)
	if err != nil {
		return fmt.Errorf("failed to train NN model: %w", err)
	}
	log.Debug().
		Int("dataSize", len(examples)).
		Int("numOutputs", m.numOutputs()).
		Msg("prepared training vectors")

	mode := deep.ModeMultiClass
	if m.Regression {
		mode = deep.ModeRegression
	}
	layout := append(append([]int{}, m.HiddenLayers...), m.numOutputs())
	m.NeuralNet = deep.NewNeural(&deep.Config{
		Inputs:     len(x[0]),
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       mode,
		Weight:     deep.NewUniform(0.5, 0.0),
		Bias:       true,
	})
	optimizer := training.NewAdam(m.LearningRate, 0.9, 0.999, 1e-8)
	// verbosity larger than the number of epochs keeps the trainer quiet
	trainer := training.NewTrainer(optimizer, m.Epochs+1)
	epochsPerRound := max(1, m.Epochs/10)
	for done := 0; done < m.Epochs; done += epochsPerRound {
		if err := ctx.Err(); err != nil {
			return err
		}
		trainer.Train(m.NeuralNet, examples, examples, min(epochsPerRound, m.Epochs-done))
	}
	return nil
}

func (m *Model) Predict(x [][]float64) []float64 {
	ans := make([]float64, len(x))
	for i, row := range x {
		out := m.NeuralNet.Predict(m.DataRanges.Normalize(row))
		if m.Regression {
			ans[i] = out[0]

		} else {
			ans[i] = m.labels.Decode(modutils.ArgMax(out))
		}
	}
	return ans
}

func (m *Model) Marshal() ([]byte, error) {
	ans, err := json.Marshal(jsonizedModel{
		NeuralNet:    m.NeuralNet.Dump(),
		DataRanges:   m.DataRanges,
		Labels:       m.labels,
		HiddenLayers: m.HiddenLayers,
		Epochs:       m.Epochs,
		LearningRate: m.LearningRate,
		Regression:   m.Regression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize NN model: %w", err)
	}
	return ans, nil
}

func Unmarshal(data []byte) (*Model, error) {
	var tmpModel jsonizedModel
	if err := json.Unmarshal(data, &tmpModel); err != nil {
		return nil, fmt.Errorf("failed to load NN model: %w", err)
	}
	if tmpModel.NeuralNet == nil {
		return nil, fmt.Errorf("failed to load NN model: missing network")
	}
	if !tmpModel.Regression && tmpModel.Labels == nil {
		return nil, fmt.Errorf("failed to load NN model: missing class labels")
	}
	return &Model{
		NeuralNet:    deep.FromDump(tmpModel.NeuralNet),
		DataRanges:   tmpModel.DataRanges,
		HiddenLayers: tmpModel.HiddenLayers,
		Epochs:       tmpModel.Epochs,
		LearningRate: tmpModel.LearningRate,
		Regression:   tmpModel.Regression,
		labels:       tmpModel.Labels,
	}, nil
}
