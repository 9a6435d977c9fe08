// Package mlp implements a pre-trained multi-layer perceptron regressor: fully connected layers with
// ReLU activations on the hidden layers and an identity output layer with one unit.
//
// Models are stored as YAML files:
//
//	name: chess-mlp
//	layers:
//	  - weights: [[...], [...]]  # one row per output unit, one column per input
//	    biases: [...]            # one per output unit
//	  - weights: [[...]]
//	    biases: [...]
//
// The forward pass uses gonum matrices.
package mlp

import (
	"fmt"
	"os"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// LayerConfig is the serialized form of one fully connected layer.
type LayerConfig struct {
	Weights [][]float64 `yaml:"weights"`
	Biases  []float64   `yaml:"biases"`
}

// Config is the serialized form of a model.
type Config struct {
	Name   string        `yaml:"name"`
	Layers []LayerConfig `yaml:"layers"`
}

type layer struct {
	weights *mat.Dense
	biases  *mat.VecDense
}

// Model is an MLP regressor. It implements ai.FeatureScorer, and is safe for concurrent use.
type Model struct {
	name        string
	numFeatures int
	layers      []layer
}

var _ ai.FeatureScorer = (*Model)(nil)

// New creates a model from its configuration. It returns an error if the dimensions of the layers
// don't chain, or the last layer doesn't have exactly one output.
func New(config Config) (*Model, error) {
	if len(config.Layers) == 0 {
		return nil, errors.Errorf("mlp model %q has no layers", config.Name)
	}
	m := &Model{name: config.Name}
	inputDim := -1
	for ii, lc := range config.Layers {
		numOutputs := len(lc.Weights)
		if numOutputs == 0 {
			return nil, errors.Errorf("mlp model %q: layer #%d has no weights", config.Name, ii)
		}
		numInputs := len(lc.Weights[0])
		if numInputs == 0 {
			return nil, errors.Errorf("mlp model %q: layer #%d has empty weight rows", config.Name, ii)
		}
		if inputDim >= 0 && numInputs != inputDim {
			return nil, errors.Errorf("mlp model %q: layer #%d takes %d inputs, but previous layer outputs %d",
				config.Name, ii, numInputs, inputDim)
		}
		if ii == 0 {
			m.numFeatures = numInputs
		}
		if len(lc.Biases) != numOutputs {
			return nil, errors.Errorf("mlp model %q: layer #%d has %d outputs but %d biases",
				config.Name, ii, numOutputs, len(lc.Biases))
		}
		data := make([]float64, 0, numOutputs*numInputs)
		for rowIdx, row := range lc.Weights {
			if len(row) != numInputs {
				return nil, errors.Errorf("mlp model %q: layer #%d row %d has %d weights, expected %d",
					config.Name, ii, rowIdx, len(row), numInputs)
			}
			data = append(data, row...)
		}
		m.layers = append(m.layers, layer{
			weights: mat.NewDense(numOutputs, numInputs, data),
			biases:  mat.NewVecDense(numOutputs, append([]float64(nil), lc.Biases...)),
		})
		inputDim = numOutputs
	}
	if inputDim != 1 {
		return nil, errors.Errorf("mlp model %q: last layer has %d outputs, it must have exactly 1", config.Name, inputDim)
	}
	return m, nil
}

// String implements ai.FeatureScorer.
func (m *Model) String() string {
	if m.name == "" {
		return fmt.Sprintf("mlp(%d)", m.numFeatures)
	}
	return m.name
}

// NumFeatures implements ai.FeatureScorer.
func (m *Model) NumFeatures() int { return m.numFeatures }

// NumLayers returns the number of fully connected layers, including the output one.
func (m *Model) NumLayers() int { return len(m.layers) }

// ScoreFeatures implements ai.FeatureScorer.
func (m *Model) ScoreFeatures(features []float32) float32 {
	if len(features) != m.numFeatures {
		exceptions.Panicf("mlp model %s: features dimension is %d, model expects %d", m, len(features), m.numFeatures)
	}
	x := mat.NewVecDense(len(features), nil)
	for ii, f := range features {
		x.SetVec(ii, float64(f))
	}
	for ii, l := range m.layers {
		rows, _ := l.weights.Dims()
		y := mat.NewVecDense(rows, nil)
		y.MulVec(l.weights, x)
		y.AddVec(y, l.biases)
		if ii < len(m.layers)-1 {
			for jj := range rows {
				if y.AtVec(jj) < 0 {
					y.SetVec(jj, 0)
				}
			}
		}
		x = y
	}
	return float32(x.AtVec(0))
}

// Cache of models read from disk.
var (
	cacheModels = map[string]*Model{}
	muCache     sync.Mutex
)

// Load a model from a YAML file. Loaded models are cached by fileName.
func Load(fileName string) (*Model, error) {
	muCache.Lock()
	defer muCache.Unlock()
	if cached, ok := cacheModels[fileName]; ok {
		return cached, nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "mlp.Load failed to read %s", fileName)
	}
	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "mlp.Load failed to parse %s", fileName)
	}
	if config.Name == "" {
		config.Name = fileName
	}
	m, err := New(config)
	if err != nil {
		return nil, errors.WithMessagef(err, "mlp.Load(%q)", fileName)
	}
	klog.V(1).Infof("Loaded MLP model %s: %d features, %d layers", m, m.NumFeatures(), m.NumLayers())
	cacheModels[fileName] = m
	return m, nil
}

// Save the configuration as a YAML file.
func (c Config) Save(fileName string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize mlp model %q", c.Name)
	}
	if err = os.WriteFile(fileName, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to save mlp model to %s", fileName)
	}
	return nil
}
