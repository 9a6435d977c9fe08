// Package linear implements a pure Go linear regression model: one weight per feature plus bias.
//
// It is used as a pre-trained ai.FeatureScorer by the Hr cutoff layer. Training is done offline.
package linear

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Scorer is a linear model (one weight per feature + bias) on a feature vector.
// It implements ai.FeatureScorer.
type Scorer struct {
	name    string
	weights []float32

	// Squash the output with tanh, into the range (-1, 1).
	Squash bool

	// FileName where to save/load the model from.
	FileName string
	muSave   sync.Mutex
}

var _ ai.FeatureScorer = (*Scorer)(nil)

// NewWithWeights creates a new Scorer with the given weights, the last one being the bias.
// Ownership of the weights is transferred.
func NewWithWeights(weights ...float32) *Scorer {
	if len(weights) == 0 {
		exceptions.Panicf("linear.NewWithWeights requires at least the bias term")
	}
	return &Scorer{weights: weights}
}

// WithName sets the name of the model, returned by String. It returns itself.
func (s *Scorer) WithName(name string) *Scorer {
	s.name = name
	return s
}

// WithSquash sets whether the output is squashed with tanh. It returns itself.
func (s *Scorer) WithSquash(squash bool) *Scorer {
	s.Squash = squash
	return s
}

// Clone returns a deep copy of the model, without FileName.
func (s *Scorer) Clone() *Scorer {
	return &Scorer{name: s.name, weights: slices.Clone(s.weights), Squash: s.Squash}
}

// String implements ai.FeatureScorer.
func (s *Scorer) String() string {
	if s.name == "" {
		return fmt.Sprintf("linear(%d)", s.NumFeatures())
	}
	return s.name
}

// NumFeatures implements ai.FeatureScorer.
func (s *Scorer) NumFeatures() int {
	return len(s.weights) - 1
}

// Weights returns the weights, with the bias as the last element. They shouldn't be changed.
func (s *Scorer) Weights() []float32 {
	return s.weights
}

// ScoreFeatures implements ai.FeatureScorer.
func (s *Scorer) ScoreFeatures(features []float32) float32 {
	if len(s.weights)-1 != len(features) {
		exceptions.Panicf("linear model %s: features dimension is %d, but weights dimension is %d (+1 bias)",
			s, len(features), len(s.weights)-1)
	}
	// Sum start with bias.
	sum := s.weights[len(s.weights)-1]
	for ii, feature := range features {
		sum += feature * s.weights[ii]
	}
	if s.Squash {
		return math32.Tanh(sum)
	}
	return sum
}

// L2Norm of the weights, excluding the bias.
func (s *Scorer) L2Norm() float32 {
	var total float32
	for _, w := range s.weights[:len(s.weights)-1] {
		total += w * w
	}
	return math32.Sqrt(total)
}

// AsGoCode outputs the model as Go code, with one comment line per feature name.
func (s *Scorer) AsGoCode(names []string) string {
	if len(names) != s.NumFeatures() {
		return fmt.Sprintf("model with %d weights+1 bias, but %d feature names given", s.NumFeatures(), len(names))
	}
	var sb strings.Builder
	sb.WriteString("linear.NewWithWeights(\n")
	for ii, name := range names {
		fmt.Fprintf(&sb, "\t// %s\n\t%.4f,\n", name, s.weights[ii])
	}
	fmt.Fprintf(&sb, "\t// Bias\n\t%.4f,\n)", s.weights[len(s.weights)-1])
	return sb.String()
}

// Save model to s.FileName. A previous file is kept with a "~" suffix.
func (s *Scorer) Save() error {
	s.muSave.Lock()
	defer s.muSave.Unlock()

	if s.FileName == "" {
		return errors.Errorf("linear model %s not saved, because no file name was specified", s)
	}

	// Rename existing file, if it exists.
	file := s.FileName
	if _, err := os.Stat(file); err == nil {
		err = os.Rename(file, file+"~")
		if err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", s.FileName, s.FileName+"~")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", s.FileName)
	}

	valuesStr := make([]string, len(s.weights))
	for ii, value := range s.weights {
		valuesStr[ii] = fmt.Sprintf("%g", value)
	}
	allValues := strings.Join(valuesStr, "\n") + "\n"

	err := os.WriteFile(s.FileName, []byte(allValues), 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", s.FileName)
	}
	return nil
}

// Cache of linear models read from disk.
var (
	cacheLinearScorers = map[string]*Scorer{}
	muCache            sync.Mutex
)

// Load model from fileName: one value per line, the last being the bias. Empty lines and lines
// starting with "#" or "//" are ignored.
//
// Loaded models are cached by fileName, and the same reference is returned on following calls.
// Models are read-only, so they can be shared among searchers.
func Load(fileName string) (*Scorer, error) {
	muCache.Lock()
	defer muCache.Unlock()
	if cached, ok := cacheLinearScorers[fileName]; ok {
		klog.V(1).Infof("Using cache for model %q", fileName)
		return cached, nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "linear.Load failed to read file %s", fileName)
	}
	valuesStr := strings.Split(string(data), "\n")
	weights := make([]float32, 0, len(valuesStr))
	for lineNum, valueStr := range valuesStr {
		valueStr = strings.TrimSpace(valueStr)
		if valueStr == "" || strings.HasPrefix(valueStr, "#") || strings.HasPrefix(valueStr, "//") {
			// Skip empty lines and comments.
			continue
		}
		f64, err := strconv.ParseFloat(valueStr, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "linear.Load failed to parse value in file %s, at line number #%d",
				fileName, lineNum+1)
		}
		weights = append(weights, float32(f64))
	}
	if len(weights) == 0 {
		return nil, errors.Errorf("linear.Load: file %s has no weights", fileName)
	}
	s := NewWithWeights(weights...).WithName(fileName)
	s.FileName = fileName
	cacheLinearScorers[fileName] = s
	klog.V(1).Infof("Loaded linear model %s with %d features", fileName, s.NumFeatures())
	return s, nil
}
