package linear

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreFeatures(t *testing.T) {
	model := NewWithWeights(
		// Weights:
		2, -1, 4,
		// Bias:
		3)
	assert.Equal(t, 3, model.NumFeatures())
	assert.Equal(t, "linear(3)", model.String())

	for _, test := range []struct {
		inputs        []float32
		score, tanhed float32
	}{
		{inputs: []float32{0, 0, 0}, score: 3, tanhed: 0.995055},
		{inputs: []float32{0.1, 0.1, 0.1}, score: 3.5, tanhed: 0.998178},
		{inputs: []float32{-0.9, -0.9, -0.9}, score: -1.5, tanhed: -0.905148},
	} {
		assert.InDelta(t, test.score, model.ScoreFeatures(test.inputs), 1e-4)
		squashed := model.Clone().WithSquash(true)
		assert.InDelta(t, test.tanhed, squashed.ScoreFeatures(test.inputs), 1e-4)
	}
	assert.Panics(t, func() { model.ScoreFeatures([]float32{1, 2}) })
	assert.Panics(t, func() { NewWithWeights() })
	assert.InDelta(t, 4.5826, model.L2Norm(), 1e-3)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "model.txt")
	model := NewWithWeights(0.5, -0.25, 1)
	model.FileName = fileName
	require.NoError(t, model.Save())
	require.NoError(t, model.Save())
	_, err := os.Stat(fileName + "~")
	require.NoError(t, err, "second save should have kept a backup")

	loaded, err := Load(fileName)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, loaded.Weights())
	again, err := Load(fileName)
	require.NoError(t, err)
	assert.Same(t, loaded, again)

	require.Error(t, NewWithWeights(1).Save())
}

func TestLoadWithComments(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "commented.txt")
	require.NoError(t, os.WriteFile(fileName, []byte("# material\n1.5\n\n// bias\n-2\n"), 0644))
	loaded, err := Load(fileName)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.NumFeatures())
	assert.InDelta(t, -0.5, loaded.ScoreFeatures([]float32{1}), 1e-6)

	badFile := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(badFile, []byte("1.0\nnot-a-number\n"), 0644))
	_, err = Load(badFile)
	require.ErrorContains(t, err, "line number #2")
}

func TestByName(t *testing.T) {
	model, err := ByName("chess")
	require.NoError(t, err)
	assert.Equal(t, 20, model.NumFeatures())
	assert.Same(t, PreTrainedChess, model)
	_, err = ByName(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	names := make([]string, 20)
	for ii := range names {
		names[ii] = "f"
	}
	assert.Contains(t, model.AsGoCode(names), "// Bias")
}
