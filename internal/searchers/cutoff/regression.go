package cutoff

import (
	"context"
	"fmt"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/features"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Regression is the Hr ranker: it scores each child with a pre-trained model over the child's
// feature vector.
type Regression struct {
	extractor features.Extractor
	model     ai.FeatureScorer
	k         int
}

var _ Ranker = (*Regression)(nil)

// NewRegression returns an Hr ranker that keeps the k best children according to model, fed with
// the features extracted by extractor. The widths of the extractor and the model must match.
func NewRegression(extractor features.Extractor, model ai.FeatureScorer, k int) (*Regression, error) {
	if extractor == nil || model == nil {
		return nil, errors.New("Hr cutoff requires a feature extractor and a model")
	}
	if err := validateWidth(k); err != nil {
		return nil, err
	}
	if extractor.NumFeatures() != model.NumFeatures() {
		return nil, errors.Errorf("Hr cutoff model %s takes %d features, but the extractor provides %d",
			model, model.NumFeatures(), extractor.NumFeatures())
	}
	return &Regression{extractor: extractor, model: model, k: k}, nil
}

// Layer implements Ranker.
func (r *Regression) Layer() searchers.Layer { return searchers.LayerHr }

// Width implements Ranker.
func (r *Regression) Width() int { return r.k }

// Rank implements Ranker.
func (r *Regression) Rank(ctx context.Context, children []*State, maximizing bool, stats *searchers.Stats) ([]*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	scores := make([]float64, len(children))
	for ii, child := range children {
		scores[ii] = float64(r.model.ScoreFeatures(r.extractor.Extract(child)))
	}
	return topK(searchers.LayerHr, r.k, children, scores, maximizing, stats), nil
}

func (r *Regression) String() string {
	return fmt.Sprintf("Hr(%s, k=%d)", r.model, r.k)
}
