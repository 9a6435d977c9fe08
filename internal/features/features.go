// Package features implements fixed-width feature vectors extracted from game positions.
//
// These are meant to be used by the regression models (see ai.FeatureScorer) that rank moves
// in the Hr cutoff layer. Each game defines its own Set of features.
package features

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	. "github.com/janpfeifer/gametree/internal/state"
)

// Extractor converts a State to a feature vector of fixed width.
type Extractor interface {
	// NumFeatures is the width of the vectors returned by Extract.
	NumFeatures() int

	// Extract the feature vector of s.
	Extract(s *State) []float32
}

// Setter is the signature of a feature setter. f is the slice where to store the results, with
// length spec.Dim.
type Setter func(s *State, spec *Spec, f []float32)

// Spec includes the feature name, dimension and index in the concatenation of features.
type Spec struct {
	Name string
	Dim  int

	// Min and Max are the expected range of the raw values: if Max > Min the values are normalized
	// to (value-Min)/(Max-Min).
	Min, Max float32

	Setter Setter

	// VecIndex refers to the index in the concatenated feature vector. It is set by NewSet.
	VecIndex int
}

// Set is an ordered collection of feature Specs. It implements Extractor.
type Set struct {
	name  string
	specs []Spec
	dim   int
}

var _ Extractor = (*Set)(nil)

// NewSet creates a Set with the given specs, in order. It sets their VecIndex.
func NewSet(name string, specs ...Spec) *Set {
	set := &Set{name: name, specs: specs}
	for ii := range set.specs {
		if set.specs[ii].Dim <= 0 {
			exceptions.Panicf("features.NewSet(%q): feature %q has invalid dimension %d", name, set.specs[ii].Name, set.specs[ii].Dim)
		}
		set.specs[ii].VecIndex = set.dim
		set.dim += set.specs[ii].Dim
	}
	return set
}

// String returns the name of the set.
func (set *Set) String() string { return set.name }

// NumFeatures implements Extractor.
func (set *Set) NumFeatures() int { return set.dim }

// Specs returns the specs of the set. It shouldn't be changed.
func (set *Set) Specs() []Spec { return set.specs }

// Extract implements Extractor: it calculates the normalized feature vector.
func (set *Set) Extract(s *State) []float32 {
	f := make([]float32, set.dim)
	for ii := range set.specs {
		spec := &set.specs[ii]
		values := f[spec.VecIndex : spec.VecIndex+spec.Dim]
		spec.Setter(s, spec, values)
		if spec.Max > spec.Min {
			for jj, v := range values {
				values[jj] = (v - spec.Min) / (spec.Max - spec.Min)
			}
		}
	}
	return f
}

// Names returns the name of each entry of the feature vector. Features with more than one dimension
// get their index appended.
func (set *Set) Names() []string {
	names := make([]string, 0, set.dim)
	for _, spec := range set.specs {
		if spec.Dim == 1 {
			names = append(names, spec.Name)
			continue
		}
		for ii := range spec.Dim {
			names = append(names, fmt.Sprintf("%s[%d]", spec.Name, ii))
		}
	}
	return names
}

// PrettyPrint returns one line per feature, with its values.
func (set *Set) PrettyPrint(f []float32) string {
	if len(f) != set.dim {
		exceptions.Panicf("features %q: PrettyPrint got %d values, expected %d", set.name, len(f), set.dim)
	}
	var sb strings.Builder
	for _, spec := range set.specs {
		fmt.Fprintf(&sb, "\t%s: %v\n", spec.Name, f[spec.VecIndex:spec.VecIndex+spec.Dim])
	}
	return sb.String()
}
