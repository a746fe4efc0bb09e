package projection

import (
	"fmt"

	"github.com/lirad/dl-vector-museum-of-words/vecmath"
)

// fallbackSeed is the fixed seed for the fallback's weight vectors, one
// per output axis. Changing it changes every fallback layout, so it is
// a constant rather than configuration.
const fallbackSeed = 1137

// FallbackProjector is the deterministic projection of last resort: a
// pseudo-random linear map. One fixed seeded weight vector per output
// axis; each input vector's coordinate on an axis is its dot product
// with that axis's weights.
//
// The layout carries no semantic guarantee (nearby points are not
// necessarily similar) but it is total over non-empty input and
// reproducible across runs, which is what the availability contract of
// the adapter needs when a real backend cannot converge.
type FallbackProjector struct{}

// NewFallbackProjector creates the fallback backend.
func NewFallbackProjector() *FallbackProjector {
	return &FallbackProjector{}
}

// Name returns the backend's display name.
func (projector *FallbackProjector) Name() string { return "fallback" }

// Project maps every vector through the fixed pseudo-random weights.
// Vectors shorter than the weight vectors contribute only their
// available components; this path is placement, not analysis, so the
// strict dimension rules of vecmath do not apply here.
func (projector *FallbackProjector) Project(vectors [][]float32, outputDimensions int) ([][]float64, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors to project")
	}

	inputDimensions := len(vectors[0])
	if inputDimensions == 0 {
		return nil, fmt.Errorf("vectors have no components")
	}

	axisWeights := make([][]float32, outputDimensions)
	for axis := 0; axis < outputDimensions; axis++ {
		axisWeights[axis] = vecmath.SeededUnitVector(fallbackSeed+int64(axis), inputDimensions)
	}

	coordinates := make([][]float64, len(vectors))
	for vectorIndex, vector := range vectors {
		coordinates[vectorIndex] = make([]float64, outputDimensions)
		for axis := 0; axis < outputDimensions; axis++ {
			coordinates[vectorIndex][axis] = truncatedDot(vector, axisWeights[axis])
		}
	}
	return coordinates, nil
}

// truncatedDot sums elementwise products over the shorter of the two
// vectors.
func truncatedDot(vector, weights []float32) float64 {
	length := len(vector)
	if len(weights) < length {
		length = len(weights)
	}
	var sum float64
	for componentIndex := 0; componentIndex < length; componentIndex++ {
		sum += float64(vector[componentIndex]) * float64(weights[componentIndex])
	}
	return sum
}
