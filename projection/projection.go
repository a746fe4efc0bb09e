// Package projection reduces high-dimensional embedding vectors to 2D or
// 3D coordinates for the museum canvas.
//
// Two real backends are available behind the Projector interface: a
// linear one (PCA over the gonum SVD) and a nonlinear one (a UMAP
// variant). Both can legitimately fail (SVD may not converge, UMAP is
// undefined for tiny inputs), so the adapter guarantees availability
// instead: every call first attempts the selected backend (PRIMARY) and,
// on any failure, falls back to a deterministic seeded pseudo-random
// linear projection (FALLBACK). The fallback carries no semantic
// guarantee about the layout, but the pipeline always gets renderable
// coordinates. The PRIMARY/FALLBACK decision is made fresh on every
// invocation; nothing is remembered between calls.
package projection

import (
	"fmt"

	"github.com/lirad/dl-vector-museum-of-words/logger"
)

// Point is one input vector's position after dimensionality reduction.
// Z is zero for 2D projections.
type Point struct {
	X, Y, Z float64
}

// Method selects which reduction backend the adapter attempts first.
type Method int

const (
	// MethodLinear projects with PCA: deterministic, fast, preserves
	// global variance structure.
	MethodLinear Method = iota

	// MethodNonlinear projects with UMAP: seeded-stochastic, slower,
	// better at preserving local neighborhood structure.
	MethodNonlinear
)

// String returns the display name of the method.
func (method Method) String() string {
	if method == MethodNonlinear {
		return "UMAP"
	}
	return "PCA"
}

// Params carries the tunable parameters of the nonlinear backend.
type Params struct {
	// NeighborhoodSize is how many nearest neighbors anchor each
	// point's local manifold estimate.
	NeighborhoodSize int

	// MinSeparation is the minimum distance between points in the
	// reduced space, controlling how tightly clusters pack.
	MinSeparation float64
}

// DefaultParams returns the nonlinear backend defaults.
func DefaultParams() Params {
	return Params{NeighborhoodSize: 15, MinSeparation: 0.1}
}

// Projector is the capability interface both reduction backends and the
// fallback implement: reduce N vectors of any (consistent) input
// dimensionality to N coordinates of the requested output
// dimensionality (2 or 3).
type Projector interface {
	Name() string
	Project(vectors [][]float32, outputDimensions int) ([][]float64, error)
}

// minimumPointsForProjection is the input size below which real
// reduction backends are degenerate or undefined, so the adapter
// bypasses them entirely.
const minimumPointsForProjection = 3

// placeholderSpacing is the per-index offset of the deterministic
// diagonal layout used below minimumPointsForProjection.
const placeholderSpacing = 30.0

// Adapter orchestrates the reduction backends and the fallback.
type Adapter struct {
	linear    Projector
	nonlinear Projector
	fallback  Projector
}

// NewAdapter builds an adapter with the standard backends: PCA for
// MethodLinear, UMAP (with the given params) for MethodNonlinear, and
// the seeded pseudo-random projector as the shared fallback.
func NewAdapter(params Params) *Adapter {
	return &Adapter{
		linear:    NewLinearProjector(),
		nonlinear: NewNonlinearProjector(params),
		fallback:  NewFallbackProjector(),
	}
}

// Project reduces the vector set to outputDimensions (2 or 3) using the
// selected method. It never fails: degenerate inputs get the diagonal
// placeholder layout, and a backend failure is absorbed by the
// deterministic fallback and logged as a degradation.
func (adapter *Adapter) Project(vectors [][]float32, method Method, outputDimensions int) []Point {
	if outputDimensions != 3 {
		outputDimensions = 2
	}

	if len(vectors) == 0 {
		return []Point{}
	}

	// Below three points real projection is undefined; place the points
	// deterministically along a diagonal instead.
	if len(vectors) < minimumPointsForProjection {
		return diagonalPlaceholder(len(vectors), outputDimensions)
	}

	primary := adapter.linear
	if method == MethodNonlinear {
		primary = adapter.nonlinear
	}

	coordinates, err := primary.Project(vectors, outputDimensions)
	if err != nil {
		logger.Degraded("%s projection failed (%v), using deterministic fallback", primary.Name(), err)
		coordinates, err = adapter.fallback.Project(vectors, outputDimensions)
		if err != nil {
			// The fallback is total over non-empty input; this branch
			// exists only to satisfy the interface.
			return diagonalPlaceholder(len(vectors), outputDimensions)
		}
	}

	return coordinatesToPoints(coordinates, outputDimensions)
}

// diagonalPlaceholder positions n points along a diagonal at fixed
// spacing, derived purely from the point index.
func diagonalPlaceholder(numberOfPoints, outputDimensions int) []Point {
	points := make([]Point, numberOfPoints)
	for pointIndex := range points {
		offset := float64(pointIndex) * placeholderSpacing
		points[pointIndex] = Point{X: offset, Y: offset}
		if outputDimensions == 3 {
			points[pointIndex].Z = offset
		}
	}
	return points
}

// coordinatesToPoints converts raw backend output to Point structs.
func coordinatesToPoints(coordinates [][]float64, outputDimensions int) []Point {
	points := make([]Point, len(coordinates))
	for pointIndex, coordinate := range coordinates {
		points[pointIndex].X = componentOrZero(coordinate, 0)
		points[pointIndex].Y = componentOrZero(coordinate, 1)
		if outputDimensions == 3 {
			points[pointIndex].Z = componentOrZero(coordinate, 2)
		}
	}
	return points
}

// componentOrZero safely retrieves a coordinate component, returning 0
// if the index is out of bounds.
func componentOrZero(coordinate []float64, componentIndex int) float64 {
	if componentIndex < len(coordinate) {
		return coordinate[componentIndex]
	}
	return 0
}

// validateConsistentDimensions checks that every vector has the same
// length and that the set is large enough to project.
func validateConsistentDimensions(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("no vectors to project")
	}
	inputDimensions := len(vectors[0])
	for vectorIndex, vector := range vectors {
		if len(vector) != inputDimensions {
			return 0, fmt.Errorf("vector %d has %d dimensions, expected %d", vectorIndex, len(vector), inputDimensions)
		}
	}
	return inputDimensions, nil
}

// toFloat64Rows converts float32 embedding vectors to float64 rows for
// numerical work.
func toFloat64Rows(vectors [][]float32) [][]float64 {
	rows := make([][]float64, len(vectors))
	for rowIndex, vector := range vectors {
		rows[rowIndex] = make([]float64, len(vector))
		for columnIndex, value := range vector {
			rows[rowIndex][columnIndex] = float64(value)
		}
	}
	return rows
}
