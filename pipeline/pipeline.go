// Package pipeline runs one full recomputation pass of the museum's
// vector analysis: vectors in, similarity matrix + neighbor lists +
// display coordinates + cluster labels out.
//
// A pass is a pure function of its inputs. Nothing is cached, shared or
// updated incrementally: whenever the vector set, the projection
// method, its parameters, the neighbor count or the viewport change,
// the presentation layer calls Run again and re-renders from the fresh
// outputs. The only state in the whole system lives upstream (the
// embedding cache) and downstream (the TUI model); the pipeline itself
// remembers nothing between calls.
package pipeline

import (
	"github.com/lirad/dl-vector-museum-of-words/cluster"
	"github.com/lirad/dl-vector-museum-of-words/projection"
	"github.com/lirad/dl-vector-museum-of-words/vecmath"
)

// Inputs is everything a recomputation pass depends on.
type Inputs struct {
	// Vectors are the unit-normalized embedding vectors, one per point.
	Vectors [][]float32

	// Method selects the projection backend attempted first.
	Method projection.Method

	// Params tunes the nonlinear backend.
	Params projection.Params

	// NeighborCount is k for the per-point neighbor lists. Must be at
	// least 1.
	NeighborCount int

	// ClusterCount is the number of visual groups. Zero means derive it
	// from the point count with the standard rule.
	ClusterCount int

	// OutputDimensions is 2 or 3; anything else is treated as 2.
	OutputDimensions int

	// Viewport is the display rectangle the coordinates must fit.
	Viewport projection.Viewport
}

// Outputs is the complete product of one pass, ready for rendering.
type Outputs struct {
	// Similarity is the pairwise matrix, raw and display-remapped.
	Similarity *vecmath.SimilarityMatrix

	// Neighbors holds each point's ranked top-k neighbor list.
	Neighbors [][]vecmath.Neighbor

	// Projected are the raw reduced coordinates before normalization.
	Projected []projection.Point

	// Display are the projected points fitted to the viewport.
	Display []projection.Point

	// ClusterLabels assigns each point a group in [0, clusterCount),
	// computed from the 2D display positions.
	ClusterLabels []int
}

// Run executes one pass. Empty input produces empty outputs rather than
// an error; the only failures that propagate are programmer errors, a
// neighbor count below 1 or vectors of mismatched dimensionality.
// Projection backend failures never surface here: the adapter absorbs
// them with its deterministic fallback.
func Run(inputs Inputs) (Outputs, error) {
	similarityMatrix, err := vecmath.BuildSimilarityMatrix(inputs.Vectors)
	if err != nil {
		return Outputs{}, err
	}

	neighborLists, err := vecmath.TopNeighbors(inputs.Vectors, inputs.NeighborCount)
	if err != nil {
		return Outputs{}, err
	}

	adapter := projection.NewAdapter(inputs.Params)
	projectedPoints := adapter.Project(inputs.Vectors, inputs.Method, inputs.OutputDimensions)
	displayPoints := projection.FitToViewport(projectedPoints, inputs.Viewport)

	clusterCount := inputs.ClusterCount
	if clusterCount <= 0 {
		clusterCount = cluster.DeriveClusterCount(len(inputs.Vectors))
	}
	clusterLabels := cluster.Assign(displayCoordinates(displayPoints), clusterCount, cluster.DefaultIterationBudget)

	return Outputs{
		Similarity:    similarityMatrix,
		Neighbors:     neighborLists,
		Projected:     projectedPoints,
		Display:       displayPoints,
		ClusterLabels: clusterLabels,
	}, nil
}

// displayCoordinates extracts the 2D positions cluster assignment works
// on. Grouping is purely spatial: it follows what the viewer sees, not
// the original high-dimensional vectors.
func displayCoordinates(points []projection.Point) []cluster.Coordinate {
	coordinates := make([]cluster.Coordinate, len(points))
	for pointIndex, point := range points {
		coordinates[pointIndex] = cluster.Coordinate{X: point.X, Y: point.Y}
	}
	return coordinates
}
