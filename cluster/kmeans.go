// Package cluster assigns discrete group labels to projected 2D points
// for visual grouping on the canvas.
//
// # Why k-means-lite
//
// The museum only needs colors, not statistically optimal clusters: a
// handful of visually coherent groups over at most a few hundred points.
// A stripped-down Lloyd's algorithm gives exactly that with full
// determinism: identical input ordering always produces identical
// labels, which matters because the labels drive colors that should not
// flicker between recomputation passes.
//
// The deliberate simplifications, in order:
//
//  1. Centroids initialize to the first k input points, not a random
//     sample. No randomness anywhere.
//  2. A fixed iteration budget runs to completion with no convergence
//     check, even if assignments stabilize earlier.
//  3. A centroid that ends an iteration with no assigned points keeps
//     its previous position. No reseeding or empty-cluster recovery.
//
// These trade local optimality for reproducibility; the result is not
// guaranteed to be a locally optimal clustering and that is acceptable
// here.
package cluster

import "math"

// DefaultIterationBudget is the fixed number of Lloyd iterations run on
// every assignment pass.
const DefaultIterationBudget = 10

// Coordinate is a projected 2D point position.
type Coordinate struct {
	X, Y float64
}

// DeriveClusterCount picks a cluster count for n points using the
// museum's display rule: min(5, max(2, floor(sqrt(n/3)))). Small
// collections get two groups, large ones cap at five so the palette
// stays readable.
func DeriveClusterCount(numberOfPoints int) int {
	if numberOfPoints <= 0 {
		return 0
	}
	derived := int(math.Floor(math.Sqrt(float64(numberOfPoints) / 3.0)))
	if derived < 2 {
		derived = 2
	}
	if derived > 5 {
		derived = 5
	}
	return derived
}

// Assign labels every point with a cluster in [0, clusterCount) by
// running the fixed-budget Lloyd variant described in the package
// comment. Empty input yields an empty label list. A cluster count
// larger than the point count is clamped to it, since centroids are
// seeded from distinct input points.
func Assign(points []Coordinate, clusterCount int, iterationBudget int) []int {
	numberOfPoints := len(points)
	if numberOfPoints == 0 {
		return []int{}
	}

	if clusterCount < 1 {
		clusterCount = 1
	}
	if clusterCount > numberOfPoints {
		clusterCount = numberOfPoints
	}
	if iterationBudget < 1 {
		iterationBudget = DefaultIterationBudget
	}

	// Deterministic initialization: the first k points become centroids
	centroids := make([]Coordinate, clusterCount)
	copy(centroids, points[:clusterCount])

	labels := make([]int, numberOfPoints)

	for iteration := 0; iteration < iterationBudget; iteration++ {
		// Assignment step: each point joins its nearest centroid.
		// Ties break toward the lowest centroid index because only a
		// strictly smaller distance displaces the current best.
		for pointIndex, point := range points {
			bestCentroidIndex := 0
			bestDistance := squaredDistance(point, centroids[0])

			for centroidIndex := 1; centroidIndex < clusterCount; centroidIndex++ {
				distance := squaredDistance(point, centroids[centroidIndex])
				if distance < bestDistance {
					bestDistance = distance
					bestCentroidIndex = centroidIndex
				}
			}
			labels[pointIndex] = bestCentroidIndex
		}

		// Update step: move each centroid to the mean of its members
		sumX := make([]float64, clusterCount)
		sumY := make([]float64, clusterCount)
		memberCount := make([]int, clusterCount)

		for pointIndex, point := range points {
			assignedCluster := labels[pointIndex]
			sumX[assignedCluster] += point.X
			sumY[assignedCluster] += point.Y
			memberCount[assignedCluster]++
		}

		for centroidIndex := 0; centroidIndex < clusterCount; centroidIndex++ {
			if memberCount[centroidIndex] == 0 {
				// Empty cluster: the centroid holds its position
				continue
			}
			centroids[centroidIndex] = Coordinate{
				X: sumX[centroidIndex] / float64(memberCount[centroidIndex]),
				Y: sumY[centroidIndex] / float64(memberCount[centroidIndex]),
			}
		}
	}

	return labels
}

// squaredDistance returns the squared Euclidean distance between two
// coordinates. The square root is never needed for comparisons.
func squaredDistance(a, b Coordinate) float64 {
	deltaX := a.X - b.X
	deltaY := a.Y - b.Y
	return deltaX*deltaX + deltaY*deltaY
}
