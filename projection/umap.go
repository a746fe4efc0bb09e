package projection

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// NonlinearProjector reduces vectors with a UMAP variant.
//
// # How UMAP works here
//
// UMAP preserves local neighborhood structure better than a linear
// method by treating the data as samples from a manifold:
//
//  1. Build each point's k-nearest-neighbor set in the original space
//     (brute force; collections here are small).
//  2. Convert neighbor distances into fuzzy membership strengths and
//     symmetrize them with a fuzzy set union, yielding a weighted graph.
//  3. Fit the low-dimensional membership curve 1/(1 + a*x^(2b)) to the
//     requested minimum separation.
//  4. Start from a seeded random layout and refine it with stochastic
//     gradient descent: attract graph neighbors, repel negative samples.
//
// Reference: McInnes, Healy & Melville (2018), arXiv:1802.03426.
//
// Every random draw comes from a generator seeded with a fixed constant,
// so repeated projections of identical input are identical.
type NonlinearProjector struct {
	params Params

	// Optimization tuning. These are internal; only the neighborhood
	// size and minimum separation are exposed as Params.
	spread             float64
	epochs             int
	learningRate       float64
	negativeSampleRate int
	seed               int64
}

// NewNonlinearProjector creates the UMAP backend with the given params.
// Out-of-range params are replaced with defaults.
func NewNonlinearProjector(params Params) *NonlinearProjector {
	if params.NeighborhoodSize < 2 {
		params.NeighborhoodSize = DefaultParams().NeighborhoodSize
	}
	if params.MinSeparation <= 0 {
		params.MinSeparation = DefaultParams().MinSeparation
	}
	return &NonlinearProjector{
		params:             params,
		spread:             1.0,
		epochs:             200,
		learningRate:       1.0,
		negativeSampleRate: 5,
		seed:               42,
	}
}

// Name returns the backend's display name.
func (projector *NonlinearProjector) Name() string { return "umap" }

// Project reduces the vector set to outputDimensions coordinates.
// It returns an error for inputs too small or too flat for the manifold
// estimate to be meaningful; the caller handles the fallback.
func (projector *NonlinearProjector) Project(vectors [][]float32, outputDimensions int) ([][]float64, error) {
	inputDimensions, err := validateConsistentDimensions(vectors)
	if err != nil {
		return nil, err
	}

	numberOfPoints := len(vectors)
	if numberOfPoints < minimumPointsForProjection {
		return nil, fmt.Errorf("need at least %d points, got %d", minimumPointsForProjection, numberOfPoints)
	}
	if inputDimensions < outputDimensions {
		return nil, fmt.Errorf("cannot project %d input dimensions to %d", inputDimensions, outputDimensions)
	}

	neighborhoodSize := projector.params.NeighborhoodSize
	if neighborhoodSize >= numberOfPoints {
		neighborhoodSize = numberOfPoints - 1
	}
	if neighborhoodSize < 2 {
		return nil, fmt.Errorf("neighborhood size %d too small for %d points", neighborhoodSize, numberOfPoints)
	}

	data := toFloat64Rows(vectors)

	neighborGraph := bruteForceNeighbors(data, neighborhoodSize)
	bandwidths, connectivityDistances := calibrateLocalDensity(neighborGraph.distances, float64(neighborhoodSize))
	edges := fuzzyGraphEdges(neighborGraph, bandwidths, connectivityDistances)
	if len(edges) == 0 {
		return nil, fmt.Errorf("fuzzy graph has no edges")
	}

	curveA, curveB := fitMembershipCurve(projector.spread, projector.params.MinSeparation)

	randomSource := rand.New(rand.NewSource(projector.seed))
	layout := seededRandomLayout(numberOfPoints, outputDimensions, randomSource)
	projector.refineLayout(layout, edges, curveA, curveB, randomSource)

	return layout, nil
}

// neighborGraph holds each point's nearest-neighbor indices and
// distances, excluding the point itself.
type neighborGraph struct {
	indices   [][]int
	distances [][]float64
}

// weightedEdge is one directed edge of the symmetrized fuzzy graph.
type weightedEdge struct {
	from, to int
	weight   float64
}

// bruteForceNeighbors computes exact k-nearest neighbors by scanning all
// pairs. O(n²), which is fine at museum scale; an approximate index
// would only pay off orders of magnitude beyond it.
func bruteForceNeighbors(data [][]float64, neighborhoodSize int) neighborGraph {
	numberOfPoints := len(data)
	graph := neighborGraph{
		indices:   make([][]int, numberOfPoints),
		distances: make([][]float64, numberOfPoints),
	}

	type candidate struct {
		distance float64
		index    int
	}

	for pointIndex := 0; pointIndex < numberOfPoints; pointIndex++ {
		candidates := make([]candidate, 0, numberOfPoints-1)
		for otherIndex := 0; otherIndex < numberOfPoints; otherIndex++ {
			if otherIndex == pointIndex {
				continue
			}
			candidates = append(candidates, candidate{
				distance: euclidean(data[pointIndex], data[otherIndex]),
				index:    otherIndex,
			})
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].distance != candidates[b].distance {
				return candidates[a].distance < candidates[b].distance
			}
			return candidates[a].index < candidates[b].index
		})

		graph.indices[pointIndex] = make([]int, neighborhoodSize)
		graph.distances[pointIndex] = make([]float64, neighborhoodSize)
		for rank := 0; rank < neighborhoodSize; rank++ {
			graph.indices[pointIndex][rank] = candidates[rank].index
			graph.distances[pointIndex][rank] = candidates[rank].distance
		}
	}

	return graph
}

// calibrateLocalDensity finds, per point, the distance to its nearest
// neighbor (the local connectivity distance rho) and a bandwidth sigma
// such that the fuzzy memberships of its neighbors sum to
// log2(neighborhoodSize). Sigma is located by binary search.
func calibrateLocalDensity(neighborDistances [][]float64, neighborhoodSize float64) (bandwidths, connectivityDistances []float64) {
	const (
		searchIterations = 64
		tolerance        = 1e-5
		minBandwidthRate = 1e-3
	)

	numberOfPoints := len(neighborDistances)
	bandwidths = make([]float64, numberOfPoints)
	connectivityDistances = make([]float64, numberOfPoints)
	targetMembershipSum := math.Log2(neighborhoodSize)

	for pointIndex := 0; pointIndex < numberOfPoints; pointIndex++ {
		distances := neighborDistances[pointIndex]

		for _, distance := range distances {
			if distance > 0 {
				connectivityDistances[pointIndex] = distance
				break
			}
		}

		lowerBound, upperBound, bandwidth := 0.0, math.Inf(1), 1.0
		for iteration := 0; iteration < searchIterations; iteration++ {
			membershipSum := 0.0
			for _, distance := range distances {
				adjusted := distance - connectivityDistances[pointIndex]
				if adjusted > 0 {
					membershipSum += math.Exp(-adjusted / bandwidth)
				} else {
					membershipSum += 1.0
				}
			}

			if math.Abs(membershipSum-targetMembershipSum) < tolerance {
				break
			}
			if membershipSum > targetMembershipSum {
				upperBound = bandwidth
			} else {
				lowerBound = bandwidth
			}
			if math.IsInf(upperBound, 1) {
				bandwidth *= 2
			} else {
				bandwidth = (lowerBound + upperBound) / 2
			}
		}

		meanDistance := 0.0
		for _, distance := range distances {
			meanDistance += distance
		}
		if len(distances) > 0 {
			meanDistance /= float64(len(distances))
		}
		if minimum := minBandwidthRate * meanDistance; bandwidth < minimum {
			bandwidth = minimum
		}
		bandwidths[pointIndex] = bandwidth
	}

	return bandwidths, connectivityDistances
}

// fuzzyGraphEdges converts neighbor distances into membership strengths
// and symmetrizes the result with the fuzzy set union
// P(A ∪ B) = P(A) + P(B) − P(A)P(B). Edges come back in deterministic
// (from, to) order.
func fuzzyGraphEdges(graph neighborGraph, bandwidths, connectivityDistances []float64) []weightedEdge {
	type edgeKey struct{ from, to int }
	directed := make(map[edgeKey]float64)

	for pointIndex := range graph.indices {
		for rank, neighborIndex := range graph.indices[pointIndex] {
			distance := graph.distances[pointIndex][rank]

			var membership float64
			adjusted := distance - connectivityDistances[pointIndex]
			if adjusted <= 0 || bandwidths[pointIndex] == 0 {
				membership = 1.0
			} else {
				membership = math.Exp(-adjusted / bandwidths[pointIndex])
			}
			directed[edgeKey{pointIndex, neighborIndex}] = membership
		}
	}

	symmetric := make(map[edgeKey]float64, len(directed))
	for key, weight := range directed {
		reverseWeight := directed[edgeKey{key.to, key.from}]
		union := weight + reverseWeight - weight*reverseWeight
		if union > 0 {
			symmetric[key] = union
		}
	}

	keys := make([]edgeKey, 0, len(symmetric))
	for key := range symmetric {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].from != keys[b].from {
			return keys[a].from < keys[b].from
		}
		return keys[a].to < keys[b].to
	})

	edges := make([]weightedEdge, len(keys))
	for edgeIndex, key := range keys {
		edges[edgeIndex] = weightedEdge{from: key.from, to: key.to, weight: symmetric[key]}
	}
	return edges
}

// fitMembershipCurve fits a and b of 1/(1 + a*x^(2b)) to the target
// low-dimensional membership shape implied by spread and minSeparation,
// using a coarse grid search. The fit only needs to be approximate.
func fitMembershipCurve(spread, minSeparation float64) (curveA, curveB float64) {
	const samplePoints = 300

	sampleX := make([]float64, samplePoints)
	targetY := make([]float64, samplePoints)
	for sampleIndex := 0; sampleIndex < samplePoints; sampleIndex++ {
		sampleX[sampleIndex] = float64(sampleIndex) / float64(samplePoints-1) * spread * 3
		if sampleX[sampleIndex] < minSeparation {
			targetY[sampleIndex] = 1.0
		} else {
			targetY[sampleIndex] = math.Exp(-(sampleX[sampleIndex] - minSeparation) / spread)
		}
	}

	bestA, bestB := 1.0, 1.0
	bestError := math.Inf(1)
	for candidateA := 0.1; candidateA <= 10.0; candidateA += 0.1 {
		for candidateB := 0.1; candidateB <= 2.0; candidateB += 0.05 {
			squaredError := 0.0
			for sampleIndex := 0; sampleIndex < samplePoints; sampleIndex++ {
				predicted := 1.0 / (1.0 + candidateA*math.Pow(sampleX[sampleIndex], 2*candidateB))
				difference := predicted - targetY[sampleIndex]
				squaredError += difference * difference
			}
			if squaredError < bestError {
				bestError = squaredError
				bestA, bestB = candidateA, candidateB
			}
		}
	}
	return bestA, bestB
}

// seededRandomLayout spreads points uniformly in a small box as the
// starting layout for the optimizer.
func seededRandomLayout(numberOfPoints, outputDimensions int, randomSource *rand.Rand) [][]float64 {
	layout := make([][]float64, numberOfPoints)
	for pointIndex := range layout {
		layout[pointIndex] = make([]float64, outputDimensions)
		for axis := 0; axis < outputDimensions; axis++ {
			layout[pointIndex][axis] = (randomSource.Float64() - 0.5) * 10
		}
	}
	return layout
}

// refineLayout runs the SGD phase: graph edges attract, random negative
// samples repel, with a learning rate decaying linearly to zero and
// per-edge sampling frequency proportional to edge weight.
func (projector *NonlinearProjector) refineLayout(layout [][]float64, edges []weightedEdge, curveA, curveB float64, randomSource *rand.Rand) {
	numberOfPoints := len(layout)

	maxWeight := 0.0
	for _, edge := range edges {
		if edge.weight > maxWeight {
			maxWeight = edge.weight
		}
	}
	if maxWeight == 0 {
		return
	}

	// Stronger edges are sampled more often: the interval between
	// samples is inversely proportional to the normalized weight.
	epochInterval := make([]float64, len(edges))
	nextSampleEpoch := make([]float64, len(edges))
	for edgeIndex, edge := range edges {
		interval := 1.0 / (edge.weight / maxWeight)
		if interval < 1 {
			interval = 1
		}
		epochInterval[edgeIndex] = interval
		nextSampleEpoch[edgeIndex] = interval
	}

	for epoch := 0; epoch < projector.epochs; epoch++ {
		learningRate := projector.learningRate * (1.0 - float64(epoch)/float64(projector.epochs))
		if learningRate < 0.0001 {
			learningRate = 0.0001
		}

		for edgeIndex, edge := range edges {
			if nextSampleEpoch[edgeIndex] > float64(epoch) {
				continue
			}
			nextSampleEpoch[edgeIndex] += epochInterval[edgeIndex]

			anchor := layout[edge.from]
			partner := layout[edge.to]

			// Attraction along the edge
			separation := squaredEuclidean(anchor, partner)
			if separation > 0 {
				gradientCoefficient := -2.0 * curveA * curveB * math.Pow(separation, curveB-1.0)
				gradientCoefficient /= curveA*math.Pow(separation, curveB) + 1.0
				for axis := range anchor {
					anchor[axis] += clampGradient(gradientCoefficient*(anchor[axis]-partner[axis])) * learningRate
				}
			}

			// Repulsion from random negative samples
			for sample := 0; sample < projector.negativeSampleRate; sample++ {
				negativeIndex := randomSource.Intn(numberOfPoints)
				if negativeIndex == edge.from {
					continue
				}
				negative := layout[negativeIndex]
				separation := squaredEuclidean(anchor, negative)

				var gradientCoefficient float64
				if separation > 0.001 {
					gradientCoefficient = 2.0 * curveB
					gradientCoefficient /= (0.001 + separation) * (curveA*math.Pow(separation, curveB) + 1)
				}
				if gradientCoefficient > 0 {
					for axis := range anchor {
						anchor[axis] += clampGradient(gradientCoefficient*(anchor[axis]-negative[axis])) * learningRate
					}
				}
			}
		}
	}
}

// euclidean computes the Euclidean distance between two vectors.
func euclidean(a, b []float64) float64 {
	return math.Sqrt(squaredEuclidean(a, b))
}

// squaredEuclidean computes the squared Euclidean distance.
func squaredEuclidean(a, b []float64) float64 {
	var sum float64
	for axis := range a {
		difference := a[axis] - b[axis]
		sum += difference * difference
	}
	return sum
}

// clampGradient constrains a gradient component to [-4, 4] to prevent
// explosive updates early in optimization.
func clampGradient(value float64) float64 {
	if value > 4.0 {
		return 4.0
	}
	if value < -4.0 {
		return -4.0
	}
	return value
}
