package vecmath

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidNeighborCount reports a neighbor count below 1. Like a
// dimension mismatch this is a programmer error and always propagates.
var ErrInvalidNeighborCount = errors.New("vecmath: neighbor count must be at least 1")

// Neighbor is one entry of a point's ranked neighbor list: another
// point's index and the raw cosine similarity to it.
type Neighbor struct {
	Index      int
	Similarity float64
}

// TopNeighbors computes, for every point, the k most similar other
// points ranked by raw cosine similarity (not the remapped display
// value), most similar first.
//
// The full ranking over all N−1 candidates is produced before
// truncating to k. No early pruning: with at most a few hundred points
// correctness is worth more than the saved comparisons, and pruning
// heuristics can miss the true top-k. If fewer than k other points
// exist, all of them are returned.
//
// Ties are broken stably: among equal scores the point that appeared
// first in the input keeps its earlier rank. A point never appears in
// its own neighbor list.
func TopNeighbors(vectors [][]float32, neighborCount int) ([][]Neighbor, error) {
	if neighborCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNeighborCount, neighborCount)
	}

	numberOfVectors := len(vectors)
	neighborLists := make([][]Neighbor, numberOfVectors)

	for pointIndex := 0; pointIndex < numberOfVectors; pointIndex++ {
		candidates := make([]Neighbor, 0, numberOfVectors-1)

		for candidateIndex := 0; candidateIndex < numberOfVectors; candidateIndex++ {
			if candidateIndex == pointIndex {
				continue
			}
			similarity, err := CosineSimilarity(vectors[pointIndex], vectors[candidateIndex])
			if err != nil {
				return nil, fmt.Errorf("similarity of points %d and %d: %w", pointIndex, candidateIndex, err)
			}
			candidates = append(candidates, Neighbor{Index: candidateIndex, Similarity: similarity})
		}

		// Stable sort keeps first-seen input order among equal scores
		sort.SliceStable(candidates, func(firstIndex, secondIndex int) bool {
			return candidates[firstIndex].Similarity > candidates[secondIndex].Similarity
		})

		if len(candidates) > neighborCount {
			candidates = candidates[:neighborCount]
		}
		neighborLists[pointIndex] = candidates
	}

	return neighborLists, nil
}
