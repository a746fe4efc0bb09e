package vecmath

import "fmt"

// SimilarityMatrix holds the full pairwise cosine similarity of a vector
// set. The raw cosine values in [-1, 1] are retained for interpretation
// (angles, neighbor ranking); Display remaps them affinely into [0, 1]
// for heatmap rendering.
//
// The matrix is symmetric and read-only once built: it is recomputed
// from scratch whenever the vector set changes, never patched in place.
type SimilarityMatrix struct {
	size int
	raw  [][]float64
}

// BuildSimilarityMatrix computes the N×N pairwise similarity matrix for
// a set of unit-normalized vectors.
//
// Only the upper triangle is computed; the lower triangle is mirrored
// from it. With N points this halves the dot-product work, an
// optimization that matters once collections reach a few hundred
// exhibits. The diagonal is pinned to exactly 1 (a vector is maximally
// similar to itself) rather than recomputed, so it is immune to
// floating-point wobble.
//
// An empty vector set yields an empty matrix. A dimension mismatch
// between any pair of vectors returns ErrDimensionMismatch.
func BuildSimilarityMatrix(vectors [][]float32) (*SimilarityMatrix, error) {
	numberOfVectors := len(vectors)

	raw := make([][]float64, numberOfVectors)
	for rowIndex := range raw {
		raw[rowIndex] = make([]float64, numberOfVectors)
	}

	for rowIndex := 0; rowIndex < numberOfVectors; rowIndex++ {
		raw[rowIndex][rowIndex] = 1.0

		for columnIndex := rowIndex + 1; columnIndex < numberOfVectors; columnIndex++ {
			similarity, err := CosineSimilarity(vectors[rowIndex], vectors[columnIndex])
			if err != nil {
				return nil, fmt.Errorf("similarity of points %d and %d: %w", rowIndex, columnIndex, err)
			}
			raw[rowIndex][columnIndex] = similarity
			raw[columnIndex][rowIndex] = similarity
		}
	}

	return &SimilarityMatrix{size: numberOfVectors, raw: raw}, nil
}

// Size returns the number of points the matrix was built from.
func (matrix *SimilarityMatrix) Size() int {
	return matrix.size
}

// Raw returns the cosine similarity of points i and j in [-1, 1].
func (matrix *SimilarityMatrix) Raw(i, j int) float64 {
	return matrix.raw[i][j]
}

// Display returns the similarity of points i and j remapped into [0, 1]
// via (cos + 1) / 2, the range used for heatmap shading. The diagonal
// maps to exactly 1.0.
func (matrix *SimilarityMatrix) Display(i, j int) float64 {
	return (matrix.raw[i][j] + 1) / 2
}
