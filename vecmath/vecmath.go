// Package vecmath provides the elementary numeric operations underneath
// the museum's semantic analysis: dot products, cosine similarity, the
// pairwise similarity matrix, and nearest-neighbor ranking.
//
// # The unit-norm shortcut
//
// Every vector entering this package is unit-normalized (L2 norm of 1).
// The embedding store enforces this invariant on insert, which means
// cosine similarity collapses to a plain dot product:
//
//	cos(a, b) = (a · b) / (|a| * |b|) = a · b   when |a| = |b| = 1
//
// This is a documented simplification, not general cosine similarity.
// If a non-unit vector ever reached these functions the result would be
// the projection of one vector onto the other scaled by its magnitude,
// silently wrong rather than an error. Normalization therefore happens
// once, upstream, instead of defensively on every comparison.
package vecmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch reports that two vectors of different lengths were
// combined. This is a programmer error: truncating or padding would
// silently corrupt similarity semantics, so it always propagates.
var ErrDimensionMismatch = errors.New("vecmath: vector dimensions do not match")

// Dot computes the sum of elementwise products of two vectors.
// It returns ErrDimensionMismatch if the vectors have different lengths.
func Dot(vectorA, vectorB []float32) (float64, error) {
	if len(vectorA) != len(vectorB) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(vectorA), len(vectorB))
	}

	var productSum float64
	for componentIndex := range vectorA {
		productSum += float64(vectorA[componentIndex]) * float64(vectorB[componentIndex])
	}
	return productSum, nil
}

// CosineSimilarity returns the cosine of the angle between two
// unit-normalized vectors, a value in [-1, 1].
//
// Because all vectors in the system are unit-normalized on ingest, this
// is implemented as a plain dot product (see the package comment). The
// caller is trusted to uphold the normalization invariant.
func CosineSimilarity(vectorA, vectorB []float32) (float64, error) {
	return Dot(vectorA, vectorB)
}

// Norm computes the L2 (Euclidean) norm of a vector.
func Norm(vector []float32) float64 {
	var sumOfSquares float64
	for _, component := range vector {
		sumOfSquares += float64(component) * float64(component)
	}
	return math.Sqrt(sumOfSquares)
}

// Normalize returns a copy of the vector scaled to unit L2 norm.
// A zero vector is returned unchanged, since it has no direction.
func Normalize(vector []float32) []float32 {
	norm := Norm(vector)
	normalized := make([]float32, len(vector))
	if norm == 0 {
		copy(normalized, vector)
		return normalized
	}
	for componentIndex, component := range vector {
		normalized[componentIndex] = float32(float64(component) / norm)
	}
	return normalized
}

// SeededUnitVector generates a deterministic pseudo-random unit vector of
// the requested dimensionality. The same seed always produces the same
// vector, so placeholder embeddings and fallback projection weights are
// reproducible across runs and in tests.
//
// Components are drawn from a sine-based hash (the classic
// fract(sin(n) * 43758.5453) construction) rather than a system random
// source, precisely so no hidden global state is involved.
func SeededUnitVector(seed int64, dimensions int) []float32 {
	if dimensions <= 0 {
		return nil
	}

	vector := make([]float32, dimensions)
	for componentIndex := 0; componentIndex < dimensions; componentIndex++ {
		hashInput := float64(seed)*78.233 + float64(componentIndex)*12.9898
		scaled := math.Sin(hashInput) * 43758.5453
		fractional := scaled - math.Floor(scaled)
		// Map [0,1) to [-1,1) so the direction is unbiased
		vector[componentIndex] = float32(fractional*2 - 1)
	}

	return Normalize(vector)
}
