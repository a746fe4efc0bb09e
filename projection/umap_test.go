package projection

import (
	"math"
	"testing"
)

func TestNonlinearProjector_TooFewPoints(t *testing.T) {
	projector := NewNonlinearProjector(DefaultParams())

	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}}
	if _, err := projector.Project(vectors, 2); err == nil {
		t.Error("expected error for fewer than 3 points")
	}
}

func TestNonlinearProjector_SmallClusters(t *testing.T) {
	projector := NewNonlinearProjector(Params{NeighborhoodSize: 2, MinSeparation: 0.1})

	vectors := [][]float32{
		{0.0, 0.0, 0.0},
		{0.1, 0.1, 0.1},
		{0.2, 0.2, 0.2},
		{10.0, 10.0, 10.0},
		{10.1, 10.1, 10.1},
		{10.2, 10.2, 10.2},
	}

	coordinates, err := projector.Project(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coordinates) != 6 {
		t.Fatalf("expected 6 points, got %d", len(coordinates))
	}

	for pointIndex, coordinate := range coordinates {
		for axis, value := range coordinate {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				t.Errorf("point %d axis %d is not finite: %f", pointIndex, axis, value)
			}
		}
	}
}

func TestNonlinearProjector_Reproducible(t *testing.T) {
	projector := NewNonlinearProjector(Params{NeighborhoodSize: 2, MinSeparation: 0.1})

	vectors := [][]float32{
		{1.0, 2.0, 3.0, 4.0},
		{1.1, 2.1, 3.1, 4.1},
		{5.0, 6.0, 7.0, 8.0},
		{5.1, 6.1, 7.1, 8.1},
	}

	first, err := projector.Project(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := projector.Project(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for pointIndex := range first {
		for axis := range first[pointIndex] {
			if first[pointIndex][axis] != second[pointIndex][axis] {
				t.Errorf("point %d axis %d differs between runs: %f vs %f",
					pointIndex, axis, first[pointIndex][axis], second[pointIndex][axis])
			}
		}
	}
}

func TestNonlinearProjector_ThreeDimensions(t *testing.T) {
	projector := NewNonlinearProjector(Params{NeighborhoodSize: 2, MinSeparation: 0.1})

	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}

	coordinates, err := projector.Project(vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for pointIndex, coordinate := range coordinates {
		if len(coordinate) != 3 {
			t.Errorf("point %d should have 3 components, got %d", pointIndex, len(coordinate))
		}
	}
}

func TestBruteForceNeighbors(t *testing.T) {
	data := [][]float64{
		{0.0, 0.0},
		{1.0, 0.0},
		{2.0, 0.0},
		{3.0, 0.0},
	}

	graph := bruteForceNeighbors(data, 2)

	if len(graph.indices) != 4 {
		t.Fatalf("expected 4 neighbor sets, got %d", len(graph.indices))
	}
	if graph.indices[0][0] != 1 {
		t.Errorf("point 0's nearest neighbor should be 1, got %d", graph.indices[0][0])
	}
	for pointIndex := range graph.indices {
		for _, neighborIndex := range graph.indices[pointIndex] {
			if neighborIndex == pointIndex {
				t.Errorf("point %d lists itself as a neighbor", pointIndex)
			}
		}
	}
}

func TestCalibrateLocalDensity(t *testing.T) {
	distances := [][]float64{
		{1.0, 2.0, 3.0},
		{0.5, 1.5, 2.5},
		{2.0, 4.0, 6.0},
	}

	bandwidths, connectivity := calibrateLocalDensity(distances, 3.0)

	if len(bandwidths) != 3 || len(connectivity) != 3 {
		t.Fatalf("wrong output lengths")
	}
	for pointIndex, bandwidth := range bandwidths {
		if bandwidth <= 0 {
			t.Errorf("bandwidth[%d] should be positive, got %f", pointIndex, bandwidth)
		}
	}
	if connectivity[0] != 1.0 {
		t.Errorf("connectivity distance should be the nearest nonzero distance, got %f", connectivity[0])
	}
}

func TestFitMembershipCurve(t *testing.T) {
	curveA, curveB := fitMembershipCurve(1.0, 0.1)

	if curveA <= 0 || curveB <= 0 {
		t.Fatalf("curve parameters must be positive, got a=%f b=%f", curveA, curveB)
	}

	// The fitted curve should still be near 1 at the minimum separation
	atMinSeparation := 1.0 / (1.0 + curveA*math.Pow(0.1, 2*curveB))
	if atMinSeparation < 0.8 {
		t.Errorf("curve at min separation should be close to 1, got %f", atMinSeparation)
	}
}

func TestClampGradient(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.0, 0.0},
		{3.0, 3.0},
		{5.0, 4.0},
		{-5.0, -4.0},
		{100.0, 4.0},
	}

	for _, tc := range tests {
		if got := clampGradient(tc.input); got != tc.expected {
			t.Errorf("clampGradient(%f) = %f, expected %f", tc.input, got, tc.expected)
		}
	}
}

func BenchmarkNonlinearProjector(b *testing.B) {
	projector := NewNonlinearProjector(Params{NeighborhoodSize: 10, MinSeparation: 0.1})
	projector.epochs = 50

	vectors := make([][]float32, 100)
	for vectorIndex := range vectors {
		vectors[vectorIndex] = make([]float32, 128)
		for componentIndex := range vectors[vectorIndex] {
			vectors[vectorIndex][componentIndex] = float32(vectorIndex*128 + componentIndex)
		}
	}

	b.ResetTimer()
	for iteration := 0; iteration < b.N; iteration++ {
		if _, err := projector.Project(vectors, 2); err != nil {
			b.Fatal(err)
		}
	}
}
