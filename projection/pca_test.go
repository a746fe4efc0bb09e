package projection

import (
	"math"
	"testing"
)

func TestLinearProjector_Deterministic(t *testing.T) {
	projector := NewLinearProjector()

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

	for rowIndex := range first {
		for axis := range first[rowIndex] {
			if first[rowIndex][axis] != second[rowIndex][axis] {
				t.Errorf("coordinate (%d,%d) differs between runs", rowIndex, axis)
			}
		}
	}
}

func TestLinearProjector_SeparatesDistantGroups(t *testing.T) {
	projector := NewLinearProjector()

	// Two tight groups far apart in 4D should stay far apart along the
	// first principal component.
	vectors := [][]float32{
		{0.0, 0.0, 0.0, 0.0},
		{0.1, 0.1, 0.1, 0.1},
		{0.2, 0.0, 0.1, 0.0},
		{10.0, 10.0, 10.0, 10.0},
		{10.1, 10.1, 10.1, 10.1},
		{10.2, 10.0, 10.1, 10.0},
	}

	coordinates, err := projector.Project(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groupGap := math.Abs(coordinates[0][0] - coordinates[3][0])
	withinGroup := math.Abs(coordinates[0][0] - coordinates[1][0])
	if groupGap < withinGroup*10 {
		t.Errorf("distant groups should separate along the first component: gap %f, within-group %f", groupGap, withinGroup)
	}
}

func TestLinearProjector_InconsistentDimensions(t *testing.T) {
	projector := NewLinearProjector()

	vectors := [][]float32{
		{1, 2, 3},
		{1, 2},
		{1, 2, 3},
	}

	if _, err := projector.Project(vectors, 2); err == nil {
		t.Error("expected error for inconsistent vector dimensions")
	}
}

func TestLinearProjector_TooFewInputDimensions(t *testing.T) {
	projector := NewLinearProjector()

	vectors := [][]float32{{1}, {2}, {3}}

	if _, err := projector.Project(vectors, 2); err == nil {
		t.Error("expected error projecting 1 input dimension to 2")
	}
}

func TestLinearProjector_ThreeComponents(t *testing.T) {
	projector := NewLinearProjector()

	vectors := [][]float32{
		{1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 0, 1},
	}

	coordinates, err := projector.Project(vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for rowIndex, coordinate := range coordinates {
		if len(coordinate) != 3 {
			t.Errorf("row %d should have 3 components, got %d", rowIndex, len(coordinate))
		}
	}
}

func BenchmarkLinearProjector(b *testing.B) {
	projector := NewLinearProjector()

	vectors := make([][]float32, 200)
	for vectorIndex := range vectors {
		vectors[vectorIndex] = make([]float32, 384)
		for componentIndex := range vectors[vectorIndex] {
			vectors[vectorIndex][componentIndex] = float32((vectorIndex*13 + componentIndex*7) % 100)
		}
	}

	b.ResetTimer()
	for iteration := 0; iteration < b.N; iteration++ {
		if _, err := projector.Project(vectors, 2); err != nil {
			b.Fatal(err)
		}
	}
}
