package projection

import (
	"fmt"
	"math"
	"testing"
)

// failingProjector always errors, for exercising the fallback path.
type failingProjector struct{}

func (failingProjector) Name() string { return "failing" }
func (failingProjector) Project([][]float32, int) ([][]float64, error) {
	return nil, fmt.Errorf("backend exploded")
}

func TestAdapter_EmptyInput(t *testing.T) {
	adapter := NewAdapter(DefaultParams())

	points := adapter.Project(nil, MethodLinear, 2)
	if len(points) != 0 {
		t.Errorf("expected empty output for empty input, got %d points", len(points))
	}
}

func TestAdapter_DiagonalPlaceholderBelowThreePoints(t *testing.T) {
	// Wire in a backend that would fail loudly if invoked: below three
	// points no backend may be called at all.
	adapter := &Adapter{
		linear:    failingProjector{},
		nonlinear: failingProjector{},
		fallback:  failingProjector{},
	}

	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
	}

	points := adapter.Project(vectors, MethodLinear, 2)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].X != 0 || points[0].Y != 0 {
		t.Errorf("first placeholder point should be (0,0), got (%f,%f)", points[0].X, points[0].Y)
	}
	if points[1].X != 30 || points[1].Y != 30 {
		t.Errorf("second placeholder point should be (30,30), got (%f,%f)", points[1].X, points[1].Y)
	}
}

func TestAdapter_FallbackOnBackendFailure(t *testing.T) {
	adapter := &Adapter{
		linear:    failingProjector{},
		nonlinear: failingProjector{},
		fallback:  NewFallbackProjector(),
	}

	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}

	points := adapter.Project(vectors, MethodLinear, 2)
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	for pointIndex, point := range points {
		if math.IsNaN(point.X) || math.IsNaN(point.Y) {
			t.Errorf("fallback point %d has NaN coordinates", pointIndex)
		}
	}

	// The fallback must itself be reproducible
	again := adapter.Project(vectors, MethodLinear, 2)
	for pointIndex := range points {
		if points[pointIndex] != again[pointIndex] {
			t.Errorf("fallback point %d differs between runs", pointIndex)
		}
	}
}

func TestAdapter_ThreeDimensionalOutput(t *testing.T) {
	adapter := NewAdapter(DefaultParams())

	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{0.5, 0.5, 0, 0},
	}

	points := adapter.Project(vectors, MethodLinear, 3)
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}

	zVaries := false
	for _, point := range points {
		if point.Z != points[0].Z {
			zVaries = true
			break
		}
	}
	if !zVaries {
		t.Error("3D projection should produce varying Z coordinates")
	}
}

func TestAdapter_NoRetainedStateBetweenCalls(t *testing.T) {
	adapter := NewAdapter(DefaultParams())

	vectors := [][]float32{
		{0.9, 0.1, 0.0},
		{0.1, 0.9, 0.0},
		{0.0, 0.1, 0.9},
		{0.5, 0.5, 0.1},
	}

	first := adapter.Project(vectors, MethodLinear, 2)
	second := adapter.Project(vectors, MethodLinear, 2)

	for pointIndex := range first {
		if first[pointIndex] != second[pointIndex] {
			t.Errorf("point %d differs between identical invocations", pointIndex)
		}
	}
}

func TestMethodString(t *testing.T) {
	if MethodLinear.String() != "PCA" {
		t.Errorf("expected PCA, got %s", MethodLinear.String())
	}
	if MethodNonlinear.String() != "UMAP" {
		t.Errorf("expected UMAP, got %s", MethodNonlinear.String())
	}
}
