package vecmath

import (
	"errors"
	"math"
	"testing"
)

// unitWithCosine builds a 2D unit vector whose cosine similarity to
// [1, 0] equals the given value.
func unitWithCosine(cosine float64) []float32 {
	return []float32{float32(cosine), float32(math.Sqrt(1 - cosine*cosine))}
}

func TestTopNeighbors_KnownRanking(t *testing.T) {
	// Point 0 has similarities 0.9, 0.5, 0.1 to points 1, 2, 3
	vectors := [][]float32{
		{1, 0},
		unitWithCosine(0.9),
		unitWithCosine(0.5),
		unitWithCosine(0.1),
	}

	neighborLists, err := TopNeighbors(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listForPointZero := neighborLists[0]
	if len(listForPointZero) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(listForPointZero))
	}
	if listForPointZero[0].Index != 1 || math.Abs(listForPointZero[0].Similarity-0.9) > 1e-3 {
		t.Errorf("first neighbor should be (1, 0.9), got (%d, %f)", listForPointZero[0].Index, listForPointZero[0].Similarity)
	}
	if listForPointZero[1].Index != 2 || math.Abs(listForPointZero[1].Similarity-0.5) > 1e-3 {
		t.Errorf("second neighbor should be (2, 0.5), got (%d, %f)", listForPointZero[1].Index, listForPointZero[1].Similarity)
	}
}

func TestTopNeighbors_NeverIncludesSelf(t *testing.T) {
	vectors := [][]float32{
		Normalize([]float32{1, 2}),
		Normalize([]float32{2, 1}),
		Normalize([]float32{-1, 1}),
	}

	neighborLists, err := TopNeighbors(vectors, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for pointIndex, list := range neighborLists {
		for _, entry := range list {
			if entry.Index == pointIndex {
				t.Errorf("point %d lists itself as a neighbor", pointIndex)
			}
		}
	}
}

func TestTopNeighbors_TruncatesToAvailable(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		unitWithCosine(0.5),
	}

	neighborLists, err := TopNeighbors(vectors, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for pointIndex, list := range neighborLists {
		if len(list) != 2 {
			t.Errorf("point %d should have exactly N-1=2 neighbors, got %d", pointIndex, len(list))
		}
	}
}

func TestTopNeighbors_SortedDescending(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		unitWithCosine(0.2),
		unitWithCosine(0.8),
		unitWithCosine(-0.4),
		unitWithCosine(0.6),
	}

	neighborLists, err := TopNeighbors(vectors, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for pointIndex, list := range neighborLists {
		for position := 1; position < len(list); position++ {
			if list[position].Similarity > list[position-1].Similarity {
				t.Errorf("point %d neighbor list not sorted descending at position %d", pointIndex, position)
			}
		}
	}
}

func TestTopNeighbors_StableTies(t *testing.T) {
	// Points 1 and 2 are identical, so they tie for point 0's top spot.
	// The earlier input index must win.
	duplicate := unitWithCosine(0.7)
	vectors := [][]float32{
		{1, 0},
		duplicate,
		duplicate,
		unitWithCosine(0.1),
	}

	neighborLists, err := TopNeighbors(vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listForPointZero := neighborLists[0]
	if listForPointZero[0].Index != 1 {
		t.Errorf("tie should be broken by input order, expected index 1 first, got %d", listForPointZero[0].Index)
	}
	if listForPointZero[1].Index != 2 {
		t.Errorf("tie should be broken by input order, expected index 2 second, got %d", listForPointZero[1].Index)
	}
}

func TestTopNeighbors_InvalidCount(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}

	_, err := TopNeighbors(vectors, 0)
	if !errors.Is(err, ErrInvalidNeighborCount) {
		t.Errorf("expected ErrInvalidNeighborCount for k=0, got %v", err)
	}

	_, err = TopNeighbors(vectors, -3)
	if !errors.Is(err, ErrInvalidNeighborCount) {
		t.Errorf("expected ErrInvalidNeighborCount for k=-3, got %v", err)
	}
}

func TestTopNeighbors_EmptyInput(t *testing.T) {
	neighborLists, err := TopNeighbors(nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighborLists) != 0 {
		t.Errorf("expected empty output for empty input, got %d lists", len(neighborLists))
	}
}
