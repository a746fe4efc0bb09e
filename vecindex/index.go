// Package vecindex wraps an HNSW graph for fast approximate
// nearest-neighbor lookup over the live embedding collection.
//
// The analysis pipeline computes neighbor lists exactly, by full
// ranking, because those lists are part of the exhibit and must be
// reproducible. This index serves a different job: answering "what is
// the typed input closest to right now" while the user is still typing,
// where an approximate answer in microseconds beats an exact answer
// after a full pass. The index is rebuilt opportunistically from store
// snapshots and is always allowed to be slightly stale.
package vecindex

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// Default HNSW tuning, sized for the few hundred points a session
// realistically holds.
const (
	defaultMaxConnections   = 16
	defaultLevelFactor      = 0.25
	defaultSearchCandidates = 20
)

// Index is a concurrency-safe approximate nearest-neighbor index keyed
// by text label.
type Index struct {
	mutex sync.RWMutex
	graph *hnsw.Graph[string]
}

// Match is a single search result.
type Match struct {
	// Text is the label of the matched point.
	Text string

	// Distance is the graph's distance to the query; smaller is closer.
	Distance float64
}

// New creates an empty index with the default tuning.
func New() *Index {
	return &Index{graph: newTunedGraph()}
}

func newTunedGraph() *hnsw.Graph[string] {
	graph := hnsw.NewGraph[string]()
	graph.M = defaultMaxConnections
	graph.Ml = defaultLevelFactor
	graph.EfSearch = defaultSearchCandidates
	return graph
}

// Add inserts or replaces the vector for a text label.
func (index *Index) Add(text string, vector []float32) {
	if text == "" || len(vector) == 0 {
		return
	}
	index.mutex.Lock()
	defer index.mutex.Unlock()
	index.graph.Add(hnsw.MakeNode(text, vector))
}

// Rebuild replaces the entire index contents with the given labeled
// vectors. Labels and vectors must be the same length.
func (index *Index) Rebuild(labels []string, vectors [][]float32) error {
	if len(labels) != len(vectors) {
		return fmt.Errorf("labels and vectors length mismatch: %d vs %d", len(labels), len(vectors))
	}

	replacement := newTunedGraph()
	for labelIndex, label := range labels {
		if label == "" || len(vectors[labelIndex]) == 0 {
			continue
		}
		replacement.Add(hnsw.MakeNode(label, vectors[labelIndex]))
	}

	index.mutex.Lock()
	index.graph = replacement
	index.mutex.Unlock()
	return nil
}

// Len returns the number of indexed points.
func (index *Index) Len() int {
	index.mutex.RLock()
	defer index.mutex.RUnlock()
	return index.graph.Len()
}

// Nearest returns up to limit matches closest to the query vector,
// nearest first. An empty index or query returns no matches.
func (index *Index) Nearest(query []float32, limit int) []Match {
	if len(query) == 0 || limit < 1 {
		return nil
	}

	index.mutex.RLock()
	defer index.mutex.RUnlock()

	if index.graph.Len() == 0 {
		return nil
	}

	neighbors := index.graph.Search(query, limit)
	matches := make([]Match, 0, len(neighbors))
	for _, neighbor := range neighbors {
		matches = append(matches, Match{
			Text:     neighbor.Key,
			Distance: distanceToQuery(query, neighbor.Value),
		})
	}
	return matches
}

// distanceToQuery recomputes the Euclidean distance so Match carries a
// meaningful number even though the graph does not expose its internal
// distances. Mismatched lengths compare over the shorter prefix.
func distanceToQuery(query, candidate []float32) float64 {
	shorter := len(query)
	if len(candidate) < shorter {
		shorter = len(candidate)
	}
	var sumOfSquares float64
	for componentIndex := 0; componentIndex < shorter; componentIndex++ {
		difference := float64(query[componentIndex]) - float64(candidate[componentIndex])
		sumOfSquares += difference * difference
	}
	return math.Sqrt(sumOfSquares)
}
