package embedstore

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"
)

// scriptedEmbedder returns canned vectors or errors per text, and
// records how many times each text was requested.
type scriptedEmbedder struct {
	mutex     sync.Mutex
	vectors   map[string][]float32
	failures  map[string]error
	callCount map[string]int
}

func newScriptedEmbedder() *scriptedEmbedder {
	return &scriptedEmbedder{
		vectors:   make(map[string][]float32),
		failures:  make(map[string]error),
		callCount: make(map[string]int),
	}
}

func (embedder *scriptedEmbedder) Embed(text string) ([]float32, error) {
	embedder.mutex.Lock()
	defer embedder.mutex.Unlock()
	embedder.callCount[text]++
	if failure, present := embedder.failures[text]; present {
		return nil, failure
	}
	return embedder.vectors[text], nil
}

func (embedder *scriptedEmbedder) calls(text string) int {
	embedder.mutex.Lock()
	defer embedder.mutex.Unlock()
	return embedder.callCount[text]
}

// waitForResolution polls until the entry for text is no longer pending
// or the deadline passes.
func waitForResolution(t *testing.T, store *Store, text string) Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, entry := range store.Snapshot() {
			if entry.Text == text && !entry.Pending {
				return entry
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("entry %q never resolved", text)
	return Entry{}
}

func vectorNorm(vector []float32) float64 {
	var sumOfSquares float64
	for _, component := range vector {
		sumOfSquares += float64(component) * float64(component)
	}
	return math.Sqrt(sumOfSquares)
}

func TestRequest_PlaceholderVisibleImmediately(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.failures["museum"] = fmt.Errorf("provider offline")
	store := NewStore(embedder, 8)

	store.Request("museum")

	snapshot := store.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 entry right after Request, got %d", len(snapshot))
	}
	if !snapshot[0].Pending {
		t.Error("expected entry to be pending before resolution")
	}
	if len(snapshot[0].Vector) != 8 {
		t.Errorf("placeholder dimension = %d, want 8", len(snapshot[0].Vector))
	}
	if norm := vectorNorm(snapshot[0].Vector); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("placeholder norm = %f, want 1", norm)
	}
}

func TestRequest_ResolvesAndNormalizes(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.vectors["word"] = []float32{3, 4, 0, 0}
	store := NewStore(embedder, 4)

	store.Request("word")
	resolved := waitForResolution(t, store, "word")

	if norm := vectorNorm(resolved.Vector); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("resolved vector norm = %f, want 1", norm)
	}
	if math.Abs(float64(resolved.Vector[0])-0.6) > 1e-5 {
		t.Errorf("first component = %f, want 0.6", resolved.Vector[0])
	}

	select {
	case <-store.Updates():
	default:
		t.Error("expected an update signal after resolution")
	}
}

func TestRequest_DuplicateIsNoOp(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.vectors["echo"] = []float32{1, 0}
	store := NewStore(embedder, 2)

	store.Request("echo")
	waitForResolution(t, store, "echo")
	store.Request("echo")
	time.Sleep(20 * time.Millisecond)

	if store.Len() != 1 {
		t.Errorf("store length = %d after duplicate request, want 1", store.Len())
	}
	if embedder.calls("echo") != 1 {
		t.Errorf("embedder called %d times, want 1", embedder.calls("echo"))
	}
}

func TestRequest_EmptyTextIgnored(t *testing.T) {
	store := NewStore(newScriptedEmbedder(), 4)
	store.Request("")
	if store.Len() != 0 {
		t.Errorf("store length = %d after empty request, want 0", store.Len())
	}
}

func TestRequest_FailureKeepsPlaceholder(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.failures["ghost"] = fmt.Errorf("timeout")
	store := NewStore(embedder, 6)

	store.Request("ghost")
	time.Sleep(50 * time.Millisecond)

	snapshot := store.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snapshot))
	}
	if !snapshot[0].Pending {
		t.Error("expected entry to stay pending after provider failure")
	}
	if norm := vectorNorm(snapshot[0].Vector); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("placeholder norm = %f, want 1", norm)
	}
}

func TestPlaceholder_DeterministicPerText(t *testing.T) {
	first := placeholderVector("anchor", 16)
	second := placeholderVector("anchor", 16)
	other := placeholderVector("different", 16)

	for componentIndex := range first {
		if first[componentIndex] != second[componentIndex] {
			t.Fatalf("placeholder for same text differs at component %d", componentIndex)
		}
	}

	identical := true
	for componentIndex := range first {
		if first[componentIndex] != other[componentIndex] {
			identical = false
			break
		}
	}
	if identical {
		t.Error("placeholders for different texts should differ")
	}
}

func TestSeed_NormalizesAndPreservesOrder(t *testing.T) {
	store := NewStore(newScriptedEmbedder(), 3)

	store.Seed("first", []float32{2, 0, 0})
	store.Seed("second", []float32{0, 5, 0})
	store.Seed("first", []float32{0, 0, 9})

	labels := store.Labels()
	if len(labels) != 2 || labels[0] != "first" || labels[1] != "second" {
		t.Fatalf("labels = %v, want [first second]", labels)
	}

	vectors := store.Vectors()
	if math.Abs(float64(vectors[0][0])-1.0) > 1e-6 {
		t.Errorf("seeded vector not normalized: %v", vectors[0])
	}
}

// recordingPersister captures every persisted text and vector.
type recordingPersister struct {
	mutex     sync.Mutex
	persisted map[string][]float32
}

func (persister *recordingPersister) Persist(text string, vector []float32) error {
	persister.mutex.Lock()
	defer persister.mutex.Unlock()
	if persister.persisted == nil {
		persister.persisted = make(map[string][]float32)
	}
	persister.persisted[text] = vector
	return nil
}

func (persister *recordingPersister) get(text string) []float32 {
	persister.mutex.Lock()
	defer persister.mutex.Unlock()
	return persister.persisted[text]
}

func TestAdd_SynchronousEmbedAndPersist(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.vectors["anchor"] = []float32{0, 3, 4}
	persister := &recordingPersister{}

	store := NewStore(embedder, 3)
	store.SetPersister(persister)

	if addError := store.Add("anchor"); addError != nil {
		t.Fatalf("Add returned error: %v", addError)
	}

	snapshot := store.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Pending {
		t.Fatalf("expected 1 resolved entry, got %+v", snapshot)
	}
	if norm := vectorNorm(snapshot[0].Vector); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("stored vector norm = %f, want 1", norm)
	}

	persistedVector := persister.get("anchor")
	if len(persistedVector) != 3 {
		t.Fatalf("expected persisted vector, got %v", persistedVector)
	}
	if norm := vectorNorm(persistedVector); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("persisted vector norm = %f, want 1", norm)
	}
}

func TestAdd_ProviderFailurePropagates(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.failures["broken"] = fmt.Errorf("provider offline")

	store := NewStore(embedder, 4)
	if addError := store.Add("broken"); addError == nil {
		t.Error("expected error from failing provider, got nil")
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d after failed Add, want 0", store.Len())
	}
}

func TestResolve_PersistsThroughHook(t *testing.T) {
	embedder := newScriptedEmbedder()
	embedder.vectors["async"] = []float32{1, 1, 0, 0}
	persister := &recordingPersister{}

	store := NewStore(embedder, 4)
	store.SetPersister(persister)

	store.Request("async")
	waitForResolution(t, store, "async")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if persister.get("async") != nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("resolved embedding was never persisted")
}

func TestStore_ConcurrentRequests(t *testing.T) {
	embedder := newScriptedEmbedder()
	for wordIndex := 0; wordIndex < 50; wordIndex++ {
		embedder.vectors[fmt.Sprintf("word-%d", wordIndex)] = []float32{1, float32(wordIndex)}
	}
	store := NewStore(embedder, 2)

	var waitGroup sync.WaitGroup
	for wordIndex := 0; wordIndex < 50; wordIndex++ {
		waitGroup.Add(1)
		go func(wordIndex int) {
			defer waitGroup.Done()
			store.Request(fmt.Sprintf("word-%d", wordIndex))
		}(wordIndex)
	}
	waitGroup.Wait()

	if store.Len() != 50 {
		t.Errorf("store length = %d, want 50", store.Len())
	}
}
