// Package embedstore holds the in-memory collection of embedded texts
// backing the visualization. It is the only stateful component between
// the embedding provider and the analysis pipeline.
//
// # Behavior
//
// The store is append-only: texts are added and never removed during a
// session, so point indices stay stable and the presentation layer can
// track a point across recomputations. Each entry is keyed by its exact
// text; requesting a text that is already present is a no-op.
//
// Embedding happens asynchronously. Request returns immediately after
// recording the entry with a deterministic placeholder vector, then a
// background goroutine asks the provider for the real embedding. When
// the real vector arrives it replaces the placeholder and the store
// signals its update channel so the UI can trigger a fresh analysis
// pass. If the provider fails, the placeholder simply stays: the point
// remains visible at a stable position instead of disappearing.
//
// Every vector in the store is unit length. Real embeddings are
// normalized on arrival and placeholders are generated unit length, so
// downstream consumers can use the dot product as cosine similarity
// without re-checking.
package embedstore

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/lirad/dl-vector-museum-of-words/embedding"
	"github.com/lirad/dl-vector-museum-of-words/logger"
	"github.com/lirad/dl-vector-museum-of-words/vecmath"
)

// Entry is one embedded text as seen in a snapshot.
type Entry struct {
	// Text is the exact string that was embedded. It doubles as the
	// point's label and as its identity within the store.
	Text string

	// Vector is the unit-length embedding, or a deterministic
	// placeholder while the real embedding is still in flight.
	Vector []float32

	// Pending reports whether Vector is still the placeholder.
	Pending bool
}

// Persister is an optional sink for resolved embeddings, used to write
// each vector through to durable storage as it arrives.
type Persister interface {
	Persist(text string, vector []float32) error
}

// Store is a concurrency-safe append-only collection of embedded texts.
type Store struct {
	mutex sync.RWMutex

	// entries preserves insertion order so point indices never shift.
	entries []Entry

	// indexByText maps each text to its position in entries.
	indexByText map[string]int

	embedder           embedding.Embedder
	embeddingDimension int
	persister          Persister

	// updates receives a signal whenever an in-flight embedding
	// resolves. The channel has a single-slot buffer and sends never
	// block, so a slow consumer collapses a burst of updates into one.
	updates chan struct{}
}

// NewStore creates an empty store that resolves embeddings through the
// given provider. Placeholder vectors are generated at the given
// dimension so they are shape-compatible with the real embeddings.
func NewStore(embedder embedding.Embedder, embeddingDimension int) *Store {
	return &Store{
		indexByText:        make(map[string]int),
		embedder:           embedder,
		embeddingDimension: embeddingDimension,
		updates:            make(chan struct{}, 1),
	}
}

// SetPersister installs a write-through sink for resolved embeddings.
// Must be called before the store starts taking requests.
func (store *Store) SetPersister(persister Persister) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.persister = persister
}

// Updates returns the channel signaled after each resolved embedding.
// Consumers should treat a receive as "something changed, recompute"
// rather than a one-to-one event stream.
func (store *Store) Updates() <-chan struct{} {
	return store.updates
}

// Len returns the number of entries in the store.
func (store *Store) Len() int {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return len(store.entries)
}

// Contains reports whether the exact text is already in the store.
func (store *Store) Contains(text string) bool {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	_, present := store.indexByText[text]
	return present
}

// Request adds the text to the store and starts resolving its embedding
// in the background. Empty texts and texts already present are ignored.
// The entry is immediately visible in snapshots with a placeholder
// vector, so the UI can render the point before the provider responds.
func (store *Store) Request(text string) {
	if text == "" {
		return
	}

	store.mutex.Lock()
	if _, present := store.indexByText[text]; present {
		store.mutex.Unlock()
		return
	}

	// Record the entry with its placeholder before releasing the lock
	// so concurrent snapshots always see a complete vector.
	store.indexByText[text] = len(store.entries)
	store.entries = append(store.entries, Entry{
		Text:    text,
		Vector:  placeholderVector(text, store.embeddingDimension),
		Pending: true,
	})
	store.mutex.Unlock()

	go store.resolve(text)
}

// Add embeds the text synchronously and stores the result before
// returning. Bulk load paths use it to report per-text failures
// immediately instead of degrading to placeholders. Empty texts and
// duplicates are ignored without error.
func (store *Store) Add(text string) error {
	if text == "" || store.Contains(text) {
		return nil
	}

	embeddedVector, embedError := store.embedder.Embed(text)
	if embedError != nil {
		return embedError
	}
	if len(embeddedVector) == 0 {
		return fmt.Errorf("embedding provider returned no vector")
	}
	normalizedVector := vecmath.Normalize(embeddedVector)

	store.mutex.Lock()
	if _, present := store.indexByText[text]; present {
		store.mutex.Unlock()
		return nil
	}
	store.indexByText[text] = len(store.entries)
	store.entries = append(store.entries, Entry{
		Text:   text,
		Vector: normalizedVector,
	})
	persister := store.persister
	store.mutex.Unlock()

	if persister != nil {
		if persistError := persister.Persist(text, normalizedVector); persistError != nil {
			logger.Degraded("persisting %q failed: %v", text, persistError)
		}
	}
	return nil
}

// Seed adds an already-embedded text directly, normalizing the vector
// on the way in. It is used by bulk import paths that fetch embeddings
// outside the store's own provider. Entries already present and empty
// vectors are ignored.
func (store *Store) Seed(text string, vector []float32) {
	if text == "" || len(vector) == 0 {
		return
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, present := store.indexByText[text]; present {
		return
	}

	store.indexByText[text] = len(store.entries)
	store.entries = append(store.entries, Entry{
		Text:   text,
		Vector: vecmath.Normalize(vector),
	})
}

// Snapshot returns a copy of every entry in insertion order. The copy
// shares vector slices with the store; callers must treat them as
// read-only.
func (store *Store) Snapshot() []Entry {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	snapshot := make([]Entry, len(store.entries))
	copy(snapshot, store.entries)
	return snapshot
}

// Vectors returns just the vectors in insertion order, in the shape the
// analysis pipeline consumes.
func (store *Store) Vectors() [][]float32 {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	vectors := make([][]float32, len(store.entries))
	for entryIndex, entry := range store.entries {
		vectors[entryIndex] = entry.Vector
	}
	return vectors
}

// Labels returns just the texts in insertion order.
func (store *Store) Labels() []string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	labels := make([]string, len(store.entries))
	for entryIndex, entry := range store.entries {
		labels[entryIndex] = entry.Text
	}
	return labels
}

// resolve fetches the real embedding for a text and swaps it in for the
// placeholder. Provider failures are logged and leave the placeholder
// untouched.
func (store *Store) resolve(text string) {
	embeddedVector, embedError := store.embedder.Embed(text)
	if embedError != nil {
		logger.Degraded("embedding %q failed, keeping placeholder: %v", text, embedError)
		return
	}
	if len(embeddedVector) == 0 {
		logger.Degraded("embedding %q returned no vector, keeping placeholder", text)
		return
	}

	normalizedVector := vecmath.Normalize(embeddedVector)

	store.mutex.Lock()
	entryIndex, present := store.indexByText[text]
	if present {
		store.entries[entryIndex].Vector = normalizedVector
		store.entries[entryIndex].Pending = false
	}
	persister := store.persister
	store.mutex.Unlock()

	if present && persister != nil {
		if persistError := persister.Persist(text, normalizedVector); persistError != nil {
			logger.Degraded("persisting %q failed: %v", text, persistError)
		}
	}

	store.notify()
}

// notify signals the updates channel without ever blocking.
func (store *Store) notify() {
	select {
	case store.updates <- struct{}{}:
	default:
	}
}

// placeholderVector derives a stable unit vector from the text itself,
// so an unresolved point lands in the same spot every session.
func placeholderVector(text string, embeddingDimension int) []float32 {
	textHash := fnv.New64a()
	textHash.Write([]byte(text))
	return vecmath.SeededUnitVector(int64(textHash.Sum64()), embeddingDimension)
}
