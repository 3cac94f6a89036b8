package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docuchat/docuchat/core"
)

// MemoryIndex is a process-local Index performing a linear cosine
// similarity scan over stored entries. It requires no external services,
// which makes it the backend of choice for tests and single-binary
// development; swap in PGVectorIndex for real corpora.
//
// Concurrency: protected by RWMutex.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryIndex constructs an empty in-memory vector index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

// Ensure implements Index. The in-memory backend is always ready.
func (m *MemoryIndex) Ensure(context.Context, int) error { return nil }

// Upsert inserts or replaces entries keyed by ID.
func (m *MemoryIndex) Upsert(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return nil
}

// Query returns the topK nearest entries by cosine similarity, best match
// first. Entries without provenance metadata are reported with the
// unknown-source sentinel.
func (m *MemoryIndex) Query(_ context.Context, embedding []float32, topK int) ([]core.RetrievedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scored := make([]core.RetrievedChunk, 0, len(m.entries))
	for _, e := range m.entries {
		source := e.Source
		if source == "" {
			source = core.UnknownSource
		}
		scored = append(scored, core.RetrievedChunk{
			Content: e.Content,
			Source:  source,
			Score:   cosineSimilarity(embedding, e.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// Len returns the number of stored entries.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
