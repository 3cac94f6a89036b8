package retrieval

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat/core"
)

// Entry is a chunk plus its embedding, the unit handed to Index.Upsert.
type Entry struct {
	ID        string
	Content   string
	Source    string
	Embedding []float32
}

// Index is the vector store contract consumed by the Retriever and the
// Ingestor. Implementations return query results ordered by descending
// similarity score.
type Index interface {
	// Ensure creates the index with the given embedding dimensionality if
	// it does not exist yet and blocks until it is queryable.
	Ensure(ctx context.Context, dim int) error

	// Upsert inserts or replaces the given entries.
	Upsert(ctx context.Context, entries []Entry) error

	// Query returns at most topK chunks nearest to the embedding, best
	// match first. Fewer are returned when the index holds fewer entries.
	Query(ctx context.Context, embedding []float32, topK int) ([]core.RetrievedChunk, error)
}

// Error wraps failures from the embedding or index layer. The orchestrator
// absorbs these and proceeds without retrieved context.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err) }

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }
