package retrieval

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat/core"
	"github.com/docuchat/docuchat/logging"
)

// Retriever composes an Embedder and an Index into the core.Retriever
// contract: embed the query, run a nearest-neighbor search, hand back
// scored chunks best match first.
type Retriever struct {
	embedder Embedder
	index    Index
	logger   logging.Logger
}

// NewRetriever constructs a Retriever. The embedder must be the same
// instance (or at least the same model and dimensionality) used at
// ingestion time.
func NewRetriever(embedder Embedder, index Index, logger logging.Logger) *Retriever {
	return &Retriever{embedder: embedder, index: index, logger: logging.OrNoOp(logger)}
}

// RelevantChunks implements core.Retriever. Failures from either the
// embedding call or the index query are wrapped as *Error for the caller
// to absorb.
func (r *Retriever) RelevantChunks(ctx context.Context, query string, topK int) ([]core.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, &Error{Op: "query", Err: fmt.Errorf("topK must be positive, got %d", topK)}
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &Error{Op: "embed", Err: err}
	}
	if len(vectors) == 0 {
		return nil, &Error{Op: "embed", Err: fmt.Errorf("no embedding returned for query")}
	}

	chunks, err := r.index.Query(ctx, vectors[0], topK)
	if err != nil {
		return nil, &Error{Op: "query", Err: err}
	}

	r.logger.Debug("retrieved chunks", "count", len(chunks), "top_k", topK)
	return chunks, nil
}
