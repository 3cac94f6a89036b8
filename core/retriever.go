package core

import "context"

// Retriever returns the document chunks most similar to a query, ordered
// by descending similarity score. Implementations embed the query with the
// same embedding model used at ingestion time; mixing models silently
// degrades relevance with no error signal, so the wiring layer must hand
// both sides the same embedder.
//
// At most topK chunks are returned; fewer when the index holds fewer
// matches. Errors are reported to the caller, which is expected to degrade
// (assemble context without a documents section) rather than fail the
// request.
type Retriever interface {
	RelevantChunks(ctx context.Context, query string, topK int) ([]RetrievedChunk, error)
}
