// Package retrieval implements the similarity-search side of the service:
// embedding text with a fixed embedding model, storing chunk embeddings in
// a vector index and answering top-K nearest-neighbor queries.
//
// The same Embedder instance must be shared between ingestion and query
// time. Embedding-space consistency is a hard correctness requirement;
// mismatched models degrade relevance silently with no error signal.
//
// Two Index backends exist: PGVectorIndex (Postgres + pgvector, the
// production backend) and MemoryIndex (process-local cosine scan for tests
// and single-binary development).
package retrieval
