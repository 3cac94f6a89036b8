package core

// UnknownSource is the provenance sentinel used when the vector index
// returns a match without source metadata.
const UnknownSource = "unknown"

// DocumentChunk is the unit of indexing: a fixed-size contiguous substring
// of a source document plus the identifier of that document. Chunks are
// produced once at ingestion time and owned by the vector index.
type DocumentChunk struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// RetrievedChunk is a query-time projection of a DocumentChunk with its
// similarity score. It is never persisted.
type RetrievedChunk struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}
