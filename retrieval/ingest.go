package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docuchat/docuchat/logging"
)

// SplitText slices text into non-overlapping fixed-size chunks, measured
// in runes so multi-byte characters are never split. The final chunk may
// be shorter. A non-positive size yields the whole text as one chunk.
func SplitText(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// IngestorOptions configure a document ingestion run.
type IngestorOptions struct {
	// DocsDir is the directory scanned (non-recursively) for source
	// documents. Every regular file is treated as one document.
	DocsDir string

	// ChunkSize is the fixed chunk length in runes.
	ChunkSize int

	// BatchSize caps how many chunks are embedded and upserted per round
	// trip.
	BatchSize int

	Logger logging.Logger
}

// Ingestor loads source documents, splits them into fixed-size chunks,
// embeds each chunk and upserts chunk, embedding and provenance into the
// index in fixed-size batches. Running it twice is harmless: chunk ids are
// deterministic per run order and upserts replace existing rows.
type Ingestor struct {
	embedder Embedder
	index    Index
	opts     IngestorOptions
}

// NewIngestor constructs an Ingestor sharing the service's embedder and
// index.
func NewIngestor(embedder Embedder, index Index, optFns ...func(o *IngestorOptions)) *Ingestor {
	opts := IngestorOptions{
		DocsDir:   "docs",
		ChunkSize: 500,
		BatchSize: 100,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Ingestor{embedder: embedder, index: index, opts: opts}
}

// Run ensures the index exists and is queryable, then ingests every
// document found in DocsDir. It returns the number of chunks written.
func (ing *Ingestor) Run(ctx context.Context) (int, error) {
	if err := ing.index.Ensure(ctx, ing.embedder.Dimensions()); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}

	files, err := os.ReadDir(ing.opts.DocsDir)
	if err != nil {
		return 0, fmt.Errorf("read docs dir %s: %w", ing.opts.DocsDir, err)
	}

	var (
		pending []Entry
		total   int
		offset  int
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		texts := make([]string, len(pending))
		for i, e := range pending {
			texts[i] = e.Content
		}
		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		for i := range pending {
			pending[i].Embedding = vectors[i]
		}
		if err := ing.index.Upsert(ctx, pending); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		total += len(pending)
		pending = pending[:0]
		return nil
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(ing.opts.DocsDir, file.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return total, fmt.Errorf("read %s: %w", path, err)
		}

		chunks := SplitText(string(raw), ing.opts.ChunkSize)
		ing.opts.Logger.Info("ingesting document", "source", file.Name(), "chunks", len(chunks))

		for _, chunk := range chunks {
			pending = append(pending, Entry{
				ID:      fmt.Sprintf("doc-%d", offset),
				Content: chunk,
				Source:  file.Name(),
			})
			offset++
			if len(pending) >= ing.opts.BatchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}

	ing.opts.Logger.Info("ingestion complete", "chunks", total)
	return total, nil
}
