package retrieval

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/docuchat/docuchat/core"
	"github.com/docuchat/docuchat/logging"
)

// identifierRe limits table names to plain SQL identifiers since the table
// name is interpolated into DDL and query text.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PGVectorIndexOptions configure the Postgres-backed index.
type PGVectorIndexOptions struct {
	// Table is the name of the chunk table. Must be a plain identifier.
	Table string

	// ReadyTimeout bounds how long Ensure waits for the index to answer
	// probe queries after creation.
	ReadyTimeout time.Duration

	Logger logging.Logger
}

// PGVectorIndex stores chunk embeddings in Postgres using the pgvector
// extension and answers queries with cosine similarity. Safe for
// concurrent use; all state lives in the connection pool.
type PGVectorIndex struct {
	pool *pgxpool.Pool
	opts PGVectorIndexOptions
}

// NewPGVectorPool opens a pgx pool with pgvector type support registered
// on every connection.
func NewPGVectorPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}

// NewPGVectorIndex constructs an index over an existing pool.
func NewPGVectorIndex(pool *pgxpool.Pool, optFns ...func(o *PGVectorIndexOptions)) (*PGVectorIndex, error) {
	opts := PGVectorIndexOptions{
		Table:        "document_chunks",
		ReadyTimeout: 30 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !identifierRe.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &PGVectorIndex{pool: pool, opts: opts}, nil
}

// Ensure creates the extension, chunk table and HNSW cosine index if they
// do not exist, then polls with probe queries until the table answers.
// Polling replaces the fixed settle delay some vector stores require after
// index creation; readiness is observed, not assumed.
func (p *PGVectorIndex) Ensure(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimensionality %d", dim)
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id text PRIMARY KEY,
			content text NOT NULL,
			source text NOT NULL DEFAULT '',
			embedding vector(%d)
		)`, p.opts.Table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`,
			p.opts.Table, p.opts.Table),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}

	return p.waitReady(ctx)
}

// waitReady probes the chunk table until it is queryable or the timeout
// elapses.
func (p *PGVectorIndex) waitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ReadyTimeout)
	defer cancel()

	probe := fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, p.opts.Table)
	backoff := 200 * time.Millisecond
	for {
		var one int
		err := p.pool.QueryRow(ctx, probe).Scan(&one)
		if err == nil || errors.Is(err, pgx.ErrNoRows) {
			return nil
		}

		p.opts.Logger.Debug("index not ready yet", "table", p.opts.Table, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("index %s not ready: %w", p.opts.Table, ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

// Upsert inserts or replaces entries in a single batch round trip.
func (p *PGVectorIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, content, source, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			embedding = EXCLUDED.embedding`, p.opts.Table)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(stmt, e.ID, e.Content, e.Source, pgvector.NewVector(e.Embedding))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
	}
	return nil
}

// Query returns the topK nearest chunks by cosine similarity.
func (p *PGVectorIndex) Query(ctx context.Context, embedding []float32, topK int) ([]core.RetrievedChunk, error) {
	stmt := fmt.Sprintf(`SELECT content, source, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, p.opts.Table)

	rows, err := p.pool.Query(ctx, stmt, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var chunks []core.RetrievedChunk
	for rows.Next() {
		var (
			content string
			source  *string
			score   *float64
		)
		if err := rows.Scan(&content, &source, &score); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		chunk := core.RetrievedChunk{Content: content, Source: core.UnknownSource}
		if source != nil && *source != "" {
			chunk.Source = *source
		}
		if score != nil {
			chunk.Score = *score
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return chunks, nil
}
