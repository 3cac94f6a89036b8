// Command docuchat runs the document-grounded chat service: it wires the
// vector index, embedding model, plugins and generation client into the
// orchestration engine and serves the HTTP endpoint. With -ingest the
// configured document directory is (re)indexed before the server starts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go"

	"github.com/docuchat/docuchat/config"
	"github.com/docuchat/docuchat/engine"
	"github.com/docuchat/docuchat/generation"
	"github.com/docuchat/docuchat/logging"
	"github.com/docuchat/docuchat/plugin"
	"github.com/docuchat/docuchat/retrieval"
	"github.com/docuchat/docuchat/server"
)

func main() {
	ingest := flag.Bool("ingest", false, "ingest the document directory before serving")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	// One embedder shared between ingestion and query time keeps the
	// embedding space consistent.
	embedder := retrieval.NewOpenAIEmbedder(func(o *retrieval.OpenAIEmbedderOptions) {
		o.Dimensions = cfg.EmbeddingDim
	})

	index, cleanup, err := newIndex(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("vector index setup failed: %v", err)
	}
	defer cleanup()

	if *ingest {
		ingestor := retrieval.NewIngestor(embedder, index, func(o *retrieval.IngestorOptions) {
			o.DocsDir = cfg.DocsDir
			o.ChunkSize = cfg.ChunkSize
			o.BatchSize = cfg.BatchSize
			o.Logger = logger
		})
		total, err := ingestor.Run(ctx)
		if err != nil {
			log.Fatalf("ingestion failed: %v", err)
		}
		logger.Info("documents ingested", "chunks", total, "dir", cfg.DocsDir)
	} else if err := index.Ensure(ctx, cfg.EmbeddingDim); err != nil {
		log.Fatalf("vector index not ready: %v", err)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = engine.Config{
			TopK:              cfg.TopK,
			HistoryWindow:     cfg.HistoryWindow,
			RetrievalTimeout:  cfg.RetrievalTimeout,
			PluginTimeout:     cfg.PluginTimeout,
			GenerationTimeout: cfg.GenerationTimeout,
		}
		o.Retriever = retrieval.NewRetriever(embedder, index, logger)
		o.Generator = newGenerator(cfg)
		o.Plugins = plugin.DefaultRegistry()
		o.Detector = plugin.NewDetector(plugin.DefaultTriggers)
		o.Logger = logger
	})

	e := server.New(eng, logger)

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil {
			logger.Info("server stopped", "reason", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) logging.Logger {
	level := logging.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	return logging.NewSlogLogger(level, cfg.LogFormat, false)
}

func newIndex(ctx context.Context, cfg *config.Config, logger logging.Logger) (retrieval.Index, func(), error) {
	if cfg.VectorBackend == config.BackendMemory {
		return retrieval.NewMemoryIndex(), func() {}, nil
	}

	pool, err := retrieval.NewPGVectorPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	index, err := retrieval.NewPGVectorIndex(pool, func(o *retrieval.PGVectorIndexOptions) {
		o.Table = cfg.IndexTable
		o.Logger = logger
	})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return index, pool.Close, nil
}

func newGenerator(cfg *config.Config) generation.Client {
	if cfg.Provider == config.ProviderAnthropic {
		return generation.NewAnthropicClient(func(o *generation.AnthropicOptions) {
			o.Model = anthropic.Model(cfg.AnthropicModel)
			o.APIKey = cfg.AnthropicAPIKey
		})
	}
	return generation.NewOpenAIClient(func(o *generation.OpenAIOptions) {
		o.Model = openai.ChatModel(cfg.OpenAIModel)
	})
}
