// Package engine implements the per-request orchestration pipeline: record
// the user message, gather retrieved context and an optional plugin result
// concurrently, assemble the context block, call the generation client and
// record the answer.
//
// The pipeline is deliberately fail-soft. Retrieval and plugin failures are
// absorbed (their context section is simply omitted) and generation
// failures surface as fallback strings, so the only error a caller ever
// sees is missing required input. Availability over completeness.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/core"
	"github.com/docuchat/docuchat/generation"
	"github.com/docuchat/docuchat/logging"
	"github.com/docuchat/docuchat/plugin"
	"github.com/docuchat/docuchat/prompt"
	"github.com/docuchat/docuchat/session"
)

// ErrMissingInput is returned when the message or session id is empty.
// It is the only error HandleMessage produces; everything downstream
// degrades instead of failing.
var ErrMissingInput = errors.New("message and session id are required")

// Config defines tuning parameters for the request pipeline.
type Config struct {
	// TopK bounds how many chunks retrieval may contribute.
	TopK int

	// HistoryWindow is the number of recent messages exposed to context
	// assembly.
	HistoryWindow int

	// Per-dependency call timeouts. Retrieval and plugin timeouts bound
	// the fan-out stage; the generation timeout bounds the model call and
	// maps expiry to the transport fallback.
	RetrievalTimeout  time.Duration
	PluginTimeout     time.Duration
	GenerationTimeout time.Duration
}

// DefaultConfig provides the design defaults: three retrieved chunks, a
// two-message history window and generous outbound timeouts.
var DefaultConfig = Config{
	TopK:              3,
	HistoryWindow:     2,
	RetrievalTimeout:  10 * time.Second,
	PluginTimeout:     10 * time.Second,
	GenerationTimeout: 30 * time.Second,
}

// Options configures an Engine. Unset services default to in-process
// implementations so tests and local development need no external wiring.
type Options struct {
	Config Config

	// Sessions stores per-session conversation history.
	// Defaults to an in-memory store.
	Sessions core.SessionStore

	// Retriever supplies document chunks. nil disables retrieval (the
	// documents section is always omitted).
	Retriever core.Retriever

	// Generator produces the answer. Defaults to a mock client.
	Generator generation.Client

	// Plugins and Detector drive optional capability invocation.
	// Default to the built-in set.
	Plugins  *plugin.Registry
	Detector *plugin.Detector

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Engine is the orchestrator tying sessions, retrieval, plugins and
// generation together. One Engine serves many concurrent requests; each
// request runs its own pipeline instance with no shared mutable state
// beyond the session store.
type Engine struct {
	cfg       Config
	sessions  core.SessionStore
	retriever core.Retriever
	generator generation.Client
	plugins   *plugin.Registry
	detector  *plugin.Detector
	logger    logging.Logger
}

// New creates an Engine with optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:    DefaultConfig,
		Sessions:  session.NewInMemoryStore(),
		Generator: generation.NewMockClient(),
		Plugins:   plugin.DefaultRegistry(),
		Detector:  plugin.NewDetector(plugin.DefaultTriggers),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		cfg:       opts.Config,
		sessions:  opts.Sessions,
		retriever: opts.Retriever,
		generator: opts.Generator,
		plugins:   opts.Plugins,
		detector:  opts.Detector,
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// HandleMessage runs the full pipeline for one user message and returns
// the answer text. The history window is captured before the incoming
// message is recorded so the window always covers completed exchanges;
// the user message is recorded before generation and the answer (fallback
// included) after, keeping session history aligned with what the user saw.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(sessionID) == "" {
		return "", ErrMissingInput
	}

	logger := e.logger.With("invocation_id", uuid.NewString(), "session_id", sessionID)
	start := time.Now()

	history := e.sessions.RecentWindow(sessionID, e.cfg.HistoryWindow)
	e.sessions.Append(sessionID, core.NewUserMessage(message))

	// Retrieval and plugin invocation are independent; fan out and join
	// before assembly. Each branch absorbs its own failure.
	var (
		wg        sync.WaitGroup
		chunks    []core.RetrievedChunk
		pluginOut string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		chunks = e.retrieve(ctx, logger, message)
	}()
	go func() {
		defer wg.Done()
		pluginOut = e.runPlugin(ctx, logger, message)
	}()
	wg.Wait()

	contextBlock := prompt.Assemble(chunks, pluginOut, history)

	genCtx, cancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
	defer cancel()

	resp := e.generator.Generate(genCtx, generation.Request{
		Instruction: prompt.SystemInstruction,
		Context:     contextBlock,
		Question:    message,
	})
	if resp.Outcome != generation.OutcomeSuccess {
		logger.Warn("generation degraded to fallback",
			"outcome", resp.Outcome.String(), "status", resp.Status, "error", resp.Err)
	}

	// Record the answer even when it is a fallback so history reflects
	// what the user actually saw.
	e.sessions.Append(sessionID, core.NewAssistantMessage(resp.Text))

	logger.Info("request handled",
		"chunks", len(chunks),
		"plugin_used", pluginOut != "",
		"outcome", resp.Outcome.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Text, nil
}

// retrieve runs the similarity search branch. Failures (and a nil
// retriever) degrade to no retrieved chunks.
func (e *Engine) retrieve(ctx context.Context, logger logging.Logger, message string) []core.RetrievedChunk {
	if e.retriever == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RetrievalTimeout)
	defer cancel()

	chunks, err := e.retriever.RelevantChunks(ctx, message, e.cfg.TopK)
	if err != nil {
		logger.Warn("retrieval failed, continuing without documents", "error", err)
		return nil
	}
	return chunks
}

// runPlugin runs the intent-detection branch. A detection miss, registry
// miss, empty output or plugin failure all degrade to no plugin output.
func (e *Engine) runPlugin(ctx context.Context, logger logging.Logger, message string) string {
	if e.detector == nil || e.plugins == nil {
		return ""
	}

	name, ok := e.detector.Detect(message)
	if !ok {
		return ""
	}

	p, ok := e.plugins.Get(name)
	if !ok {
		logger.Warn("detected plugin is not registered", "plugin", name)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.PluginTimeout)
	defer cancel()

	out, err := p.Invoke(ctx, message)
	if err != nil {
		logger.Warn("plugin failed, continuing without plugin output", "plugin", name, "error", err)
		return ""
	}

	logger.Debug("plugin invoked", "plugin", name)
	return out
}
