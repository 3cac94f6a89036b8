package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/core"
	"github.com/docuchat/docuchat/generation"
	"github.com/docuchat/docuchat/plugin"
	"github.com/docuchat/docuchat/session"
)

// stubRetriever returns canned chunks or a fixed error.
type stubRetriever struct {
	chunks []core.RetrievedChunk
	err    error

	mu    sync.Mutex
	calls int
}

func (s *stubRetriever) RelevantChunks(context.Context, string, int) ([]core.RetrievedChunk, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func docChunks() []core.RetrievedChunk {
	return []core.RetrievedChunk{
		{Content: "Go was designed at Google.", Source: "go-history.txt", Score: 0.9},
	}
}

func TestHandleMessage_MissingInput(t *testing.T) {
	store := session.NewInMemoryStore()
	eng := New(func(o *Options) { o.Sessions = store })

	tests := []struct {
		name      string
		sessionID string
		message   string
	}{
		{"empty message", "s1", ""},
		{"blank message", "s1", "   "},
		{"empty session id", "", "hello"},
		{"both empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.HandleMessage(context.Background(), tt.sessionID, tt.message)
			assert.ErrorIs(t, err, ErrMissingInput)
		})
	}

	// Validation happens before any side effect.
	assert.Empty(t, store.Get("s1"))
}

func TestHandleMessage_FullPipeline(t *testing.T) {
	store := session.NewInMemoryStore()
	gen := generation.NewMockClient()
	gen.AddResponse("what's the weather and the history of Go?", "It is sunny, and Go dates to 2007.")

	eng := New(func(o *Options) {
		o.Sessions = store
		o.Retriever = &stubRetriever{chunks: docChunks()}
		o.Generator = gen
	})

	answer, err := eng.HandleMessage(context.Background(), "s1", "what's the weather and the history of Go?")
	require.NoError(t, err)
	assert.Equal(t, "It is sunny, and Go dates to 2007.", answer)

	// The generation request carries all three context sections.
	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Context, "Relevant Documents:")
	assert.Contains(t, reqs[0].Context, "[Document 1 from go-history.txt]")
	assert.Contains(t, reqs[0].Context, "Plugin Output:")
	assert.NotContains(t, reqs[0].Context, "Conversation History:") // fresh session
	assert.Equal(t, "what's the weather and the history of Go?", reqs[0].Question)
	assert.NotEmpty(t, reqs[0].Instruction)

	// Session gained the exchange in order.
	msgs := store.Get("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
}

func TestHandleMessage_HistoryWindowCoversPreviousExchange(t *testing.T) {
	store := session.NewInMemoryStore()
	gen := generation.NewMockClient()
	gen.AddResponse("My name is John", "Nice to meet you, John!")

	eng := New(func(o *Options) {
		o.Sessions = store
		o.Generator = gen
	})

	_, err := eng.HandleMessage(context.Background(), "t1", "My name is John")
	require.NoError(t, err)

	_, err = eng.HandleMessage(context.Background(), "t1", "What did I just tell you?")
	require.NoError(t, err)

	reqs := gen.Requests()
	require.Len(t, reqs, 2)

	// First request of a fresh session has no history section.
	assert.NotContains(t, reqs[0].Context, "Conversation History:")

	// Second request sees the first exchange verbatim, oldest-first.
	second := reqs[1].Context
	assert.Contains(t, second, "Conversation History:")
	userIdx := strings.Index(second, "User: My name is John")
	aiIdx := strings.Index(second, "AI: Nice to meet you, John!")
	require.GreaterOrEqual(t, userIdx, 0)
	assert.Greater(t, aiIdx, userIdx)
}

func TestHandleMessage_HistoryWindowIsBounded(t *testing.T) {
	store := session.NewInMemoryStore()
	gen := generation.NewMockClient()

	eng := New(func(o *Options) {
		o.Sessions = store
		o.Generator = gen
		o.Config = DefaultConfig // window of 2
	})

	for i := 1; i <= 4; i++ {
		_, err := eng.HandleMessage(context.Background(), "s1", fmt.Sprintf("message number %d", i))
		require.NoError(t, err)
	}

	reqs := gen.Requests()
	last := reqs[len(reqs)-1].Context

	// Only the two most recent messages appear in the window.
	assert.NotContains(t, last, "message number 2")
	assert.Contains(t, last, "message number 3")
	assert.Contains(t, last, "Mock answer to: message number 3")
}

func TestHandleMessage_RetrievalFailureDegrades(t *testing.T) {
	gen := generation.NewMockClient()
	retriever := &stubRetriever{err: errors.New("index unavailable")}

	eng := New(func(o *Options) {
		o.Retriever = retriever
		o.Generator = gen
	})

	answer, err := eng.HandleMessage(context.Background(), "s1", "tell me about Go")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0].Context, "Relevant Documents:")
	assert.Equal(t, 1, retriever.calls)
}

func TestHandleMessage_PluginFailureDegrades(t *testing.T) {
	gen := generation.NewMockClient()

	registry := plugin.NewRegistry()
	registry.Register(plugin.NewFunc("weather", func(context.Context, string) (string, error) {
		return "", errors.New("upstream down")
	}))

	eng := New(func(o *Options) {
		o.Generator = gen
		o.Plugins = registry
	})

	answer, err := eng.HandleMessage(context.Background(), "s1", "how is the weather?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0].Context, "Plugin Output:")
}

func TestHandleMessage_UnregisteredPluginIsSkipped(t *testing.T) {
	gen := generation.NewMockClient()

	eng := New(func(o *Options) {
		o.Generator = gen
		o.Plugins = plugin.NewRegistry() // detector knows "weather", registry is empty
	})

	_, err := eng.HandleMessage(context.Background(), "s1", "how is the weather?")
	require.NoError(t, err)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0].Context, "Plugin Output:")
}

func TestHandleMessage_FallbackIsRecordedInHistory(t *testing.T) {
	store := session.NewInMemoryStore()
	gen := generation.NewMockClient()
	gen.FailWith(generation.OutcomeTransportFailure, 1)

	eng := New(func(o *Options) {
		o.Sessions = store
		o.Generator = gen
	})

	answer, err := eng.HandleMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, generation.FallbackTransport, answer)

	msgs := store.Get("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.Equal(t, generation.FallbackTransport, msgs[1].Content)
}

func TestHandleMessage_ConcurrentSameSession(t *testing.T) {
	store := session.NewInMemoryStore()
	eng := New(func(o *Options) { o.Sessions = store })

	const requests = 20
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := eng.HandleMessage(context.Background(), "shared", fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every request appends exactly two messages; none may be lost.
	assert.Len(t, store.Get("shared"), 2*requests)
}

func TestHandleMessage_DistinctSessionsAreIsolated(t *testing.T) {
	store := session.NewInMemoryStore()
	eng := New(func(o *Options) { o.Sessions = store })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			_, err := eng.HandleMessage(context.Background(), id, fmt.Sprintf("hello from %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		msgs := store.Get(fmt.Sprintf("session-%d", i))
		require.Len(t, msgs, 2)
		assert.Equal(t, fmt.Sprintf("hello from %d", i), msgs[0].Content)
	}
}
