package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetUnseenSession(t *testing.T) {
	store := NewInMemoryStore()
	assert.Empty(t, store.Get("never-seen"))
	assert.Empty(t, store.RecentWindow("never-seen", 2))
}

func TestInMemoryStore_AppendIsOrdered(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("s1", core.NewUserMessage("first"))
	store.Append("s1", core.NewAssistantMessage("second"))
	store.Append("s1", core.NewUserMessage("third"))

	msgs := store.Get("s1")
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestInMemoryStore_RecentWindow(t *testing.T) {
	store := NewInMemoryStore()
	for i := 1; i <= 5; i++ {
		store.Append("s1", core.NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	t.Run("window shorter than history", func(t *testing.T) {
		window := store.RecentWindow("s1", 2)
		require.Len(t, window, 2)
		// Oldest-first within the window.
		assert.Equal(t, "msg-4", window[0].Content)
		assert.Equal(t, "msg-5", window[1].Content)
	})

	t.Run("window larger than history", func(t *testing.T) {
		window := store.RecentWindow("s1", 10)
		require.Len(t, window, 5)
		assert.Equal(t, "msg-1", window[0].Content)
	})

	t.Run("non-positive window", func(t *testing.T) {
		assert.Empty(t, store.RecentWindow("s1", 0))
		assert.Empty(t, store.RecentWindow("s1", -1))
	})
}

func TestInMemoryStore_ReturnedSlicesAreCopies(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("s1", core.NewUserMessage("original"))

	msgs := store.Get("s1")
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", store.Get("s1")[0].Content)
}

func TestInMemoryStore_ConcurrentAppendsSameSession(t *testing.T) {
	store := NewInMemoryStore()

	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.Append("shared", core.NewUserMessage(fmt.Sprintf("w%d-%d", w, i)))
				_ = store.RecentWindow("shared", 2)
			}
		}(w)
	}
	wg.Wait()

	// No appends may be lost under concurrent read-then-append traffic.
	assert.Len(t, store.Get("shared"), writers*perWriter)
}

func TestInMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			for j := 0; j < 20; j++ {
				store.Append(id, core.NewUserMessage(fmt.Sprintf("%d-%d", i, j)))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("session-%d", i)
		msgs := store.Get(id)
		require.Len(t, msgs, 20)
		for _, m := range msgs {
			assert.Contains(t, m.Content, fmt.Sprintf("%d-", i))
		}
	}
}
