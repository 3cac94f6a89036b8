package plugin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Plugin = (*Func)(nil)

// -------------------- Detector Tests --------------------

func TestDetector_Detect(t *testing.T) {
	detector := NewDetector(DefaultTriggers)

	tests := []struct {
		name    string
		message string
		want    string
		wantHit bool
	}{
		{"exact phrase", "what is the weather today?", "weather", true},
		{"upper case", "WHAT IS THE WEATHER?", "weather", true},
		{"mixed case", "How is the WeAtHeR in Berlin", "weather", true},
		{"phrase embedded in word", "whats the weathercast", "weather", true},
		{"second trigger", "what time is it?", "clock", true},
		{"first match wins", "what time does the weather change?", "weather", true},
		{"no trigger", "tell me a joke", "", false},
		{"empty message", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detector.Detect(tt.message)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetector_OrderedTriggersFirstMatchWins(t *testing.T) {
	detector := NewDetector([]Trigger{
		{Phrase: "time", Plugin: "clock"},
		{Phrase: "weather", Plugin: "weather"},
	})

	// Both phrases present; trigger order decides.
	got, ok := detector.Detect("what time does the weather change?")
	require.True(t, ok)
	assert.Equal(t, "clock", got)
}

func TestDetector_EmptyTriggerPhraseNeverMatches(t *testing.T) {
	detector := NewDetector([]Trigger{{Phrase: "", Plugin: "ghost"}})
	_, ok := detector.Detect("anything at all")
	assert.False(t, ok)
}

// -------------------- Registry Tests --------------------

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewWeatherPlugin())

	p, ok := r.Get("weather")
	require.True(t, ok)
	assert.Equal(t, "weather", p.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_Names(t *testing.T) {
	r := DefaultRegistry()
	assert.ElementsMatch(t, []string{"weather", "clock"}, r.Names())
}

// -------------------- Func Plugin Tests --------------------

func TestFunc_Success(t *testing.T) {
	p := NewFunc("echo", func(_ context.Context, input string) (string, error) {
		return "echo: " + input, nil
	})

	out, err := p.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", out)
}

func TestFunc_WrapsPlainErrors(t *testing.T) {
	p := NewFunc("broken", func(_ context.Context, _ string) (string, error) {
		return "", errors.New("boom")
	})

	_, err := p.Invoke(context.Background(), "x")
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "broken", pErr.Plugin)
	assert.Equal(t, "EXECUTION_ERROR", pErr.Code)
}

func TestFunc_ForwardsTypedErrors(t *testing.T) {
	custom := NewError("custom", "no capacity", "RATE_LIMITED")
	p := NewFunc("custom", func(_ context.Context, _ string) (string, error) {
		return "", custom
	})

	_, err := p.Invoke(context.Background(), "x")
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "RATE_LIMITED", pErr.Code)
}

// -------------------- Built-in Plugin Tests --------------------

func TestWeatherPlugin_EchoesRawMessage(t *testing.T) {
	out, err := NewWeatherPlugin().Invoke(context.Background(), "weather in Berlin?")
	require.NoError(t, err)
	// The whole raw message is interpolated; no argument extraction happens.
	assert.Contains(t, out, "weather in Berlin?")
}

func TestClockPlugin_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	out, err := NewClockPlugin(func() time.Time { return fixed }).Invoke(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, out, fixed.Format(time.RFC1123))
}
