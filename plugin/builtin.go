package plugin

import (
	"context"
	"fmt"
	"time"
)

// DefaultTriggers is the default trigger table. Order matters: the first
// matching phrase wins.
var DefaultTriggers = []Trigger{
	{Phrase: "weather", Plugin: "weather"},
	{Phrase: "time", Plugin: "clock"},
}

// NewWeatherPlugin returns a deterministic weather capability. It stands
// in for a real weather API integration; the message is passed through
// verbatim because no location extraction is performed before dispatch.
func NewWeatherPlugin() *Func {
	return NewFunc("weather", func(_ context.Context, input string) (string, error) {
		return fmt.Sprintf("Current conditions for %q: 21.5°C, partly cloudy, humidity 60%%.", input), nil
	})
}

// NewClockPlugin returns the current server time. The clock function is
// injectable so tests stay deterministic.
func NewClockPlugin(now func() time.Time) *Func {
	if now == nil {
		now = time.Now
	}
	return NewFunc("clock", func(_ context.Context, _ string) (string, error) {
		return fmt.Sprintf("The current server time is %s.", now().Format(time.RFC1123)), nil
	})
}

// DefaultRegistry returns a registry preloaded with the built-in plugins
// matching DefaultTriggers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewWeatherPlugin())
	r.Register(NewClockPlugin(nil))
	return r
}
