// Package plugin implements the side-effecting capability subsystem: a
// registry of named plugins, an intent detector that picks a plugin from
// the raw user message via substring matching, and a function adapter for
// registering plain Go functions as plugins.
//
// Plugins are strictly optional enrichment. Detection never fails and a
// plugin failure is absorbed by the caller, so a broken plugin can never
// block response generation.
package plugin

import (
	"context"
	"fmt"
)

// Plugin is a capability invoked with the raw user message. Each plugin
// interprets the whole message string itself; no argument extraction is
// performed before dispatch.
//
// Implementations should be safe for concurrent use and should honor ctx
// cancellation on any outbound call.
type Plugin interface {
	// Name returns the unique identifier used for registry lookup.
	Name() string

	// Invoke executes the plugin and returns its text output.
	Invoke(ctx context.Context, input string) (string, error)
}

// Error represents a failure during plugin execution. The orchestrator
// logs these and proceeds without plugin output; they are never surfaced
// to the end user.
type Error struct {
	Plugin  string `json:"plugin"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("plugin error [%s] in %s: %s", e.Code, e.Plugin, e.Message)
	}
	return fmt.Sprintf("plugin error in %s: %s", e.Plugin, e.Message)
}

// NewError creates a new Error with the specified details.
func NewError(plugin, message, code string) *Error {
	return &Error{Plugin: plugin, Message: message, Code: code}
}

// Func is a generic adapter exposing a plain Go function as a Plugin.
// It has no internal mutable state after construction and is safe for
// concurrent use.
type Func struct {
	name string
	fn   func(ctx context.Context, input string) (string, error)
}

// NewFunc constructs a Func plugin from a name and implementation.
func NewFunc(name string, fn func(ctx context.Context, input string) (string, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the unique plugin name used for registry lookup.
func (f *Func) Name() string { return f.name }

// Invoke runs the wrapped function. Non-Error failures are wrapped as
// *Error with code EXECUTION_ERROR for uniform downstream handling.
func (f *Func) Invoke(ctx context.Context, input string) (string, error) {
	out, err := f.fn(ctx, input)
	if err != nil {
		if pErr, ok := err.(*Error); ok {
			return "", pErr
		}
		return "", &Error{Plugin: f.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return out, nil
}
