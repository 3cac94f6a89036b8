// Package core contains the domain contracts shared across docuchat:
// conversational messages, retrieved document chunks and the store /
// retriever interfaces consumed by the orchestration engine. Centralizing
// the contracts here keeps higher level packages (engine, server) from
// depending on concrete implementations; only the wiring layer in cmd
// decides which implementation to instantiate.
package core
