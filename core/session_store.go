package core

// SessionStore holds the ordered message history for each session key.
// Sessions are created lazily on first append and live for the lifetime of
// the process; nothing is persisted.
//
// Contract:
//   - Get returns a defensive copy (callers may not mutate internal state)
//   - Append never fails; it creates the session if absent
//   - RecentWindow returns the last n messages oldest-first, fewer if the
//     history is shorter
//   - Mutations for a single session key are serialized so that two
//     concurrent requests never lose an append; distinct keys never block
//     each other
type SessionStore interface {
	Get(sessionID string) []Message
	Append(sessionID string, msg Message)
	RecentWindow(sessionID string, n int) []Message
}
