package core

// Role identifies the author of a conversational message.
type Role string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the model (or a fallback
	// string standing in for it).
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a session's conversation
// history. Messages are immutable once created; ordering within a session
// is insertion order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage constructs a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage constructs an assistant-authored message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
