package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two conversation roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// CompletionRequest is the body posted to the completion API.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages,omitempty"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// CompletionResponse is the subset of the completion API response the chat
// view reads.
type CompletionResponse struct {
	Choices []CompletionChoice `json:"choices"`
}

type CompletionChoice struct {
	Message Message `json:"message"`
}

// ProxyErrorResponse is returned by the chat endpoint on any failure.
type ProxyErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
