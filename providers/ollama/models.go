package ollama

// ChatRequest is the body of a POST /api/chat call.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// Stream is always sent, even when false: Ollama streams by default.
	Stream bool `json:"stream"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles
const (
	RoleUser = "user"
)

// NewChatRequest builds the single-user-message, non-streaming request sent
// for every prompt.
func NewChatRequest(model, prompt string) ChatRequest {
	return ChatRequest{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Stream:   false,
	}
}
