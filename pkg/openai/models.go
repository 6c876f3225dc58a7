package openai

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a chat-completions call
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	N        int       `json:"n"`
}

// ChatResponse is the subset of the chat-completions response we read
type ChatResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice is one candidate completion
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// APIError is the error object returned by the service
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// errorEnvelope wraps APIError in non-2xx responses
type errorEnvelope struct {
	Error *APIError `json:"error"`
}
