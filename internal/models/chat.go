package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// ChatResult is returned for every chat request. Exactly one of Message or
// Error is set and Success mirrors which one.
type ChatResult struct {
	Message string `json:"message,omitempty"`
	Role    string `json:"role,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func SuccessResult(message string) ChatResult {
	return ChatResult{Message: message, Role: RoleAssistant, Success: true}
}

func FailureResult(errMsg string) ChatResult {
	return ChatResult{Success: false, Error: errMsg}
}
