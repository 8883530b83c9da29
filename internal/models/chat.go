package models

import "strings"

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string        `json:"message"`
	Prompt  string        `json:"prompt,omitempty"` // accepted alias for older widgets
	History []ChatMessage `json:"history,omitempty"`
}

// Text returns the trimmed user text, preferring message over prompt.
func (r ChatRequest) Text() string {
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Prompt)
}

// ChatResponse is the reply from the AI chat when the reply field is "reply".
type ChatResponse struct {
	Reply string    `json:"reply"`
	Model string    `json:"model,omitempty"`
	Error *APIError `json:"error,omitempty"`
}
