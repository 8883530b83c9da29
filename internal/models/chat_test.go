package models

import "testing"

func TestChatRequestText(t *testing.T) {
	tests := []struct {
		name     string
		req      ChatRequest
		expected string
	}{
		{"message wins", ChatRequest{Message: " hi ", Prompt: "ignored"}, "hi"},
		{"prompt alias", ChatRequest{Prompt: "  course hours? "}, "course hours?"},
		{"blank message falls back to prompt", ChatRequest{Message: "   ", Prompt: "hello"}, "hello"},
		{"both empty", ChatRequest{}, ""},
		{"whitespace only", ChatRequest{Message: "\n\t "}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Text(); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
