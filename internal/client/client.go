package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/jsonapi"

	"concierge-backend/internal/models"
)

var (
	// ErrChatFailed means the proxy answered with an error object.
	ErrChatFailed = errors.New("chat service reported an error")
	// ErrEmptyReply means the proxy answered without reply text.
	ErrEmptyReply = errors.New("chat service returned an empty reply")
)

func New(endpoint string, opts ...Option) Client {
	c := Client{
		endpoint:   endpoint,
		replyField: "reply",
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type Option func(*Client)

// WithReplyField reads the reply from a field other than "reply".
func WithReplyField(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.replyField = name
		}
	}
}

// Client posts visitor messages to the concierge proxy.
type Client struct {
	endpoint   string
	replyField string
}

func (c Client) Ask(ctx context.Context, message string, history []models.ChatMessage) (reply string, err error) {
	url, err := jsonapi.URL(c.endpoint).String()
	if err != nil {
		return "", fmt.Errorf("invalid chat endpoint: %w", err)
	}

	resp, err := jsonapi.Post[models.ChatRequest, map[string]any](ctx, url, models.ChatRequest{
		Message: message,
		History: history,
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if e, ok := resp["error"]; ok && e != nil {
		return "", ErrChatFailed
	}

	reply, _ = resp[c.replyField].(string)
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
