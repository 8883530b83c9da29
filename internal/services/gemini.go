package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/jsonapi"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("GEMINI_API_KEY is not configured")

// UpstreamError is a non-success answer from the generative API.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("Gemini API returned status %d", e.Status)
	}
	return fmt.Sprintf("Gemini API returned status %d: %s", e.Status, e.Detail)
}

// Turn is one entry of the conversation sent upstream.
type Turn struct {
	Role string
	Text string
}

// Generator produces reply text for a conversation whose last turn is the user's.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
	Model() string
}

type GeminiOptions struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
}

// Wire format of models/{model}:generateContent.

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type generateContentResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *promptFeedback   `json:"promptFeedback,omitempty"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiREST talks to the generateContent endpoint directly, passing the
// API key as the key query parameter.
type GeminiREST struct {
	opts GeminiOptions
}

func NewGeminiREST(opts GeminiOptions) *GeminiREST {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGeminiBaseURL
	}
	return &GeminiREST{opts: opts}
}

func (g *GeminiREST) Model() string {
	return g.opts.Model
}

func (g *GeminiREST) Generate(ctx context.Context, turns []Turn) (string, error) {
	if strings.TrimSpace(g.opts.APIKey) == "" {
		return "", ErrMissingCredential
	}
	if len(turns) == 0 {
		return "", errors.New("no turns to send")
	}

	url, err := jsonapi.URL(g.opts.BaseURL).
		Path("v1beta", "models", g.opts.Model+":generateContent").
		Query(map[string]string{"key": g.opts.APIKey}).
		String()
	if err != nil {
		return "", fmt.Errorf("building Gemini URL: %w", err)
	}

	req := generateContentRequest{
		Contents: make([]geminiContent, len(turns)),
	}
	for i, t := range turns {
		req.Contents[i] = geminiContent{Role: t.Role, Parts: []geminiPart{{Text: t.Text}}}
	}
	if g.opts.Temperature > 0 || g.opts.MaxOutputTokens > 0 {
		req.GenerationConfig = &generationConfig{
			Temperature:     g.opts.Temperature,
			MaxOutputTokens: g.opts.MaxOutputTokens,
		}
	}

	resp, err := jsonapi.Post[generateContentRequest, generateContentResponse](ctx, url, req)
	if err != nil {
		var statusErr jsonapi.InvalidStatusError
		if errors.As(err, &statusErr) {
			return "", &UpstreamError{Status: statusErr.Status, Detail: upstreamDetail(statusErr.Body)}
		}
		// The key is part of the URL; keep it out of error text.
		return "", fmt.Errorf("calling Gemini: %s", strings.ReplaceAll(err.Error(), g.opts.APIKey, "REDACTED"))
	}

	return ReplyText(resp), nil
}

// ReplyText joins the text parts of the first candidate.
func ReplyText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// upstreamDetail extracts error.message from a Gemini error body, falling
// back to the raw body.
func upstreamDetail(body string) string {
	var eb geminiErrorBody
	if err := json.Unmarshal([]byte(body), &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	body = strings.TrimSpace(body)
	if len(body) > 512 {
		body = body[:512]
	}
	return body
}
