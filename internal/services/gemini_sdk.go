package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiSDK uses the official Go client and a fresh chat session per request.
type GeminiSDK struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiSDK(ctx context.Context, opts GeminiOptions) (*GeminiSDK, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingCredential
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" && opts.BaseURL != DefaultGeminiBaseURL {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}

	return &GeminiSDK{
		client:    client,
		model:     model,
		modelName: opts.Model,
	}, nil
}

func (s *GeminiSDK) Close() error {
	return s.client.Close()
}

func (s *GeminiSDK) Model() string {
	return s.modelName
}

func (s *GeminiSDK) Generate(ctx context.Context, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("no turns to send")
	}

	cs := s.model.StartChat()
	for _, t := range turns[:len(turns)-1] {
		cs.History = append(cs.History, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(turns[len(turns)-1].Text))
	if err != nil {
		// Safety blocks carry no text; the caller substitutes its fallback.
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", nil
		}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.Code, Detail: apiErr.Message}
		}
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return sdkReplyText(resp), nil
}

// ModelInfo describes a model that supports generateContent.
type ModelInfo struct {
	Name             string
	DisplayName      string
	InputTokenLimit  int32
	OutputTokenLimit int32
}

// ListModels returns the models this key can call generateContent on.
func (s *GeminiSDK) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	it := s.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}
		if !slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		models = append(models, ModelInfo{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			InputTokenLimit:  m.InputTokenLimit,
			OutputTokenLimit: m.OutputTokenLimit,
		})
	}
	return models, nil
}

func sdkReplyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
