package services

import (
	"context"
	"strings"

	"concierge-backend/internal/models"
)

// FallbackReply is shown when the upstream answered but produced no text.
const FallbackReply = "Sorry, I could not generate a response right now."

// ErrorReply is the only text a visitor sees when a request fails.
const ErrorReply = "Sorry, something went wrong. Please try again."

const DefaultPersona = `You are the AI Concierge for WBC Training, a company that delivers leadership, governance,
and operational excellence training for energy, infrastructure, and life-science sectors.
WBC Training has been developing business capabilities since 2005 and specialises in training
for complex operations and capital projects.

Answer clearly and helpfully, in a warm, conversational and professional tone, and where relevant point to:
- "Online & Classroom Courses" (3-5 day courses in Leadership, Procurement and Strategy)
- "Online Workshops" (1-2 hour workshops)
- "In-House Training"
- "Premium offerings and flagship programmes" (Capital Portfolio Leadership, Operational Excellence Lab, Energy Transition Studio)

If asked about bookings, remind users they can email info@wbctraining.com or call +44 7540 269 827.
The office is in Epsom, U.K.`

// Concierge wraps visitor messages in the persona prompt and forwards them.
type Concierge struct {
	generator    Generator
	persona      string
	historyLimit int
}

func NewConcierge(generator Generator, persona string, historyLimit int) *Concierge {
	return &Concierge{
		generator:    generator,
		persona:      strings.TrimSpace(persona),
		historyLimit: historyLimit,
	}
}

func (c *Concierge) Model() string {
	return c.generator.Model()
}

// Reply returns the generated answer to message. An empty upstream answer is
// replaced with FallbackReply.
func (c *Concierge) Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	turns := historyTurns(history, c.historyLimit)
	turns = append(turns, Turn{Role: RoleUser, Text: BuildPrompt(c.persona, message)})

	reply, err := c.generator.Generate(ctx, turns)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// BuildPrompt prepends the persona to the visitor's message.
func BuildPrompt(persona, message string) string {
	message = strings.TrimSpace(message)
	if persona == "" {
		return message
	}
	return persona + "\n\nUser: " + message
}

// historyTurns converts browser history into Gemini turns. Blank and unknown
// entries are dropped, at most limit entries are kept, and the result never
// starts with a model turn.
func historyTurns(history []models.ChatMessage, limit int) []Turn {
	if limit <= 0 {
		return nil
	}

	var turns []Turn
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case "user":
			turns = append(turns, Turn{Role: RoleUser, Text: text})
		case "assistant", "model":
			turns = append(turns, Turn{Role: RoleModel, Text: text})
		}
	}

	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	for len(turns) > 0 && turns[0].Role == RoleModel {
		turns = turns[1:]
	}
	return turns
}
