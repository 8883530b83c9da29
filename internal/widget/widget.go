// Package widget is the AI Concierge chat panel: a transcript, a single
// in-flight request and the greeting/apology texts shown to visitors.
package widget

import (
	"context"
	"strings"
	"sync"

	"concierge-backend/internal/models"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	DefaultGreeting = "Hi there! Ask me about course hours, booking availability, or travel directions and I'll reply instantly."
	DefaultApology  = "Sorry, something went wrong. Please try again."
)

// Message is one transcript entry. Entries are never modified after they are added.
type Message struct {
	Role Role
	Text string
}

// Replier answers a visitor message.
type Replier interface {
	Ask(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

type Option func(*Widget)

func WithGreeting(text string) Option {
	return func(w *Widget) {
		if text = strings.TrimSpace(text); text != "" {
			w.greeting = text
		}
	}
}

func WithApology(text string) Option {
	return func(w *Widget) {
		if text = strings.TrimSpace(text); text != "" {
			w.apology = text
		}
	}
}

// WithHistory forwards earlier turns (without the greeting) on every send.
func WithHistory(enabled bool) Option {
	return func(w *Widget) {
		w.sendHistory = enabled
	}
}

func WithQuickPrompts(prompts ...string) Option {
	return func(w *Widget) {
		for _, p := range prompts {
			if p = strings.TrimSpace(p); p != "" {
				w.quickPrompts = append(w.quickPrompts, p)
			}
		}
	}
}

type Widget struct {
	replier      Replier
	greeting     string
	apology      string
	sendHistory  bool
	quickPrompts []string

	mu         sync.Mutex
	transcript []Message
	sending    bool
	open       bool
	generation int // bumped by Clear so late replies are dropped

	updates chan struct{}
}

func New(replier Replier, opts ...Option) *Widget {
	w := &Widget{
		replier:  replier,
		greeting: DefaultGreeting,
		apology:  DefaultApology,
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.transcript = []Message{{Role: RoleAssistant, Text: w.greeting}}
	return w
}

// Send submits raw visitor text. Blank text, and any text sent while another
// request is outstanding, is ignored. Otherwise the transcript gains the
// visitor's message and then exactly one assistant message: the reply, or
// the apology if anything failed.
func (w *Widget) Send(ctx context.Context, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}

	w.mu.Lock()
	if w.sending {
		w.mu.Unlock()
		return
	}
	w.sending = true
	w.open = true
	history := w.historyLocked()
	w.transcript = append(w.transcript, Message{Role: RoleUser, Text: text})
	generation := w.generation
	w.mu.Unlock()
	w.notify()

	reply, err := w.replier.Ask(ctx, text, history)
	if err != nil || strings.TrimSpace(reply) == "" {
		reply = w.apology
	}

	w.mu.Lock()
	if generation == w.generation {
		w.transcript = append(w.transcript, Message{Role: RoleAssistant, Text: reply})
	}
	w.sending = false
	w.mu.Unlock()
	w.notify()
}

// SendQuickPrompt sends the i-th configured quick prompt.
func (w *Widget) SendQuickPrompt(ctx context.Context, i int) {
	if i < 0 || i >= len(w.quickPrompts) {
		return
	}
	w.Send(ctx, w.quickPrompts[i])
}

func (w *Widget) QuickPrompts() []string {
	return append([]string(nil), w.quickPrompts...)
}

// Clear drops every entry and re-seeds the greeting. A reply still in
// flight is discarded when it arrives.
func (w *Widget) Clear() {
	w.mu.Lock()
	w.transcript = []Message{{Role: RoleAssistant, Text: w.greeting}}
	w.generation++
	w.mu.Unlock()
	w.notify()
}

// Transcript returns a copy of the current entries.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.transcript...)
}

func (w *Widget) Sending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sending
}

func (w *Widget) Open() {
	w.setOpen(true)
}

func (w *Widget) Close() {
	w.setOpen(false)
}

func (w *Widget) Toggle() {
	w.mu.Lock()
	w.open = !w.open
	w.mu.Unlock()
	w.notify()
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Updates receives a value after state changes. Bursts coalesce into one.
func (w *Widget) Updates() <-chan struct{} {
	return w.updates
}

func (w *Widget) setOpen(open bool) {
	w.mu.Lock()
	w.open = open
	w.mu.Unlock()
	w.notify()
}

func (w *Widget) notify() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

// historyLocked converts the transcript after the greeting into request
// history. Failed exchanges are left out so the apology is never presented
// upstream as something the model said.
func (w *Widget) historyLocked() []models.ChatMessage {
	if !w.sendHistory || len(w.transcript) <= 1 {
		return nil
	}
	entries := w.transcript[1:]
	var history []models.ChatMessage
	for i := 0; i < len(entries); i++ {
		m := entries[i]
		if m.Role == RoleUser && i+1 < len(entries) && entries[i+1].Role == RoleAssistant && entries[i+1].Text == w.apology {
			i++
			continue
		}
		if m.Role == RoleAssistant && m.Text == w.apology {
			continue
		}
		history = append(history, models.ChatMessage{Role: string(m.Role), Content: m.Text})
	}
	return history
}
