package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge-backend/internal/models"
)

type fakeReplier struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages []string
	history  [][]models.ChatMessage
}

func (f *fakeReplier) Ask(_ context.Context, message string, history []models.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, message)
	f.history = append(f.history, history)
	return f.reply, f.err
}

// blockingReplier holds every request until release is closed.
type blockingReplier struct {
	started chan struct{}
	release chan struct{}
	reply   string
	calls   int
	mu      sync.Mutex
}

func newBlockingReplier(reply string) *blockingReplier {
	return &blockingReplier{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
		reply:   reply,
	}
}

func (b *blockingReplier) Ask(ctx context.Context, _ string, _ []models.ChatMessage) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
		return b.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func greeting() Message {
	return Message{Role: RoleAssistant, Text: DefaultGreeting}
}

func TestNew_SeedsGreeting(t *testing.T) {
	w := New(&fakeReplier{})

	expected := []Message{greeting()}
	if diff := cmp.Diff(expected, w.Transcript()); diff != "" {
		t.Error(diff)
	}
	if w.Sending() {
		t.Error("expected a new widget not to be sending")
	}
}

func TestSend_AppendsUserAndAssistant(t *testing.T) {
	r := &fakeReplier{reply: "Hello"}
	w := New(r)

	w.Send(context.Background(), "  When do courses start?  ")

	expected := []Message{
		greeting(),
		{Role: RoleUser, Text: "When do courses start?"},
		{Role: RoleAssistant, Text: "Hello"},
	}
	if diff := cmp.Diff(expected, w.Transcript()); diff != "" {
		t.Error(diff)
	}
	if r.calls != 1 {
		t.Errorf("expected 1 call, got %d", r.calls)
	}
	if !w.IsOpen() {
		t.Error("sending should open the panel")
	}
}

func TestSend_FailuresBecomeApology(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"network error", "", errors.New("connection refused")},
		{"upstream error text is not shown", "Service error: API key not valid", errors.New("status 400")},
		{"empty reply", "   ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(&fakeReplier{reply: tc.reply, err: tc.err})

			w.Send(context.Background(), "hi")

			transcript := w.Transcript()
			if len(transcript) != 3 {
				t.Fatalf("expected 3 entries, got %d", len(transcript))
			}
			last := transcript[2]
			if last.Role != RoleAssistant || last.Text != DefaultApology {
				t.Errorf("expected apology, got %+v", last)
			}
		})
	}
}

func TestSend_BlankIsNoOp(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		r := &fakeReplier{reply: "should not be used"}
		w := New(r)

		w.Send(context.Background(), raw)

		if r.calls != 0 {
			t.Errorf("%q: expected no network call, got %d", raw, r.calls)
		}
		if diff := cmp.Diff([]Message{greeting()}, w.Transcript()); diff != "" {
			t.Errorf("%q: %s", raw, diff)
		}
	}
}

func TestSend_IgnoredWhileInFlight(t *testing.T) {
	r := newBlockingReplier("first reply")
	w := New(r)

	done := make(chan struct{})
	go func() {
		w.Send(context.Background(), "first")
		close(done)
	}()

	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never started")
	}
	if !w.Sending() {
		t.Fatal("expected widget to be sending")
	}

	before := w.Transcript()
	w.Send(context.Background(), "second")
	if diff := cmp.Diff(before, w.Transcript()); diff != "" {
		t.Errorf("second submission changed the transcript: %s", diff)
	}

	close(r.release)
	<-done

	expected := []Message{
		greeting(),
		{Role: RoleUser, Text: "first"},
		{Role: RoleAssistant, Text: "first reply"},
	}
	if diff := cmp.Diff(expected, w.Transcript()); diff != "" {
		t.Error(diff)
	}
	if r.calls != 1 {
		t.Errorf("expected 1 call, got %d", r.calls)
	}
	if w.Sending() {
		t.Error("expected sending to be cleared")
	}

	// The widget accepts input again once the first request resolved.
	w.Send(context.Background(), "third")
	if got := len(w.Transcript()); got != 5 {
		t.Errorf("expected 5 entries after a later send, got %d", got)
	}
}

func TestSend_CancelledContextBecomesApology(t *testing.T) {
	r := newBlockingReplier("never")
	w := New(r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Send(ctx, "hi")

	transcript := w.Transcript()
	if transcript[len(transcript)-1].Text != DefaultApology {
		t.Errorf("expected apology, got %q", transcript[len(transcript)-1].Text)
	}
}

func TestClear_ReseedsGreeting(t *testing.T) {
	w := New(&fakeReplier{reply: "Hello"})
	w.Send(context.Background(), "one")
	w.Send(context.Background(), "two")

	w.Clear()

	if diff := cmp.Diff([]Message{greeting()}, w.Transcript()); diff != "" {
		t.Error(diff)
	}

	w.Clear()
	if got := len(w.Transcript()); got != 1 {
		t.Errorf("expected exactly one greeting after clearing twice, got %d", got)
	}
}

func TestClear_DropsReplyInFlight(t *testing.T) {
	r := newBlockingReplier("late reply")
	w := New(r)

	done := make(chan struct{})
	go func() {
		w.Send(context.Background(), "question")
		close(done)
	}()
	<-r.started

	w.Clear()
	close(r.release)
	<-done

	if diff := cmp.Diff([]Message{greeting()}, w.Transcript()); diff != "" {
		t.Error(diff)
	}
	if w.Sending() {
		t.Error("expected sending to be cleared")
	}
}

func TestHistory(t *testing.T) {
	r := &fakeReplier{reply: "answer"}
	w := New(r, WithHistory(true))

	w.Send(context.Background(), "first")
	w.Send(context.Background(), "second")

	if r.history[0] != nil {
		t.Errorf("first send should carry no history, got %v", r.history[0])
	}
	expected := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
	}
	if diff := cmp.Diff(expected, r.history[1]); diff != "" {
		t.Error(diff)
	}
}

// sequenceReplier returns one canned result per call.
type sequenceReplier struct {
	results []error
	history [][]models.ChatMessage
}

func (s *sequenceReplier) Ask(_ context.Context, message string, history []models.ChatMessage) (string, error) {
	s.history = append(s.history, history)
	err := s.results[len(s.history)-1]
	if err != nil {
		return "", err
	}
	return "answer to " + message, nil
}

func TestHistory_SkipsFailedExchanges(t *testing.T) {
	r := &sequenceReplier{results: []error{nil, errors.New("upstream down"), nil}}
	w := New(r, WithHistory(true))

	w.Send(context.Background(), "first")
	w.Send(context.Background(), "second")
	w.Send(context.Background(), "third")

	transcript := w.Transcript()
	require.Len(t, transcript, 7)
	assert.Equal(t, DefaultApology, transcript[4].Text, "the visitor still sees the apology")

	expected := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer to first"},
	}
	if diff := cmp.Diff(expected, r.history[2]); diff != "" {
		t.Error(diff)
	}
}

func TestHistory_DisabledByDefault(t *testing.T) {
	r := &fakeReplier{reply: "answer"}
	w := New(r)

	w.Send(context.Background(), "first")
	w.Send(context.Background(), "second")

	for i, h := range r.history {
		if h != nil {
			t.Errorf("send %d: expected no history, got %v", i, h)
		}
	}
}

func TestQuickPrompts(t *testing.T) {
	r := &fakeReplier{reply: "ok"}
	w := New(r, WithQuickPrompts("Course hours", "  ", "Booking availability"))

	if diff := cmp.Diff([]string{"Course hours", "Booking availability"}, w.QuickPrompts()); diff != "" {
		t.Error(diff)
	}

	w.SendQuickPrompt(context.Background(), 1)
	w.SendQuickPrompt(context.Background(), 5)
	w.SendQuickPrompt(context.Background(), -1)

	if diff := cmp.Diff([]string{"Booking availability"}, r.messages); diff != "" {
		t.Error(diff)
	}
}

func TestOptions(t *testing.T) {
	w := New(&fakeReplier{err: errors.New("boom")}, WithGreeting("Welcome!"), WithApology("Oops."))

	w.Send(context.Background(), "hi")

	expected := []Message{
		{Role: RoleAssistant, Text: "Welcome!"},
		{Role: RoleUser, Text: "hi"},
		{Role: RoleAssistant, Text: "Oops."},
	}
	if diff := cmp.Diff(expected, w.Transcript()); diff != "" {
		t.Error(diff)
	}
}

func TestPanelVisibility(t *testing.T) {
	w := New(&fakeReplier{})

	if w.IsOpen() {
		t.Fatal("panel starts closed")
	}
	w.Toggle()
	if !w.IsOpen() {
		t.Error("toggle should open")
	}
	w.Close()
	if w.IsOpen() {
		t.Error("close should close")
	}
	w.Open()
	if !w.IsOpen() {
		t.Error("open should open")
	}
	if got := len(w.Transcript()); got != 1 {
		t.Errorf("visibility must not touch the transcript, got %d entries", got)
	}
}

func TestUpdates(t *testing.T) {
	w := New(&fakeReplier{reply: "ok"})

	w.Send(context.Background(), "hi")

	select {
	case <-w.Updates():
	default:
		t.Fatal("expected an update after sending")
	}
}

func TestTranscript_IsACopy(t *testing.T) {
	w := New(&fakeReplier{})

	got := w.Transcript()
	got[0].Text = "mutated"

	if w.Transcript()[0].Text != DefaultGreeting {
		t.Error("transcript entries must not be mutable from outside")
	}
}
