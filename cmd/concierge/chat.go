package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"concierge-backend/internal/client"
	"concierge-backend/internal/tui"
	"concierge-backend/internal/widget"
)

type ChatCommand struct {
	ServerURL    string   `help:"The chat endpoint of the concierge server." env:"CONCIERGE_URL" default:"http://localhost:8080/api/chat"`
	ReplyField   string   `help:"The response field that carries the reply." env:"REPLY_FIELD" default:"reply"`
	History      bool     `help:"Send earlier turns with every message." env:"CONCIERGE_HISTORY" default:"false"`
	QuickPrompts []string `help:"Suggested questions, selectable with alt+1..9." default:"Course hours,Booking availability,Travel directions"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	w := widget.New(
		client.New(c.ServerURL, client.WithReplyField(c.ReplyField)),
		widget.WithHistory(c.History),
		widget.WithQuickPrompts(c.QuickPrompts...),
	)

	p := tea.NewProgram(tui.New(ctx, w), tea.WithAltScreen())
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}
