package main

import (
	"context"
	"errors"
	"fmt"

	"concierge-backend/internal/client"
	"concierge-backend/internal/widget"
)

type AskCommand struct {
	ServerURL  string `help:"The chat endpoint of the concierge server." env:"CONCIERGE_URL" default:"http://localhost:8080/api/chat"`
	ReplyField string `help:"The response field that carries the reply." env:"REPLY_FIELD" default:"reply"`
	Message    string `arg:"" help:"The message to send."`
}

var errNoReply = errors.New("the concierge could not answer")

// Run goes through the widget so the CLI shows exactly what a visitor would.
func (c AskCommand) Run(ctx context.Context) (err error) {
	w := widget.New(client.New(c.ServerURL, client.WithReplyField(c.ReplyField)))
	w.Send(ctx, c.Message)

	transcript := w.Transcript()
	if len(transcript) < 3 {
		return errors.New("message is empty")
	}
	reply := transcript[len(transcript)-1].Text
	fmt.Println(reply)
	if reply == widget.DefaultApology {
		return errNoReply
	}
	return nil
}
