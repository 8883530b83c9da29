package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"concierge-backend/internal/logging"
)

type CLI struct {
	Chat    ChatCommand    `cmd:"chat" help:"Chat with the AI Concierge in the terminal."`
	Ask     AskCommand     `cmd:"ask" help:"Send one message to the AI Concierge and print the reply."`
	Models  ModelsCommand  `cmd:"models" help:"List Gemini models that support generateContent."`
	Version VersionCommand `cmd:"version" help:"Print the version of the concierge CLI."`
}

func main() {
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := logging.New("error", "production", os.Stderr)
		log.Error().Err(err).Msg("error")
		os.Exit(1)
	}
}
