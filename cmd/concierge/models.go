package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"concierge-backend/internal/services"
)

type ModelsCommand struct {
	GeminiAPIKey  string `help:"The Gemini API key." env:"GEMINI_API_KEY" required:""`
	GeminiBaseURL string `help:"The Gemini API base URL." env:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
}

func (c ModelsCommand) Run(ctx context.Context) (err error) {
	sdk, err := services.NewGeminiSDK(ctx, services.GeminiOptions{
		APIKey:  c.GeminiAPIKey,
		BaseURL: c.GeminiBaseURL,
	})
	if err != nil {
		return err
	}
	defer sdk.Close()

	models, err := sdk.ListModels(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tINPUT TOKENS\tOUTPUT TOKENS")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", m.Name, m.DisplayName, m.InputTokenLimit, m.OutputTokenLimit)
	}
	return tw.Flush()
}
