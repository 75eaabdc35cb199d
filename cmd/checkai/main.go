// Command checkai sends one prompt to the configured completion API to
// verify the key and model.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/sashabaranov/go-openai"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	client := services.NewGroqClient(cfg)
	if client == nil {
		slog.Error("GROQ_API_KEY is missing")
		os.Exit(1)
	}
	slog.Info("GROQ_API_KEY present", "prefix", cfg.GroqAPIKey[:min(4, len(cfg.GroqAPIKey))]+"...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    cfg.GroqModel,
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Say Hello"}},
	})
	if err != nil {
		slog.Error("completion call failed", "model", cfg.GroqModel, "error", err)
		os.Exit(1)
	}
	if len(resp.Choices) == 0 {
		slog.Error("completion returned no choices", "model", cfg.GroqModel)
		os.Exit(1)
	}
	fmt.Println(resp.Choices[0].Message.Content)
}
