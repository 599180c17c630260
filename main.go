package main

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"famisched/internal/config"
)

// Quick connectivity probe for the configured model endpoint. The real
// server lives in cmd/server.
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()
	llm, err := openai.New(openai.WithToken(cfg.LLMToken), openai.WithBaseURL(cfg.LLMBaseURL), openai.WithModel(cfg.LLMModel))
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}
	prompt := "今日の15:00に子供のお迎えがあります。一言で確認してください。"
	completion, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	if err != nil {
		logger.Fatal("failed to generate completion", zap.Error(err))
	}
	fmt.Println(completion)
}
