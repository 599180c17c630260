package main

import (
	"net/http"

	"go.uber.org/zap"

	"famisched/internal/api"
	"famisched/internal/assistant"
	"famisched/internal/config"
	"famisched/internal/conversation"
	"famisched/internal/instructions"
	"famisched/internal/kv"
	"famisched/internal/llm"
	"famisched/internal/models"
	"famisched/internal/prompt"
	"famisched/internal/schedule"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	store, err := kv.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to open storage",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer store.Close()

	seed := []models.Task{}
	if cfg.SeedSchedule {
		seed = schedule.DefaultSeed
	}
	scheduleStore := schedule.New(store, seed, logger)
	conversationStore := conversation.New(store, logger)
	instructionsStore := instructions.New(store, instructions.DefaultInstructions)

	completer, err := llm.New(cfg.LLMBaseURL, cfg.LLMToken, cfg.LLMModel)
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}
	transcriber := llm.NewTranscriber(cfg.LLMBaseURL, cfg.LLMToken, cfg.WhisperModel, cfg.WhisperLanguage)

	svc := assistant.New(completer, conversationStore, scheduleStore, instructionsStore, prompt.New(logger), logger)

	handler := api.NewHandler(svc, conversationStore, scheduleStore, instructionsStore, transcriber, logger)

	http.HandleFunc("/api/message", handler.HandleMessage)
	http.HandleFunc("/api/messages", handler.GetMessages)
	http.HandleFunc("/api/messages/edit", handler.HandleEditMessage)
	http.HandleFunc("/api/messages/clear", handler.ClearMessages)
	http.HandleFunc("/api/schedule", handler.GetSchedule)
	http.HandleFunc("/api/schedule/toggle", handler.HandleToggle)
	http.HandleFunc("/api/schedule/reset", handler.ResetSchedule)
	http.HandleFunc("/api/instructions", handler.HandleInstructions)
	http.HandleFunc("/api/transcribe", handler.HandleTranscribe)

	// Serve the single-page UI
	fs := http.FileServer(http.Dir(cfg.WebDir))
	http.Handle("/", fs)

	logger.Info("Starting server", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
