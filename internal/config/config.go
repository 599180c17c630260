package config

import (
	"os"
	"strings"
)

// Config keeps runtime settings for the server.
type Config struct {
	ListenAddr string
	DBPath     string
	WebDir     string

	LLMBaseURL string
	LLMToken   string
	LLMModel   string

	WhisperModel    string
	WhisperLanguage string

	// SeedSchedule controls whether a fresh database starts with the demo
	// schedule or empty.
	SeedSchedule bool
}

// Load reads configuration from environment variables with sane defaults.
// The defaults target a local OpenAI-compatible server, so the app runs
// without any environment at all.
func Load() Config {
	cfg := Config{
		ListenAddr:      envOr("LISTEN_ADDR", ":8100"),
		DBPath:          envOr("DB_PATH", "famisched.db"),
		WebDir:          envOr("WEB_DIR", "web"),
		LLMBaseURL:      envOr("LLM_BASE_URL", "http://localhost:11434/v1/"),
		LLMToken:        envOr("OPENAI_API_KEY", "fake"),
		LLMModel:        envOr("LLM_MODEL", "llama3.1:8b"),
		WhisperModel:    envOr("WHISPER_MODEL", "whisper-1"),
		WhisperLanguage: envOr("WHISPER_LANGUAGE", "ja"),
		SeedSchedule:    envOr("SEED_SCHEDULE", "true") != "false",
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
