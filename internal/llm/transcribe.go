package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Audio processing is slower than chat, so transcription gets a longer bound.
const transcribeTimeout = 60 * time.Second

// Transcriber posts recorded audio to an OpenAI-compatible
// /audio/transcriptions endpoint. langchaingo has no audio surface, so this
// is a plain HTTP client.
type Transcriber struct {
	baseURL  string
	token    string
	model    string
	language string
	client   *http.Client
}

func NewTranscriber(baseURL, token, model, language string) *Transcriber {
	return &Transcriber{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		model:    model,
		language: language,
		client:   &http.Client{Timeout: transcribeTimeout},
	}
}

// Transcribe uploads one finished recording and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	for field, value := range map[string]string{
		"model":           t.model,
		"language":        t.language,
		"response_format": "json",
	} {
		if err := mw.WriteField(field, value); err != nil {
			return "", fmt.Errorf("build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Some servers return bare text regardless of response_format.
		return strings.TrimSpace(string(raw)), nil
	}
	return parsed.Text, nil
}
