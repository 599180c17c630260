package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"famisched/internal/assistant"
	"famisched/internal/conversation"
	"famisched/internal/instructions"
	"famisched/internal/llm"
	"famisched/internal/models"
	"famisched/internal/schedule"
	"famisched/internal/voice"
)

type Handler struct {
	assistant    *assistant.Service
	conversation *conversation.Store
	schedule     *schedule.Store
	instructions *instructions.Store
	transcriber  *llm.Transcriber
	logger       *zap.Logger
}

func NewHandler(svc *assistant.Service, conv *conversation.Store, sched *schedule.Store, instr *instructions.Store, transcriber *llm.Transcriber, logger *zap.Logger) *Handler {
	return &Handler{
		assistant:    svc,
		conversation: conv,
		schedule:     sched,
		instructions: instr,
		transcriber:  transcriber,
		logger:       logger,
	}
}

type MessageRequest struct {
	Content string `json:"content"`
}

type EditRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type ToggleRequest struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

type InstructionsRequest struct {
	Content string `json:"content"`
}

type ScheduleResponse struct {
	Tasks     []models.Task `json:"tasks"`
	Pending   int           `json:"pending"`
	Completed int           `json:"completed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleMessage runs the full conversation cycle for one user submission.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.assistant.ProcessMessage(r.Context(), req.Content)
	if err != nil {
		h.respondAssistantError(w, err)
		return
	}

	h.writeJSON(w, outcome)
}

// HandleEditMessage edits an earlier user turn and regenerates from it.
func (h *Handler) HandleEditMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.assistant.EditAndRegenerate(r.Context(), req.ID, req.Content)
	if err != nil {
		if errors.Is(err, assistant.ErrMessageNotFound) {
			http.Error(w, "Message not found", http.StatusNotFound)
			return
		}
		h.respondAssistantError(w, err)
		return
	}

	h.writeJSON(w, outcome)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.conversation.Messages())
}

func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.conversation.ClearHistory()
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tasks := h.schedule.Tasks()
	resp := ScheduleResponse{Tasks: tasks}
	for _, t := range tasks {
		switch t.EffectiveStatus() {
		case models.StatusCompleted:
			resp.Completed++
		case models.StatusPending:
			resp.Pending++
		}
	}
	h.writeJSON(w, resp)
}

// HandleToggle flips one task between completed and pending without a model
// round-trip.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.schedule.Toggle(req.ID, req.Completed)
	h.writeJSON(w, h.schedule.Tasks())
}

func (h *Handler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.schedule.Reset()
	h.writeJSON(w, h.schedule.Tasks())
}

func (h *Handler) HandleInstructions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, InstructionsRequest{Content: h.instructions.Get()})

	case http.MethodPut:
		var req InstructionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		h.instructions.Set(req.Content)
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTranscribe accepts one finished browser recording as a multipart
// upload and returns the recognized text. The upload is drained through a
// recording cycle so an oversized stream is cut off early.
func (h *Handler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "音声ファイルが見つかりません")
		return
	}
	defer file.Close()

	audio, err := voice.NewRecorder().Capture(file)
	if err != nil {
		h.logger.Error("Failed to read audio upload", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "音声データの読み込みに失敗しました")
		return
	}

	text, err := h.transcriber.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		h.logger.Error("Transcription failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "音声認識に失敗しました")
		return
	}

	h.writeJSON(w, map[string]string{"text": text})
}

// respondAssistantError maps a cycle failure to HTTP. A transport failure is
// transient: the user's message is already saved, so resubmitting retries.
func (h *Handler) respondAssistantError(w http.ResponseWriter, err error) {
	h.logger.Error("Failed to process message", zap.Error(err))
	if errors.Is(err, assistant.ErrLLMUnavailable) {
		h.writeError(w, http.StatusBadGateway, "AIからの応答取得に失敗しました。もう一度お試しください。")
		return
	}
	h.writeError(w, http.StatusInternalServerError, "内部エラーが発生しました")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
