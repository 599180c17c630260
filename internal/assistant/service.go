// Package assistant drives one request/response cycle: append the user turn,
// build the prompt, call the model, interpret the reply, and commit the
// results to the schedule and the transcript.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"famisched/internal/conversation"
	"famisched/internal/instructions"
	"famisched/internal/interpret"
	"famisched/internal/models"
	"famisched/internal/prompt"
	"famisched/internal/schedule"
)

// contextTurns is how many recent turns are sent to the model verbatim;
// older turns reach it only through the conversation summary.
const contextTurns = 5

var (
	// ErrLLMUnavailable wraps any transport-level failure of the completion
	// call: network error, non-2xx status, or timeout. The user's message is
	// already in history, so resubmitting retries cleanly.
	ErrLLMUnavailable = errors.New("assistant: model unavailable")

	ErrMessageNotFound = errors.New("assistant: message not found")
)

// Completer is the external LLM collaborator.
type Completer interface {
	Chat(ctx context.Context, systemPrompt string, turns []models.ChatMessage) (string, error)
}

// Outcome is what one completed cycle produced. Update is nil when the model
// just chatted; Applied is true only when a non-empty task list replaced the
// schedule.
type Outcome struct {
	UserMessage      models.ChatMessage     `json:"userMessage"`
	AssistantMessage models.ChatMessage     `json:"assistantMessage"`
	Update           *models.ScheduleUpdate `json:"update,omitempty"`
	Applied          bool                   `json:"applied"`
	DisplayText      string                 `json:"displayText"`
}

type Service struct {
	completer    Completer
	conversation *conversation.Store
	schedule     *schedule.Store
	instructions *instructions.Store
	prompts      *prompt.Builder
	logger       *zap.Logger
	now          func() time.Time
}

func New(completer Completer, conv *conversation.Store, sched *schedule.Store, instr *instructions.Store, prompts *prompt.Builder, logger *zap.Logger) *Service {
	return &Service{
		completer:    completer,
		conversation: conv,
		schedule:     sched,
		instructions: instr,
		prompts:      prompts,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessMessage runs the full cycle for a fresh user message. On transport
// failure the user message stays in history and no assistant message is
// appended for the turn.
func (s *Service) ProcessMessage(ctx context.Context, content string) (*Outcome, error) {
	userMsg := s.conversation.AddMessage(models.RoleUser, content)
	return s.respond(ctx, userMsg)
}

// EditAndRegenerate rewrites an earlier message, discards everything after
// it, and reruns the cycle from that point. The truncated replies were
// conditioned on the old content and are stale context either way.
func (s *Service) EditAndRegenerate(ctx context.Context, id, newContent string) (*Outcome, error) {
	edited := s.conversation.EditAndRegenerate(id, newContent)
	if edited == nil {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return s.respond(ctx, *edited)
}

func (s *Service) respond(ctx context.Context, userMsg models.ChatMessage) (*Outcome, error) {
	// One clock reading per request; every prompt block sees the same "now".
	now := s.now()

	systemPrompt := s.prompts.SystemPrompt(
		now,
		s.instructions.Get(),
		s.schedule.Completed(),
		s.schedule.Pending(),
		s.conversation.Summary(),
	)
	window := s.conversation.Recent(contextTurns)

	s.logger.Debug("calling model",
		zap.Int("promptTokens", s.prompts.CountTokens(systemPrompt)),
		zap.Int("windowTurns", len(window)))

	raw, err := s.completer.Chat(ctx, systemPrompt, window)
	if err != nil {
		s.logger.Error("model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	outcome := &Outcome{
		UserMessage: userMsg,
		DisplayText: interpret.DisplayText(raw),
	}

	switch result := interpret.Interpret(raw); result.Kind {
	case interpret.OK:
		outcome.Update = result.Update
		if len(result.Update.Tasks) > 0 {
			// The model returns the full replacement list, not a diff.
			s.schedule.Replace(result.Update.Tasks)
			outcome.Applied = true
		}
	case interpret.NotJSON:
		// Plain chat; expected and fine.
	case interpret.InvalidShape:
		s.logger.Debug("model reply parsed as JSON but not as a schedule update")
	}

	outcome.AssistantMessage = s.conversation.AddMessage(models.RoleAssistant, raw)
	return outcome, nil
}
