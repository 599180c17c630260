// Package interpret turns raw model text into a validated schedule update.
// Model output is untrusted free text: it may be a bare JSON object, a fenced
// code block inside prose, or no JSON at all. Nothing here mutates state and
// nothing here throws — a reply that is not a schedule update is a normal
// outcome, not an error.
package interpret

import (
	"encoding/json"
	"strings"

	"github.com/dlclark/regexp2"

	"famisched/internal/models"
)

// Same pattern the web client uses: an optionally json-tagged fenced block,
// lazy so surrounding prose after the closing fence is ignored.
var fenceRe = regexp2.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```", regexp2.None)

type Kind int

const (
	// OK means the text carried a well-shaped schedule update.
	OK Kind = iota
	// NotJSON means no parseable JSON was found; the reply is plain chat.
	NotJSON
	// InvalidShape means JSON parsed but is not a schedule update (tasks
	// missing or not an array, message not a string).
	InvalidShape
)

type Result struct {
	Kind   Kind
	Update *models.ScheduleUpdate
}

// Interpret extracts and validates a schedule update from raw model text.
func Interpret(raw string) Result {
	candidate := extractCandidate(raw)
	if candidate == "" {
		return Result{Kind: NotJSON}
	}

	// Decode loosely first so a present-but-wrong-typed field is reported as
	// a shape problem rather than silently zeroed.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return Result{Kind: NotJSON}
	}

	rawTasks, ok := probe["tasks"]
	if !ok {
		return Result{Kind: InvalidShape}
	}
	var tasks []models.Task
	if err := json.Unmarshal(rawTasks, &tasks); err != nil {
		return Result{Kind: InvalidShape}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	update := models.ScheduleUpdate{Tasks: tasks}
	if rawMsg, ok := probe["message"]; ok {
		if err := json.Unmarshal(rawMsg, &update.Message); err != nil {
			return Result{Kind: InvalidShape}
		}
	}
	if rawAffected, ok := probe["affectedTasks"]; ok {
		// Optional; a wrong type here degrades to absent rather than
		// discarding an otherwise valid update.
		_ = json.Unmarshal(rawAffected, &update.AffectedTasks)
	}
	if rawReasoning, ok := probe["reasoning"]; ok {
		_ = json.Unmarshal(rawReasoning, &update.Reasoning)
	}

	return Result{Kind: OK, Update: &update}
}

// DisplayText is the transcript-facing variant: it pulls the human message
// (and reasoning, when present) out of an embedded update, and hands back the
// raw text unchanged whenever that fails, so the user always sees something.
func DisplayText(raw string) string {
	candidate := extractCandidate(raw)
	if candidate == "" {
		return raw
	}

	var parsed struct {
		Message   string `json:"message"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil || parsed.Message == "" {
		return raw
	}

	if parsed.Reasoning != "" {
		return parsed.Message + "\n\n" + parsed.Reasoning
	}
	return parsed.Message
}

func extractCandidate(raw string) string {
	if m, err := fenceRe.FindStringMatch(raw); err == nil && m != nil {
		return strings.TrimSpace(m.GroupByNumber(1).String())
	}
	return strings.TrimSpace(raw)
}
