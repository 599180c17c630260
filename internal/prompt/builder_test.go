package prompt

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"famisched/internal/models"
)

var testNow = time.Date(2025, time.November, 12, 14, 30, 0, 0, time.UTC) // 23:30 JST, Wednesday

func TestSystemPromptDeterministic(t *testing.T) {
	b := New(zap.NewNop())
	pending := []models.Task{{ID: "t1", Time: "15:00", Title: "お迎え"}}

	first := b.SystemPrompt(testNow, "instr", nil, pending, "summary")
	second := b.SystemPrompt(testNow, "instr", nil, pending, "summary")
	if first != second {
		t.Error("same inputs produced different prompts")
	}
}

func TestSystemPromptTimeContext(t *testing.T) {
	b := New(zap.NewNop())
	got := b.SystemPrompt(testNow, "", nil, nil, "")

	// 14:30 UTC is 23:30 of the same Wednesday in Tokyo.
	for _, want := range []string{"2025年11月12日", "水曜日", "23:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSystemPromptBlocks(t *testing.T) {
	b := New(zap.NewNop())
	completed := []models.Task{{ID: "c1", Time: "06:30", Title: "起床"}}
	pending := []models.Task{{ID: "p1", Time: "15:00", Title: "お迎え"}}

	got := b.SystemPrompt(testNow, "# 家族構成\n- 子供2人", completed, pending, "- 息子が熱")

	cases := []struct {
		name string
		want string
	}{
		{"custom instructions header", "【ユーザー情報 - 必ずスケジュールに反映】"},
		{"custom instructions body", "子供2人"},
		{"completed header", "【完了済み - 再スケジュール禁止】"},
		{"completed entry", "✓ 06:30 起床"},
		{"pending header", "【現在の未完了スケジュール】"},
		{"pending as JSON", `"id":"p1"`},
		{"summary header", "【最近の会話】"},
		{"summary body", "息子が熱"},
		{"future-only rule", "以降（未来）のみ"},
		{"empty-tasks rule", "tasksは空配列"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(got, tc.want) {
				t.Errorf("prompt missing %q", tc.want)
			}
		})
	}
}

// TestSystemPromptOmitsEmptyBlocks verifies blank inputs leave their section
// headers out entirely instead of rendering empty sections.
func TestSystemPromptOmitsEmptyBlocks(t *testing.T) {
	b := New(zap.NewNop())
	got := b.SystemPrompt(testNow, "   ", nil, nil, "")

	for _, header := range []string{"【ユーザー情報", "【完了済み", "【現在の未完了スケジュール】", "【最近の会話】"} {
		if strings.Contains(got, header) {
			t.Errorf("prompt contains %q for empty input", header)
		}
	}
}

func TestCountTokensPositive(t *testing.T) {
	b := New(zap.NewNop())
	if got := b.CountTokens("明日の予定を教えて"); got <= 0 {
		t.Errorf("CountTokens = %d, want > 0", got)
	}
}
