// Package prompt assembles the system prompt for a single model call. The
// build is a pure function of the clock and the instruction blocks handed in,
// so a given schedule state always produces the same prompt text.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"famisched/internal/models"
)

var dayNames = []string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

const template = `あなたはスケジュール管理AIです。ユーザーの状況に応じてスケジュールをJSON形式で更新します。

⏰ 現在: %s（%s）%s

応答は必ず以下のJSON形式で返してください:
{"tasks":[{"id":"task-[timestamp]-[random]","time":"HH:mm","title":"タスク名","description":"説明","duration":30,"priority":"high|medium|low","status":"pending","category":"work|family|personal|health|errand"}],"message":"説明メッセージ","reasoning":"理由"}

【厳格ルール - 時刻】
- 全タスクの時刻は必ず %[3]s 以降（未来）のみ。%[3]s以前の時刻は絶対禁止
- 今日は%[2]s。曜日固有のタスク（例：月曜の会議、水曜のゴミ出し）は正しい曜日に設定
- 「明日」と言われたら翌日のタスクとして扱い、時刻制限は00:00以降でOK
- 深夜0:00-5:00の場合：ユーザーに「今日中か翌朝か」を確認するメッセージを含める
- 24時間形式（09:00, 15:30）。12時間形式は使用禁止
- 完了済みタスクは再スケジュール禁止
- 日本語で応答
- スケジュール変更なしでもJSON形式（tasksは空配列）で応答`

type Builder struct {
	loc    *time.Location
	enc    *tiktoken.Tiktoken
	logger *zap.Logger
}

func New(logger *zap.Logger) *Builder {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}

	// The encoding needs its BPE data; without it we fall back to a rough
	// estimate, which only affects the logged token count.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("token encoding unavailable, token counts are estimates", zap.Error(err))
		enc = nil
	}

	return &Builder{loc: loc, enc: enc, logger: logger}
}

// SystemPrompt renders the full system prompt for one request. now is
// resolved once by the caller so every block within the request sees the
// same clock.
func (b *Builder) SystemPrompt(now time.Time, customInstructions string, completed, pending []models.Task, conversationSummary string) string {
	local := now.In(b.loc)
	dateStr := local.Format("2006年01月02日")
	timeStr := local.Format("15:04")
	weekday := dayNames[int(local.Weekday())]

	var sb strings.Builder
	fmt.Fprintf(&sb, template, dateStr, weekday, timeStr)

	if s := strings.TrimSpace(customInstructions); s != "" {
		sb.WriteString("\n\n【ユーザー情報 - 必ずスケジュールに反映】\n")
		sb.WriteString(s)
	}

	if len(completed) > 0 {
		sb.WriteString("\n\n【完了済み - 再スケジュール禁止】\n")
		for i, t := range completed {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "✓ %s %s", t.Time, t.Title)
		}
	}

	if len(pending) > 0 {
		sb.WriteString("\n\n【現在の未完了スケジュール】\n")
		if raw, err := json.Marshal(pending); err == nil {
			sb.Write(raw)
		}
	}

	if s := strings.TrimSpace(conversationSummary); s != "" {
		sb.WriteString("\n\n【最近の会話】\n")
		sb.WriteString(s)
	}

	return sb.String()
}

// CountTokens reports the token cost of text for request-size logging.
func (b *Builder) CountTokens(text string) int {
	if b.enc == nil {
		// Crude but monotone: CJK-heavy prompts run close to one token per
		// rune, ASCII closer to one per four characters.
		return len([]rune(text))/2 + 1
	}
	return len(b.enc.Encode(text, nil, nil))
}
