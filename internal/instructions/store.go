// Package instructions keeps the user-authored custom instructions: a free
// text block with the highest priority in prompt construction.
package instructions

import (
	"sync"

	"famisched/internal/kv"
)

const storageKey = "customInstructions"

// DefaultInstructions is the sample family profile shown before the user
// writes their own. Injected into New; an empty string is also valid.
const DefaultInstructions = `# 家族構成
- 私（パパ）: IT企業勤務
- 妻: 病院勤務
- 長女（ひなの）: 小学校3年生
- 次女（ゆみの）: 小学校2年生
- 長男（きよみつ）: 保育園・6歳
- 三女（ちさの）: 保育園・3歳

# 日常ルーティン
- 06:00 起床
- 07:20 保育園組が妻と出発
- 07:30 長女・次女が学校へ
- 16:30 長女帰宅
- 18:00 入浴開始
- 19:30 夕食
- 21:00 就寝

# リソース
- ファミリーカー1台
- 衣類乾燥機（乾太くん）
- おじいちゃん（妻の実家）がサポート可能

# 習慣・その他
- 毎朝7:00〜7:25にトイレタイム
- 木曜日は長女のピアノ教室
- 水曜・土曜は燃えるゴミの日
`

type Store struct {
	mu    sync.Mutex
	value string
	kv    *kv.Store
}

func New(store *kv.Store, defaultValue string) *Store {
	s := &Store{value: defaultValue, kv: store}

	var stored string
	if ok := store.Get(storageKey, &stored); ok {
		s.value = stored
	}
	return s
}

func (s *Store) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Store) Set(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.kv.Put(storageKey, s.value)
}
