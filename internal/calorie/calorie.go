// Package calorie implements food calorie estimates: item extraction from a
// chat message plus Gemini-backed estimation memoized per item list per day.
package calorie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinchw/kevinbot/internal/cache"
	"github.com/kevinchw/kevinbot/internal/gemini"
)

const estimateTTL = 36 * time.Hour

// triggerWords are the calorie-question markers stripped from item tokens.
var triggerWords = []string{"熱量", "卡路里", "大卡", "幾卡", "多少卡"}

// leadPhrases are conversational openers stripped before splitting. Longer
// phrases come first so 我吃了 wins over 我吃.
var leadPhrases = []string{"我今天吃了", "我剛剛吃了", "我剛吃了", "我吃了", "今天吃了", "剛吃了", "吃了", "我吃"}

// separators split a food list. Both fullwidth and halfwidth forms appear in
// real messages.
var separators = []string{"、", ",", ",", "。", "和", "跟", "加", "與", "还有", "還有", " ", "\n", "\t"}

// ExtractItems pulls the food item names out of a calorie question. Returns
// nil when nothing edible-looking remains after stripping trigger words.
func ExtractItems(text string) []string {
	s := strings.TrimSpace(text)
	for _, p := range leadPhrases {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	for _, w := range triggerWords {
		s = strings.ReplaceAll(s, w, " ")
	}
	s = strings.NewReplacer("?", " ", "?", " ", "嗎", " ", "呢", " ", "是多少", " ", "多少", " ").Replace(s)

	for _, sep := range separators {
		s = strings.ReplaceAll(s, sep, "\x00")
	}

	var items []string
	for _, tok := range strings.Split(s, "\x00") {
		tok = strings.TrimSuffix(strings.TrimSpace(tok), "的")
		if tok == "" {
			continue
		}
		items = append(items, tok)
	}
	return items
}

// Service estimates calories for food item lists, memoizing per list per day
// so repeated questions about the same meal stay consistent and cheap.
type Service struct {
	ai     gemini.Client
	cache  cache.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(ai gemini.Client, cacheStore cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		ai:     ai,
		cache:  cacheStore,
		logger: logger.With("component", "calorie_service"),
		now:    time.Now,
	}
}

// Estimate returns per-item calorie estimates for the given food items.
func (s *Service) Estimate(ctx context.Context, items []string) ([]gemini.CalorieItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no food items to estimate")
	}

	key := s.cacheKey(items)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var estimates []gemini.CalorieItem
		if err := json.Unmarshal([]byte(raw), &estimates); err == nil {
			return estimates, nil
		}
		s.cache.Delete(ctx, key)
	}

	estimates, err := s.ai.GenerateCalories(ctx, items)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(estimates); err == nil {
		s.cache.Set(ctx, key, string(raw), estimateTTL)
	}

	return estimates, nil
}

func (s *Service) cacheKey(items []string) string {
	return "calorie:" + s.now().Format("2006-01-02") + ":" + strings.Join(items, "|")
}
