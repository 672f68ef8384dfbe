package digest

import (
	"testing"
	"time"

	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/spin"
	"chat-insights-go/internal/types"
)

func record(chatID string, m metrics.ChatMetrics, a spin.ChatAnalysis, msgs ...types.Message) ChatRecord {
	m.ChatID = chatID
	m.ManagerID = "1"
	m.ManagerName = "Anna"
	return ChatRecord{
		Conv:     types.Conversation{ID: chatID, Messages: msgs},
		Metrics:  m,
		Analysis: a,
	}
}

func sec(v int) *int { return &v }

var ts = time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)

func TestSelectExamplesCategories(t *testing.T) {
	records := []ChatRecord{
		record("lost", metrics.ChatMetrics{InboundCount: 1}, spin.ChatAnalysis{},
			types.Message{Direction: types.DirectionIn, SentAt: ts, Text: "Добрый день, есть размер М?"}),
		record("slow", metrics.ChatMetrics{InboundCount: 1, OutboundCount: 1, FirstResponseSec: sec(45 * 60)}, spin.ChatAnalysis{}),
		record("hot", metrics.ChatMetrics{InboundCount: 1, OutboundCount: 1, FirstResponseSec: sec(60)},
			spin.ChatAnalysis{ChatBehavior: spin.ChatBehavior{HighIntent: true}}),
		record("good", metrics.ChatMetrics{InboundCount: 1, OutboundCount: 2, FirstResponseSec: sec(120)},
			spin.ChatAnalysis{ChatBehavior: spin.ChatBehavior{NextStep: true, Questions: 2}}),
	}

	out := SelectExamples(records, 3)

	byCat := map[string]string{}
	for _, e := range out {
		byCat[e.Category] = e.ChatID
	}
	if byCat[CategoryNoReply] != "lost" {
		t.Errorf("no_reply = %q", byCat[CategoryNoReply])
	}
	if byCat[CategorySlowReply] != "slow" {
		t.Errorf("slow_reply = %q", byCat[CategorySlowReply])
	}
	if byCat[CategoryNoNextStep] != "hot" {
		t.Errorf("no_next_step = %q", byCat[CategoryNoNextStep])
	}
	if byCat[CategoryGood] != "good" {
		t.Errorf("good = %q", byCat[CategoryGood])
	}
}

func TestSelectExamplesCapsPerCategory(t *testing.T) {
	var records []ChatRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(
			string(rune('a'+i)),
			metrics.ChatMetrics{InboundCount: 1},
			spin.ChatAnalysis{},
		))
	}
	out := SelectExamples(records, 3)
	if len(out) != 3 {
		t.Fatalf("got %d examples, want 3", len(out))
	}
	for _, e := range out {
		if e.Category != CategoryNoReply {
			t.Errorf("unexpected category %s", e.Category)
		}
	}
}

func TestSelectExamplesFirstInFetchOrder(t *testing.T) {
	records := []ChatRecord{
		record("earlier", metrics.ChatMetrics{InboundCount: 1, OutboundCount: 1, FirstResponseSec: sec(35 * 60)}, spin.ChatAnalysis{}),
		record("later", metrics.ChatMetrics{InboundCount: 1, OutboundCount: 1, FirstResponseSec: sec(5 * 3600)}, spin.ChatAnalysis{}),
	}
	out := SelectExamples(records, 1)
	if len(out) != 1 || out[0].ChatID != "earlier" {
		t.Fatalf("want first encountered chat, got %+v", out)
	}
}

func TestSelectExamplesRedactsSnippets(t *testing.T) {
	records := []ChatRecord{
		record("c", metrics.ChatMetrics{InboundCount: 1}, spin.ChatAnalysis{},
			types.Message{Direction: types.DirectionIn, SentAt: ts, Text: "мой телефон +7 999 123 45 67"}),
	}
	out := SelectExamples(records, 1)
	if len(out) != 1 {
		t.Fatal("expected one example")
	}
	if out[0].SnippetIn != "мой телефон ***" {
		t.Errorf("SnippetIn = %q", out[0].SnippetIn)
	}
}
