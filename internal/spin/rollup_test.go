package spin

import (
	"testing"

	"chat-insights-go/internal/types"
)

func TestAggregateManagersRates(t *testing.T) {
	convA := types.Conversation{ID: "a", ManagerID: "1", ManagerName: "Anna", Messages: []types.Message{
		in("Нужна помощь"),
		out("Какой размер вам нужен?"),
		out("Оформим заказ?"),
	}}
	convB := types.Conversation{ID: "b", ManagerID: "1", ManagerName: "Anna", Messages: []types.Message{
		in("Сколько стоит?"),
		out("Минуту"),
		in("Ау"),
	}}

	rows := []ChatAnalysis{Analyze(convA), Analyze(convB)}
	out := AggregateManagers(rows)
	if len(out) != 1 {
		t.Fatalf("got %d managers, want 1", len(out))
	}
	s := out[0]

	if s.Chats != 2 {
		t.Fatalf("Chats = %d, want 2", s.Chats)
	}
	// chat A hits situation; chat B does not
	if s.SituationUsageRate != 50 {
		t.Errorf("SituationUsageRate = %v, want 50", s.SituationUsageRate)
	}
	// next step only in chat A
	if s.NextStepRate != 0.5 {
		t.Errorf("NextStepRate = %v, want 0.5", s.NextStepRate)
	}
	// follow-up gap only in chat B
	if s.FollowUpGapRate != 0.5 {
		t.Errorf("FollowUpGapRate = %v, want 0.5", s.FollowUpGapRate)
	}
	if s.HighIntentChats != 1 {
		t.Errorf("HighIntentChats = %d, want 1", s.HighIntentChats)
	}
	// completeness: 25% and 0% average to 12.5
	if s.AvgCompleteness != 12.5 {
		t.Errorf("AvgCompleteness = %v, want 12.5", s.AvgCompleteness)
	}
	if s.FullCycleChats != 0 || s.FullCycleRate != 0 {
		t.Errorf("unexpected full cycle: %+v", s)
	}
}

func TestAggregateManagersSorting(t *testing.T) {
	mk := func(id, name string, chats int) []ChatAnalysis {
		var out []ChatAnalysis
		for i := 0; i < chats; i++ {
			out = append(out, ChatAnalysis{ChatSpin: ChatSpin{ManagerID: id, ManagerName: name}})
		}
		return out
	}
	rows := append(mk("1", "Zoya", 1), mk("2", "Anna", 1)...)
	rows = append(rows, mk("3", "Boris", 2)...)

	out := AggregateManagers(rows)
	if len(out) != 3 {
		t.Fatalf("got %d managers", len(out))
	}
	if out[0].ManagerName != "Boris" {
		t.Errorf("most chats first, got %s", out[0].ManagerName)
	}
	if out[1].ManagerName != "Anna" || out[2].ManagerName != "Zoya" {
		t.Errorf("ties by name: %s, %s", out[1].ManagerName, out[2].ManagerName)
	}
}
