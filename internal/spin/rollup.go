package spin

import (
	"sort"

	"chat-insights-go/internal/types"
)

// ChatAnalysis bundles the stage classification and behavior signals of one
// conversation so the rollup consumes a single row per chat.
type ChatAnalysis struct {
	ChatSpin
	ChatBehavior
}

// Analyze runs both passes over one conversation.
func Analyze(conv types.Conversation) ChatAnalysis {
	return ChatAnalysis{
		ChatSpin:     AnalyzeChat(conv),
		ChatBehavior: AnalyzeBehavior(conv),
	}
}

// ManagerSummary is the per-manager SPIN and behavior rollup.
type ManagerSummary struct {
	ManagerID   string
	ManagerName string

	Chats          int
	TotalMessages  int
	TotalQuestions int

	SituationTotal   int
	ProblemTotal     int
	ImplicationTotal int
	NeedPayoffTotal  int

	SituationPerChat   float64
	ProblemPerChat     float64
	ImplicationPerChat float64
	NeedPayoffPerChat  float64

	// Usage rates: % of the manager's chats containing at least one hit.
	SituationUsageRate   float64
	ProblemUsageRate     float64
	ImplicationUsageRate float64
	NeedPayoffUsageRate  float64

	AvgCompleteness float64
	FullCycleChats  int
	FullCycleRate   float64

	AvgQuestionsPerChat float64
	NextStepRate        float64
	UpsellRate          float64
	FollowUpGapRate     float64
	HighIntentChats     int
}

// AggregateManagers rolls per-chat analyses up by manager, sorted by chat
// count descending, then name.
func AggregateManagers(rows []ChatAnalysis) []ManagerSummary {
	type key struct{ id, name string }
	grouped := map[key][]ChatAnalysis{}
	for _, r := range rows {
		k := key{r.ChatSpin.ManagerID, r.ChatSpin.ManagerName}
		grouped[k] = append(grouped[k], r)
	}

	out := make([]ManagerSummary, 0, len(grouped))
	for k, chats := range grouped {
		n := len(chats)
		s := ManagerSummary{ManagerID: k.id, ManagerName: k.name, Chats: n}

		var withS, withP, withI, withN int
		var completenessSum float64
		for _, c := range chats {
			s.TotalMessages += c.OutboundMessages
			s.TotalQuestions += c.ChatSpin.Questions
			s.SituationTotal += c.SituationCount
			s.ProblemTotal += c.ProblemCount
			s.ImplicationTotal += c.ImplicationCount
			s.NeedPayoffTotal += c.NeedPayoffCount
			if c.HasSituation {
				withS++
			}
			if c.HasProblem {
				withP++
			}
			if c.HasImplication {
				withI++
			}
			if c.HasNeedPayoff {
				withN++
			}
			completenessSum += c.Completeness
			if c.FullCycle() {
				s.FullCycleChats++
			}

			s.AvgQuestionsPerChat += float64(c.ChatBehavior.Questions)
			if c.NextStep {
				s.NextStepRate++
			}
			if c.Upsell {
				s.UpsellRate++
			}
			if c.FollowUpGap {
				s.FollowUpGapRate++
			}
			if c.HighIntent {
				s.HighIntentChats++
			}
		}

		div := float64(n)
		s.SituationPerChat = float64(s.SituationTotal) / div
		s.ProblemPerChat = float64(s.ProblemTotal) / div
		s.ImplicationPerChat = float64(s.ImplicationTotal) / div
		s.NeedPayoffPerChat = float64(s.NeedPayoffTotal) / div
		s.SituationUsageRate = float64(withS) / div * 100
		s.ProblemUsageRate = float64(withP) / div * 100
		s.ImplicationUsageRate = float64(withI) / div * 100
		s.NeedPayoffUsageRate = float64(withN) / div * 100
		s.AvgCompleteness = completenessSum / div
		s.FullCycleRate = float64(s.FullCycleChats) / div * 100
		s.AvgQuestionsPerChat /= div
		s.NextStepRate /= div
		s.UpsellRate /= div
		s.FollowUpGapRate /= div

		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chats != out[j].Chats {
			return out[i].Chats > out[j].Chats
		}
		return out[i].ManagerName < out[j].ManagerName
	})
	return out
}
