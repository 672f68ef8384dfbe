package digest

import (
	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/spin"
	"chat-insights-go/internal/types"
)

// Example categories published to the weekly examples tab.
const (
	CategoryNoReply    = "no_reply"
	CategorySlowReply  = "slow_reply"
	CategoryNoNextStep = "no_next_step_high_intent"
	CategoryGood       = "good"
)

// Category membership thresholds. A slow example needs a painfully slow first
// reply, not merely one over the advice threshold; a good example needs a
// genuinely fast one.
const (
	slowExampleSec = 30 * 60
	goodReplySec   = 10 * 60
)

// Example is one illustrative conversation with redacted snippets.
type Example struct {
	ManagerID   string
	ManagerName string
	Category    string
	ChatID      string
	SnippetIn   string
	SnippetOut  string
	Note        string
}

// ChatRecord bundles everything the example picker needs about one chat.
type ChatRecord struct {
	Conv     types.Conversation
	Metrics  metrics.ChatMetrics
	Analysis spin.ChatAnalysis
}

// chatSnippets returns the first meaningful customer and manager texts,
// redacted.
func chatSnippets(conv types.Conversation) (in, out string) {
	for _, m := range conv.Messages {
		if m.Text == "" {
			continue
		}
		if in == "" && m.Direction == types.DirectionIn {
			in = RedactText(m.Text)
		}
		if out == "" && m.Direction == types.DirectionOut {
			out = RedactText(m.Text)
		}
		if in != "" && out != "" {
			break
		}
	}
	return in, out
}

var exampleNotes = map[string]string{
	CategoryNoReply:    "customer wrote, no manager reply at all",
	CategorySlowReply:  "very slow first reply",
	CategoryNoNextStep: "high-intent request without a proposed next step",
	CategoryGood:       "fast reply with questions and a next step",
}

// SelectExamples picks up to perCategory chats per manager per category, in
// fetch order: the first matching conversations encountered, no ranking.
func SelectExamples(records []ChatRecord, perCategory int) []Example {
	type slot struct{ mgr, cat string }
	taken := map[slot]int{}

	var out []Example
	add := func(r ChatRecord, cat string) {
		s := slot{r.Metrics.ManagerID, cat}
		if taken[s] >= perCategory {
			return
		}
		taken[s]++
		in, snippetOut := chatSnippets(r.Conv)
		out = append(out, Example{
			ManagerID:   r.Metrics.ManagerID,
			ManagerName: r.Metrics.ManagerName,
			Category:    cat,
			ChatID:      r.Metrics.ChatID,
			SnippetIn:   in,
			SnippetOut:  snippetOut,
			Note:        exampleNotes[cat],
		})
	}

	for _, r := range records {
		responded := r.Metrics.OutboundCount > 0
		fr := r.Metrics.FirstResponseSec

		if r.Metrics.NoReply() {
			add(r, CategoryNoReply)
		}
		if fr != nil && *fr >= slowExampleSec {
			add(r, CategorySlowReply)
		}
		if r.Analysis.HighIntent && responded && !r.Analysis.NextStep {
			add(r, CategoryNoNextStep)
		}
		if responded && r.Analysis.NextStep && r.Analysis.ChatBehavior.Questions >= 1 &&
			fr != nil && *fr <= goodReplySec {
			add(r, CategoryGood)
		}
	}
	return out
}
