package sheets

import (
	"strings"
	"time"

	"chat-insights-go/internal/digest"
	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/snapshot"
	"chat-insights-go/internal/spin"
	"chat-insights-go/internal/types"
)

const cellTimeLayout = "2006-01-02 15:04:05"

// Blank cells mean "undefined", never zero.

func cellTime(t time.Time) any {
	if t.IsZero() {
		return ""
	}
	return t.Format(cellTimeLayout)
}

func cellTimePtr(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.Format(cellTimeLayout)
}

func cellIntPtr(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func cellFloatPtr(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func cellBool(b bool) any {
	if b {
		return 1
	}
	return 0
}

// ChatsRawTab is one row per conversation with its computed metrics.
func ChatsRawTab(convs []types.Conversation, byChat map[string]metrics.ChatMetrics) Tab {
	t := Tab{
		Name: "chats_raw",
		Header: []string{
			"chat_id", "channel", "manager_id", "manager_name", "client_id",
			"created_at", "status", "inbound", "outbound", "first_reply_sec",
			"no_reply", "unanswered_inbound", "has_order", "payment_status",
		},
	}
	for _, c := range convs {
		m := byChat[c.ID]
		t.Rows = append(t.Rows, []any{
			c.ID, string(c.Channel), m.ManagerID, m.ManagerName, c.ClientID,
			cellTime(c.CreatedAt), c.Status, m.InboundCount, m.OutboundCount,
			cellIntPtr(m.FirstResponseSec), cellBool(m.NoReply()),
			m.UnansweredInbound, cellBool(c.HasOrder), string(c.PaymentStatus),
		})
	}
	return t
}

// MessagesRawTab is every fetched message, chat by chat in sent order.
func MessagesRawTab(convs []types.Conversation) Tab {
	t := Tab{
		Name: "messages_raw",
		Header: []string{
			"chat_id", "message_id", "sent_at", "direction", "manager_id",
			"message_type", "text",
		},
	}
	for _, c := range convs {
		for _, m := range c.Messages {
			t.Rows = append(t.Rows, []any{
				c.ID, m.ID, cellTime(m.SentAt), string(m.Direction),
				m.ManagerID, m.MessageType, m.Text,
			})
		}
	}
	return t
}

func ManagerSummaryTab(rows []metrics.ManagerSummary) Tab {
	t := Tab{
		Name: "manager_summary",
		Header: []string{
			"manager_id", "manager_name", "chats", "inbound", "outbound",
			"responded_chats", "no_reply_chats", "slow_first_reply_chats",
			"unanswered_inbound", "response_rate", "no_reply_rate",
			"slow_first_reply_rate", "median_first_reply_sec", "p90_first_reply_sec",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.ManagerID, r.ManagerName, r.Chats, r.Inbound, r.Outbound,
			r.RespondedChats, r.NoReplyChats, r.SlowFirstReplyChats,
			r.UnansweredInbound, cellFloatPtr(r.ResponseRate), cellFloatPtr(r.NoReplyRate),
			cellFloatPtr(r.SlowFirstReplyRate), cellIntPtr(r.MedianFirstReplySec), cellIntPtr(r.P90FirstReplySec),
		})
	}
	return t
}

func ChannelSummaryTab(rows []metrics.ChannelSummary) Tab {
	t := Tab{
		Name: "channel_summary",
		Header: []string{
			"channel", "chats", "inbound", "outbound", "responded_chats",
			"no_reply_chats", "slow_first_reply_chats", "response_rate",
			"no_reply_rate", "slow_first_reply_rate",
			"median_first_reply_sec", "p90_first_reply_sec",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			string(r.Channel), r.Chats, r.Inbound, r.Outbound, r.RespondedChats,
			r.NoReplyChats, r.SlowFirstReplyChats, cellFloatPtr(r.ResponseRate),
			cellFloatPtr(r.NoReplyRate), cellFloatPtr(r.SlowFirstReplyRate),
			cellIntPtr(r.MedianFirstReplySec), cellIntPtr(r.P90FirstReplySec),
		})
	}
	return t
}

// ChatAdviceTab lists only chats that triggered at least one advice rule.
func ChatAdviceTab(rows []metrics.ChatMetrics) Tab {
	t := Tab{
		Name:   "chat_advice",
		Header: []string{"chat_id", "channel", "manager_id", "manager_name", "advice"},
	}
	for _, m := range rows {
		if len(m.Advice) == 0 {
			continue
		}
		t.Rows = append(t.Rows, []any{
			m.ChatID, string(m.Channel), m.ManagerID, m.ManagerName,
			strings.Join(m.Advice, "; "),
		})
	}
	return t
}

func SpinManagersTab(rows []spin.ManagerSummary) Tab {
	t := Tab{
		Name: "spin_managers",
		Header: []string{
			"manager_id", "manager_name", "chats", "outbound_messages", "questions",
			"situation_total", "problem_total", "implication_total", "need_payoff_total",
			"situation_per_chat", "problem_per_chat", "implication_per_chat", "need_payoff_per_chat",
			"situation_usage_rate", "problem_usage_rate", "implication_usage_rate", "need_payoff_usage_rate",
			"avg_completeness", "full_cycle_chats", "full_cycle_rate",
			"avg_questions_per_chat", "next_step_rate", "upsell_rate",
			"follow_up_gap_rate", "high_intent_chats",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.ManagerID, r.ManagerName, r.Chats, r.TotalMessages, r.TotalQuestions,
			r.SituationTotal, r.ProblemTotal, r.ImplicationTotal, r.NeedPayoffTotal,
			r.SituationPerChat, r.ProblemPerChat, r.ImplicationPerChat, r.NeedPayoffPerChat,
			r.SituationUsageRate, r.ProblemUsageRate, r.ImplicationUsageRate, r.NeedPayoffUsageRate,
			r.AvgCompleteness, r.FullCycleChats, r.FullCycleRate,
			r.AvgQuestionsPerChat, r.NextStepRate, r.UpsellRate,
			r.FollowUpGapRate, r.HighIntentChats,
		})
	}
	return t
}

// SnapshotTab renders the current run's snapshot rows with a fixed key order.
func SnapshotTab(name, keyHeader string, runTS time.Time, rows []snapshot.Row, keys []string) Tab {
	t := Tab{Name: name, Header: append([]string{"run_ts", keyHeader, "name"}, keys...)}
	ts := runTS.UTC().Format(time.RFC3339)
	for _, r := range rows {
		row := []any{ts, r.Key, r.Name}
		for _, k := range keys {
			if v, ok := r.Metrics[k]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DigestTab renders deltas against the prior run: current values first, then
// a delta_<key> column per metric.
func DigestTab(name, keyHeader string, runTS time.Time, rows []digest.DeltaRow, keys []string) Tab {
	header := append([]string{"run_ts", keyHeader, "name"}, keys...)
	for _, k := range keys {
		header = append(header, "delta_"+k)
	}
	t := Tab{Name: name, Header: header}

	ts := runTS.UTC().Format(time.RFC3339)
	for _, r := range rows {
		row := []any{ts, r.Key, r.Name}
		for _, k := range keys {
			if v, ok := r.Current[k]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		for _, k := range keys {
			if v, ok := r.Deltas[k]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func WeeklyExamplesTab(runTS time.Time, rows []digest.Example) Tab {
	t := Tab{
		Name: "weekly_examples",
		Header: []string{
			"run_ts", "manager_id", "manager_name", "category", "chat_id",
			"snippet_in", "snippet_out", "note",
		},
	}
	ts := runTS.UTC().Format(time.RFC3339)
	for _, e := range rows {
		t.Rows = append(t.Rows, []any{
			ts, e.ManagerID, e.ManagerName, e.Category, e.ChatID,
			e.SnippetIn, e.SnippetOut, e.Note,
		})
	}
	return t
}
