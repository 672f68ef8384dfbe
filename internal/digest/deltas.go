package digest

import (
	"math"

	"chat-insights-go/internal/snapshot"
)

// Snapshot metric keys, in column order. Keys also name the delta columns
// (delta_<key>) of the digest tabs.
var (
	ManagerMetricKeys = []string{
		"chats",
		"responded_chats",
		"no_reply_chats",
		"response_rate",
		"no_reply_rate",
		"median_first_reply_sec",
		"p90_first_reply_sec",
		"avg_questions_per_chat",
		"next_step_rate",
		"spin_completeness",
		"upsell_rate",
		"follow_up_gap_rate",
		"high_intent_chats",
	}

	ChannelMetricKeys = []string{
		"chats",
		"responded_chats",
		"no_reply_chats",
		"response_rate",
		"no_reply_rate",
		"slow_first_reply_rate",
		"median_first_reply_sec",
		"p90_first_reply_sec",
	}
)

// DeltaRow pairs a current snapshot row with its change since the prior run.
// Deltas holds current-minus-prior for every metric defined on both sides;
// a metric undefined on either side has no delta.
type DeltaRow struct {
	Key     string
	Name    string
	Current map[string]float64
	Deltas  map[string]float64
}

// Deltas computes signed changes for rows that exist in the prior run.
// Rows with no prior counterpart are left out entirely.
func Deltas(current []snapshot.Row, prior map[string]snapshot.Row) []DeltaRow {
	var out []DeltaRow
	for _, cur := range current {
		prev, ok := prior[cur.Key]
		if !ok {
			continue
		}
		d := DeltaRow{
			Key:     cur.Key,
			Name:    cur.Name,
			Current: cur.Metrics,
			Deltas:  map[string]float64{},
		}
		for k, v := range cur.Metrics {
			if pv, ok := prev.Metrics[k]; ok {
				d.Deltas[k] = round4(v - pv)
			}
		}
		out = append(out, d)
	}
	return out
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
