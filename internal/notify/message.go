package notify

import (
	"fmt"
	"sort"
	"strings"

	"chat-insights-go/internal/digest"
)

const maxMessageLen = 3800

// severity weighs a manager's week-over-week movement. Negative is an
// improvement. Reply losses and follow-up gaps dominate; raw speed is a
// tiebreaker.
func severity(d digest.DeltaRow) float64 {
	return d.Deltas["no_reply_rate"]*100 +
		d.Deltas["follow_up_gap_rate"]*100 +
		d.Deltas["p90_first_reply_sec"]/60*0.2
}

func fmtRateDelta(d digest.DeltaRow, key string) string {
	v, ok := d.Deltas[key]
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.1fpp", v*100)
}

func fmtSecDelta(d digest.DeltaRow, key string) string {
	v, ok := d.Deltas[key]
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.0fs", v)
}

func managerLine(d digest.DeltaRow) string {
	name := d.Name
	if name == "" {
		name = d.Key
	}
	return fmt.Sprintf("- %s: no-reply %s | follow-up gap %s | next step %s | p90 %s",
		name,
		fmtRateDelta(d, "no_reply_rate"),
		fmtRateDelta(d, "follow_up_gap_rate"),
		fmtRateDelta(d, "next_step_rate"),
		fmtSecDelta(d, "p90_first_reply_sec"),
	)
}

// BuildDigestMessage renders the weekly summary: the three managers that
// moved most in each direction. Hard-capped so the channel API never
// rejects it.
func BuildDigestMessage(period string, managerDeltas []digest.DeltaRow) string {
	var lines []string
	lines = append(lines, "Chat insights — weekly summary ("+period+")", "")

	if len(managerDeltas) == 0 {
		lines = append(lines, "No prior snapshot yet; deltas will appear next week.")
	} else {
		sorted := append([]digest.DeltaRow(nil), managerDeltas...)
		sort.SliceStable(sorted, func(i, j int) bool { return severity(sorted[i]) < severity(sorted[j]) })

		top := 3
		if top > len(sorted) {
			top = len(sorted)
		}

		lines = append(lines, "Top improvements:")
		for _, d := range sorted[:top] {
			lines = append(lines, managerLine(d))
		}
		lines = append(lines, "", "Top regressions:")
		for i := 0; i < top; i++ {
			lines = append(lines, managerLine(sorted[len(sorted)-1-i]))
		}
	}

	text := strings.Join(lines, "\n")
	if len(text) > maxMessageLen {
		text = digest.TruncateUTF8(text, maxMessageLen) + "\n...\n(truncated)"
	}
	return text
}
