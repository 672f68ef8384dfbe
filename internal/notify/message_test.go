package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	"chat-insights-go/internal/digest"
)

func deltaRow(name string, noReply, gap, p90 float64) digest.DeltaRow {
	return digest.DeltaRow{
		Key:  name,
		Name: name,
		Deltas: map[string]float64{
			"no_reply_rate":       noReply,
			"follow_up_gap_rate":  gap,
			"next_step_rate":      0,
			"p90_first_reply_sec": p90,
		},
	}
}

func TestBuildDigestMessageOrdering(t *testing.T) {
	rows := []digest.DeltaRow{
		deltaRow("Worse", 0.2, 0.1, 600),
		deltaRow("Better", -0.3, -0.1, -120),
		deltaRow("Flat", 0, 0, 0),
	}
	text := BuildDigestMessage("2026-08-10 .. 2026-08-17", rows)

	improvements := strings.Index(text, "Top improvements:")
	regressions := strings.Index(text, "Top regressions:")
	if improvements == -1 || regressions == -1 {
		t.Fatalf("sections missing:\n%s", text)
	}

	lines := strings.Split(text, "\n")
	var firstImprovement, firstRegression string
	for i, line := range lines {
		if strings.HasPrefix(line, "Top improvements:") {
			firstImprovement = lines[i+1]
		}
		if strings.HasPrefix(line, "Top regressions:") {
			firstRegression = lines[i+1]
		}
	}
	if !strings.Contains(firstImprovement, "Better") {
		t.Errorf("Better must lead the improvements: %q", firstImprovement)
	}
	if !strings.Contains(firstRegression, "Worse") {
		t.Errorf("Worse must lead the regressions: %q", firstRegression)
	}

	if !strings.Contains(text, "no-reply -30.0pp") {
		t.Errorf("rate deltas must render as percentage points:\n%s", text)
	}
	if !strings.Contains(text, "p90 +600s") {
		t.Errorf("second deltas must render with an s suffix:\n%s", text)
	}
}

func TestBuildDigestMessageWithoutDeltas(t *testing.T) {
	text := BuildDigestMessage("2026-08-10 .. 2026-08-17", nil)
	if !strings.Contains(text, "No prior snapshot") {
		t.Errorf("missing first-run note:\n%s", text)
	}
}

func TestBuildDigestMessageLengthCap(t *testing.T) {
	var rows []digest.DeltaRow
	for i := 0; i < 200; i++ {
		rows = append(rows, deltaRow(strings.Repeat("и", 500), 0.1, 0.1, 100))
	}
	text := BuildDigestMessage("period", rows)
	if len(text) > maxMessageLen+len("\n...\n(truncated)") {
		t.Errorf("len = %d, cap broken", len(text))
	}
	if !strings.HasSuffix(text, "(truncated)") {
		t.Error("expected truncation marker")
	}
	if !utf8.ValidString(text) {
		t.Error("truncation split a rune")
	}
}

func TestBuildDigestMessageMissingMetric(t *testing.T) {
	rows := []digest.DeltaRow{{Key: "1", Name: "Anna", Deltas: map[string]float64{}}}
	text := BuildDigestMessage("period", rows)
	if !strings.Contains(text, "no-reply n/a") {
		t.Errorf("missing metric must print n/a:\n%s", text)
	}
}
