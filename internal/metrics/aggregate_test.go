package metrics

import (
	"testing"

	"chat-insights-go/internal/types"
)

func intPtr(v int) *int { return &v }

func TestNearestRankPercentile(t *testing.T) {
	if got := NearestRankPercentile(nil, 0.5); got != nil {
		t.Errorf("empty set: got %v, want nil", *got)
	}
	if got := NearestRankPercentile([]int{42}, 0.9); got == nil || *got != 42 {
		t.Errorf("single value: got %v, want 42", got)
	}

	values := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got := NearestRankPercentile(values, 0.5); got == nil || *got != 60 {
		// k = round(9 * 0.5) = 5 (banker-free rounding up)
		t.Errorf("median: got %v, want 60", got)
	}
	if got := NearestRankPercentile(values, 0.9); got == nil || *got != 90 {
		t.Errorf("p90: got %v, want 90", got)
	}
	if got := NearestRankPercentile(values, 0); got == nil || *got != 10 {
		t.Errorf("p0: got %v, want 10", got)
	}
	if got := NearestRankPercentile(values, 1); got == nil || *got != 100 {
		t.Errorf("p100: got %v, want 100", got)
	}
}

func TestAggregateManagers(t *testing.T) {
	rows := []ChatMetrics{
		{ChatID: "a", ManagerID: "1", ManagerName: "Anna", InboundCount: 2, OutboundCount: 2, FirstResponseSec: intPtr(100)},
		{ChatID: "b", ManagerID: "1", ManagerName: "Anna", InboundCount: 1, OutboundCount: 0},
		{ChatID: "c", ManagerID: "1", ManagerName: "Anna", InboundCount: 1, OutboundCount: 1, FirstResponseSec: intPtr(900)},
		{ChatID: "d", ManagerID: "2", ManagerName: "Boris", InboundCount: 1, OutboundCount: 1, FirstResponseSec: intPtr(50)},
	}

	out := AggregateManagers(rows, 600)
	if len(out) != 2 {
		t.Fatalf("got %d managers, want 2", len(out))
	}
	// sorted by chat count descending
	anna := out[0]
	if anna.ManagerID != "1" || anna.Chats != 3 {
		t.Fatalf("unexpected first row: %+v", anna)
	}
	if anna.NoReplyChats != 1 || anna.SlowFirstReplyChats != 1 || anna.RespondedChats != 2 {
		t.Errorf("counts wrong: %+v", anna)
	}
	if anna.NoReplyRate == nil || *anna.NoReplyRate != 1.0/3 {
		t.Errorf("NoReplyRate = %v", anna.NoReplyRate)
	}
	if anna.MedianFirstReplySec == nil || *anna.MedianFirstReplySec != 900 {
		// two samples, k = round(1*0.5) = 1
		t.Errorf("median = %v", anna.MedianFirstReplySec)
	}

	boris := out[1]
	if boris.NoReplyChats != 0 || boris.RespondedChats != 1 {
		t.Errorf("unexpected second row: %+v", boris)
	}
}

func TestAggregateManagersEmptyRatesAreNil(t *testing.T) {
	out := AggregateManagers([]ChatMetrics{{ChatID: "a", ManagerID: "1", InboundCount: 1}}, 600)
	if len(out) != 1 {
		t.Fatalf("got %d rows", len(out))
	}
	if out[0].MedianFirstReplySec != nil || out[0].P90FirstReplySec != nil {
		t.Error("percentiles over zero samples must be nil")
	}
	if out[0].ResponseRate == nil || *out[0].ResponseRate != 0 {
		t.Errorf("ResponseRate = %v, want 0 over one chat", out[0].ResponseRate)
	}
}

func TestAggregateChannels(t *testing.T) {
	rows := []ChatMetrics{
		{ChatID: "a", Channel: types.ChannelWhatsApp, InboundCount: 1, OutboundCount: 1, FirstResponseSec: intPtr(10)},
		{ChatID: "b", Channel: types.ChannelInstagram, InboundCount: 1},
		{ChatID: "c", Channel: "", InboundCount: 1},
	}
	out := AggregateChannels(rows, 600)
	if len(out) != 3 {
		t.Fatalf("got %d channels, want 3", len(out))
	}
	var sawUnknown bool
	for _, c := range out {
		if c.Channel == "unknown" {
			sawUnknown = true
		}
	}
	if !sawUnknown {
		t.Error("blank channel should aggregate as unknown")
	}
}
