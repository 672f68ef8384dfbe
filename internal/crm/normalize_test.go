package crm

import (
	"testing"

	"chat-insights-go/internal/types"
)

func TestNormalizeMessageAliases(t *testing.T) {
	var stats Stats
	m, ok := normalizeMessage(map[string]any{
		"messageId": "m1",
		"inOut":     "inbound",
		"date":      "2026-08-17T10:00:00Z",
		"body":      "Привет",
	}, &stats)
	if !ok {
		t.Fatal("message dropped")
	}
	if m.ID != "m1" || m.Direction != types.DirectionIn || m.Text != "Привет" {
		t.Errorf("aliases not folded: %+v", m)
	}
	if stats.DirectionNormalized != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestNormalizeMessageManagerInvariant(t *testing.T) {
	var stats Stats

	in, ok := normalizeMessage(map[string]any{
		"direction": "in",
		"sentAt":    "2026-08-17 10:00:00",
		"managerId": float64(7),
	}, &stats)
	if !ok {
		t.Fatal("inbound dropped")
	}
	if in.ManagerID != "" {
		t.Errorf("inbound kept a manager id: %q", in.ManagerID)
	}
	if stats.InboundManagerDropped != 1 {
		t.Errorf("stats = %+v", stats)
	}

	_, ok = normalizeMessage(map[string]any{
		"direction": "out",
		"sentAt":    "2026-08-17 10:01:00",
	}, &stats)
	if !ok {
		t.Fatal("outbound dropped")
	}
	if stats.OutboundNoManager != 1 {
		t.Errorf("outbound without manager not counted: %+v", stats)
	}
	if stats.Total() != 2 {
		t.Errorf("Total = %d, want 2", stats.Total())
	}
}

func TestNormalizeChatRequiresCreatedAt(t *testing.T) {
	var stats Stats
	if _, ok := normalizeChat(map[string]any{"id": "c1"}, &stats); ok {
		t.Error("chat without createdAt must be dropped")
	}
	if stats.DroppedNoTimestamp != 1 {
		t.Errorf("stats = %+v", stats)
	}

	conv, ok := normalizeChat(map[string]any{
		"chatId":     "c2",
		"source":     "WhatsApp",
		"customerId": float64(42),
		"dateCreate": "2026-08-17 09:00:00",
	}, &stats)
	if !ok {
		t.Fatal("chat dropped")
	}
	if conv.ID != "c2" || conv.Channel != types.ChannelWhatsApp || conv.ClientID != "42" {
		t.Errorf("aliases not folded: %+v", conv)
	}
}
