package pipeline

import (
	"testing"

	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/spin"
	"chat-insights-go/internal/types"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestResolveManagerFallsBackToFirstOutbound(t *testing.T) {
	users := map[string]types.User{
		"42": {ID: "42", FirstName: "Anna"},
	}
	conv := types.Conversation{Messages: []types.Message{
		{Direction: types.DirectionIn},
		{Direction: types.DirectionOut, ManagerID: "42"},
	}}
	resolveManager(&conv, users)
	if conv.ManagerID != "42" || conv.ManagerName != "Anna" {
		t.Errorf("got %q/%q", conv.ManagerID, conv.ManagerName)
	}
}

func TestResolveManagerUnassigned(t *testing.T) {
	conv := types.Conversation{Messages: []types.Message{
		{Direction: types.DirectionIn},
	}}
	resolveManager(&conv, nil)
	if conv.ManagerName != "(unassigned)" {
		t.Errorf("ManagerName = %q", conv.ManagerName)
	}
}

func TestManagerSnapshotRowsMergeAndOmit(t *testing.T) {
	ds := &Dataset{
		ManagerSummaries: []metrics.ManagerSummary{
			{
				ManagerID:           "1",
				ManagerName:         "Anna",
				Chats:               4,
				RespondedChats:      3,
				NoReplyChats:        1,
				ResponseRate:        floatPtr(0.75),
				NoReplyRate:         floatPtr(0.25),
				MedianFirstReplySec: intPtr(90),
			},
			{ManagerID: "2", ManagerName: "Boris", Chats: 1, NoReplyChats: 1},
		},
		SpinManagers: []spin.ManagerSummary{
			{ManagerID: "1", AvgCompleteness: 50, NextStepRate: 0.5, HighIntentChats: 2},
		},
	}

	rows := ManagerSnapshotRows(ds)
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}

	anna := rows[0]
	if anna.Key != "1" || anna.Name != "Anna" {
		t.Fatalf("row 0 = %+v", anna)
	}
	if anna.Metrics["response_rate"] != 0.75 || anna.Metrics["median_first_reply_sec"] != 90 {
		t.Errorf("metrics = %v", anna.Metrics)
	}
	if anna.Metrics["spin_completeness"] != 50 || anna.Metrics["high_intent_chats"] != 2 {
		t.Errorf("behavior metrics not merged: %v", anna.Metrics)
	}

	boris := rows[1]
	if _, ok := boris.Metrics["median_first_reply_sec"]; ok {
		t.Error("undefined percentile must stay absent")
	}
	if _, ok := boris.Metrics["spin_completeness"]; ok {
		t.Error("no behavior rollup, key must stay absent")
	}
	if boris.Metrics["chats"] != 1 {
		t.Errorf("metrics = %v", boris.Metrics)
	}
}

func TestChannelSnapshotRows(t *testing.T) {
	ds := &Dataset{
		ChannelSummaries: []metrics.ChannelSummary{
			{Channel: types.ChannelWhatsApp, Chats: 3, NoReplyRate: floatPtr(1.0 / 3)},
		},
	}
	rows := ChannelSnapshotRows(ds)
	if len(rows) != 1 || rows[0].Key != "whatsapp" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Metrics["chats"] != 3 {
		t.Errorf("metrics = %v", rows[0].Metrics)
	}
}
