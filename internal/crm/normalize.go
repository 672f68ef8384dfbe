package crm

import (
	"fmt"
	"strings"
	"time"

	"chat-insights-go/internal/types"
)

// Stats counts records the normalizer had to drop or repair. The run report
// surfaces these so silent data decay is visible.
type Stats struct {
	DroppedNoTimestamp  int
	DroppedNoDirection  int
	DroppedWrongChat    int
	DirectionNormalized int

	// Direction/author mismatches: repaired, not dropped.
	OutboundNoManager     int
	InboundManagerDropped int
}

// Total returns the overall inconsistency count for the run summary.
func (s Stats) Total() int {
	return s.DroppedNoTimestamp + s.DroppedNoDirection + s.DroppedWrongChat +
		s.DirectionNormalized + s.OutboundNoManager + s.InboundManagerDropped
}

// Field access helpers over the decoded JSON. The API is inconsistent across
// installations, so every field has an alias chain; adjust it here and
// nowhere else.

func strField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func numField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k].(float64); ok {
			return v
		}
	}
	return 0
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i, true
		}
	}
	return 0, false
}

func listField(doc map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		raw, ok := doc[k].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, it := range raw {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeMessage maps one raw message into the internal model. ok=false
// drops the record; stats explain why.
func normalizeMessage(raw map[string]any, stats *Stats) (types.Message, bool) {
	dir := strings.ToLower(strField(raw, "direction", "type", "inOut"))
	switch dir {
	case "in", "out":
	case "incoming", "inbound":
		dir = "in"
		stats.DirectionNormalized++
	case "outgoing", "outbound":
		dir = "out"
		stats.DirectionNormalized++
	default:
		stats.DroppedNoDirection++
		return types.Message{}, false
	}

	sentAt, ok := parseTime(strField(raw, "sentAt", "createdAt", "date", "time"))
	if !ok {
		stats.DroppedNoTimestamp++
		return types.Message{}, false
	}

	m := types.Message{
		ID:          strField(raw, "id", "messageId"),
		ChatID:      strField(raw, "chatId", "chat_id"),
		Direction:   types.Direction(dir),
		SentAt:      sentAt,
		Text:        strField(raw, "text", "message", "body"),
		ManagerID:   strField(raw, "managerId", "userId", "operatorId"),
		MessageType: strings.ToUpper(strField(raw, "messageType", "contentType")),
		AuthorType:  strings.ToLower(strField(raw, "authorType", "author")),
	}

	// Manager id belongs to outbound only. Repair and count, don't drop.
	switch m.Direction {
	case types.DirectionOut:
		if m.ManagerID == "" {
			stats.OutboundNoManager++
		}
	case types.DirectionIn:
		if m.ManagerID != "" {
			m.ManagerID = ""
			stats.InboundManagerDropped++
		}
	}
	return m, true
}

// normalizeChat maps one raw chat. Chats without a parseable creation time
// are dropped.
func normalizeChat(raw map[string]any, stats *Stats) (types.Conversation, bool) {
	createdAt, ok := parseTime(strField(raw, "createdAt", "dateCreate"))
	if !ok {
		stats.DroppedNoTimestamp++
		return types.Conversation{}, false
	}
	conv := types.Conversation{
		ID:        strField(raw, "id", "chatId"),
		Channel:   types.Channel(strings.ToLower(strField(raw, "channel", "source", "type"))),
		ClientID:  strField(raw, "clientId", "customerId", "contactId"),
		OrderID:   strField(raw, "orderId", "dealId"),
		ManagerID: strField(raw, "managerId", "userId"),
		CreatedAt: createdAt,
		Status:    strField(raw, "status"),
	}
	if t, ok := parseTime(strField(raw, "updatedAt", "dateUpdate")); ok {
		conv.UpdatedAt = t
	}
	return conv, ok
}
