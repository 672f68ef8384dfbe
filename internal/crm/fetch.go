package crm

import (
	"context"
	"net/url"
	"sort"
	"time"

	"chat-insights-go/internal/types"
)

const crmTimeLayout = "2006-01-02 15:04:05"

// Users returns all CRM users keyed by id, for manager name resolution.
func (c *Client) Users(ctx context.Context) (map[string]types.User, error) {
	out := map[string]types.User{}
	err := c.paginate(ctx, "/api/v5/users", nil, []string{"users", "data"}, func(raw map[string]any) bool {
		id := strField(raw, "id", "userId")
		if id == "" {
			return true
		}
		out[id] = types.User{
			ID:        id,
			FirstName: strField(raw, "firstName"),
			Name:      strField(raw, "name"),
			Email:     strField(raw, "email"),
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchOptions bound one chat-listing run.
type FetchOptions struct {
	Start, End time.Time
	// Channels filters conversations by source; empty admits everything.
	Channels map[string]bool
	// ChatLimit caps the number of chats fetched; 0 means no cap.
	ChatLimit int
}

// Chats lists conversations in the window, without message history. Chats in
// filtered-out channels are skipped before the limit applies.
func (c *Client) Chats(ctx context.Context, opts FetchOptions, stats *Stats) ([]types.Conversation, error) {
	query := url.Values{}
	query.Set("startDate", opts.Start.Format(crmTimeLayout))
	query.Set("endDate", opts.End.Format(crmTimeLayout))

	var out []types.Conversation
	err := c.paginate(ctx, "/api/v5/chats", query, []string{"chats", "data"}, func(raw map[string]any) bool {
		conv, ok := normalizeChat(raw, stats)
		if !ok {
			return true
		}
		if len(opts.Channels) > 0 && !opts.Channels[string(conv.Channel)] {
			return true
		}
		out = append(out, conv)
		return opts.ChatLimit == 0 || len(out) < opts.ChatLimit
	})
	if err != nil {
		return nil, err
	}
	c.log.WithField("chats", len(out)).Info("fetched chat list")
	return out, nil
}

// ChatMessages returns one chat's history in sent order, capped at maxMessages.
func (c *Client) ChatMessages(ctx context.Context, chatID string, maxMessages int, stats *Stats) ([]types.Message, error) {
	query := url.Values{}
	query.Set("chatId", chatID)

	var out []types.Message
	err := c.paginate(ctx, "/api/v5/chats/messages", query, []string{"messages", "data"}, func(raw map[string]any) bool {
		m, ok := normalizeMessage(raw, stats)
		if !ok {
			return true
		}
		if m.ChatID != "" && m.ChatID != chatID {
			stats.DroppedWrongChat++
			return true
		}
		if m.ChatID == "" {
			m.ChatID = chatID
		}
		out = append(out, m)
		return maxMessages == 0 || len(out) < maxMessages
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}
