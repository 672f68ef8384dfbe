// Package pipeline wires the whole run together: fetch, compute, snapshot,
// publish, notify.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/crm"
	"chat-insights-go/internal/digest"
	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/snapshot"
	"chat-insights-go/internal/spin"
	"chat-insights-go/internal/types"
)

type Pipeline struct {
	cfg *config.Config
	log *logrus.Entry
	crm *crm.Client
}

func New(cfg *config.Config, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		log: log,
		crm: crm.New(cfg.CRMBaseURL, cfg.CRMAPIKey, log),
	}
}

// Dataset is everything one run computed, shared by the export and digest
// outputs so the CRM is only hit once.
type Dataset struct {
	RunTS      time.Time
	Start, End time.Time

	Conversations []types.Conversation
	ChatMetrics   []metrics.ChatMetrics
	Analyses      []spin.ChatAnalysis

	ManagerSummaries []metrics.ManagerSummary
	ChannelSummaries []metrics.ChannelSummary
	SpinManagers     []spin.ManagerSummary

	Records []digest.ChatRecord

	Stats        crm.Stats
	SkippedChats int
}

// Collect fetches the window's conversations and computes every per-chat and
// aggregate view.
func (p *Pipeline) Collect(ctx context.Context) (*Dataset, error) {
	loc, err := p.cfg.Location()
	if err != nil {
		return nil, err
	}
	window, err := metrics.ParseWorkHours(p.cfg.WorkHours)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{RunTS: time.Now().In(loc)}
	ds.Start, ds.End, err = p.cfg.DateRange(ds.RunTS)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"start": ds.Start.Format("2006-01-02"),
		"end":   ds.End.Format("2006-01-02"),
	}).Info("collecting conversations")

	users, err := p.crm.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	convs, err := p.crm.Chats(ctx, crm.FetchOptions{
		Start:     ds.Start,
		End:       ds.End,
		Channels:  p.cfg.ChannelFilter(),
		ChatLimit: p.cfg.ChatLimit,
	}, &ds.Stats)
	if err != nil {
		return nil, fmt.Errorf("fetch chats: %w", err)
	}

	totalMessages := 0
	for i := range convs {
		if p.cfg.MaxTotalMessages > 0 && totalMessages >= p.cfg.MaxTotalMessages {
			ds.SkippedChats = len(convs) - i
			p.log.WithField("skipped", ds.SkippedChats).Warn("message budget exhausted, skipping remaining chats")
			convs = convs[:i]
			break
		}
		msgs, err := p.crm.ChatMessages(ctx, convs[i].ID, p.cfg.MaxMessagesPerChat, &ds.Stats)
		if err != nil {
			return nil, fmt.Errorf("fetch messages of chat %s: %w", convs[i].ID, err)
		}
		convs[i].Messages = msgs
		totalMessages += len(msgs)

		resolveManager(&convs[i], users)

		if p.cfg.EnableOrderCheck {
			if err := p.enrichOrder(ctx, &convs[i]); err != nil {
				// order data is supplemental; the chat still counts
				p.log.WithError(err).WithField("chat_id", convs[i].ID).Warn("order lookup failed")
			}
		}
	}
	ds.Conversations = convs

	opts := metrics.Options{Location: loc, WorkWindow: window, SlowReplySec: p.cfg.SlowReplySec}
	for _, conv := range convs {
		m := metrics.ComputeChatMetrics(conv, opts)
		a := spin.Analyze(conv)
		ds.ChatMetrics = append(ds.ChatMetrics, m)
		ds.Analyses = append(ds.Analyses, a)
		ds.Records = append(ds.Records, digest.ChatRecord{Conv: conv, Metrics: m, Analysis: a})
	}

	ds.ManagerSummaries = metrics.AggregateManagers(ds.ChatMetrics, p.cfg.SlowReplySec)
	ds.ChannelSummaries = metrics.AggregateChannels(ds.ChatMetrics, p.cfg.SlowReplySec)
	ds.SpinManagers = spin.AggregateManagers(ds.Analyses)

	p.log.WithFields(logrus.Fields{
		"chats":                len(convs),
		"messages":             totalMessages,
		"dropped_no_timestamp": ds.Stats.DroppedNoTimestamp,
		"dropped_no_direction": ds.Stats.DroppedNoDirection,
	}).Info("dataset collected")

	return ds, nil
}

// resolveManager fills the owning manager from the chat record, falling back
// to the first outbound message, then resolves the display name.
func resolveManager(conv *types.Conversation, users map[string]types.User) {
	if conv.ManagerID == "" {
		for _, m := range conv.Messages {
			if m.Direction == types.DirectionOut && m.ManagerID != "" {
				conv.ManagerID = m.ManagerID
				break
			}
		}
	}
	if u, ok := users[conv.ManagerID]; ok {
		conv.ManagerName = u.DisplayName()
	}
	if conv.ManagerID == "" && conv.ManagerName == "" {
		conv.ManagerName = "(unassigned)"
	}
}

func (p *Pipeline) enrichOrder(ctx context.Context, conv *types.Conversation) error {
	orders, err := p.crm.OrdersByCustomer(ctx, conv.ClientID)
	if err != nil {
		return err
	}
	order := crm.FindRelatedOrder(orders, conv.CreatedAt)
	if order == nil {
		conv.PaymentStatus = types.PaymentUnknown
		return nil
	}
	conv.HasOrder = true
	conv.OrderID = order.ID
	conv.PaymentStatus = crm.DeterminePaymentStatus(order)
	return nil
}

// ManagerSnapshotRows merges the response and behavior rollups into one
// snapshot row per manager. Undefined metrics stay absent from the map.
func ManagerSnapshotRows(ds *Dataset) []snapshot.Row {
	spinByID := map[string]spin.ManagerSummary{}
	for _, s := range ds.SpinManagers {
		spinByID[s.ManagerID] = s
	}

	out := make([]snapshot.Row, 0, len(ds.ManagerSummaries))
	for _, m := range ds.ManagerSummaries {
		row := snapshot.Row{Key: m.ManagerID, Name: m.ManagerName, Metrics: map[string]float64{
			"chats":           float64(m.Chats),
			"responded_chats": float64(m.RespondedChats),
			"no_reply_chats":  float64(m.NoReplyChats),
		}}
		putRate(row.Metrics, "response_rate", m.ResponseRate)
		putRate(row.Metrics, "no_reply_rate", m.NoReplyRate)
		putInt(row.Metrics, "median_first_reply_sec", m.MedianFirstReplySec)
		putInt(row.Metrics, "p90_first_reply_sec", m.P90FirstReplySec)

		if s, ok := spinByID[m.ManagerID]; ok {
			row.Metrics["avg_questions_per_chat"] = s.AvgQuestionsPerChat
			row.Metrics["next_step_rate"] = s.NextStepRate
			row.Metrics["spin_completeness"] = s.AvgCompleteness
			row.Metrics["upsell_rate"] = s.UpsellRate
			row.Metrics["follow_up_gap_rate"] = s.FollowUpGapRate
			row.Metrics["high_intent_chats"] = float64(s.HighIntentChats)
		}
		out = append(out, row)
	}
	return out
}

func ChannelSnapshotRows(ds *Dataset) []snapshot.Row {
	out := make([]snapshot.Row, 0, len(ds.ChannelSummaries))
	for _, c := range ds.ChannelSummaries {
		row := snapshot.Row{Key: string(c.Channel), Name: string(c.Channel), Metrics: map[string]float64{
			"chats":           float64(c.Chats),
			"responded_chats": float64(c.RespondedChats),
			"no_reply_chats":  float64(c.NoReplyChats),
		}}
		putRate(row.Metrics, "response_rate", c.ResponseRate)
		putRate(row.Metrics, "no_reply_rate", c.NoReplyRate)
		putRate(row.Metrics, "slow_first_reply_rate", c.SlowFirstReplyRate)
		putInt(row.Metrics, "median_first_reply_sec", c.MedianFirstReplySec)
		putInt(row.Metrics, "p90_first_reply_sec", c.P90FirstReplySec)
		out = append(out, row)
	}
	return out
}

func putRate(m map[string]float64, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func putInt(m map[string]float64, key string, v *int) {
	if v != nil {
		m[key] = float64(*v)
	}
}
