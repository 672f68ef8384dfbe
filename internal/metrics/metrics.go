// Package metrics computes per-conversation response metrics and rolls them
// up into per-manager and per-channel summaries.
package metrics

import (
	"sort"
	"time"

	"chat-insights-go/internal/types"
)

// Options carries the knobs shared by every chat in one run.
type Options struct {
	Location     *time.Location
	WorkWindow   WorkWindow
	SlowReplySec int
}

// ChatMetrics is the computed view of a single conversation. Latency fields
// are nil when undefined (no inbound, or no outbound after the first inbound).
type ChatMetrics struct {
	ChatID      string
	Channel     types.Channel
	ManagerID   string
	ManagerName string

	InboundCount  int
	OutboundCount int

	FirstInboundAt   *time.Time
	FirstOutboundAt  *time.Time
	FirstResponseSec *int
	LastInboundAt    *time.Time
	LastOutboundAt   *time.Time

	UnansweredInbound int
	Advice            []string
}

// NoReply reports a conversation the customer opened and nobody answered.
func (m ChatMetrics) NoReply() bool {
	return m.InboundCount > 0 && m.OutboundCount == 0
}

// SlowFirstReply reports a defined first response slower than the threshold.
func (m ChatMetrics) SlowFirstReply(thresholdSec int) bool {
	return m.FirstResponseSec != nil && *m.FirstResponseSec > thresholdSec
}

// UnansweredLastInbound reports that the newest inbound message has no
// outbound reply after it. Heuristic, not proof of real non-response.
func (m ChatMetrics) UnansweredLastInbound() bool {
	if m.LastInboundAt == nil {
		return false
	}
	return m.LastOutboundAt == nil || m.LastInboundAt.After(*m.LastOutboundAt)
}

// ComputeChatMetrics derives the metrics of one conversation. The first
// response is the earliest outbound at-or-after the earliest inbound; its
// latency ticks only inside the working window.
func ComputeChatMetrics(conv types.Conversation, opts Options) ChatMetrics {
	m := ChatMetrics{
		ChatID:      conv.ID,
		Channel:     conv.Channel,
		ManagerID:   conv.ManagerID,
		ManagerName: conv.ManagerName,
	}

	var inboundTimes, outboundTimes []time.Time
	for _, msg := range conv.Messages {
		switch msg.Direction {
		case types.DirectionIn:
			m.InboundCount++
			inboundTimes = append(inboundTimes, msg.SentAt)
		case types.DirectionOut:
			m.OutboundCount++
			outboundTimes = append(outboundTimes, msg.SentAt)
			if m.ManagerID == "" && msg.ManagerID != "" {
				m.ManagerID = msg.ManagerID
			}
		}
	}
	sort.Slice(inboundTimes, func(i, j int) bool { return inboundTimes[i].Before(inboundTimes[j]) })
	sort.Slice(outboundTimes, func(i, j int) bool { return outboundTimes[i].Before(outboundTimes[j]) })

	if len(inboundTimes) > 0 {
		m.FirstInboundAt = timePtr(inboundTimes[0])
		m.LastInboundAt = timePtr(inboundTimes[len(inboundTimes)-1])
	}
	if len(outboundTimes) > 0 {
		m.LastOutboundAt = timePtr(outboundTimes[len(outboundTimes)-1])
	}

	if m.FirstInboundAt != nil {
		for _, t := range outboundTimes {
			if !t.Before(*m.FirstInboundAt) {
				m.FirstOutboundAt = timePtr(t)
				break
			}
		}
	}

	if m.FirstInboundAt != nil && m.FirstOutboundAt != nil {
		if sec, ok := BusinessSeconds(*m.FirstInboundAt, *m.FirstOutboundAt, opts.Location, opts.WorkWindow); ok {
			m.FirstResponseSec = &sec
		}
	}

	// Inbound messages newer than the last outbound are unanswered.
	if m.LastInboundAt != nil && (m.LastOutboundAt == nil || m.LastInboundAt.After(*m.LastOutboundAt)) {
		for _, t := range inboundTimes {
			if m.LastOutboundAt == nil || t.After(*m.LastOutboundAt) {
				m.UnansweredInbound++
			}
		}
	}

	m.Advice = GenerateAdvice(conv, m, opts.SlowReplySec)
	return m
}

func timePtr(t time.Time) *time.Time { return &t }
