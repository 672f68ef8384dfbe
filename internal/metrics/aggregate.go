package metrics

import (
	"math"
	"sort"

	"chat-insights-go/internal/types"
)

// ManagerSummary is the per-manager rollup of one run's chat metrics.
// Pointer fields are nil when the underlying set is empty (never zero-filled).
type ManagerSummary struct {
	ManagerID   string
	ManagerName string

	Chats             int
	Inbound           int
	Outbound          int
	UnansweredInbound int

	NoReplyChats        int
	SlowFirstReplyChats int
	RespondedChats      int

	NoReplyRate        *float64
	SlowFirstReplyRate *float64
	ResponseRate       *float64

	MedianFirstReplySec *int
	P90FirstReplySec    *int
}

type ChannelSummary struct {
	Channel types.Channel

	Chats    int
	Inbound  int
	Outbound int

	NoReplyChats        int
	SlowFirstReplyChats int
	RespondedChats      int

	NoReplyRate        *float64
	SlowFirstReplyRate *float64
	ResponseRate       *float64

	MedianFirstReplySec *int
	P90FirstReplySec    *int
}

// NearestRankPercentile returns the nearest-rank percentile of values for
// p in [0, 1]. nil for an empty input — undefined, never zero.
func NearestRankPercentile(values []int, p float64) *int {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	k := int(math.Round(float64(len(sorted)-1) * p))
	if k < 0 {
		k = 0
	}
	if k > len(sorted)-1 {
		k = len(sorted) - 1
	}
	v := sorted[k]
	return &v
}

func rate(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	r := float64(part) / float64(whole)
	return &r
}

type tally struct {
	chats, inbound, outbound, unanswered int
	noReply, slow, responded             int
	firstReplySecs                       []int
}

func (t *tally) add(m ChatMetrics, slowReplySec int) {
	t.chats++
	t.inbound += m.InboundCount
	t.outbound += m.OutboundCount
	t.unanswered += m.UnansweredInbound
	if m.NoReply() {
		t.noReply++
	}
	if m.SlowFirstReply(slowReplySec) {
		t.slow++
	}
	if m.FirstResponseSec != nil {
		t.responded++
		t.firstReplySecs = append(t.firstReplySecs, *m.FirstResponseSec)
	}
}

// AggregateManagers rolls chat metrics up by manager, sorted by chat count
// descending, then name.
func AggregateManagers(rows []ChatMetrics, slowReplySec int) []ManagerSummary {
	type key struct{ id, name string }
	byMgr := map[key]*tally{}
	for _, m := range rows {
		k := key{m.ManagerID, m.ManagerName}
		t := byMgr[k]
		if t == nil {
			t = &tally{}
			byMgr[k] = t
		}
		t.add(m, slowReplySec)
	}

	out := make([]ManagerSummary, 0, len(byMgr))
	for k, t := range byMgr {
		out = append(out, ManagerSummary{
			ManagerID:           k.id,
			ManagerName:         k.name,
			Chats:               t.chats,
			Inbound:             t.inbound,
			Outbound:            t.outbound,
			UnansweredInbound:   t.unanswered,
			NoReplyChats:        t.noReply,
			SlowFirstReplyChats: t.slow,
			RespondedChats:      t.responded,
			NoReplyRate:         rate(t.noReply, t.chats),
			SlowFirstReplyRate:  rate(t.slow, t.chats),
			ResponseRate:        rate(t.responded, t.chats),
			MedianFirstReplySec: NearestRankPercentile(t.firstReplySecs, 0.5),
			P90FirstReplySec:    NearestRankPercentile(t.firstReplySecs, 0.9),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chats != out[j].Chats {
			return out[i].Chats > out[j].Chats
		}
		return out[i].ManagerName < out[j].ManagerName
	})
	return out
}

// AggregateChannels rolls chat metrics up by channel.
func AggregateChannels(rows []ChatMetrics, slowReplySec int) []ChannelSummary {
	byCh := map[types.Channel]*tally{}
	for _, m := range rows {
		ch := m.Channel
		if ch == "" {
			ch = "unknown"
		}
		t := byCh[ch]
		if t == nil {
			t = &tally{}
			byCh[ch] = t
		}
		t.add(m, slowReplySec)
	}

	out := make([]ChannelSummary, 0, len(byCh))
	for ch, t := range byCh {
		out = append(out, ChannelSummary{
			Channel:             ch,
			Chats:               t.chats,
			Inbound:             t.inbound,
			Outbound:            t.outbound,
			NoReplyChats:        t.noReply,
			SlowFirstReplyChats: t.slow,
			RespondedChats:      t.responded,
			NoReplyRate:         rate(t.noReply, t.chats),
			SlowFirstReplyRate:  rate(t.slow, t.chats),
			ResponseRate:        rate(t.responded, t.chats),
			MedianFirstReplySec: NearestRankPercentile(t.firstReplySecs, 0.5),
			P90FirstReplySec:    NearestRankPercentile(t.firstReplySecs, 0.9),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chats != out[j].Chats {
			return out[i].Chats > out[j].Chats
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}
