package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"chat-insights-go/internal/digest"
	"chat-insights-go/internal/metrics"
	"chat-insights-go/internal/notify"
	"chat-insights-go/internal/sheets"
	"chat-insights-go/internal/snapshot"
)

func chatMetricsByID(ds *Dataset) map[string]metrics.ChatMetrics {
	out := make(map[string]metrics.ChatMetrics, len(ds.ChatMetrics))
	for _, m := range ds.ChatMetrics {
		out[m.ChatID] = m
	}
	return out
}

// exportTabs are the per-run views: raw data, aggregates and advice.
func exportTabs(ds *Dataset) []sheets.Tab {
	return []sheets.Tab{
		sheets.ChatsRawTab(ds.Conversations, chatMetricsByID(ds)),
		sheets.MessagesRawTab(ds.Conversations),
		sheets.ManagerSummaryTab(ds.ManagerSummaries),
		sheets.ChannelSummaryTab(ds.ChannelSummaries),
		sheets.ChatAdviceTab(ds.ChatMetrics),
		sheets.SpinManagersTab(ds.SpinManagers),
	}
}

// digestOutput carries the week-over-week artifacts of one run.
type digestOutput struct {
	managerDeltas []digest.DeltaRow
	channelDeltas []digest.DeltaRow
	examples      []digest.Example
	tabs          []sheets.Tab
}

// buildDigest appends this run's snapshot and computes deltas against the
// previous one.
func (p *Pipeline) buildDigest(ds *Dataset) (*digestOutput, error) {
	store, err := snapshot.Open(p.cfg.SnapshotDBPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	managerRows := ManagerSnapshotRows(ds)
	channelRows := ChannelSnapshotRows(ds)

	priorManagers, hadPrior, err := store.Prior(ds.RunTS, snapshot.ScopeManager)
	if err != nil {
		return nil, fmt.Errorf("load prior manager snapshot: %w", err)
	}
	priorChannels, _, err := store.Prior(ds.RunTS, snapshot.ScopeChannel)
	if err != nil {
		return nil, fmt.Errorf("load prior channel snapshot: %w", err)
	}

	if err := store.Append(ds.RunTS, snapshot.ScopeManager, managerRows); err != nil {
		return nil, fmt.Errorf("append manager snapshot: %w", err)
	}
	if err := store.Append(ds.RunTS, snapshot.ScopeChannel, channelRows); err != nil {
		return nil, fmt.Errorf("append channel snapshot: %w", err)
	}

	out := &digestOutput{}
	if hadPrior {
		out.managerDeltas = digest.Deltas(managerRows, priorManagers)
		out.channelDeltas = digest.Deltas(channelRows, priorChannels)
	} else {
		p.log.Info("no prior snapshot, digest will carry current values only")
	}
	out.examples = digest.SelectExamples(ds.Records, p.cfg.ExamplesPerCategory)

	out.tabs = []sheets.Tab{
		sheets.SnapshotTab("behavior_snapshot_managers", "manager_id", ds.RunTS, managerRows, digest.ManagerMetricKeys),
		sheets.DigestTab("digest_managers", "manager_id", ds.RunTS, out.managerDeltas, digest.ManagerMetricKeys),
		sheets.DigestTab("digest_channels", "channel", ds.RunTS, out.channelDeltas, digest.ChannelMetricKeys),
		sheets.WeeklyExamplesTab(ds.RunTS, out.examples),
	}
	return out, nil
}

func (p *Pipeline) notifyDigest(ctx context.Context, ds *Dataset, out *digestOutput) {
	if !p.cfg.SlackEnabled {
		p.log.Info("slack disabled, skipping digest message")
		return
	}
	if p.cfg.SlackToken == "" || p.cfg.SlackChannel == "" {
		p.log.Warn("slack enabled but SLACK_TOKEN or SLACK_CHANNEL missing, skipping")
		return
	}
	period := ds.Start.Format("2006-01-02") + " .. " + ds.End.Format("2006-01-02")
	text := notify.BuildDigestMessage(period, out.managerDeltas)
	if err := notify.New(p.cfg.SlackToken, p.cfg.SlackChannel).Send(ctx, text); err != nil {
		// the workbook is already on disk; a lost message is not a failed run
		p.log.WithError(err).Warn("digest message failed")
		return
	}
	p.log.Info("digest message sent")
}

// Export fetches and publishes the per-run tabs.
func (p *Pipeline) Export(ctx context.Context) error {
	ds, err := p.Collect(ctx)
	if err != nil {
		return err
	}
	if err := p.publish(exportTabs(ds)); err != nil {
		return err
	}
	p.logReport(ds)
	return nil
}

// Digest fetches, snapshots and publishes the week-over-week tabs, then
// notifies.
func (p *Pipeline) Digest(ctx context.Context) error {
	ds, err := p.Collect(ctx)
	if err != nil {
		return err
	}
	out, err := p.buildDigest(ds)
	if err != nil {
		return err
	}
	if err := p.publish(out.tabs); err != nil {
		return err
	}
	p.notifyDigest(ctx, ds, out)
	p.logReport(ds)
	return nil
}

// Run does one full pass: export and digest tabs in a single workbook, one
// CRM fetch.
func (p *Pipeline) Run(ctx context.Context) error {
	ds, err := p.Collect(ctx)
	if err != nil {
		return err
	}
	out, err := p.buildDigest(ds)
	if err != nil {
		return err
	}
	if err := p.publish(append(exportTabs(ds), out.tabs...)); err != nil {
		return err
	}
	p.notifyDigest(ctx, ds, out)
	p.logReport(ds)
	return nil
}

// logReport is the post-run summary: what was processed, what was skipped,
// and how much the upstream data misbehaved.
func (p *Pipeline) logReport(ds *Dataset) {
	p.log.WithFields(logrus.Fields{
		"chats":                   len(ds.Conversations),
		"skipped_chats":           ds.SkippedChats,
		"inconsistencies":         ds.Stats.Total(),
		"dropped_no_timestamp":    ds.Stats.DroppedNoTimestamp,
		"dropped_no_direction":    ds.Stats.DroppedNoDirection,
		"dropped_wrong_chat":      ds.Stats.DroppedWrongChat,
		"outbound_no_manager":     ds.Stats.OutboundNoManager,
		"inbound_manager_dropped": ds.Stats.InboundManagerDropped,
	}).Info("run finished")
}

func (p *Pipeline) publish(tabs []sheets.Tab) error {
	if err := sheets.Publish(p.cfg.WorkbookPath, tabs); err != nil {
		return fmt.Errorf("publish workbook: %w", err)
	}
	p.log.WithField("path", p.cfg.WorkbookPath).Info("workbook written")
	return nil
}
