// Package notify posts the weekly digest message to a Slack channel.
package notify

import (
	"context"

	"github.com/slack-go/slack"
)

type Notifier struct {
	api     *slack.Client
	channel string
}

func New(token, channel string) *Notifier {
	return &Notifier{api: slack.New(token), channel: channel}
}

// Send posts one plain-text message. Callers treat failures as non-fatal:
// the workbook is already written by the time a digest message goes out.
func (n *Notifier) Send(ctx context.Context, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	return err
}
