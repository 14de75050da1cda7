// Package alert pushes operator notifications for critical ledger events.
// Delivery is best-effort by contract: callers log failures and move on.
package alert

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/veritrail/traild/internal/domain"
)

// SlackAPI abstracts the subset of the Slack client used by Notifier, so
// tests run without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Notifier posts critical system-log events to a Slack channel.
type Notifier struct {
	api     SlackAPI
	channel string
}

func NewNotifier(api SlackAPI, channel string) *Notifier {
	return &Notifier{api: api, channel: channel}
}

// CriticalEvent posts a summary of a critical entry. Secrets cannot appear
// here: the entry context was sanitized before the entry was written.
func (n *Notifier) CriticalEvent(ctx context.Context, entry *domain.SystemLog) error {
	text := fmt.Sprintf(":rotating_light: *%s* (%s)\n%s", entry.EventType, entry.Severity, entry.Message)
	if entry.CorrelationID != "" {
		text += "\ncorrelation: `" + entry.CorrelationID + "`"
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channel, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("alert.Notifier.CriticalEvent: %w", err)
	}

	return nil
}
