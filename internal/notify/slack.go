// Package notify sends drift notifications to Slack.
package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"github.com/docsentry/docsentry/internal/domain"
	"github.com/docsentry/docsentry/internal/report"
)

// SlackAPI is the slice of the Slack client the notifier uses.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts drift summaries to a channel. A nil notifier is safe
// to call and does nothing, so callers don't branch on configuration.
type SlackNotifier struct {
	api     SlackAPI
	channel string
}

// NewSlackNotifier creates a notifier for the given channel. Returns nil
// when the token or channel is empty.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
	}
}

// NewSlackNotifierWithAPI creates a notifier with a custom API backend
// (for testing).
func NewSlackNotifierWithAPI(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel}
}

// NotifyDrift posts a drift summary. Clean reports are not announced.
func (n *SlackNotifier) NotifyDrift(r *domain.DriftReport) {
	if n == nil || !r.HasDrift() {
		return
	}

	text := fmt.Sprintf("%s\nSee the pull request comment for details.", report.RenderSlackSummary(r))
	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("WARN: slack notification failed: %v", err)
	}
}
