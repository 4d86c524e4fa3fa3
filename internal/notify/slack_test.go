package notify

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"

	"github.com/docsentry/docsentry/internal/domain"
)

type recordingAPI struct {
	channels []string
}

func (r *recordingAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	r.channels = append(r.channels, channelID)
	return channelID, "ts", nil
}

func TestNotifyDriftPostsOnFindings(t *testing.T) {
	api := &recordingAPI{}
	n := NewSlackNotifierWithAPI(api, "#docs")

	n.NotifyDrift(&domain.DriftReport{
		Repository: "acme/widgets",
		PullNumber: 42,
		Candidates: 3,
		Findings:   []domain.DriftFinding{{Path: "docs/api.md", Severity: domain.DriftSeverityHigh}},
	})

	assert.Equal(t, []string{"#docs"}, api.channels)
}

func TestNotifyDriftSkipsCleanReport(t *testing.T) {
	api := &recordingAPI{}
	n := NewSlackNotifierWithAPI(api, "#docs")

	n.NotifyDrift(&domain.DriftReport{Repository: "acme/widgets", PullNumber: 42, Candidates: 3})

	assert.Empty(t, api.channels)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *SlackNotifier
	n.NotifyDrift(&domain.DriftReport{Findings: []domain.DriftFinding{{Path: "x"}}})

	assert.Nil(t, NewSlackNotifier("", "#docs"))
	assert.Nil(t, NewSlackNotifier("xoxb-token", ""))
}
