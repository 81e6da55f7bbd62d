package notify

import (
	"context"
	"fmt"

	slackgo "github.com/slack-go/slack"
)

// SlackNotifier posts events to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	msg := &slackgo.WebhookMessage{Text: text}
	if err := slackgo.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
