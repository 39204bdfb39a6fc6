package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"salonpro-retention/logger"
)

// Alerter forwards operator alerts to a chat channel.
type Alerter interface {
	Alert(ctx context.Context, severity, title, message string) error
}

type SlackAlerter struct {
	api     *slack.Client
	channel string
	log     *logger.Logger
}

func NewSlackAlerter(api *slack.Client, channel string, baseLog *logger.Logger) *SlackAlerter {
	return &SlackAlerter{api: api, channel: channel, log: baseLog.With("service", "SlackAlerter")}
}

// NewAlerter returns a Slack alerter when a token and channel are configured
// and a no-op otherwise.
func NewAlerter(token, channel string, baseLog *logger.Logger) Alerter {
	if token == "" || channel == "" {
		return NopAlerter{}
	}
	return NewSlackAlerter(slack.New(token), channel, baseLog)
}

func (a *SlackAlerter) Alert(ctx context.Context, severity, title, message string) error {
	text := fmt.Sprintf("%s *%s*\n%s", severityIcon(severity), title, message)
	_, _, err := a.api.PostMessageContext(ctx, a.channel, slack.MsgOptionText(text, false))
	if err != nil {
		a.log.Warn("slack post failed", "channel", a.channel, "error", err)
		return err
	}
	return nil
}

func severityIcon(severity string) string {
	switch severity {
	case "critical":
		return ":rotating_light:"
	case "high":
		return ":warning:"
	default:
		return ":information_source:"
	}
}

type NopAlerter struct{}

func (NopAlerter) Alert(context.Context, string, string, string) error { return nil }
