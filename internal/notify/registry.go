package notify

import (
	"context"
	"fmt"

	"github.com/shenikar/livestock_alerts/internal/config"
	"github.com/shenikar/livestock_alerts/internal/models"
)

// NewNotifiers создает клиентов для включенных в конфигурации каналов.
// Порядок фиксирован models.Channels и не зависит от порядка в NOTIFY_CHANNELS.
func NewNotifiers(ctx context.Context, cfg *config.Config) ([]Notifier, error) {
	notifiers := make([]Notifier, 0, len(cfg.NotifyChannels))
	for _, ch := range models.Channels {
		if !cfg.ChannelEnabled(string(ch)) {
			continue
		}
		n, err := newNotifier(ctx, ch, cfg)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch, err)
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}

func newNotifier(ctx context.Context, ch models.Channel, cfg *config.Config) (Notifier, error) {
	switch ch {
	case models.ChannelEmail:
		if cfg.SMTPURL == "" {
			return nil, fmt.Errorf("SMTP_URL is not set")
		}
		return NewEmailNotifier(cfg.SMTPURL, cfg.PortalBaseURL)
	case models.ChannelSMS:
		return NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.PortalBaseURL)
	case models.ChannelPush:
		if cfg.FirebaseCredentials == "" {
			return nil, fmt.Errorf("FIREBASE_CREDENTIALS is not set")
		}
		return NewPushNotifier(ctx, cfg.FirebaseCredentials, cfg.PortalBaseURL)
	case models.ChannelWebhook:
		return NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout, cfg.PortalBaseURL)
	}
	return nil, fmt.Errorf("unknown channel %q", ch)
}
