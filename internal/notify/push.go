package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/shenikar/livestock_alerts/internal/models"
	"google.golang.org/api/option"
)

type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier отправляет push-уведомления через Firebase Cloud Messaging
type PushNotifier struct {
	client    pushSender
	portalURL string
}

func NewPushNotifier(ctx context.Context, credentialsFile, portalURL string) (*PushNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	fcm, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &PushNotifier{client: fcm, portalURL: portalURL}, nil
}

func (n *PushNotifier) Channel() models.Channel {
	return models.ChannelPush
}

func (n *PushNotifier) Notify(ctx context.Context, recipient models.Recipient, alert *models.Alert) error {
	if recipient.DeviceToken == "" {
		return ErrNoAddress
	}

	msg := Render(alert, n.portalURL)
	message := &messaging.Message{
		Token: recipient.DeviceToken,
		Notification: &messaging.Notification{
			Title: msg.Subject,
			Body:  msg.Short,
		},
		Data: map[string]string{
			"alertId":  alert.ID.String(),
			"severity": string(alert.Severity),
			"category": string(alert.Category),
			"link":     msg.Link,
		},
		Android: &messaging.AndroidConfig{
			Priority: androidPriority(alert.Severity),
		},
	}

	if _, err := n.client.Send(ctx, message); err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) || messaging.IsInvalidArgument(err) {
			return Permanent(fmt.Errorf("push token rejected: %w", err))
		}
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

func androidPriority(s models.Severity) string {
	if s.Weight() >= models.SeverityHigh.Weight() {
		return "high"
	}
	return "normal"
}
