package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/shenikar/livestock_alerts/internal/models"
)

type emailSender interface {
	Send(message string, params *types.Params) []error
}

type senderFactory func(rawURL string) (emailSender, error)

func shoutrrrSender(rawURL string) (emailSender, error) {
	sender, err := shoutrrr.CreateSender(rawURL)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// EmailNotifier отправляет письма через shoutrrr. Адрес получателя
// подставляется в базовый smtp URL.
type EmailNotifier struct {
	baseURL   url.URL
	portalURL string
	newSender senderFactory
}

func NewEmailNotifier(smtpURL, portalURL string) (*EmailNotifier, error) {
	u, err := url.Parse(smtpURL)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp url: %w", err)
	}
	if u.Scheme != "smtp" {
		return nil, fmt.Errorf("smtp url must use smtp:// scheme, got %q", u.Scheme)
	}
	return &EmailNotifier{
		baseURL:   *u,
		portalURL: portalURL,
		newSender: shoutrrrSender,
	}, nil
}

func (n *EmailNotifier) Channel() models.Channel {
	return models.ChannelEmail
}

func (n *EmailNotifier) recipientURL(email string) string {
	u := n.baseURL
	q := u.Query()
	q.Set("toaddresses", email)
	u.RawQuery = q.Encode()
	return u.String()
}

func (n *EmailNotifier) Notify(ctx context.Context, recipient models.Recipient, alert *models.Alert) error {
	if recipient.Email == "" {
		return ErrNoAddress
	}
	sender, err := n.newSender(n.recipientURL(recipient.Email))
	if err != nil {
		return Permanent(fmt.Errorf("failed to create email sender: %w", err))
	}

	msg := Render(alert, n.portalURL)
	params := types.Params{"title": msg.Subject}
	return runWithContext(ctx, func() error {
		var errs []error
		for _, err := range sender.Send(msg.Body, &params) {
			if err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("failed to send email: %w", errors.Join(errs...))
		}
		return nil
	})
}
