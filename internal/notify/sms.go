package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier отправляет короткий текст через Twilio
type SMSNotifier struct {
	api        messageCreator
	fromNumber string
	portalURL  string
}

func NewSMSNotifier(accountSID, authToken, fromNumber, portalURL string) (*SMSNotifier, error) {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil, errors.New("twilio account sid, auth token and from number are required")
	}
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{api: rc.Api, fromNumber: fromNumber, portalURL: portalURL}, nil
}

func (n *SMSNotifier) Channel() models.Channel {
	return models.ChannelSMS
}

func (n *SMSNotifier) Notify(ctx context.Context, recipient models.Recipient, alert *models.Alert) error {
	if recipient.Phone == "" {
		return ErrNoAddress
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient.Phone)
	params.SetFrom(n.fromNumber)
	params.SetBody(Render(alert, n.portalURL).Short)

	return runWithContext(ctx, func() error {
		_, err := n.api.CreateMessage(params)
		if err == nil {
			return nil
		}
		// 4xx от Twilio (неверный номер, отписка) повторять бесполезно
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) && restErr.Status >= 400 && restErr.Status < 500 && restErr.Status != http.StatusTooManyRequests {
			return Permanent(fmt.Errorf("twilio rejected message: %w", err))
		}
		return fmt.Errorf("failed to send sms: %w", err)
	})
}
