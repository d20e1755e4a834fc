package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
)

const SignatureHeader = "X-Webhook-Signature"

// WebhookPayload - тело запроса, которое получает внешний обработчик
type WebhookPayload struct {
	Event     string             `json:"event"`
	AlertID   uuid.UUID          `json:"alert_id"`
	Title     string             `json:"title"`
	Category  models.Category    `json:"category"`
	Severity  models.Severity    `json:"severity"`
	State     string             `json:"state"`
	District  string             `json:"district"`
	Location  models.Coordinates `json:"coordinates"`
	Recipient WebhookRecipient   `json:"recipient"`
	Link      string             `json:"link,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type WebhookRecipient struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// WebhookNotifier отправляет POST с HMAC подписью на настроенный URL
type WebhookNotifier struct {
	url        string
	secret     string
	portalURL  string
	httpClient *http.Client
	now        func() time.Time
}

func NewWebhookNotifier(url, secret string, timeout time.Duration, portalURL string) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &WebhookNotifier{
		url:       url,
		secret:    secret,
		portalURL: portalURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}, nil
}

func (n *WebhookNotifier) Channel() models.Channel {
	return models.ChannelWebhook
}

func (n *WebhookNotifier) Notify(ctx context.Context, recipient models.Recipient, alert *models.Alert) error {
	payload, err := json.Marshal(WebhookPayload{
		Event:     "alert.created",
		AlertID:   alert.ID,
		Title:     alert.Title,
		Category:  alert.Category,
		Severity:  alert.Severity,
		State:     alert.Location.State,
		District:  alert.Location.District,
		Location:  alert.Location.Coordinates,
		Recipient: WebhookRecipient{ID: recipient.ID, Name: recipient.Name},
		Link:      AlertLink(n.portalURL, alert),
		Timestamp: n.now().UTC(),
	})
	if err != nil {
		return Permanent(fmt.Errorf("failed to marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return Permanent(fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	// Подпись добавляется, только если задан секрет
	if n.secret != "" {
		req.Header.Set(SignatureHeader, generateHMACSHA256(payload, n.secret))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	statusErr := fmt.Errorf("webhook delivery failed with status code %d", resp.StatusCode)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
		return Permanent(statusErr)
	}
	return statusErr
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
