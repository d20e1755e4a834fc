package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/livestock_alerts/internal/models"
)

// DirectoryRepository читает справочник пользователей для выбора получателей рассылки
type DirectoryRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewDirectoryRepository(db *pgxpool.Pool, timeout time.Duration) *DirectoryRepository {
	return &DirectoryRepository{db: db, timeout: timeout}
}

// channelOptIn - условие подписки пользователя на канал
func channelOptIn(ch models.Channel) (string, error) {
	switch ch {
	case models.ChannelEmail:
		return "notify_email AND email <> ''", nil
	case models.ChannelSMS:
		return "notify_sms AND COALESCE(phone, '') <> ''", nil
	case models.ChannelPush:
		return "notify_push AND COALESCE(device_token, '') <> ''", nil
	case models.ChannelWebhook:
		return "notify_webhook", nil
	}
	return "", fmt.Errorf("unknown channel %q", ch)
}

func buildRecipientsQuery(rq models.RecipientQuery) (string, []any, error) {
	optIn, err := channelOptIn(rq.Channel)
	if err != nil {
		return "", nil, err
	}
	query := `
		SELECT id, name, email, COALESCE(phone, ''), COALESCE(device_token, '')
		FROM users
		WHERE lower(state) = lower($1)
			AND lower(district) = lower($2)
			AND is_active
			AND email_verified
			AND id <> $3
			AND ` + optIn + `
		ORDER BY id;
	`
	return query, []any{rq.State, rq.District, rq.ExcludeUserID}, nil
}

// FindRecipients возвращает активных подтвержденных пользователей региона,
// подписанных на канал, кроме автора сообщения
func (r *DirectoryRepository) FindRecipients(ctx context.Context, rq models.RecipientQuery) ([]models.Recipient, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := buildRecipientsQuery(rq)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to find recipients")
	}
	recipients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Recipient, error) {
		var rc models.Recipient
		err := row.Scan(&rc.ID, &rc.Name, &rc.Email, &rc.Phone, &rc.DeviceToken)
		return rc, err
	})
	if err != nil {
		return nil, mapError(err, "failed to scan recipient row")
	}
	return recipients, nil
}
