package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/livestock_alerts/internal/models"
)

// OutboxRepository - очередь рассылки в бд. Строка появляется вместе с сообщением
// и помечается обработанной после рассылки.
type OutboxRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewOutboxRepository(db *pgxpool.Pool, timeout time.Duration) *OutboxRepository {
	return &OutboxRepository{db: db, timeout: timeout}
}

// Claim захватывает строку на время lease. false - строка уже обработана
// или захвачена другим обработчиком.
func (r *OutboxRepository) Claim(ctx context.Context, alertID uuid.UUID, lease time.Duration) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE notification_outbox
		SET claimed_at = NOW(), attempts = attempts + 1
		WHERE alert_id = $1
			AND processed_at IS NULL
			AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2));
	`
	cmdTag, err := r.db.Exec(ctx, query, alertID, lease.Seconds())
	if err != nil {
		return false, mapError(err, "failed to claim outbox entry")
	}
	return cmdTag.RowsAffected() == 1, nil
}

// Complete сохраняет итог рассылки и закрывает строку
func (r *OutboxRepository) Complete(ctx context.Context, report models.DeliveryReport) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE notification_outbox
		SET processed_at = NOW(), attempted = $2, delivered = $3, failed = $4
		WHERE alert_id = $1;
	`
	_, err := r.db.Exec(ctx, query, report.AlertID, report.Attempted, report.Delivered, report.Failed)
	return mapError(err, "failed to complete outbox entry")
}

// Release снимает захват, чтобы строку подобрала следующая проверка очереди
func (r *OutboxRepository) Release(ctx context.Context, alertID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE notification_outbox SET claimed_at = NULL WHERE alert_id = $1 AND processed_at IS NULL;`, alertID)
	return mapError(err, "failed to release outbox entry")
}

// Pending возвращает необработанные строки старше olderThan, у которых
// осталось меньше maxClaims попыток
func (r *OutboxRepository) Pending(ctx context.Context, olderThan time.Duration, maxClaims, limit int) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT alert_id
		FROM notification_outbox
		WHERE processed_at IS NULL
			AND created_at < NOW() - make_interval(secs => $1)
			AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $1))
			AND attempts < $2
		ORDER BY created_at
		LIMIT $3;
	`
	rows, err := r.db.Query(ctx, query, olderThan.Seconds(), maxClaims, limit)
	if err != nil {
		return nil, mapError(err, "failed to list pending outbox entries")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapError(err, "failed to scan outbox row")
	}
	return ids, nil
}
