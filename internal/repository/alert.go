package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/internal/service"
)

type AlertRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewAlertRepository(db *pgxpool.Pool, timeout time.Duration) service.AlertRepository {
	return &AlertRepository{
		db:      db,
		timeout: timeout,
	}
}

const alertColumns = `
		a.id, a.title, a.description, a.category, a.severity, a.status, a.priority, a.is_public, a.tags,
		a.state, a.district, a.village, a.pincode, a.address,
		ST_Y(a.location::geometry) AS lat,
		ST_X(a.location::geometry) AS lng,
		a.species, a.breed, a.animal_count, a.age_group, a.symptoms, a.mortality_count, a.mortality_percentage,
		a.attachments,
		a.reported_by, COALESCE(rep.name, '') AS reporter_name, COALESCE(rep.email, '') AS reporter_email,
		a.assigned_to, COALESCE(asg.name, '') AS assignee_name, COALESCE(asg.email, '') AS assignee_email,
		a.follow_up_required, a.follow_up_date, a.resolved_at, a.closed_at, a.created_at, a.updated_at`

const alertFrom = `
		FROM alerts a
		LEFT JOIN users rep ON rep.id = a.reported_by
		LEFT JOIN users asg ON asg.id = a.assigned_to`

// scanAlert читает строку с колонками alertColumns и дополнительными значениями extra
func scanAlert(row pgx.Row, extra ...any) (*models.Alert, error) {
	a := &models.Alert{}
	var (
		category, severity, status, species, ageGroup string
		assignedTo                                    pgtype.UUID
		assigneeName, assigneeEmail                   string
	)
	dest := []any{
		&a.ID, &a.Title, &a.Description, &category, &severity, &status, &a.Priority, &a.IsPublic, &a.Tags,
		&a.Location.State, &a.Location.District, &a.Location.Village, &a.Location.Pincode, &a.Location.Address,
		&a.Location.Coordinates.Lat,
		&a.Location.Coordinates.Lng,
		&species, &a.AffectedAnimals.Breed, &a.AffectedAnimals.Count, &ageGroup, &a.AffectedAnimals.Symptoms,
		&a.AffectedAnimals.Mortality.Count, &a.AffectedAnimals.Mortality.Percentage,
		&a.Attachments,
		&a.ReportedBy.ID, &a.ReportedBy.Name, &a.ReportedBy.Email,
		&assignedTo, &assigneeName, &assigneeEmail,
		&a.FollowUpRequired, &a.FollowUpDate, &a.ResolvedAt, &a.ClosedAt, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	a.Category = models.Category(category)
	a.Severity = models.Severity(severity)
	a.Status = models.AlertStatus(status)
	a.AffectedAnimals.Species = models.Species(species)
	a.AffectedAnimals.AgeGroup = models.AgeGroup(ageGroup)
	if assignedTo.Valid {
		a.AssignedTo = &models.UserRef{ID: uuid.UUID(assignedTo.Bytes), Name: assigneeName, Email: assigneeEmail}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.AffectedAnimals.Symptoms == nil {
		a.AffectedAnimals.Symptoms = []string{}
	}
	if a.Attachments == nil {
		a.Attachments = []models.Attachment{}
	}
	a.Comments = []models.Comment{}
	a.Actions = []models.Action{}
	return a, nil
}

// Create сохраняет сообщение и строку очереди рассылки в одной транзакции
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO alerts (
			title, description, category, severity, status, priority, is_public, tags,
			state, district, village, pincode, address, location,
			species, breed, animal_count, age_group, symptoms, mortality_count, mortality_percentage,
			attachments, reported_by, follow_up_required, follow_up_date
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, ST_SetSRID(ST_MakePoint($14, $15), 4326)::geography,
			$16, $17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26
		)
		RETURNING id, created_at, updated_at;
	`
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			alert.Title,
			alert.Description,
			string(alert.Category),
			string(alert.Severity),
			string(alert.Status),
			alert.Priority,
			alert.IsPublic,
			alert.Tags,
			alert.Location.State,
			alert.Location.District,
			alert.Location.Village,
			alert.Location.Pincode,
			alert.Location.Address,
			alert.Location.Coordinates.Lng,
			alert.Location.Coordinates.Lat,
			string(alert.AffectedAnimals.Species),
			alert.AffectedAnimals.Breed,
			alert.AffectedAnimals.Count,
			string(alert.AffectedAnimals.AgeGroup),
			alert.AffectedAnimals.Symptoms,
			alert.AffectedAnimals.Mortality.Count,
			alert.AffectedAnimals.Mortality.Percentage,
			alert.Attachments,
			alert.ReportedBy.ID,
			alert.FollowUpRequired,
			alert.FollowUpDate,
		).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO notification_outbox (alert_id) VALUES ($1);`, alert.ID)
		return err
	})
	if err != nil {
		return mapError(err, "failed to create alert")
	}
	return nil
}

// GetByID возвращает сообщение вместе с комментариями и действиями
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT` + alertColumns + alertFrom + ` WHERE a.id = $1;`
	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to get alert by id")
	}

	if alert.Comments, err = r.loadComments(ctx, id); err != nil {
		return nil, err
	}
	if alert.Actions, err = r.loadActions(ctx, id); err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *AlertRepository) loadComments(ctx context.Context, alertID uuid.UUID) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.alert_id, c.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''), c.content, c.created_at
		FROM alert_comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.alert_id = $1
		ORDER BY c.created_at, c.id;
	`
	rows, err := r.db.Query(ctx, query, alertID)
	if err != nil {
		return nil, mapError(err, "failed to load comments")
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.AlertID, &c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Content, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, mapError(err, "failed to scan comments")
	}
	return comments, nil
}

func (r *AlertRepository) loadActions(ctx context.Context, alertID uuid.UUID) ([]models.Action, error) {
	query := `
		SELECT ac.id, ac.alert_id, ac.type, ac.description, ac.performed_by, COALESCE(u.name, ''), COALESCE(u.email, ''), ac.performed_at
		FROM alert_actions ac
		LEFT JOIN users u ON u.id = ac.performed_by
		WHERE ac.alert_id = $1
		ORDER BY ac.performed_at, ac.id;
	`
	rows, err := r.db.Query(ctx, query, alertID)
	if err != nil {
		return nil, mapError(err, "failed to load actions")
	}
	actions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Action, error) {
		var (
			a          models.Action
			actionType string
		)
		err := row.Scan(&a.ID, &a.AlertID, &actionType, &a.Description, &a.PerformedBy.ID, &a.PerformedBy.Name, &a.PerformedBy.Email, &a.PerformedAt)
		a.Type = models.ActionType(actionType)
		return a, err
	})
	if err != nil {
		return nil, mapError(err, "failed to scan actions")
	}
	return actions, nil
}

// buildUpdate собирает UPDATE только по заданным полям. Метки resolved_at и closed_at
// ставятся через COALESCE, поэтому повторный переход статуса их не перезаписывает.
func buildUpdate(id uuid.UUID, p *models.AlertPatch, now time.Time) (string, []any) {
	q := &queryArgs{}
	var sets []string
	set := func(format string, vals ...any) {
		sets = append(sets, q.bind(format, vals...))
	}

	if p.Title != nil {
		set("title = $%d", *p.Title)
	}
	if p.Description != nil {
		set("description = $%d", *p.Description)
	}
	if p.Category != nil {
		set("category = $%d", string(*p.Category))
	}
	if p.Severity != nil {
		set("severity = $%d", string(*p.Severity))
	}
	if p.Status != nil {
		status := string(*p.Status)
		set("status = $%d", status)
		set("resolved_at = CASE WHEN $%d = 'resolved' THEN COALESCE(resolved_at, $%d) ELSE resolved_at END", status, now)
		set("closed_at = CASE WHEN $%d = 'closed' THEN COALESCE(closed_at, $%d) ELSE closed_at END", status, now)
	}
	if p.Priority != nil {
		set("priority = $%d", *p.Priority)
	}
	if p.IsPublic != nil {
		set("is_public = $%d", *p.IsPublic)
	}
	if p.Tags != nil {
		set("tags = $%d", models.NormalizeTags(*p.Tags))
	}
	if p.State != nil {
		set("state = $%d", *p.State)
	}
	if p.District != nil {
		set("district = $%d", *p.District)
	}
	if p.Village != nil {
		set("village = $%d", *p.Village)
	}
	if p.Pincode != nil {
		set("pincode = $%d", *p.Pincode)
	}
	if p.Address != nil {
		set("address = $%d", *p.Address)
	}
	if p.Coordinates != nil {
		set("location = ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography", p.Coordinates.Lng, p.Coordinates.Lat)
	}
	if p.Species != nil {
		set("species = $%d", string(*p.Species))
	}
	if p.Breed != nil {
		set("breed = $%d", *p.Breed)
	}
	if p.AnimalCount != nil {
		set("animal_count = $%d", *p.AnimalCount)
	}
	if p.AgeGroup != nil {
		set("age_group = $%d", string(*p.AgeGroup))
	}
	if p.Symptoms != nil {
		set("symptoms = $%d", *p.Symptoms)
	}
	if p.MortalityCount != nil {
		set("mortality_count = $%d", *p.MortalityCount)
	}
	if p.MortalityPercentage != nil {
		set("mortality_percentage = $%d", *p.MortalityPercentage)
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == uuid.Nil {
			sets = append(sets, "assigned_to = NULL")
		} else {
			set("assigned_to = $%d", *p.AssignedTo)
		}
	}
	if p.FollowUpRequired != nil {
		set("follow_up_required = $%d", *p.FollowUpRequired)
	}
	if p.FollowUpDate != nil {
		set("follow_up_date = $%d", *p.FollowUpDate)
	}
	set("updated_at = $%d", now)

	where := q.bind("id = $%d", id)
	query := "UPDATE alerts SET " + strings.Join(sets, ", ") + " WHERE " + where + ";"
	return query, q.args
}

// Update записывает только переданные поля
func (r *AlertRepository) Update(ctx context.Context, id uuid.UUID, patch *models.AlertPatch, now time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query, args := buildUpdate(id, patch, now)
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "failed to update alert")
	}

	// Если RowsAffected() == 0, значит сообщения с таким id не существует
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("alert not found")
	}
	return nil
}

// Delete удаляет сообщение, комментарии, действия и строку очереди удаляются каскадно
func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1;`, id)
	if err != nil {
		return mapError(err, "failed to delete alert")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("alert not found")
	}
	return nil
}

// AddComment добавляет комментарий отдельной вставкой, не трогая строку сообщения
func (r *AlertRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO alert_comments (alert_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	err := r.db.QueryRow(ctx, query, comment.AlertID, comment.Author.ID, comment.Content, comment.CreatedAt).Scan(&comment.ID)
	if err != nil {
		return mapError(err, "failed to add comment")
	}
	return nil
}

// AddAction добавляет запись в журнал действий
func (r *AlertRepository) AddAction(ctx context.Context, action *models.Action) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO alert_actions (alert_id, type, description, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		action.AlertID,
		string(action.Type),
		action.Description,
		action.PerformedBy.ID,
		action.PerformedAt,
	).Scan(&action.ID)
	if err != nil {
		return mapError(err, fmt.Sprintf("failed to add %s action", action.Type))
	}
	return nil
}
