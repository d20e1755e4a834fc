package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=alert.go -destination=mocks/alert_mocks.go -package=mocks

// AlertRepository определяет контракт для работы с бд сообщений
type AlertRepository interface {
	// Create сохраняет сообщение и ставит его в очередь рассылки в одной транзакции
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.AlertPatch, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, comment *models.Comment) error
	AddAction(ctx context.Context, action *models.Action) error
	List(ctx context.Context, filter models.AlertFilter) (*models.AlertPage, error)
	Nearby(ctx context.Context, query models.NearbyQuery) ([]*models.Alert, error)
	Statistics(ctx context.Context, filter models.StatisticsFilter, since time.Time) (*models.Statistics, error)
	Heatmap(ctx context.Context, query models.HeatmapQuery) ([]models.HeatmapCell, error)
}

// AlertCache - кэш карточек сообщений. Каждая инвалидация увеличивает поколение
// записи; Set с устаревшим поколением ничего не сохраняет, поэтому снимок,
// прочитанный до параллельной записи, не попадет в кэш.
type AlertCache interface {
	// Get возвращает сообщение (nil при промахе) и текущее поколение записи
	Get(ctx context.Context, id uuid.UUID) (*models.Alert, int64, error)
	Set(ctx context.Context, alert *models.Alert, generation int64) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// EventPublisher будит обработчик рассылки после создания сообщения
type EventPublisher interface {
	Publish(ctx context.Context, event models.AlertCreatedEvent) error
}

// AlertService определяет контракт бизнес-логики жизненного цикла сообщений
type AlertService interface {
	CreateAlert(ctx context.Context, caller models.Caller, alert *models.Alert) error
	GetAlert(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Alert, error)
	UpdateAlert(ctx context.Context, caller models.Caller, id uuid.UUID, patch *models.AlertPatch) (*models.Alert, error)
	DeleteAlert(ctx context.Context, caller models.Caller, id uuid.UUID) error
	AddComment(ctx context.Context, caller models.Caller, alertID uuid.UUID, content string) (*models.Comment, error)
	AddAction(ctx context.Context, caller models.Caller, alertID uuid.UUID, actionType models.ActionType, description string) (*models.Action, error)
	ListAlerts(ctx context.Context, filter models.AlertFilter) (*models.AlertPage, error)
	NearbyAlerts(ctx context.Context, query models.NearbyQuery) ([]*models.Alert, error)
	Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error)
	Heatmap(ctx context.Context, query models.HeatmapQuery) ([]models.HeatmapCell, error)
}

type alertService struct {
	repo      AlertRepository
	cache     AlertCache
	publisher EventPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAlertService(repo AlertRepository, cache AlertCache, publisher EventPublisher, logger *logrus.Logger) AlertService {
	return &alertService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

var errAlertNotFound = apperr.NotFound("alert not found")

// CreateAlert создает сообщение от имени вызывающего и запускает рассылку
func (s *alertService) CreateAlert(ctx context.Context, caller models.Caller, alert *models.Alert) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "CreateAlert",
		"user_id": caller.UserID,
	})
	if caller.Anonymous() {
		return apperr.Unauthorized("authentication required")
	}

	// Автор всегда вызывающий, значение от клиента игнорируется
	alert.ReportedBy = models.UserRef{ID: caller.UserID}
	alert.AssignedTo = nil
	alert.Status = models.StatusActive
	alert.ResolvedAt, alert.ClosedAt = nil, nil
	alert.ApplyDefaults()
	if err := alert.Validate(); err != nil {
		log.WithError(err).Warn("Alert failed validation")
		return err
	}

	log.Info("Attempting to create a new alert")
	if err := s.repo.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return fmt.Errorf("service: could not create alert: %w", err)
	}
	log = log.WithField("alert_id", alert.ID)
	log.Info("Alert created successfully")

	// Строка в outbox уже сохранена, поэтому ошибка публикации не критична:
	// сообщение подберет периодическая проверка очереди
	event := models.AlertCreatedEvent{AlertID: alert.ID, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish fan-out event, sweeper will retry")
	}
	return nil
}

// GetAlert возвращает сообщение с учетом видимости
func (s *alertService) GetAlert(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "GetAlert",
		"alert_id": id,
	})

	alert, err := s.load(ctx, log, id)
	if err != nil {
		return nil, err
	}
	if !alert.VisibleTo(caller) {
		return nil, errAlertNotFound
	}
	return alert, nil
}

// load читает сообщение сначала из кэша, затем из бд
func (s *alertService) load(ctx context.Context, log *logrus.Entry, id uuid.UUID) (*models.Alert, error) {
	cached, generation, cacheErr := s.cache.Get(ctx, id)
	if cacheErr != nil {
		log.WithError(cacheErr).Warn("Failed to read alert from cache")
	}
	if cached != nil {
		return cached, nil
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errAlertNotFound
		}
		log.WithError(err).Error("Failed to get alert in repository")
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}

	// Без известного поколения запись в кэш небезопасна
	if cacheErr == nil {
		if err := s.cache.Set(ctx, alert, generation); err != nil {
			log.WithError(err).Warn("Failed to cache alert")
		}
	}
	return alert, nil
}

// loadForWrite возвращает сообщение для изменения: сначала видимость, потом права
func (s *alertService) loadForWrite(ctx context.Context, log *logrus.Entry, caller models.Caller, id uuid.UUID) (*models.Alert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errAlertNotFound
		}
		log.WithError(err).Error("Failed to get alert in repository")
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	if !alert.VisibleTo(caller) {
		return nil, errAlertNotFound
	}
	return alert, nil
}

func canModify(caller models.Caller, alert *models.Alert) bool {
	return caller.IsAdmin() || alert.ReportedBy.ID == caller.UserID
}

// UpdateAlert меняет только переданные поля. Права: автор или администратор.
func (s *alertService) UpdateAlert(ctx context.Context, caller models.Caller, id uuid.UUID, patch *models.AlertPatch) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "UpdateAlert",
		"alert_id": id,
		"user_id":  caller.UserID,
	})
	if caller.Anonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}

	existing, err := s.loadForWrite(ctx, log, caller, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, existing) {
		log.Warn("Caller is not allowed to update alert")
		return nil, apperr.Forbidden("not authorized to update this alert")
	}
	if patch.AssignedTo != nil && !caller.IsStaff() {
		return nil, apperr.Forbidden("only veterinarians and admins can assign alerts")
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	// Проверяем итоговое состояние на копии до записи
	now := s.now()
	merged := *existing
	patch.ApplyTo(&merged, now)
	if err := merged.Validate(); err != nil {
		log.WithError(err).Warn("Updated alert failed validation")
		return nil, err
	}

	log.Info("Attempting to update alert")
	if err := s.repo.Update(ctx, id, patch, now); err != nil {
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindValidation) {
			return nil, err
		}
		log.WithError(err).Error("Failed to update alert in repository")
		return nil, fmt.Errorf("service: could not update alert: %w", err)
	}
	s.invalidate(ctx, log, id)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to reload updated alert")
		return nil, fmt.Errorf("service: could not reload alert: %w", err)
	}
	log.WithField("status", updated.Status).Info("Alert updated successfully")
	return updated, nil
}

// DeleteAlert безвозвратно удаляет сообщение вместе с комментариями и действиями
func (s *alertService) DeleteAlert(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "DeleteAlert",
		"alert_id": id,
		"user_id":  caller.UserID,
	})
	if caller.Anonymous() {
		return apperr.Unauthorized("authentication required")
	}

	existing, err := s.loadForWrite(ctx, log, caller, id)
	if err != nil {
		return err
	}
	if !canModify(caller, existing) {
		log.Warn("Caller is not allowed to delete alert")
		return apperr.Forbidden("not authorized to delete this alert")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		log.WithError(err).Error("Failed to delete alert in repository")
		return fmt.Errorf("service: could not delete alert: %w", err)
	}
	s.invalidate(ctx, log, id)

	log.Info("Alert deleted successfully")
	return nil
}

// AddComment добавляет комментарий от любого авторизованного пользователя, которому видно сообщение
func (s *alertService) AddComment(ctx context.Context, caller models.Caller, alertID uuid.UUID, content string) (*models.Comment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "AddComment",
		"alert_id": alertID,
		"user_id":  caller.UserID,
	})
	if caller.Anonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if n := len([]rune(content)); n < 1 || n > models.MaxCommentLength {
		return nil, apperr.Validation("comment must be between 1 and %d characters", models.MaxCommentLength)
	}
	if _, err := s.loadForWrite(ctx, log, caller, alertID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AlertID:   alertID,
		Author:    models.UserRef{ID: caller.UserID},
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errAlertNotFound
		}
		log.WithError(err).Error("Failed to add comment in repository")
		return nil, fmt.Errorf("service: could not add comment: %w", err)
	}
	s.invalidate(ctx, log, alertID)

	log.WithField("comment_id", comment.ID).Info("Comment added")
	return comment, nil
}

// AddAction фиксирует действие ветеринара или администратора
func (s *alertService) AddAction(ctx context.Context, caller models.Caller, alertID uuid.UUID, actionType models.ActionType, description string) (*models.Action, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "AddAction",
		"alert_id": alertID,
		"user_id":  caller.UserID,
		"type":     actionType,
	})
	if caller.Anonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !actionType.Valid() {
		return nil, apperr.Validation("invalid action type %q", actionType)
	}
	if len([]rune(description)) > models.MaxActionDescriptionLength {
		return nil, apperr.Validation("action description exceeds %d characters", models.MaxActionDescriptionLength)
	}
	// Роль проверяется после загрузки: несуществующее сообщение дает 404 для любого вызывающего
	if _, err := s.loadForWrite(ctx, log, caller, alertID); err != nil {
		return nil, err
	}
	if !caller.IsStaff() {
		return nil, apperr.Forbidden("only veterinarians and admins can record actions")
	}

	action := &models.Action{
		AlertID:     alertID,
		Type:        actionType,
		Description: description,
		PerformedBy: models.UserRef{ID: caller.UserID},
		PerformedAt: s.now(),
	}
	if err := s.repo.AddAction(ctx, action); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errAlertNotFound
		}
		log.WithError(err).Error("Failed to add action in repository")
		return nil, fmt.Errorf("service: could not add action: %w", err)
	}
	s.invalidate(ctx, log, alertID)

	log.WithField("action_id", action.ID).Info("Action recorded")
	return action, nil
}

// ListAlerts возвращает страницу сообщений по фильтру
func (s *alertService) ListAlerts(ctx context.Context, filter models.AlertFilter) (*models.AlertPage, error) {
	filter.Normalize()
	if filter.SortBy != "" && !models.ValidSortField(filter.SortBy) {
		return nil, apperr.Validation("unsupported sort field %q", filter.SortBy)
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "ListAlerts",
		"page":    filter.Page,
		"limit":   filter.Limit,
	})

	page, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from repository")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}

	log.WithField("count", len(page.Alerts)).Debug("Alerts listed successfully")
	return page, nil
}

// NearbyAlerts возвращает ближайшие сообщения, по умолчанию от ближнего к дальнему
func (s *alertService) NearbyAlerts(ctx context.Context, query models.NearbyQuery) ([]*models.Alert, error) {
	query.Normalize()
	if !query.Point.Valid() {
		return nil, apperr.Validation("coordinates out of range")
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "NearbyAlerts",
		"radius":  query.Radius,
	})

	alerts, err := s.repo.Nearby(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to find nearby alerts")
		return nil, fmt.Errorf("service: could not find nearby alerts: %w", err)
	}
	// Выборка по радиусу уже ограничена ближайшими, сортировка по дате только меняет порядок
	if query.SortRecent {
		sort.SliceStable(alerts, func(i, j int) bool {
			return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
		})
	}
	return alerts, nil
}

// Statistics считает агрегаты за окно в днях
func (s *alertService) Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error) {
	if filter.Days <= 0 {
		filter.Days = models.DefaultTimeframeDays
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "Statistics",
		"days":    filter.Days,
	})

	since := s.now().AddDate(0, 0, -filter.Days)
	stats, err := s.repo.Statistics(ctx, filter, since)
	if err != nil {
		log.WithError(err).Error("Failed to aggregate statistics")
		return nil, fmt.Errorf("service: could not get statistics: %w", err)
	}
	return stats, nil
}

// Heatmap группирует открытые сообщения в ячейки сетки
func (s *alertService) Heatmap(ctx context.Context, query models.HeatmapQuery) ([]models.HeatmapCell, error) {
	if query.Zoom == 0 {
		query.Zoom = models.DefaultZoom
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "Heatmap",
		"bounds":  query.Bounds.String(),
		"zoom":    query.Zoom,
	})

	cells, err := s.repo.Heatmap(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to build heatmap")
		return nil, fmt.Errorf("service: could not build heatmap: %w", err)
	}
	return cells, nil
}

func (s *alertService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate alert cache")
	}
}
