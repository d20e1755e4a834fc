package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/internal/service/mocks"
	"github.com/shenikar/livestock_alerts/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type serviceMocks struct {
	repo      *mocks.MockAlertRepository
	cache     *mocks.MockAlertCache
	publisher *mocks.MockEventPublisher
}

// newTestAlertService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestAlertService(t *testing.T) (*alertService, serviceMocks) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		repo:      mocks.NewMockAlertRepository(ctrl),
		cache:     mocks.NewMockAlertCache(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
	}

	svc := NewAlertService(m.repo, m.cache, m.publisher, logger.NewDiscard()).(*alertService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func newAlert(reporter uuid.UUID) *models.Alert {
	a := &models.Alert{
		ID:          uuid.New(),
		Title:       "Suspected FMD",
		Description: "Blisters on mouth and feet of cattle",
		Category:    models.CategoryDisease,
		IsPublic:    true,
		Location: models.Location{
			State:       "Punjab",
			District:    "Ludhiana",
			Coordinates: models.Coordinates{Lat: 30.9, Lng: 75.85},
		},
		AffectedAnimals: models.AffectedAnimals{Species: models.SpeciesCattle, Count: 10},
		ReportedBy:      models.UserRef{ID: reporter},
		CreatedAt:       fixedNow.Add(-time.Hour),
	}
	a.ApplyDefaults()
	return a
}

func userCaller() models.Caller {
	return models.Caller{UserID: uuid.New(), Role: models.RoleUser}
}

func TestCreateAlert_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	caller := userCaller()
	alert := newAlert(uuid.New()) // клиент подставил чужого автора
	alert.Status = models.StatusClosed

	// Ожидания
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, a *models.Alert) error {
			a.ID = uuid.New()
			return nil
		}).Times(1)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, ev models.AlertCreatedEvent) error {
			assert.Equal(t, alert.ID, ev.AlertID)
			return nil
		}).Times(1)

	// Действие
	err := svc.CreateAlert(ctx, caller, alert)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, alert.ReportedBy.ID)
	assert.Equal(t, models.StatusActive, alert.Status)
	assert.Nil(t, alert.ClosedAt)
}

func TestCreateAlert_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()

	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down")).Times(1)

	err := svc.CreateAlert(ctx, userCaller(), newAlert(uuid.Nil))

	require.NoError(t, err)
}

func TestCreateAlert_MortalityExceedsCount(t *testing.T) {
	svc, m := newTestAlertService(t)
	alert := newAlert(uuid.Nil)
	alert.AffectedAnimals.Mortality.Count = 11

	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	err := svc.CreateAlert(context.Background(), userCaller(), alert)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateAlert_Anonymous(t *testing.T) {
	svc, m := newTestAlertService(t)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	err := svc.CreateAlert(context.Background(), models.Caller{}, newAlert(uuid.Nil))

	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestGetAlert_FromCache(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	alert := newAlert(uuid.New())

	m.cache.EXPECT().Get(ctx, alert.ID).Return(alert, int64(0), nil).Times(1)
	m.repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

	got, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)

	require.NoError(t, err)
	assert.Equal(t, alert, got)
}

func TestGetAlert_FromDB(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	alert := newAlert(uuid.New())

	// 1. Промах кеша
	m.cache.EXPECT().Get(ctx, alert.ID).Return(nil, int64(3), nil).Times(1)
	// 2. Попадание в БД
	m.repo.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	// 3. Запись в кеш
	m.cache.EXPECT().Set(ctx, alert, int64(3)).Return(nil).Times(1)

	got, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)

	require.NoError(t, err)
	assert.Equal(t, alert, got)
}

func TestGetAlert_PrivateHiddenFromStrangers(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	alert := newAlert(uuid.New())
	alert.IsPublic = false

	m.cache.EXPECT().Get(ctx, alert.ID).Return(alert, int64(0), nil).Times(1)

	_, err := svc.GetAlert(ctx, userCaller(), alert.ID)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetAlert_NotFound(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	id := uuid.New()

	m.cache.EXPECT().Get(ctx, id).Return(nil, int64(0), errors.New("cache down")).Times(1)
	m.repo.EXPECT().GetByID(ctx, id).Return(nil, apperr.NotFound("alert not found")).Times(1)

	got, err := svc.GetAlert(ctx, models.Caller{}, id)

	assert.Nil(t, got)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetAlert_CacheDownSkipsRefill(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	alert := newAlert(uuid.New())

	m.cache.EXPECT().Get(ctx, alert.ID).Return(nil, int64(0), errors.New("cache down")).Times(1)
	m.repo.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	got, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)

	require.NoError(t, err)
	assert.Equal(t, alert.ID, got.ID)
}

func TestGetAlert_StoreTimeout(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	id := uuid.New()

	m.cache.EXPECT().Get(ctx, id).Return(nil, int64(0), nil).Times(1)
	m.repo.EXPECT().GetByID(ctx, id).Return(nil, apperr.Unavailable("store timeout", context.DeadlineExceeded)).Times(1)

	_, err := svc.GetAlert(ctx, models.Caller{}, id)

	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.ErrorContains(t, err, "could not get alert")
}

func TestUpdateAlert_OwnerResolves(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	caller := userCaller()
	existing := newAlert(caller.UserID)
	status := models.StatusResolved
	patch := &models.AlertPatch{Status: &status}

	updated := *existing
	updated.ApplyStatus(models.StatusResolved, fixedNow)

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Update(ctx, existing.ID, patch, fixedNow).Return(nil).Times(1)
	m.cache.EXPECT().Invalidate(ctx, existing.ID).Return(nil).Times(1)
	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(&updated, nil).Times(1)

	got, err := svc.UpdateAlert(ctx, caller, existing.ID, patch)

	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	// Исходная запись не изменилась при проверке слияния
	assert.Equal(t, models.StatusActive, existing.Status)
}

func TestUpdateAlert_NonOwnerForbidden(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())
	title := "Hijacked title"

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateAlert(ctx, userCaller(), existing.ID, &models.AlertPatch{Title: &title})

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateAlert_VeterinarianIsNotOwner(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())
	vet := models.Caller{UserID: uuid.New(), Role: models.RoleVeterinarian}
	status := models.StatusInvestigating

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	_, err := svc.UpdateAlert(ctx, vet, existing.ID, &models.AlertPatch{Status: &status})

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateAlert_OwnerCannotAssign(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	caller := userCaller()
	existing := newAlert(caller.UserID)
	assignee := uuid.New()

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	_, err := svc.UpdateAlert(ctx, caller, existing.ID, &models.AlertPatch{AssignedTo: &assignee})

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateAlert_AdminAssigns(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	admin := models.Caller{UserID: uuid.New(), Role: models.RoleAdmin}
	existing := newAlert(uuid.New())
	assignee := uuid.New()
	patch := &models.AlertPatch{AssignedTo: &assignee}

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Update(ctx, existing.ID, patch, fixedNow).Return(nil).Times(1)
	m.cache.EXPECT().Invalidate(ctx, existing.ID).Return(nil).Times(1)
	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	_, err := svc.UpdateAlert(ctx, admin, existing.ID, patch)

	require.NoError(t, err)
}

func TestUpdateAlert_MergedStateInvalid(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	caller := userCaller()
	existing := newAlert(caller.UserID)
	existing.AffectedAnimals.Mortality.Count = 5
	count := 3

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateAlert(ctx, caller, existing.ID, &models.AlertPatch{AnimalCount: &count})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 10, existing.AffectedAnimals.Count)
}

func TestUpdateAlert_NotFound(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	id := uuid.New()
	title := "Does not matter"

	m.repo.EXPECT().GetByID(ctx, id).Return(nil, apperr.NotFound("alert not found")).Times(1)

	_, err := svc.UpdateAlert(ctx, userCaller(), id, &models.AlertPatch{Title: &title})

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteAlert_Admin(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())
	admin := models.Caller{UserID: uuid.New(), Role: models.RoleAdmin}

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Delete(ctx, existing.ID).Return(nil).Times(1)
	m.cache.EXPECT().Invalidate(ctx, existing.ID).Return(nil).Times(1)

	require.NoError(t, svc.DeleteAlert(ctx, admin, existing.ID))
}

func TestDeleteAlert_NonOwnerForbidden(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	err := svc.DeleteAlert(ctx, userCaller(), existing.ID)

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestDeleteAlert_PrivateStrangerGetsNotFound(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())
	existing.IsPublic = false

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	err := svc.DeleteAlert(ctx, userCaller(), existing.ID)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddComment_Success(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	caller := userCaller()
	existing := newAlert(uuid.New())

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().
		AddComment(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Comment) error {
			c.ID = uuid.New()
			return nil
		}).Times(1)
	m.cache.EXPECT().Invalidate(ctx, existing.ID).Return(nil).Times(1)

	comment, err := svc.AddComment(ctx, caller, existing.ID, "Vet visited today")

	require.NoError(t, err)
	assert.Equal(t, caller.UserID, comment.Author.ID)
	assert.Equal(t, fixedNow, comment.CreatedAt)
	assert.Equal(t, existing.ID, comment.AlertID)
}

func TestAddComment_Empty(t *testing.T) {
	svc, m := newTestAlertService(t)
	m.repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.AddComment(context.Background(), userCaller(), uuid.New(), "")

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAddAction_UserForbidden(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().AddAction(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.AddAction(ctx, userCaller(), existing.ID, models.ActionTreatmentGiven, "")

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestAddAction_UserOnMissingAlertGetsNotFound(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	id := uuid.New()

	m.repo.EXPECT().GetByID(ctx, id).Return(nil, apperr.NotFound("alert not found")).Times(1)
	m.repo.EXPECT().AddAction(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.AddAction(ctx, userCaller(), id, models.ActionSampleCollected, "")

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddAction_UserOnPrivateAlertGetsNotFound(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	existing := newAlert(uuid.New())
	existing.IsPublic = false

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	_, err := svc.AddAction(ctx, userCaller(), existing.ID, models.ActionSampleCollected, "")

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddAction_Veterinarian(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	vet := models.Caller{UserID: uuid.New(), Role: models.RoleVeterinarian}
	existing := newAlert(uuid.New())

	m.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	m.repo.EXPECT().AddAction(ctx, gomock.Any()).Return(nil).Times(1)
	m.cache.EXPECT().Invalidate(ctx, existing.ID).Return(errors.New("cache down")).Times(1)

	action, err := svc.AddAction(ctx, vet, existing.ID, models.ActionSampleCollected, "Blood samples sent to lab")

	require.NoError(t, err)
	assert.Equal(t, models.ActionSampleCollected, action.Type)
	assert.Equal(t, vet.UserID, action.PerformedBy.ID)
}

func TestAddAction_InvalidType(t *testing.T) {
	svc, _ := newTestAlertService(t)
	admin := models.Caller{UserID: uuid.New(), Role: models.RoleAdmin}

	_, err := svc.AddAction(context.Background(), admin, uuid.New(), "vaccinated", "")

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestListAlerts_NormalizesFilter(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.AlertFilter) (*models.AlertPage, error) {
			assert.Equal(t, 1, f.Page)
			assert.Equal(t, 100, f.Limit)
			assert.Equal(t, models.SortDesc, f.SortOrder)
			return &models.AlertPage{Pagination: models.NewPagination(1, 100, 0)}, nil
		}).Times(1)

	page, err := svc.ListAlerts(ctx, models.AlertFilter{Limit: 1000})

	require.NoError(t, err)
	assert.Equal(t, 0, page.Pagination.TotalPages)
}

func TestListAlerts_CapsNearRadius(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.AlertFilter) (*models.AlertPage, error) {
			assert.Equal(t, models.MaxNearbyRadius, f.Radius)
			return &models.AlertPage{Pagination: models.NewPagination(1, 20, 0)}, nil
		}).Times(1)

	_, err := svc.ListAlerts(ctx, models.AlertFilter{Near: &models.Coordinates{Lat: 30.9, Lng: 75.85}, Radius: 2e7})

	require.NoError(t, err)
}

func TestListAlerts_RejectsUnknownSort(t *testing.T) {
	svc, m := newTestAlertService(t)
	m.repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.ListAlerts(context.Background(), models.AlertFilter{SortBy: "password"})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestNearbyAlerts_Defaults(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		Nearby(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.NearbyQuery) ([]*models.Alert, error) {
			assert.Equal(t, models.DefaultNearbyRadius, q.Radius)
			assert.Equal(t, models.DefaultNearbyLimit, q.Limit)
			return []*models.Alert{}, nil
		}).Times(1)

	alerts, err := svc.NearbyAlerts(ctx, models.NearbyQuery{Point: models.Coordinates{Lat: 20, Lng: 78}})

	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestNearbyAlerts_SortRecent(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	near, far := newAlert(uuid.New()), newAlert(uuid.New())
	near.CreatedAt = fixedNow.Add(-48 * time.Hour)
	far.CreatedAt = fixedNow.Add(-time.Hour)

	m.repo.EXPECT().
		Nearby(ctx, gomock.Any()).
		Return([]*models.Alert{near, far}, nil).
		Times(1)

	alerts, err := svc.NearbyAlerts(ctx, models.NearbyQuery{Point: models.Coordinates{Lat: 20, Lng: 78}, SortRecent: true})

	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, far.ID, alerts[0].ID)
	assert.Equal(t, near.ID, alerts[1].ID)
}

func TestNearbyAlerts_InvalidPoint(t *testing.T) {
	svc, m := newTestAlertService(t)
	m.repo.EXPECT().Nearby(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.NearbyAlerts(context.Background(), models.NearbyQuery{Point: models.Coordinates{Lat: 95, Lng: 78}})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStatistics_WindowCutoff(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()
	filter := models.StatisticsFilter{District: "pune", Days: 7}

	m.repo.EXPECT().
		Statistics(ctx, filter, fixedNow.AddDate(0, 0, -7)).
		Return(&models.Statistics{}, nil).
		Times(1)

	stats, err := svc.Statistics(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, models.Statistics{}, *stats)
}

func TestHeatmap_DefaultZoom(t *testing.T) {
	svc, m := newTestAlertService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		Heatmap(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.HeatmapQuery) ([]models.HeatmapCell, error) {
			assert.Equal(t, models.DefaultZoom, q.Zoom)
			return nil, errors.New("db error")
		}).Times(1)

	_, err := svc.Heatmap(ctx, models.HeatmapQuery{Bounds: models.Bounds{North: 20, South: 10, East: 80, West: 70}})

	assert.ErrorContains(t, err, "could not build heatmap")
}
