package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery_DefaultsForAnonymous(t *testing.T) {
	f := models.AlertFilter{}
	f.Normalize()

	listSQL, listArgs, countSQL, countArgs := buildListQuery(f)

	assert.Contains(t, countSQL, "WHERE a.is_public")
	assert.Empty(t, countArgs)
	assert.Contains(t, listSQL, "ORDER BY a.created_at DESC, a.id")
	assert.Contains(t, listSQL, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 0}, listArgs)
}

func TestBuildListQuery_FiltersAndSearch(t *testing.T) {
	viewer := models.Caller{UserID: uuid.New(), Role: models.RoleUser}
	f := models.AlertFilter{
		Status:    models.StatusActive,
		Severity:  models.SeverityHigh,
		District:  "100%_pune",
		Search:    "fever cattle",
		SortBy:    "severity",
		SortOrder: models.SortAsc,
		Page:      2,
		Limit:     5,
		Viewer:    viewer,
	}

	listSQL, listArgs, countSQL, countArgs := buildListQuery(f)

	assert.Contains(t, countSQL, "(a.is_public OR a.reported_by = $1 OR a.assigned_to = $2)")
	assert.Contains(t, countSQL, "a.status = $3")
	assert.Contains(t, countSQL, "a.severity = $4")
	assert.Contains(t, countSQL, "a.district ILIKE $5")
	assert.Contains(t, countSQL, "websearch_to_tsquery('simple', $6)")
	require.Len(t, countArgs, 6)
	assert.Equal(t, `%100\%\_pune%`, countArgs[4])

	assert.Contains(t, listSQL, "ORDER BY CASE a.severity")
	assert.Contains(t, listSQL, "END ASC, a.id")
	assert.Contains(t, listSQL, "LIMIT $7 OFFSET $8")
	assert.Equal(t, append(countArgs, 5, 5), listArgs)
}

func TestBuildListQuery_ProximityOrdersByDistance(t *testing.T) {
	f := models.AlertFilter{
		Near:   &models.Coordinates{Lat: 18.5, Lng: 73.8},
		Radius: 1000,
		Viewer: models.Caller{UserID: uuid.New(), Role: models.RoleAdmin},
	}
	f.Normalize()

	listSQL, listArgs, countSQL, countArgs := buildListQuery(f)

	// Ветеринары и администраторы видят все сообщения
	assert.NotContains(t, countSQL, "is_public")
	assert.Contains(t, countSQL, "ST_DWithin(a.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)")
	assert.Equal(t, []any{73.8, 18.5, 1000.0}, countArgs)
	assert.Contains(t, listSQL, "ST_Distance(a.location, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography) AS distance")
	assert.Contains(t, listSQL, "ORDER BY distance ASC, a.id")
	assert.Len(t, listArgs, 7)

	// Явная сортировка имеет приоритет над расстоянием
	f.SortBy = "priority"
	listSQL, _, _, _ = buildListQuery(f)
	assert.Contains(t, listSQL, "ORDER BY a.priority DESC")
}

func TestBuildUpdate_OnlyProvidedFields(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	status := models.StatusResolved
	title := "New title"
	patch := &models.AlertPatch{Title: &title, Status: &status}

	query, args := buildUpdate(id, patch, now)

	assert.True(t, strings.HasPrefix(query, "UPDATE alerts SET title = $1, status = $2, "))
	assert.Contains(t, query, "resolved_at = CASE WHEN $3 = 'resolved' THEN COALESCE(resolved_at, $4) ELSE resolved_at END")
	assert.Contains(t, query, "closed_at = CASE WHEN $5 = 'closed' THEN COALESCE(closed_at, $6) ELSE closed_at END")
	assert.Contains(t, query, "updated_at = $7 WHERE id = $8;")
	assert.NotContains(t, query, "description")
	assert.NotContains(t, query, "comments")
	assert.Equal(t, []any{"New title", "resolved", "resolved", now, "resolved", now, now, id}, args)
}

func TestBuildUpdate_UnassignAndCoordinates(t *testing.T) {
	id := uuid.New()
	nilID := uuid.Nil
	coords := models.Coordinates{Lat: 12.9, Lng: 77.6}

	query, args := buildUpdate(id, &models.AlertPatch{AssignedTo: &nilID, Coordinates: &coords}, time.Now())

	assert.Contains(t, query, "location = ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography")
	assert.Contains(t, query, "assigned_to = NULL")
	assert.Equal(t, 77.6, args[0])
	assert.Equal(t, 12.9, args[1])
}

func TestBuildNearbyQuery(t *testing.T) {
	q := models.NearbyQuery{Point: models.Coordinates{Lat: 10, Lng: 20}, Radius: 5000, Limit: 20}

	query, args := buildNearbyQuery(q)

	assert.Contains(t, query, "ORDER BY distance ASC")
	assert.Contains(t, query, "a.is_public")
	assert.Contains(t, query, "LIMIT $6")
	assert.Equal(t, []any{20.0, 10.0, 20.0, 10.0, 5000.0, 20}, args)
}

func TestBuildStatisticsQuery(t *testing.T) {
	since := time.Now().AddDate(0, 0, -30)

	query, args := buildStatisticsQuery(models.StatisticsFilter{State: "Kerala"}, since)

	assert.Contains(t, query, "COUNT(*) FILTER (WHERE a.status = 'investigating')")
	assert.Contains(t, query, "COALESCE(SUM(a.mortality_count), 0)")
	assert.Contains(t, query, "a.created_at >= $1 AND a.state ILIKE $2")
	assert.Equal(t, []any{since, "%Kerala%"}, args)
}

func TestBuildHeatmapQuery(t *testing.T) {
	viewer := models.Caller{UserID: uuid.New(), Role: models.RoleUser}
	hq := models.HeatmapQuery{Bounds: models.Bounds{North: 20, South: 10, East: 80, West: 70}, Zoom: 10, Viewer: viewer}

	query, args := buildHeatmapQuery(hq)

	assert.Contains(t, query, "ST_SnapToGrid(a.location::geometry, $1)")
	assert.Contains(t, query, "ST_MakeEnvelope($2, $3, $4, $5, 4326)")
	assert.Contains(t, query, "GROUP BY g.cell")
	assert.Equal(t, models.CellSize(10), args[0])
	assert.Equal(t, []any{70.0, 10.0, 80.0, 20.0}, args[1:5])
	assert.Equal(t, maxHeatmapCells, args[len(args)-1])
}

func TestBuildRecipientsQuery(t *testing.T) {
	reporter := uuid.New()

	query, args, err := buildRecipientsQuery(models.RecipientQuery{
		State: "Punjab", District: "Ludhiana", Channel: models.ChannelSMS, ExcludeUserID: reporter,
	})

	require.NoError(t, err)
	assert.Contains(t, query, "notify_sms AND COALESCE(phone, '') <> ''")
	assert.Contains(t, query, "is_active")
	assert.Contains(t, query, "email_verified")
	assert.Equal(t, []any{"Punjab", "Ludhiana", reporter}, args)

	_, _, err = buildRecipientsQuery(models.RecipientQuery{Channel: "fax"})
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "op"))
	assert.True(t, apperr.Is(mapError(pgx.ErrNoRows, "op"), apperr.KindNotFound))
	assert.True(t, apperr.Is(mapError(context.DeadlineExceeded, "op"), apperr.KindUnavailable))

	check := &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "alerts_mortality_within_count"}
	err := mapError(check, "failed to update alert")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "alerts_mortality_within_count")

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "alert_comments_alert_id_fkey"}
	assert.True(t, apperr.Is(mapError(fk, "op"), apperr.KindNotFound))

	other := errors.New("syntax error")
	err = mapError(other, "failed to list alerts")
	assert.True(t, errors.Is(err, other))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
