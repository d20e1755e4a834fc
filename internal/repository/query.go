package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shenikar/livestock_alerts/internal/models"
)

// sortColumns сопоставляет разрешенные поля сортировки с выражениями SQL
var sortColumns = map[string]string{
	"createdAt": "a.created_at",
	"updatedAt": "a.updated_at",
	"priority":  "a.priority",
	"status":    "a.status",
	"title":     "a.title",
	"severity":  severityWeightSQL,
}

const severityWeightSQL = `CASE a.severity WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'critical' THEN 4 ELSE 0 END`

const pointSQL = "ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography"

// visibilityCondition ограничивает выборку сообщениями, которые видит пользователь
func visibilityCondition(q *queryArgs, viewer models.Caller) string {
	if viewer.IsStaff() {
		return ""
	}
	if viewer.Anonymous() {
		return "a.is_public"
	}
	return q.bind("(a.is_public OR a.reported_by = $%d OR a.assigned_to = $%d)", viewer.UserID, viewer.UserID)
}

func whereClause(conds []string) string {
	var nonEmpty []string
	for _, c := range conds {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(nonEmpty, " AND ")
}

// buildListQuery возвращает запрос страницы, запрос общего количества и их аргументы.
// Аргументы запроса количества - префикс аргументов запроса страницы.
func buildListQuery(f models.AlertFilter) (listSQL string, listArgs []any, countSQL string, countArgs []any) {
	q := &queryArgs{}
	conds := []string{visibilityCondition(q, f.Viewer)}

	if f.Status != "" {
		conds = append(conds, q.bind("a.status = $%d", string(f.Status)))
	}
	if f.Category != "" {
		conds = append(conds, q.bind("a.category = $%d", string(f.Category)))
	}
	if f.Severity != "" {
		conds = append(conds, q.bind("a.severity = $%d", string(f.Severity)))
	}
	if s := strings.TrimSpace(f.State); s != "" {
		conds = append(conds, q.bind("a.state ILIKE $%d", containsPattern(s)))
	}
	if d := strings.TrimSpace(f.District); d != "" {
		conds = append(conds, q.bind("a.district ILIKE $%d", containsPattern(d)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, q.bind("a.search_vector @@ websearch_to_tsquery('simple', $%d)", s))
	}
	if f.Near != nil {
		conds = append(conds, q.bind("ST_DWithin(a.location, "+pointSQL+", $%d)", f.Near.Lng, f.Near.Lat, f.Radius))
	}
	where := whereClause(conds)

	countSQL = "SELECT COUNT(*) FROM alerts a" + where + ";"
	countArgs = q.args

	lq := q.clone()
	columns := alertColumns
	orderBy := ""
	if f.Near != nil {
		columns += ", " + lq.bind("ST_Distance(a.location, "+pointSQL+")", f.Near.Lng, f.Near.Lat) + " AS distance"
		if f.SortBy == "" {
			orderBy = "distance ASC"
		}
	}
	if orderBy == "" {
		col, ok := sortColumns[f.SortBy]
		if !ok {
			col = sortColumns["createdAt"]
		}
		dir := "DESC"
		if f.SortOrder == models.SortAsc {
			dir = "ASC"
		}
		orderBy = col + " " + dir
	}
	orderBy += ", a.id"

	listSQL = "SELECT" + columns + alertFrom + where +
		" ORDER BY " + orderBy +
		lq.bind(" LIMIT $%d OFFSET $%d", f.Limit, f.Offset()) + ";"
	return listSQL, lq.args, countSQL, countArgs
}

// List возвращает страницу сообщений и общее количество по фильтру
func (r *AlertRepository) List(ctx context.Context, filter models.AlertFilter) (*models.AlertPage, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	listSQL, listArgs, countSQL, countArgs := buildListQuery(filter)

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, mapError(err, "failed to count alerts")
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, mapError(err, "failed to list alerts")
	}
	alerts, err := collectAlerts(rows, filter.Near != nil)
	if err != nil {
		return nil, mapError(err, "failed to scan alert row")
	}

	return &models.AlertPage{
		Alerts:     alerts,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func collectAlerts(rows pgx.Rows, withDistance bool) ([]*models.Alert, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Alert, error) {
		if !withDistance {
			return scanAlert(row)
		}
		var distance float64
		a, err := scanAlert(row, &distance)
		if err != nil {
			return nil, err
		}
		a.Distance = &distance
		return a, nil
	})
}

func buildNearbyQuery(nq models.NearbyQuery) (string, []any) {
	q := &queryArgs{}
	distance := q.bind("ST_Distance(a.location, "+pointSQL+")", nq.Point.Lng, nq.Point.Lat)
	conds := []string{
		visibilityCondition(q, nq.Viewer),
		q.bind("ST_DWithin(a.location, "+pointSQL+", $%d)", nq.Point.Lng, nq.Point.Lat, nq.Radius),
	}
	query := "SELECT" + alertColumns + ", " + distance + " AS distance" + alertFrom +
		whereClause(conds) +
		" ORDER BY distance ASC, a.id" +
		q.bind(" LIMIT $%d", nq.Limit) + ";"
	return query, q.args
}

// Nearby находит сообщения в радиусе от точки, от ближнего к дальнему
func (r *AlertRepository) Nearby(ctx context.Context, query models.NearbyQuery) ([]*models.Alert, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql, args := buildNearbyQuery(query)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "failed to find nearby alerts")
	}
	alerts, err := collectAlerts(rows, true)
	if err != nil {
		return nil, mapError(err, "failed to scan nearby alert row")
	}
	return alerts, nil
}

func buildStatisticsQuery(f models.StatisticsFilter, since time.Time) (string, []any) {
	q := &queryArgs{}
	conds := []string{q.bind("a.created_at >= $%d", since)}
	if s := strings.TrimSpace(f.State); s != "" {
		conds = append(conds, q.bind("a.state ILIKE $%d", containsPattern(s)))
	}
	if d := strings.TrimSpace(f.District); d != "" {
		conds = append(conds, q.bind("a.district ILIKE $%d", containsPattern(d)))
	}
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE a.status = 'active'),
			COUNT(*) FILTER (WHERE a.status = 'investigating'),
			COUNT(*) FILTER (WHERE a.status = 'resolved'),
			COUNT(*) FILTER (WHERE a.severity = 'critical'),
			COUNT(*) FILTER (WHERE a.severity = 'high'),
			COALESCE(SUM(a.animal_count), 0),
			COALESCE(SUM(a.mortality_count), 0)
		FROM alerts a` + whereClause(conds) + ";"
	return query, q.args
}

// Statistics считает агрегаты одним проходом. Агрегат без GROUP BY всегда
// возвращает одну строку, поэтому пустая выборка дает нулевую статистику.
func (r *AlertRepository) Statistics(ctx context.Context, filter models.StatisticsFilter, since time.Time) (*models.Statistics, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query, args := buildStatisticsQuery(filter, since)
	stats := &models.Statistics{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Investigating,
		&stats.Resolved,
		&stats.Critical,
		&stats.High,
		&stats.TotalAffectedAnimals,
		&stats.TotalMortality,
	)
	if err != nil {
		return nil, mapError(err, "failed to aggregate statistics")
	}
	return stats, nil
}

const maxHeatmapCells = 5000

func buildHeatmapQuery(hq models.HeatmapQuery) (string, []any) {
	q := &queryArgs{}
	cell := q.bind("ST_SnapToGrid(a.location::geometry, $%d)", models.CellSize(hq.Zoom))
	b := hq.Bounds
	conds := []string{
		q.bind("a.location::geometry && ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326)", b.West, b.South, b.East, b.North),
		"a.status IN ('active', 'investigating')",
		visibilityCondition(q, hq.Viewer),
	}
	query := `
		SELECT ST_Y(g.cell) AS lat, ST_X(g.cell) AS lng, COUNT(*) AS cnt, SUM(g.weight) AS weight, MAX(g.weight) AS max_weight
		FROM (
			SELECT ` + cell + ` AS cell, ` + severityWeightSQL + ` AS weight
			FROM alerts a` + whereClause(conds) + `
		) g
		GROUP BY g.cell
		ORDER BY cnt DESC` +
		q.bind(" LIMIT $%d", maxHeatmapCells) + ";"
	return query, q.args
}

// Heatmap группирует открытые сообщения в ячейки сетки в пределах границ
func (r *AlertRepository) Heatmap(ctx context.Context, query models.HeatmapQuery) ([]models.HeatmapCell, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sql, args := buildHeatmapQuery(query)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "failed to build heatmap")
	}
	cells, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HeatmapCell, error) {
		var (
			c         models.HeatmapCell
			maxWeight int
		)
		err := row.Scan(&c.Lat, &c.Lng, &c.Count, &c.Weight, &maxWeight)
		c.MaxSeverity = models.SeverityFromWeight(maxWeight)
		return c, err
	})
	if err != nil {
		return nil, mapError(err, "failed to scan heatmap cell")
	}
	return cells, nil
}
