package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/internal/service"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck - проверка доступности зависимости для /system/health
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	alertService service.AlertService
	auth         *Authenticator
	healthChecks []HealthCheck
	logger       *logrus.Logger
	validate     *validator.Validate
	now          func() time.Time
}

func NewHandler(alertService service.AlertService, auth *Authenticator, logger *logrus.Logger, checks ...HealthCheck) *Handler {
	return &Handler{
		alertService: alertService,
		auth:         auth,
		healthChecks: checks,
		logger:       logger,
		validate:     validator.New(),
		now:          time.Now,
	}
}

func (h *Handler) log(c *gin.Context, method string) *logrus.Entry {
	fields := logrus.Fields{"method": method}
	if id, ok := c.Get(requestIDKey); ok {
		fields["request_id"] = id
	}
	return h.logger.WithFields(fields)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid alert ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON читает и проверяет тело запроса; при ошибке ответ уже отправлен
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid query parameters")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return false
	}
	return true
}

// @Summary Create a new alert
// @Description Report a livestock health alert. Users in the same district are notified asynchronously.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body CreateAlertRequest true "Alert creation request"
// @Success 201 {object} AlertEnvelope
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	log := h.log(c, "createAlert")
	var input CreateAlertRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	alert := CreateRequestToAlert(input, h.now())
	if err := h.alertService.CreateAlert(c.Request.Context(), callerFrom(c), alert); err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, AlertEnvelope{
		Success: true,
		Message: "Alert created successfully",
		Data:    AlertToResponse(alert, h.now()),
	})
}

// @Summary List alerts
// @Description Paginated, filterable list of alerts. With lat/lng the list is limited to a radius and ordered by distance.
// @Tags Alerts
// @Produce json
// @Param status query string false "Status" Enums(active, investigating, resolved, closed)
// @Param category query string false "Category" Enums(disease, injury, death, vaccination, general)
// @Param severity query string false "Severity" Enums(low, medium, high, critical)
// @Param state query string false "State (substring, case-insensitive)"
// @Param district query string false "District (substring, case-insensitive)"
// @Param search query string false "Full-text search"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, severity, priority, status, title)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param radius query number false "Radius in meters" default(50000)
// @Success 200 {object} AlertListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.log(c, "listAlerts")
	var q ListAlertsQuery
	if !h.bindQuery(c, log, &q) {
		return
	}
	filter, err := ListQueryToFilter(q, callerFrom(c))
	if err != nil {
		writeError(c, log, err)
		return
	}

	page, err := h.alertService.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{
		Success:    true,
		Count:      len(page.Alerts),
		Pagination: &page.Pagination,
		Data:       AlertsToResponses(page.Alerts, h.now()),
	})
}

// @Summary Get alert by ID
// @Description Get a single alert with reporter, assignee, comments and actions expanded.
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertEnvelope
// @Failure 400 {object} ErrorResponse "Invalid alert ID"
// @Failure 404 {object} ErrorResponse "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := h.log(c, "getAlert").WithField("id", id)

	alert, err := h.alertService.GetAlert(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertEnvelope{Success: true, Data: AlertToResponse(alert, h.now())})
}

// @Summary Update an alert
// @Description Partially update an alert. Only the reporter or an admin may update; assignedTo requires a veterinarian or admin.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param alert body UpdateAlertRequest true "Fields to change"
// @Success 200 {object} AlertEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id} [put]
func (h *Handler) updateAlert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := h.log(c, "updateAlert").WithField("id", id)

	var input UpdateAlertRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	patch, err := UpdateRequestToPatch(input)
	if err != nil {
		writeError(c, log, err)
		return
	}

	alert, err := h.alertService.UpdateAlert(c.Request.Context(), callerFrom(c), id, patch)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertEnvelope{
		Success: true,
		Message: "Alert updated successfully",
		Data:    AlertToResponse(alert, h.now()),
	})
}

// @Summary Delete an alert
// @Description Permanently delete an alert with its comments and actions. Reporter or admin only.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id} [delete]
func (h *Handler) deleteAlert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := h.log(c, "deleteAlert").WithField("id", id)

	if err := h.alertService.DeleteAlert(c.Request.Context(), callerFrom(c), id); err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Alert deleted successfully"})
}

// @Summary Comment on an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param comment body CommentRequest true "Comment"
// @Success 201 {object} CommentEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id}/comments [post]
func (h *Handler) addComment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := h.log(c, "addComment").WithField("id", id)

	var input CommentRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	comment, err := h.alertService.AddComment(c.Request.Context(), callerFrom(c), id, input.Content)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, CommentEnvelope{Success: true, Data: comment})
}

// @Summary Record an action on an alert
// @Description Veterinarians and admins record investigation and treatment steps.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param action body ActionRequest true "Action"
// @Success 201 {object} ActionEnvelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id}/actions [post]
func (h *Handler) addAction(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := h.log(c, "addAction").WithField("id", id)

	var input ActionRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	action, err := h.alertService.AddAction(c.Request.Context(), callerFrom(c), id, models.ActionType(input.Type), input.Description)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ActionEnvelope{Success: true, Data: action})
}

// @Summary Alerts near a point
// @Description Alerts within radius meters of lat/lng, nearest first or most recent first.
// @Tags Alerts
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters" default(50000)
// @Param limit query int false "Maximum results" default(20)
// @Param sort query string false "Ordering" Enums(distance, recent)
// @Success 200 {object} AlertListResponse
// @Failure 400 {object} ErrorResponse
// @Router /alerts/nearby [get]
func (h *Handler) nearbyAlerts(c *gin.Context) {
	log := h.log(c, "nearbyAlerts")
	var q NearbyQuery
	if !h.bindQuery(c, log, &q) {
		return
	}

	alerts, err := h.alertService.NearbyAlerts(c.Request.Context(), models.NearbyQuery{
		Point:      models.Coordinates{Lat: *q.Lat, Lng: *q.Lng},
		Radius:     q.Radius,
		Limit:      q.Limit,
		SortRecent: q.Sort == "recent",
		Viewer:     callerFrom(c),
	})
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{
		Success: true,
		Count:   len(alerts),
		Data:    AlertsToResponses(alerts, h.now()),
	})
}

// @Summary Alert statistics
// @Description Aggregate counts over a time window, optionally limited to a region.
// @Tags Alerts
// @Produce json
// @Param state query string false "State"
// @Param district query string false "District"
// @Param timeframe query string false "Window, e.g. 30d" default(30d)
// @Success 200 {object} StatisticsResponse
// @Router /alerts/statistics [get]
func (h *Handler) statistics(c *gin.Context) {
	log := h.log(c, "statistics")
	var q StatisticsQuery
	if !h.bindQuery(c, log, &q) {
		return
	}

	days := models.ParseTimeframe(q.Timeframe)
	stats, err := h.alertService.Statistics(c.Request.Context(), models.StatisticsFilter{
		State:    q.State,
		District: q.District,
		Days:     days,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, StatisticsResponse{
		Success:   true,
		Timeframe: fmt.Sprintf("%d days", days),
		Data:      stats,
	})
}

// @Summary Alert heatmap
// @Description Open alerts inside bounds grouped into grid cells sized by zoom.
// @Tags Alerts
// @Produce json
// @Param bounds query string true "north,south,east,west"
// @Param zoom query int false "Zoom level 1-18" default(10)
// @Success 200 {object} HeatmapResponse
// @Failure 400 {object} ErrorResponse
// @Router /alerts/heatmap [get]
func (h *Handler) heatmap(c *gin.Context) {
	log := h.log(c, "heatmap")
	var q HeatmapQuery
	if !h.bindQuery(c, log, &q) {
		return
	}
	bounds, err := models.ParseBounds(q.Bounds)
	if err != nil {
		writeError(c, log, err)
		return
	}

	cells, err := h.alertService.Heatmap(c.Request.Context(), models.HeatmapQuery{
		Bounds: bounds,
		Zoom:   q.Zoom,
		Viewer: callerFrom(c),
	})
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, HeatmapResponse{Success: true, Count: len(cells), Data: cells})
}

// @Summary Get application health status
// @Description Get health status of the application and its dependencies
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse "Status OK"
// @Failure 503 {object} HealthResponse "A dependency is unavailable"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Services: map[string]string{}}
	status := http.StatusOK

	for _, check := range h.healthChecks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		err := check.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.WithError(err).WithField("dependency", check.Name).Warn("Health check failed")
			resp.Services[check.Name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[check.Name] = "ok"
	}
	c.JSON(status, resp)
}
