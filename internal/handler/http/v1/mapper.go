package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/models"
)

// CreateRequestToAlert преобразует DTO создания в доменную модель.
// Автор и статус выставляет сервис.
func CreateRequestToAlert(req CreateAlertRequest, now time.Time) *models.Alert {
	alert := &models.Alert{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.Category(req.Category),
		Severity:    models.Severity(req.Severity),
		Priority:    req.Priority,
		IsPublic:    true,
		Tags:        req.Tags,
		Location: models.Location{
			State:    req.Location.State,
			District: req.Location.District,
			Village:  req.Location.Village,
			Pincode:  req.Location.Pincode,
			Address:  req.Location.Address,
			Coordinates: models.Coordinates{
				Lat: *req.Location.Coordinates.Lat,
				Lng: *req.Location.Coordinates.Lng,
			},
		},
		AffectedAnimals: models.AffectedAnimals{
			Species:  models.Species(req.AffectedAnimals.Species),
			Breed:    req.AffectedAnimals.Breed,
			Count:    req.AffectedAnimals.Count,
			AgeGroup: models.AgeGroup(req.AffectedAnimals.AgeGroup),
			Symptoms: req.AffectedAnimals.Symptoms,
			Mortality: models.Mortality{
				Count:      req.AffectedAnimals.Mortality.Count,
				Percentage: req.AffectedAnimals.Mortality.Percentage,
			},
		},
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
	}
	if req.IsPublic != nil {
		alert.IsPublic = *req.IsPublic
	}
	for _, a := range req.Attachments {
		alert.Attachments = append(alert.Attachments, models.Attachment{URL: a.URL, Caption: a.Caption, UploadedAt: now})
	}
	return alert
}

// UpdateRequestToPatch переносит в патч только переданные поля
func UpdateRequestToPatch(req UpdateAlertRequest) (*models.AlertPatch, error) {
	patch := &models.AlertPatch{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         req.Priority,
		IsPublic:         req.IsPublic,
		Tags:             req.Tags,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
	}
	if req.Category != nil {
		v := models.Category(*req.Category)
		patch.Category = &v
	}
	if req.Severity != nil {
		v := models.Severity(*req.Severity)
		patch.Severity = &v
	}
	if req.Status != nil {
		v := models.AlertStatus(*req.Status)
		patch.Status = &v
	}

	if loc := req.Location; loc != nil {
		patch.State = loc.State
		patch.District = loc.District
		patch.Village = loc.Village
		patch.Pincode = loc.Pincode
		patch.Address = loc.Address
		if loc.Coordinates != nil {
			patch.Coordinates = &models.Coordinates{Lat: *loc.Coordinates.Lat, Lng: *loc.Coordinates.Lng}
		}
	}

	if aa := req.AffectedAnimals; aa != nil {
		if aa.Species != nil {
			v := models.Species(*aa.Species)
			patch.Species = &v
		}
		if aa.AgeGroup != nil {
			v := models.AgeGroup(*aa.AgeGroup)
			patch.AgeGroup = &v
		}
		patch.Breed = aa.Breed
		patch.AnimalCount = aa.Count
		patch.Symptoms = aa.Symptoms
		if aa.Mortality != nil {
			patch.MortalityCount = aa.Mortality.Count
			patch.MortalityPercentage = aa.Mortality.Percentage
		}
	}

	if req.AssignedTo != nil {
		id := uuid.Nil
		if *req.AssignedTo != assignNone {
			parsed, err := uuid.Parse(*req.AssignedTo)
			if err != nil {
				return nil, apperr.Validation("invalid assignedTo id")
			}
			id = parsed
		}
		patch.AssignedTo = &id
	}
	return patch, nil
}

// ListQueryToFilter собирает фильтр списка из строки запроса
func ListQueryToFilter(q ListAlertsQuery, viewer models.Caller) (models.AlertFilter, error) {
	filter := models.AlertFilter{
		Status:    models.AlertStatus(q.Status),
		Category:  models.Category(q.Category),
		Severity:  models.Severity(q.Severity),
		State:     q.State,
		District:  q.District,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: models.SortOrder(q.SortOrder),
		Page:      q.Page,
		Limit:     q.Limit,
		Viewer:    viewer,
	}
	if (q.Lat == nil) != (q.Lng == nil) {
		return filter, apperr.Validation("lat and lng must be provided together")
	}
	if q.Lat != nil {
		filter.Near = &models.Coordinates{Lat: *q.Lat, Lng: *q.Lng}
		filter.Radius = q.Radius
	}
	return filter, nil
}

// AlertToResponse добавляет к сообщению вычисляемые поля
func AlertToResponse(alert *models.Alert, now time.Time) *AlertResponse {
	return &AlertResponse{
		Alert:         alert,
		DaysOpen:      alert.DaysOpen(now),
		MortalityRate: alert.MortalityRate(),
	}
}

func AlertsToResponses(alerts []*models.Alert, now time.Time) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = AlertToResponse(alert, now)
	}
	return responses
}
