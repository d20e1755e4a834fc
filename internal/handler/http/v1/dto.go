package v1

import (
	"time"

	"github.com/shenikar/livestock_alerts/internal/models"
)

// CoordinatesRequest - координаты точки
// @Description Координаты точки в градусах WGS84
type CoordinatesRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// LocationRequest - место происшествия
// @Description Место происшествия
type LocationRequest struct {
	State       string             `json:"state" validate:"required,min=2,max=100"`
	District    string             `json:"district" validate:"required,min=2,max=100"`
	Village     string             `json:"village,omitempty" validate:"max=100"`
	Pincode     string             `json:"pincode,omitempty" validate:"omitempty,len=6,numeric"`
	Address     string             `json:"address,omitempty" validate:"max=500"`
	Coordinates CoordinatesRequest `json:"coordinates"`
}

type MortalityRequest struct {
	Count      int     `json:"count" validate:"min=0,max=10000"`
	Percentage float64 `json:"percentage" validate:"min=0,max=100"`
}

// AffectedAnimalsRequest - сведения о пострадавших животных
// @Description Сведения о пострадавших животных
type AffectedAnimalsRequest struct {
	Species   string           `json:"species" validate:"required,oneof=cattle buffalo goat sheep pig poultry other"`
	Breed     string           `json:"breed,omitempty" validate:"max=100"`
	Count     int              `json:"count" validate:"required,min=1,max=10000"`
	AgeGroup  string           `json:"ageGroup,omitempty" validate:"omitempty,oneof=young adult old mixed"`
	Symptoms  []string         `json:"symptoms,omitempty" validate:"max=10,dive,min=1,max=100"`
	Mortality MortalityRequest `json:"mortality"`
}

type AttachmentRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption,omitempty" validate:"max=200"`
}

// CreateAlertRequest DTO для создания сообщения
// @Description DTO для создания сообщения
type CreateAlertRequest struct {
	Title            string                 `json:"title" validate:"required,min=5,max=200"`
	Description      string                 `json:"description" validate:"required,min=10,max=2000"`
	Category         string                 `json:"category" validate:"required,oneof=disease injury death vaccination general"`
	Severity         string                 `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Priority         int                    `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	IsPublic         *bool                  `json:"isPublic,omitempty"`
	Tags             []string               `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Location         LocationRequest        `json:"location"`
	AffectedAnimals  AffectedAnimalsRequest `json:"affectedAnimals"`
	Attachments      []AttachmentRequest    `json:"attachments,omitempty" validate:"max=10,dive"`
	FollowUpRequired bool                   `json:"followUpRequired,omitempty"`
	FollowUpDate     *time.Time             `json:"followUpDate,omitempty"`
}

type UpdateLocationRequest struct {
	State       *string             `json:"state,omitempty" validate:"omitempty,min=2,max=100"`
	District    *string             `json:"district,omitempty" validate:"omitempty,min=2,max=100"`
	Village     *string             `json:"village,omitempty" validate:"omitempty,max=100"`
	Pincode     *string             `json:"pincode,omitempty" validate:"omitempty,len=6,numeric"`
	Address     *string             `json:"address,omitempty" validate:"omitempty,max=500"`
	Coordinates *CoordinatesRequest `json:"coordinates,omitempty"`
}

type UpdateMortalityRequest struct {
	Count      *int     `json:"count,omitempty" validate:"omitempty,min=0,max=10000"`
	Percentage *float64 `json:"percentage,omitempty" validate:"omitempty,min=0,max=100"`
}

type UpdateAffectedAnimalsRequest struct {
	Species   *string                 `json:"species,omitempty" validate:"omitempty,oneof=cattle buffalo goat sheep pig poultry other"`
	Breed     *string                 `json:"breed,omitempty" validate:"omitempty,max=100"`
	Count     *int                    `json:"count,omitempty" validate:"omitempty,min=1,max=10000"`
	AgeGroup  *string                 `json:"ageGroup,omitempty" validate:"omitempty,oneof=young adult old mixed"`
	Symptoms  *[]string               `json:"symptoms,omitempty" validate:"omitempty,max=10,dive,min=1,max=100"`
	Mortality *UpdateMortalityRequest `json:"mortality,omitempty"`
}

// UpdateAlertRequest DTO для частичного обновления сообщения. Отсутствующие поля не меняются.
// @Description DTO для частичного обновления сообщения
type UpdateAlertRequest struct {
	Title            *string                       `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description      *string                       `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Category         *string                       `json:"category,omitempty" validate:"omitempty,oneof=disease injury death vaccination general"`
	Severity         *string                       `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Status           *string                       `json:"status,omitempty" validate:"omitempty,oneof=active investigating resolved closed"`
	Priority         *int                          `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	IsPublic         *bool                         `json:"isPublic,omitempty"`
	Tags             *[]string                     `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Location         *UpdateLocationRequest        `json:"location,omitempty"`
	AffectedAnimals  *UpdateAffectedAnimalsRequest `json:"affectedAnimals,omitempty"`
	AssignedTo       *string                       `json:"assignedTo,omitempty" validate:"omitempty,uuid|eq=none"`
	FollowUpRequired *bool                         `json:"followUpRequired,omitempty"`
	FollowUpDate     *time.Time                    `json:"followUpDate,omitempty"`
}

// CommentRequest DTO для комментария
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// ActionRequest DTO для действия ветеринара
type ActionRequest struct {
	Type        string `json:"type" validate:"required,oneof=investigation_started sample_collected treatment_given resolved escalated"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// ListAlertsQuery - параметры строки запроса для списка
type ListAlertsQuery struct {
	Status    string   `form:"status" validate:"omitempty,oneof=active investigating resolved closed"`
	Category  string   `form:"category" validate:"omitempty,oneof=disease injury death vaccination general"`
	Severity  string   `form:"severity" validate:"omitempty,oneof=low medium high critical"`
	State     string   `form:"state" validate:"max=100"`
	District  string   `form:"district" validate:"max=100"`
	Search    string   `form:"search" validate:"max=200"`
	SortBy    string   `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt severity priority status title"`
	SortOrder string   `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
	Lat       *float64 `form:"lat" validate:"omitempty,latitude"`
	Lng       *float64 `form:"lng" validate:"omitempty,longitude"`
	Radius    float64  `form:"radius" validate:"min=0"`
}

// NearbyQuery - параметры поиска по радиусу
type NearbyQuery struct {
	Lat    *float64 `form:"lat" validate:"required,latitude"`
	Lng    *float64 `form:"lng" validate:"required,longitude"`
	Radius float64  `form:"radius" validate:"min=0"`
	Limit  int      `form:"limit"`
	Sort   string   `form:"sort" validate:"omitempty,oneof=distance recent"`
}

type StatisticsQuery struct {
	State     string `form:"state" validate:"max=100"`
	District  string `form:"district" validate:"max=100"`
	Timeframe string `form:"timeframe"`
}

type HeatmapQuery struct {
	Bounds string `form:"bounds" validate:"required"`
	Zoom   int    `form:"zoom" validate:"omitempty,min=1,max=18"`
}

// AlertResponse DTO для ответа с информацией о сообщении
// @Description Сообщение с вычисляемыми полями
type AlertResponse struct {
	*models.Alert
	DaysOpen      int     `json:"daysOpen"`
	MortalityRate float64 `json:"mortalityRate"`
}

type AlertEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    *AlertResponse `json:"data"`
}

type AlertListResponse struct {
	Success    bool               `json:"success"`
	Count      int                `json:"count"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Data       []*AlertResponse   `json:"data"`
}

type CommentEnvelope struct {
	Success bool            `json:"success"`
	Data    *models.Comment `json:"data"`
}

type ActionEnvelope struct {
	Success bool           `json:"success"`
	Data    *models.Action `json:"data"`
}

type StatisticsResponse struct {
	Success   bool               `json:"success"`
	Timeframe string             `json:"timeframe"`
	Data      *models.Statistics `json:"data"`
}

type HeatmapResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []models.HeatmapCell `json:"data"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// assignNone - значение assignedTo, снимающее назначение
const assignNone = "none"
