package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shenikar/livestock_alerts/internal/apperr"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPage          = 1000
	MaxPageLimit     = 100

	DefaultNearbyRadius = 50000.0
	MaxNearbyRadius     = 500000.0
	DefaultNearbyLimit  = 20
	MaxNearbyLimit      = 100

	DefaultTimeframeDays = 30
	MaxTimeframeDays     = 3650
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortFields - поля, по которым разрешена сортировка списка
var SortFields = []string{"createdAt", "updatedAt", "severity", "priority", "status", "title"}

func ValidSortField(f string) bool {
	for _, s := range SortFields {
		if s == f {
			return true
		}
	}
	return false
}

// AlertFilter - параметры запроса списка сообщений
type AlertFilter struct {
	Status   AlertStatus
	Category Category
	Severity Severity
	State    string
	District string
	Search   string

	// SortBy пустой, если клиент не задал сортировку явно
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int

	// Near включает режим поиска по радиусу
	Near   *Coordinates
	Radius float64

	Viewer Caller
}

// Normalize подставляет значения по умолчанию и ограничивает пагинацию
func (f *AlertFilter) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.SortOrder != SortAsc {
		f.SortOrder = SortDesc
	}
	if f.Near != nil {
		if f.Radius <= 0 {
			f.Radius = DefaultNearbyRadius
		}
		if f.Radius > MaxNearbyRadius {
			f.Radius = MaxNearbyRadius
		}
	}
}

func (f *AlertFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// NearbyQuery - запрос ближайших к точке сообщений
type NearbyQuery struct {
	Point      Coordinates
	Radius     float64
	Limit      int
	SortRecent bool
	Viewer     Caller
}

func (q *NearbyQuery) Normalize() {
	if q.Radius <= 0 {
		q.Radius = DefaultNearbyRadius
	}
	if q.Radius > MaxNearbyRadius {
		q.Radius = MaxNearbyRadius
	}
	if q.Limit < 1 {
		q.Limit = DefaultNearbyLimit
	}
	if q.Limit > MaxNearbyLimit {
		q.Limit = MaxNearbyLimit
	}
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	Total      int  `json:"total"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Total:      total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type AlertPage struct {
	Alerts     []*Alert
	Pagination Pagination
}

// ParseTimeframe разбирает окно вида "30d". Некорректное значение дает окно по умолчанию.
func ParseTimeframe(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "d")
	days, err := strconv.Atoi(s)
	if err != nil || days <= 0 {
		return DefaultTimeframeDays
	}
	if days > MaxTimeframeDays {
		return MaxTimeframeDays
	}
	return days
}

type StatisticsFilter struct {
	State    string
	District string
	Days     int
}

// Statistics - агрегаты по сообщениям за окно
type Statistics struct {
	Total                int `json:"total"`
	Active               int `json:"active"`
	Investigating        int `json:"investigating"`
	Resolved             int `json:"resolved"`
	Critical             int `json:"critical"`
	High                 int `json:"high"`
	TotalAffectedAnimals int `json:"totalAffectedAnimals"`
	TotalMortality       int `json:"totalMortality"`
}

type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// ParseBounds разбирает строку "north,south,east,west"
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, apperr.Validation("bounds must be north,south,east,west")
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, apperr.Validation("invalid bounds value %q", p)
		}
		vals[i] = v
	}
	b := Bounds{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}
	if b.North < b.South {
		return Bounds{}, apperr.Validation("north must not be below south")
	}
	if !(Coordinates{Lat: b.North, Lng: b.East}).Valid() || !(Coordinates{Lat: b.South, Lng: b.West}).Valid() {
		return Bounds{}, apperr.Validation("bounds out of range")
	}
	return b, nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.North, b.South, b.East, b.West)
}

const (
	DefaultZoom = 10
	MinZoom     = 1
	MaxZoom     = 18
)

type HeatmapQuery struct {
	Bounds Bounds
	Zoom   int
	Viewer Caller
}

// CellSize - размер ячейки сетки в градусах для заданного масштаба
func CellSize(zoom int) float64 {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	return 90 / math.Pow(2, float64(zoom))
}

// HeatmapCell - агрегат сообщений в одной ячейке сетки
type HeatmapCell struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Count       int      `json:"count"`
	Weight      int      `json:"weight"`
	MaxSeverity Severity `json:"maxSeverity"`
}
