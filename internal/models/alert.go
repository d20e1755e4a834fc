package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
)

type AlertStatus string

const (
	StatusActive        AlertStatus = "active"
	StatusInvestigating AlertStatus = "investigating"
	StatusResolved      AlertStatus = "resolved"
	StatusClosed        AlertStatus = "closed"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInvestigating, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Category string

const (
	CategoryDisease     Category = "disease"
	CategoryInjury      Category = "injury"
	CategoryDeath       Category = "death"
	CategoryVaccination Category = "vaccination"
	CategoryGeneral     Category = "general"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight - вес уровня опасности для тепловой карты и сортировки
func (s Severity) Weight() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// SeverityFromWeight - обратное преобразование для Weight
func SeverityFromWeight(w int) Severity {
	switch w {
	case 1:
		return SeverityLow
	case 2:
		return SeverityMedium
	case 3:
		return SeverityHigh
	case 4:
		return SeverityCritical
	}
	return ""
}

type Species string

const (
	SpeciesCattle  Species = "cattle"
	SpeciesBuffalo Species = "buffalo"
	SpeciesGoat    Species = "goat"
	SpeciesSheep   Species = "sheep"
	SpeciesPig     Species = "pig"
	SpeciesPoultry Species = "poultry"
	SpeciesOther   Species = "other"
)

type AgeGroup string

const (
	AgeGroupYoung AgeGroup = "young"
	AgeGroupAdult AgeGroup = "adult"
	AgeGroupOld   AgeGroup = "old"
	AgeGroupMixed AgeGroup = "mixed"
)

const (
	DefaultPriority  = 5
	MaxAnimalCount   = 10000
	MaxSymptoms      = 10
	MaxSymptomLength = 100
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

type Location struct {
	State       string      `json:"state"`
	District    string      `json:"district"`
	Village     string      `json:"village,omitempty"`
	Pincode     string      `json:"pincode,omitempty"`
	Address     string      `json:"address,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

type Mortality struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type AffectedAnimals struct {
	Species   Species   `json:"species"`
	Breed     string    `json:"breed,omitempty"`
	Count     int       `json:"count"`
	AgeGroup  AgeGroup  `json:"ageGroup"`
	Symptoms  []string  `json:"symptoms"`
	Mortality Mortality `json:"mortality"`
}

type Attachment struct {
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UserRef - краткие сведения о пользователе для раскрытия ссылок в ответах
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// Alert - сообщение о вспышке болезни, травме или падеже скота
type Alert struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Category         Category        `json:"category"`
	Severity         Severity        `json:"severity"`
	Status           AlertStatus     `json:"status"`
	Priority         int             `json:"priority"`
	IsPublic         bool            `json:"isPublic"`
	Tags             []string        `json:"tags"`
	Location         Location        `json:"location"`
	AffectedAnimals  AffectedAnimals `json:"affectedAnimals"`
	Attachments      []Attachment    `json:"attachments"`
	ReportedBy       UserRef         `json:"reportedBy"`
	AssignedTo       *UserRef        `json:"assignedTo,omitempty"`
	Comments         []Comment       `json:"comments"`
	Actions          []Action        `json:"actions"`
	FollowUpRequired bool            `json:"followUpRequired"`
	FollowUpDate     *time.Time      `json:"followUpDate,omitempty"`
	ResolvedAt       *time.Time      `json:"resolvedAt,omitempty"`
	ClosedAt         *time.Time      `json:"closedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`

	// Distance заполняется только в запросах по близости, в метрах
	Distance *float64 `json:"distance,omitempty"`
}

// ApplyStatus переводит сообщение в новый статус. Метки resolvedAt и closedAt
// проставляются один раз, при первом переходе, и больше не меняются.
func (a *Alert) ApplyStatus(status AlertStatus, now time.Time) {
	a.Status = status
	switch status {
	case StatusResolved:
		if a.ResolvedAt == nil {
			t := now
			a.ResolvedAt = &t
		}
	case StatusClosed:
		if a.ClosedAt == nil {
			t := now
			a.ClosedAt = &t
		}
	}
}

// ApplyDefaults заполняет значения по умолчанию для нового сообщения
func (a *Alert) ApplyDefaults() {
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.Severity == "" {
		a.Severity = SeverityMedium
	}
	if a.Priority == 0 {
		a.Priority = DefaultPriority
	}
	if a.AffectedAnimals.AgeGroup == "" {
		a.AffectedAnimals.AgeGroup = AgeGroupMixed
	}
	a.Tags = NormalizeTags(a.Tags)
	if a.AffectedAnimals.Symptoms == nil {
		a.AffectedAnimals.Symptoms = []string{}
	}
	if a.Attachments == nil {
		a.Attachments = []Attachment{}
	}
}

// Validate проверяет инварианты, которые затрагивают несколько полей сразу.
// Длины и перечисления проверяются на границе HTTP.
func (a *Alert) Validate() error {
	if !a.Status.Valid() {
		return apperr.Validation("invalid status %q", a.Status)
	}
	if a.Priority < 1 || a.Priority > 10 {
		return apperr.Validation("priority must be between 1 and 10")
	}
	if !a.Location.Coordinates.Valid() {
		return apperr.Validation("coordinates out of range")
	}
	animals := a.AffectedAnimals
	if animals.Count < 1 || animals.Count > MaxAnimalCount {
		return apperr.Validation("affected animal count must be between 1 and %d", MaxAnimalCount)
	}
	if len(animals.Symptoms) > MaxSymptoms {
		return apperr.Validation("at most %d symptoms allowed", MaxSymptoms)
	}
	for _, s := range animals.Symptoms {
		if len([]rune(s)) > MaxSymptomLength {
			return apperr.Validation("symptom exceeds %d characters", MaxSymptomLength)
		}
	}
	if animals.Mortality.Count < 0 {
		return apperr.Validation("mortality count cannot be negative")
	}
	if animals.Mortality.Count > animals.Count {
		return apperr.Validation("mortality count (%d) exceeds affected animal count (%d)", animals.Mortality.Count, animals.Count)
	}
	if animals.Mortality.Percentage < 0 || animals.Mortality.Percentage > 100 {
		return apperr.Validation("mortality percentage must be between 0 and 100")
	}
	return nil
}

// VisibleTo сообщает, может ли пользователь видеть сообщение.
// Непубличные сообщения видят автор, назначенный исполнитель, ветеринары и администраторы.
func (a *Alert) VisibleTo(c Caller) bool {
	if a.IsPublic || c.IsStaff() {
		return true
	}
	if c.Anonymous() {
		return false
	}
	if a.ReportedBy.ID == c.UserID {
		return true
	}
	return a.AssignedTo != nil && a.AssignedTo.ID == c.UserID
}

// DaysOpen - количество начатых суток с момента создания
func (a *Alert) DaysOpen(now time.Time) int {
	d := now.Sub(a.CreatedAt)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// MortalityRate - доля павших животных в процентах
func (a *Alert) MortalityRate() float64 {
	if a.AffectedAnimals.Count == 0 {
		return 0
	}
	rate := float64(a.AffectedAnimals.Mortality.Count) / float64(a.AffectedAnimals.Count) * 100
	return math.Round(rate*100) / 100
}

// NormalizeTags приводит теги к нижнему регистру, обрезает пробелы и убирает пустые и повторы
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
