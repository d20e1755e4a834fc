package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertPatch - частичное обновление сообщения. nil означает "поле не меняется".
// Хранилище записывает только заданные поля, поэтому параллельно добавленные
// комментарии и действия не теряются.
type AlertPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Severity    *Severity
	Status      *AlertStatus
	Priority    *int
	IsPublic    *bool
	Tags        *[]string

	State       *string
	District    *string
	Village     *string
	Pincode     *string
	Address     *string
	Coordinates *Coordinates

	Species             *Species
	Breed               *string
	AnimalCount         *int
	AgeGroup            *AgeGroup
	Symptoms            *[]string
	MortalityCount      *int
	MortalityPercentage *float64

	// AssignedTo со значением uuid.Nil снимает назначение
	AssignedTo *uuid.UUID

	FollowUpRequired *bool
	FollowUpDate     *time.Time
}

func (p *AlertPatch) IsEmpty() bool {
	return *p == AlertPatch{}
}

// ApplyTo применяет изменения к копии сообщения, чтобы проверить итоговое состояние
func (p *AlertPatch) ApplyTo(a *Alert, now time.Time) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Severity != nil {
		a.Severity = *p.Severity
	}
	if p.Status != nil {
		a.ApplyStatus(*p.Status, now)
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.IsPublic != nil {
		a.IsPublic = *p.IsPublic
	}
	if p.Tags != nil {
		normalized := NormalizeTags(*p.Tags)
		p.Tags = &normalized
		a.Tags = normalized
	}
	if p.State != nil {
		a.Location.State = *p.State
	}
	if p.District != nil {
		a.Location.District = *p.District
	}
	if p.Village != nil {
		a.Location.Village = *p.Village
	}
	if p.Pincode != nil {
		a.Location.Pincode = *p.Pincode
	}
	if p.Address != nil {
		a.Location.Address = *p.Address
	}
	if p.Coordinates != nil {
		a.Location.Coordinates = *p.Coordinates
	}
	if p.Species != nil {
		a.AffectedAnimals.Species = *p.Species
	}
	if p.Breed != nil {
		a.AffectedAnimals.Breed = *p.Breed
	}
	if p.AnimalCount != nil {
		a.AffectedAnimals.Count = *p.AnimalCount
	}
	if p.AgeGroup != nil {
		a.AffectedAnimals.AgeGroup = *p.AgeGroup
	}
	if p.Symptoms != nil {
		a.AffectedAnimals.Symptoms = *p.Symptoms
	}
	if p.MortalityCount != nil {
		a.AffectedAnimals.Mortality.Count = *p.MortalityCount
	}
	if p.MortalityPercentage != nil {
		a.AffectedAnimals.Mortality.Percentage = *p.MortalityPercentage
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == uuid.Nil {
			a.AssignedTo = nil
		} else {
			a.AssignedTo = &UserRef{ID: *p.AssignedTo}
		}
	}
	if p.FollowUpRequired != nil {
		a.FollowUpRequired = *p.FollowUpRequired
	}
	if p.FollowUpDate != nil {
		a.FollowUpDate = p.FollowUpDate
	}
	a.UpdatedAt = now
}
