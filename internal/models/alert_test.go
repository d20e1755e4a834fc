package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidAlert() *Alert {
	a := &Alert{
		ID:          uuid.New(),
		Title:       "Lumpy skin outbreak",
		Description: "Several cows with nodules on skin",
		Category:    CategoryDisease,
		IsPublic:    true,
		Location: Location{
			State:       "Maharashtra",
			District:    "Pune",
			Coordinates: Coordinates{Lat: 18.52, Lng: 73.85},
		},
		AffectedAnimals: AffectedAnimals{
			Species: SpeciesCattle,
			Count:   10,
		},
		ReportedBy: UserRef{ID: uuid.New()},
		CreatedAt:  time.Now(),
	}
	a.ApplyDefaults()
	return a
}

func TestApplyDefaults(t *testing.T) {
	a := &Alert{Tags: []string{" FMD ", "fmd", "", "Cattle"}}
	a.ApplyDefaults()

	assert.Equal(t, StatusActive, a.Status)
	assert.Equal(t, SeverityMedium, a.Severity)
	assert.Equal(t, DefaultPriority, a.Priority)
	assert.Equal(t, AgeGroupMixed, a.AffectedAnimals.AgeGroup)
	assert.Equal(t, []string{"fmd", "cattle"}, a.Tags)
	assert.NotNil(t, a.Attachments)
}

func TestApplyStatus_StampsOnce(t *testing.T) {
	a := newValidAlert()
	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	a.ApplyStatus(StatusResolved, first)
	require.NotNil(t, a.ResolvedAt)
	assert.Equal(t, first, *a.ResolvedAt)

	// Повторное открытие и повторное решение не меняют метку
	a.ApplyStatus(StatusActive, later)
	a.ApplyStatus(StatusResolved, later)
	assert.Equal(t, first, *a.ResolvedAt)
	assert.Nil(t, a.ClosedAt)

	a.ApplyStatus(StatusClosed, later)
	require.NotNil(t, a.ClosedAt)
	assert.Equal(t, later, *a.ClosedAt)
	assert.Equal(t, first, *a.ResolvedAt)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Alert)
		wantErr string
	}{
		{name: "valid", mutate: func(a *Alert) {}},
		{
			name:    "mortality exceeds count",
			mutate:  func(a *Alert) { a.AffectedAnimals.Mortality.Count = 11 },
			wantErr: "exceeds affected animal count",
		},
		{
			name:    "count too large",
			mutate:  func(a *Alert) { a.AffectedAnimals.Count = MaxAnimalCount + 1 },
			wantErr: "affected animal count",
		},
		{
			name:    "bad coordinates",
			mutate:  func(a *Alert) { a.Location.Coordinates.Lat = 91 },
			wantErr: "coordinates out of range",
		},
		{
			name: "too many symptoms",
			mutate: func(a *Alert) {
				a.AffectedAnimals.Symptoms = make([]string, MaxSymptoms+1)
			},
			wantErr: "symptoms",
		},
		{
			name:    "unknown status",
			mutate:  func(a *Alert) { a.Status = "archived" },
			wantErr: "invalid status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newValidAlert()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVisibleTo(t *testing.T) {
	a := newValidAlert()
	a.IsPublic = false
	assignee := uuid.New()
	a.AssignedTo = &UserRef{ID: assignee}

	assert.True(t, a.VisibleTo(Caller{UserID: a.ReportedBy.ID, Role: RoleUser}))
	assert.True(t, a.VisibleTo(Caller{UserID: assignee, Role: RoleUser}))
	assert.True(t, a.VisibleTo(Caller{UserID: uuid.New(), Role: RoleVeterinarian}))
	assert.False(t, a.VisibleTo(Caller{UserID: uuid.New(), Role: RoleUser}))
	assert.False(t, a.VisibleTo(Caller{}))

	a.IsPublic = true
	assert.True(t, a.VisibleTo(Caller{}))
}

func TestDerivedFields(t *testing.T) {
	a := newValidAlert()
	a.AffectedAnimals.Count = 8
	a.AffectedAnimals.Mortality.Count = 3
	a.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 37.5, a.MortalityRate())
	assert.Equal(t, 2, a.DaysOpen(a.CreatedAt.Add(25*time.Hour)))
	assert.Equal(t, 0, a.DaysOpen(a.CreatedAt))

	a.AffectedAnimals.Count = 0
	assert.Equal(t, 0.0, a.MortalityRate())
}

func TestAlertPatch_ApplyTo(t *testing.T) {
	a := newValidAlert()
	now := time.Now()
	status := StatusClosed
	count := 4
	tags := []string{" Urgent "}
	unassign := uuid.Nil
	a.AssignedTo = &UserRef{ID: uuid.New()}

	patch := &AlertPatch{Status: &status, MortalityCount: &count, Tags: &tags, AssignedTo: &unassign}
	assert.False(t, patch.IsEmpty())
	patch.ApplyTo(a, now)

	assert.Equal(t, StatusClosed, a.Status)
	require.NotNil(t, a.ClosedAt)
	assert.Equal(t, 4, a.AffectedAnimals.Mortality.Count)
	assert.Equal(t, []string{"urgent"}, a.Tags)
	assert.Equal(t, []string{"urgent"}, *patch.Tags)
	assert.Nil(t, a.AssignedTo)
	assert.Equal(t, now, a.UpdatedAt)

	assert.True(t, (&AlertPatch{}).IsEmpty())
}
