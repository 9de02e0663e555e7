package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
	"animal-shelter/pkg/utils"
)

type CreateVolunteerInput struct {
	Name            string  `json:"name" binding:"required,max=128"`
	Age             *int    `json:"age" binding:"omitempty,min=0"`
	WorkArea        string  `json:"workArea" binding:"required,max=128"`
	Schedule        string  `json:"schedule" binding:"required,max=128"`
	EntryDate       string  `json:"entryDate"`
	IsActive        *bool   `json:"isActive"`
	WorkedHours     float64 `json:"workedHours" binding:"min=0"`
	AbsenteeismRate float64 `json:"absenteeismRate" binding:"min=0,max=100"`
	ImageURL        string  `json:"imageUrl" binding:"max=512"`
}

type UpdateVolunteerInput struct {
	Name            *string  `json:"name" binding:"omitempty,max=128"`
	Age             *int     `json:"age" binding:"omitempty,min=0"`
	WorkArea        *string  `json:"workArea" binding:"omitempty,max=128"`
	Schedule        *string  `json:"schedule" binding:"omitempty,max=128"`
	EntryDate       *string  `json:"entryDate"`
	IsActive        *bool    `json:"isActive"`
	WorkedHours     *float64 `json:"workedHours" binding:"omitempty,min=0"`
	AbsenteeismRate *float64 `json:"absenteeismRate" binding:"omitempty,min=0,max=100"`
	ImageURL        *string  `json:"imageUrl"`
}

type VolunteerService struct {
	store *repo.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewVolunteerService(store *repo.Store, log *zap.Logger) *VolunteerService {
	return &VolunteerService{store: store, log: log, now: utcNow}
}

func checkRate(f fields, v float64) {
	if v < 0 || v > 100 {
		f["absenteeismRate"] = "must be between 0 and 100"
	}
}

func (s *VolunteerService) Create(ctx context.Context, in CreateVolunteerInput) (*domain.Volunteer, error) {
	f := fields{}
	f.required("name", in.Name)
	f.required("workArea", in.WorkArea)
	f.required("schedule", in.Schedule)
	if in.Age != nil && *in.Age < 0 {
		f["age"] = "must be >= 0"
	}
	if in.WorkedHours < 0 {
		f["workedHours"] = "must be >= 0"
	}
	checkRate(f, in.AbsenteeismRate)
	entry := f.date("entryDate", in.EntryDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	v := &domain.Volunteer{
		ID:              utils.NewID(),
		Name:            strings.TrimSpace(in.Name),
		Age:             in.Age,
		WorkArea:        strings.TrimSpace(in.WorkArea),
		Schedule:        strings.TrimSpace(in.Schedule),
		EntryDate:       orNow(entry, s.now),
		IsActive:        in.IsActive == nil || *in.IsActive,
		WorkedHours:     in.WorkedHours,
		AbsenteeismRate: in.AbsenteeismRate,
		ImageURL:        strings.TrimSpace(in.ImageURL),
	}
	if err := s.store.Volunteers.Create(ctx, v); err != nil {
		return nil, errs.Persistence("create volunteer failed", err)
	}
	s.log.Info("volunteer created", zap.String("volunteer_id", v.ID))
	return v, nil
}

func (s *VolunteerService) Get(ctx context.Context, id string) (*domain.Volunteer, error) {
	v, err := s.store.Volunteers.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load volunteer failed", err)
	}
	if v == nil {
		return nil, errs.NotFound("volunteer not found")
	}
	return v, nil
}

func (s *VolunteerService) List(ctx context.Context, p domain.ListParams) ([]domain.Volunteer, int64, error) {
	items, total, err := s.store.Volunteers.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list volunteers failed", err)
	}
	return items, total, nil
}

func (s *VolunteerService) Update(ctx context.Context, id string, in UpdateVolunteerInput) (*domain.Volunteer, error) {
	f := fields{}
	f.requiredPtr("name", in.Name)
	f.requiredPtr("workArea", in.WorkArea)
	f.requiredPtr("schedule", in.Schedule)
	if in.Age != nil && *in.Age < 0 {
		f["age"] = "must be >= 0"
	}
	if in.WorkedHours != nil && *in.WorkedHours < 0 {
		f["workedHours"] = "must be >= 0"
	}
	if in.AbsenteeismRate != nil {
		checkRate(f, *in.AbsenteeismRate)
	}
	entry := f.datePtr("entryDate", in.EntryDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setStr(&v.Name, in.Name)
	setStr(&v.WorkArea, in.WorkArea)
	setStr(&v.Schedule, in.Schedule)
	setStr(&v.ImageURL, in.ImageURL)
	if in.Age != nil {
		v.Age = in.Age
	}
	if entry != nil && !entry.IsZero() {
		v.EntryDate = *entry
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if in.WorkedHours != nil {
		v.WorkedHours = *in.WorkedHours
	}
	if in.AbsenteeismRate != nil {
		v.AbsenteeismRate = *in.AbsenteeismRate
	}
	if err := s.store.Volunteers.Update(ctx, v); err != nil {
		return nil, errs.Persistence("update volunteer failed", err)
	}
	return v, nil
}

func (s *VolunteerService) Delete(ctx context.Context, id string) error {
	n, err := s.store.Volunteers.Delete(ctx, id)
	if err != nil {
		return errs.Persistence("delete volunteer failed", err)
	}
	if n == 0 {
		return errs.NotFound("volunteer not found")
	}
	return nil
}
