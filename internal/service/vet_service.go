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

type CreateVetRecordInput struct {
	AnimalID string  `json:"animalId" binding:"required"`
	Doctor   string  `json:"doctor" binding:"max=128"`
	Date     string  `json:"date"`
	Cost     float64 `json:"cost" binding:"min=0"`
	Illness  string  `json:"illness" binding:"max=191"`
	Notes    string  `json:"notes"`
}

// UpdateVetRecordInput 不允许改挂靠的动物
type UpdateVetRecordInput struct {
	Doctor  *string  `json:"doctor" binding:"omitempty,max=128"`
	Date    *string  `json:"date"`
	Cost    *float64 `json:"cost" binding:"omitempty,min=0"`
	Illness *string  `json:"illness" binding:"omitempty,max=191"`
	Notes   *string  `json:"notes"`
}

type VetRecordService struct {
	store *repo.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewVetRecordService(store *repo.Store, log *zap.Logger) *VetRecordService {
	return &VetRecordService{store: store, log: log, now: utcNow}
}

func (s *VetRecordService) Create(ctx context.Context, in CreateVetRecordInput) (*domain.VeterinaryRecord, error) {
	f := fields{}
	f.required("animalId", in.AnimalID)
	if in.Cost < 0 {
		f["cost"] = "must be >= 0"
	}
	date := f.date("date", in.Date)
	if err := f.err(); err != nil {
		return nil, err
	}
	if err := s.animalExists(ctx, in.AnimalID); err != nil {
		return nil, err
	}

	r := &domain.VeterinaryRecord{
		ID:       utils.NewID(),
		AnimalID: strings.TrimSpace(in.AnimalID),
		Doctor:   strings.TrimSpace(in.Doctor),
		Date:     orNow(date, s.now),
		Cost:     in.Cost,
		Illness:  strings.TrimSpace(in.Illness),
		Notes:    strings.TrimSpace(in.Notes),
	}
	if err := s.store.VetRecords.Create(ctx, r); err != nil {
		return nil, errs.Persistence("create vet record failed", err)
	}
	s.log.Info("vet record created", zap.String("record_id", r.ID), zap.String("animal_id", r.AnimalID))
	return s.Get(ctx, r.ID)
}

func (s *VetRecordService) Get(ctx context.Context, id string) (*domain.VeterinaryRecord, error) {
	r, err := s.store.VetRecords.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load vet record failed", err)
	}
	if r == nil {
		return nil, errs.NotFound("vet record not found")
	}
	return r, nil
}

func (s *VetRecordService) List(ctx context.Context, p domain.ListParams) ([]domain.VeterinaryRecord, int64, error) {
	items, total, err := s.store.VetRecords.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list vet records failed", err)
	}
	return items, total, nil
}

// ListByAnimal 动物的就诊历史，最近的在前
func (s *VetRecordService) ListByAnimal(ctx context.Context, animalID string) ([]domain.VeterinaryRecord, error) {
	if err := s.animalExists(ctx, animalID); err != nil {
		return nil, err
	}
	items, err := s.store.VetRecords.ListByAnimal(ctx, animalID)
	if err != nil {
		return nil, errs.Persistence("list vet records failed", err)
	}
	return items, nil
}

func (s *VetRecordService) Update(ctx context.Context, id string, in UpdateVetRecordInput) (*domain.VeterinaryRecord, error) {
	f := fields{}
	if in.Cost != nil && *in.Cost < 0 {
		f["cost"] = "must be >= 0"
	}
	date := f.datePtr("date", in.Date)
	if err := f.err(); err != nil {
		return nil, err
	}

	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setStr(&r.Doctor, in.Doctor)
	setStr(&r.Illness, in.Illness)
	setStr(&r.Notes, in.Notes)
	if in.Cost != nil {
		r.Cost = *in.Cost
	}
	if date != nil && !date.IsZero() {
		r.Date = *date
	}
	if err := s.store.VetRecords.Update(ctx, r); err != nil {
		return nil, errs.Persistence("update vet record failed", err)
	}
	return r, nil
}

func (s *VetRecordService) Delete(ctx context.Context, id string) error {
	n, err := s.store.VetRecords.Delete(ctx, id)
	if err != nil {
		return errs.Persistence("delete vet record failed", err)
	}
	if n == 0 {
		return errs.NotFound("vet record not found")
	}
	return nil
}

func (s *VetRecordService) animalExists(ctx context.Context, id string) error {
	a, err := s.store.Animals.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return errs.Persistence("load animal failed", err)
	}
	if a == nil {
		return errs.NotFound("animal not found")
	}
	return nil
}
