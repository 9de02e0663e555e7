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

type CreateAnimalInput struct {
	Name          string `json:"name" binding:"required,max=128"`
	Species       string `json:"species" binding:"required,max=64"`
	Breed         string `json:"breed" binding:"max=128"`
	Age           *int   `json:"age" binding:"omitempty,min=0"`
	Gender        string `json:"gender" binding:"max=16"`
	Status        string `json:"status" binding:"omitempty,oneof=available adopted in-treatment"`
	ImageURL      string `json:"imageUrl" binding:"max=512"`
	Description   string `json:"description"`
	AdmissionDate string `json:"admissionDate"`
}

type UpdateAnimalInput struct {
	Name          *string `json:"name" binding:"omitempty,max=128"`
	Species       *string `json:"species" binding:"omitempty,max=64"`
	Breed         *string `json:"breed"`
	Age           *int    `json:"age" binding:"omitempty,min=0"`
	Gender        *string `json:"gender"`
	Status        *string `json:"status" binding:"omitempty,oneof=available adopted in-treatment"`
	ImageURL      *string `json:"imageUrl"`
	Description   *string `json:"description"`
	AdmissionDate *string `json:"admissionDate"`
}

type AnimalService struct {
	store     *repo.Store
	adoptions *AdoptionService
	log       *zap.Logger
	now       func() time.Time
}

func NewAnimalService(store *repo.Store, adoptions *AdoptionService, log *zap.Logger) *AnimalService {
	return &AnimalService{store: store, adoptions: adoptions, log: log, now: utcNow}
}

func (s *AnimalService) Create(ctx context.Context, in CreateAnimalInput) (*domain.Animal, error) {
	f := fields{}
	f.required("name", in.Name)
	f.required("species", in.Species)
	if in.Age != nil && *in.Age < 0 {
		f["age"] = "must be >= 0"
	}
	status := domain.AnimalAvailable
	if in.Status != "" {
		if status = domain.AnimalStatus(in.Status); !status.Valid() {
			f["status"] = "invalid status"
		}
	}
	admitted := f.date("admissionDate", in.AdmissionDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	a := &domain.Animal{
		ID:            utils.NewID(),
		Name:          strings.TrimSpace(in.Name),
		Species:       strings.TrimSpace(in.Species),
		Breed:         strings.TrimSpace(in.Breed),
		Age:           in.Age,
		Gender:        strings.TrimSpace(in.Gender),
		Status:        status,
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Description:   strings.TrimSpace(in.Description),
		AdmissionDate: orNow(admitted, s.now),
	}
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		if err := tx.Animals.Create(ctx, a); err != nil {
			return errs.Persistence("create animal failed", err)
		}
		if a.Status == domain.AnimalAdopted {
			return s.adoptions.ensureAdoptionRecord(ctx, tx, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("create animal failed", err)
	}
	s.log.Info("animal created", zap.String("animal_id", a.ID), zap.String("species", a.Species))
	return a, nil
}

func (s *AnimalService) Get(ctx context.Context, id string) (*domain.Animal, error) {
	a, err := s.store.Animals.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load animal failed", err)
	}
	if a == nil {
		return nil, errs.NotFound("animal not found")
	}
	return a, nil
}

func (s *AnimalService) List(ctx context.Context, p domain.ListParams) ([]domain.Animal, int64, error) {
	items, total, err := s.store.Animals.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list animals failed", err)
	}
	return items, total, nil
}

// ListPublic status 为空时只列出可领养的
func (s *AnimalService) ListPublic(ctx context.Context, species, status string) ([]domain.Animal, error) {
	st := domain.AnimalAvailable
	if status != "" {
		if st = domain.AnimalStatus(status); !st.Valid() {
			return nil, errs.Field("status", "invalid status")
		}
	}
	items, err := s.store.Animals.ListPublic(ctx, strings.TrimSpace(species), st)
	if err != nil {
		return nil, errs.Persistence("list animals failed", err)
	}
	return items, nil
}

func (s *AnimalService) Update(ctx context.Context, id string, in UpdateAnimalInput) (*domain.Animal, error) {
	f := fields{}
	f.requiredPtr("name", in.Name)
	f.requiredPtr("species", in.Species)
	if in.Age != nil && *in.Age < 0 {
		f["age"] = "must be >= 0"
	}
	var status domain.AnimalStatus
	if in.Status != nil {
		if status = domain.AnimalStatus(strings.TrimSpace(*in.Status)); !status.Valid() {
			f["status"] = "invalid status"
		}
	}
	admitted := f.datePtr("admissionDate", in.AdmissionDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	var out *domain.Animal
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		// 行锁：与并发领养的状态 CAS 串行
		a, err := tx.Animals.FindByIDForUpdate(ctx, id)
		if err != nil {
			return errs.Persistence("load animal failed", err)
		}
		if a == nil {
			return errs.NotFound("animal not found")
		}
		prev := a.Status
		var cols columns
		cols.str("name", &a.Name, in.Name)
		cols.str("species", &a.Species, in.Species)
		cols.str("breed", &a.Breed, in.Breed)
		cols.str("gender", &a.Gender, in.Gender)
		cols.str("image_url", &a.ImageURL, in.ImageURL)
		cols.str("description", &a.Description, in.Description)
		if in.Age != nil {
			a.Age = in.Age
			cols.add("age")
		}
		if admitted != nil && !admitted.IsZero() {
			a.AdmissionDate = *admitted
			cols.add("admission_date")
		}
		// status 只在显式传入时写，避免把旧值覆盖回去
		if in.Status != nil {
			a.Status = status
			cols.add("status")
		}

		if prev == domain.AnimalAdopted && a.Status != domain.AnimalAdopted {
			active, err := tx.Adoptions.FindActiveByAnimal(ctx, a.ID)
			if err != nil {
				return errs.Persistence("lookup adoption failed", err)
			}
			if active != nil {
				return errs.Conflict("animal has an active adoption; return or delete it first")
			}
		}
		if err := tx.Animals.UpdateColumns(ctx, a, cols...); err != nil {
			return errs.Persistence("update animal failed", err)
		}
		if a.Status == domain.AnimalAdopted {
			if err := s.adoptions.ensureAdoptionRecord(ctx, tx, a.ID); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("update animal failed", err)
	}
	return out, nil
}

// Delete 连同兽医记录与领养记录一起删除
func (s *AnimalService) Delete(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		if err := tx.VetRecords.DeleteByAnimal(ctx, id); err != nil {
			return errs.Persistence("delete vet records failed", err)
		}
		if err := tx.Adoptions.DeleteByAnimal(ctx, id); err != nil {
			return errs.Persistence("delete adoptions failed", err)
		}
		n, err := tx.Animals.Delete(ctx, id)
		if err != nil {
			return errs.Persistence("delete animal failed", err)
		}
		if n == 0 {
			return errs.NotFound("animal not found")
		}
		return nil
	})
	if err != nil {
		return errs.Persistence("delete animal failed", err)
	}
	s.log.Info("animal deleted", zap.String("animal_id", id))
	return nil
}
