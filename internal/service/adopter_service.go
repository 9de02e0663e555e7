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

// AdopterFields 新建领养人的公共字段，领养流程内联创建时也复用
type AdopterFields struct {
	Name         string `json:"name" binding:"required,max=128"`
	Phone        string `json:"phone" binding:"required,max=32"`
	Email        string `json:"email" binding:"omitempty,email,max=191"`
	Address      string `json:"address"`
	AddressNum   string `json:"addressNum"`
	ZipCode      string `json:"zipCode"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ImageURL     string `json:"imageUrl"`
	Notes        string `json:"notes"`
}

type CreateAdopterInput struct {
	AdopterFields
	BirthDate string `json:"birthDate"`
}

type UpdateAdopterInput struct {
	Name         *string `json:"name" binding:"omitempty,max=128"`
	Phone        *string `json:"phone" binding:"omitempty,max=32"`
	Email        *string `json:"email" binding:"omitempty,max=191"`
	Address      *string `json:"address"`
	AddressNum   *string `json:"addressNum"`
	ZipCode      *string `json:"zipCode"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	BirthDate    *string `json:"birthDate"`
	ImageURL     *string `json:"imageUrl"`
	Notes        *string `json:"notes"`
}

func newAdopter(in AdopterFields, birth time.Time) *domain.Adopter {
	a := &domain.Adopter{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Address:      strings.TrimSpace(in.Address),
		AddressNum:   strings.TrimSpace(in.AddressNum),
		ZipCode:      strings.TrimSpace(in.ZipCode),
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Notes:        strings.TrimSpace(in.Notes),
	}
	if a.Notes == "" {
		a.Notes = domain.DefaultAdopterNotes
	}
	if !birth.IsZero() {
		a.BirthDate = &birth
	}
	return a
}

type AdopterService struct {
	store *repo.Store
	log   *zap.Logger
}

func NewAdopterService(store *repo.Store, log *zap.Logger) *AdopterService {
	return &AdopterService{store: store, log: log}
}

func (s *AdopterService) Create(ctx context.Context, in CreateAdopterInput) (*domain.Adopter, error) {
	f := fields{}
	f.required("name", in.Name)
	f.required("phone", in.Phone)
	f.email("email", in.Email)
	birth := f.date("birthDate", in.BirthDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	a := newAdopter(in.AdopterFields, birth)
	existing, err := s.store.Adopters.FindByPhone(ctx, a.Phone)
	if err != nil {
		return nil, errs.Persistence("lookup adopter failed", err)
	}
	if existing != nil {
		return nil, errs.Conflict("an adopter with this phone already exists")
	}
	if err := s.store.Adopters.Create(ctx, a); err != nil {
		return nil, errs.Persistence("create adopter failed", err)
	}
	s.log.Info("adopter created", zap.String("adopter_id", a.ID))
	return a, nil
}

func (s *AdopterService) Get(ctx context.Context, id string) (*domain.Adopter, error) {
	a, err := s.store.Adopters.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load adopter failed", err)
	}
	if a == nil {
		return nil, errs.NotFound("adopter not found")
	}
	return a, nil
}

func (s *AdopterService) List(ctx context.Context, p domain.ListParams) ([]domain.Adopter, int64, error) {
	items, total, err := s.store.Adopters.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list adopters failed", err)
	}
	return items, total, nil
}

func (s *AdopterService) Update(ctx context.Context, id string, in UpdateAdopterInput) (*domain.Adopter, error) {
	f := fields{}
	f.requiredPtr("name", in.Name)
	f.requiredPtr("phone", in.Phone)
	if in.Email != nil {
		f.email("email", *in.Email)
	}
	birth := f.datePtr("birthDate", in.BirthDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	var out *domain.Adopter
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		a, err := tx.Adopters.FindByIDForUpdate(ctx, id)
		if err != nil {
			return errs.Persistence("load adopter failed", err)
		}
		if a == nil {
			return errs.NotFound("adopter not found")
		}
		if a.Placeholder {
			return errs.Conflict("the placeholder adopter cannot be edited")
		}
		setStr(&a.Name, in.Name)
		setStr(&a.Phone, in.Phone)
		setStr(&a.Email, in.Email)
		setStr(&a.Address, in.Address)
		setStr(&a.AddressNum, in.AddressNum)
		setStr(&a.ZipCode, in.ZipCode)
		setStr(&a.Neighborhood, in.Neighborhood)
		setStr(&a.City, in.City)
		setStr(&a.State, in.State)
		setStr(&a.ImageURL, in.ImageURL)
		setStr(&a.Notes, in.Notes)
		if birth != nil {
			if birth.IsZero() {
				a.BirthDate = nil
			} else {
				a.BirthDate = birth
			}
		}
		// 唯一索引兜底，重复手机号会变成 Conflict
		if err := tx.Adopters.Update(ctx, a); err != nil {
			return errs.Persistence("update adopter failed", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("update adopter failed", err)
	}
	return out, nil
}

// Delete 仍被领养记录引用时拒绝
func (s *AdopterService) Delete(ctx context.Context, id string) error {
	return errs.Persistence("delete adopter failed", s.store.Transaction(ctx, func(tx *repo.Store) error {
		n, err := tx.Adoptions.CountByAdopter(ctx, id)
		if err != nil {
			return errs.Persistence("count adoptions failed", err)
		}
		if n > 0 {
			return errs.Conflict("adopter is referenced by adoptions")
		}
		deleted, err := tx.Adopters.Delete(ctx, id)
		if err != nil {
			return errs.Persistence("delete adopter failed", err)
		}
		if deleted == 0 {
			return errs.NotFound("adopter not found")
		}
		return nil
	}))
}
