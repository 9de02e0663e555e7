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

// AdopterDetails 内联领养人；没有 adopterId 时按手机号复用或新建
type AdopterDetails struct {
	Name         string `json:"name" binding:"required,max=128"`
	Phone        string `json:"phone" binding:"required,max=32"`
	Email        string `json:"email" binding:"omitempty,email,max=191"`
	Address      string `json:"address"`
	AddressNum   string `json:"addressNum"`
	ZipCode      string `json:"zipCode"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	BirthDate    string `json:"birthDate"`
	ImageURL     string `json:"imageUrl"`
	Notes        string `json:"notes"`
}

type CreateAdoptionInput struct {
	AnimalID     string          `json:"animalId" binding:"required"`
	AdopterID    string          `json:"adopterId"`
	Adopter      *AdopterDetails `json:"adopter"`
	AdoptionDate string          `json:"adoptionDate"`
	Status       string          `json:"status" binding:"omitempty,oneof=requested adapting finalized"`
	Notes        string          `json:"notes"`
}

// UpdateAdoptionInput 动物/领养人创建后不可改
type UpdateAdoptionInput struct {
	Status       *string `json:"status" binding:"omitempty,oneof=requested adapting finalized returned"`
	AdoptionDate *string `json:"adoptionDate"`
	Notes        *string `json:"notes"`
}

// AdoptionService keeps Animal.status consistent with adoption records:
// an animal is adopted iff it has an adoption that is not returned.
type AdoptionService struct {
	store *repo.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewAdoptionService(store *repo.Store, log *zap.Logger) *AdoptionService {
	return &AdoptionService{store: store, log: log, now: utcNow}
}

func (s *AdoptionService) Create(ctx context.Context, in CreateAdoptionInput) (*domain.Adoption, error) {
	f := fields{}
	f.required("animalId", in.AnimalID)
	date := f.date("adoptionDate", in.AdoptionDate)
	status := domain.AdoptionFinalized
	if in.Status != "" {
		status = domain.AdoptionStatus(in.Status)
		switch {
		case !status.Valid():
			f["status"] = "invalid status"
		case !status.Active():
			f["status"] = "a new adoption cannot start as returned"
		}
	}
	var birth time.Time
	if strings.TrimSpace(in.AdopterID) == "" {
		if in.Adopter == nil {
			f["adopterId"] = "adopterId or adopter details required"
		} else {
			f.required("adopter.name", in.Adopter.Name)
			f.required("adopter.phone", in.Adopter.Phone)
			f.email("adopter.email", in.Adopter.Email)
			birth = f.date("adopter.birthDate", in.Adopter.BirthDate)
		}
	}
	if err := f.err(); err != nil {
		return nil, err
	}

	ad := &domain.Adoption{
		ID:           utils.NewID(),
		AnimalID:     strings.TrimSpace(in.AnimalID),
		AdoptionDate: orNow(date, s.now),
		Status:       status,
		Notes:        strings.TrimSpace(in.Notes),
	}
	var reused bool
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		animal, err := tx.Animals.FindByID(ctx, ad.AnimalID)
		if err != nil {
			return errs.Persistence("load animal failed", err)
		}
		if animal == nil {
			return errs.NotFound("animal not found")
		}
		if animal.Status == domain.AnimalAdopted {
			return errs.Conflict("animal already adopted")
		}

		adopter, existed, err := s.resolveAdopter(ctx, tx, in, birth)
		if err != nil {
			return err
		}
		ad.AdopterID, reused = adopter.ID, existed

		// 条件更新，并发下第二个请求会看到已提交的 adopted
		ok, err := tx.Animals.SetStatusUnless(ctx, animal.ID, domain.AnimalAdopted, domain.AnimalAdopted)
		if err != nil {
			return errs.Persistence("update animal status failed", err)
		}
		if !ok {
			return errs.Conflict("animal already adopted")
		}
		if err := tx.Adoptions.Create(ctx, ad); err != nil {
			return errs.Persistence("create adoption failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("create adoption failed", err)
	}

	adoptionEvents.WithLabelValues("created").Inc()
	s.log.Info("adoption created",
		zap.String("adoption_id", ad.ID),
		zap.String("animal_id", ad.AnimalID),
		zap.String("adopter_id", ad.AdopterID),
		zap.Bool("adopter_reused", reused),
	)
	return s.Get(ctx, ad.ID)
}

func (s *AdoptionService) resolveAdopter(ctx context.Context, tx *repo.Store, in CreateAdoptionInput, birth time.Time) (*domain.Adopter, bool, error) {
	if id := strings.TrimSpace(in.AdopterID); id != "" {
		a, err := tx.Adopters.FindByID(ctx, id)
		if err != nil {
			return nil, false, errs.Persistence("load adopter failed", err)
		}
		if a == nil {
			return nil, false, errs.NotFound("adopter not found")
		}
		return a, true, nil
	}

	d := in.Adopter
	phone := strings.TrimSpace(d.Phone)
	existing, err := tx.Adopters.FindByPhone(ctx, phone)
	if err != nil {
		return nil, false, errs.Persistence("lookup adopter failed", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	a := newAdopter(AdopterFields{
		Name: d.Name, Phone: phone, Email: d.Email, Address: d.Address, AddressNum: d.AddressNum,
		ZipCode: d.ZipCode, Neighborhood: d.Neighborhood, City: d.City, State: d.State,
		ImageURL: d.ImageURL, Notes: d.Notes,
	}, birth)
	if err := tx.Adopters.Create(ctx, a); err != nil {
		return nil, false, errs.Persistence("create adopter failed", err)
	}
	return a, false, nil
}

func (s *AdoptionService) Get(ctx context.Context, id string) (*domain.Adoption, error) {
	ad, err := s.store.Adoptions.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load adoption failed", err)
	}
	if ad == nil {
		return nil, errs.NotFound("adoption not found")
	}
	return ad, nil
}

func (s *AdoptionService) List(ctx context.Context, p domain.ListParams) ([]domain.Adoption, int64, error) {
	items, total, err := s.store.Adoptions.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list adoptions failed", err)
	}
	return items, total, nil
}

func (s *AdoptionService) Update(ctx context.Context, id string, in UpdateAdoptionInput) (*domain.Adoption, error) {
	f := fields{}
	var status domain.AdoptionStatus
	if in.Status != nil {
		status = domain.AdoptionStatus(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			f["status"] = "invalid status"
		}
	}
	date := f.datePtr("adoptionDate", in.AdoptionDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	var event string
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		ad, err := tx.Adoptions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return errs.Persistence("load adoption failed", err)
		}
		if ad == nil {
			return errs.NotFound("adoption not found")
		}
		prev := ad.Status
		if in.Status != nil {
			ad.Status = status
		}
		if date != nil && !date.IsZero() {
			ad.AdoptionDate = *date
		}
		setStr(&ad.Notes, in.Notes)

		switch {
		case prev.Active() && !ad.Status.Active():
			// 退回：释放动物
			if err := tx.Animals.SetStatus(ctx, ad.AnimalID, domain.AnimalAvailable); err != nil {
				return errs.Persistence("release animal failed", err)
			}
			event = "returned"
		case !prev.Active() && ad.Status.Active():
			other, err := tx.Adoptions.FindActiveByAnimal(ctx, ad.AnimalID)
			if err != nil {
				return errs.Persistence("lookup adoption failed", err)
			}
			if other != nil {
				return errs.Conflict("animal already has an active adoption")
			}
			ok, err := tx.Animals.SetStatusUnless(ctx, ad.AnimalID, domain.AnimalAdopted, domain.AnimalAdopted)
			if err != nil {
				return errs.Persistence("update animal status failed", err)
			}
			if !ok {
				return errs.Conflict("animal already adopted")
			}
			event = "reactivated"
		}

		ad.Animal, ad.Adopter = nil, nil
		if err := tx.Adoptions.Update(ctx, ad); err != nil {
			return errs.Persistence("update adoption failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("update adoption failed", err)
	}
	if event != "" {
		adoptionEvents.WithLabelValues(event).Inc()
		s.log.Info("adoption "+event, zap.String("adoption_id", id))
	}
	return s.Get(ctx, id)
}

// Delete 不存在返回 NotFound；删除未退回的领养会释放动物
func (s *AdoptionService) Delete(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx *repo.Store) error {
		ad, err := tx.Adoptions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return errs.Persistence("load adoption failed", err)
		}
		if ad == nil {
			return errs.NotFound("adoption not found")
		}
		if ad.Status.Active() {
			if err := tx.Animals.SetStatus(ctx, ad.AnimalID, domain.AnimalAvailable); err != nil {
				return errs.Persistence("release animal failed", err)
			}
		}
		if _, err := tx.Adoptions.Delete(ctx, id); err != nil {
			return errs.Persistence("delete adoption failed", err)
		}
		return nil
	})
	if err != nil {
		return errs.Persistence("delete adoption failed", err)
	}
	adoptionEvents.WithLabelValues("deleted").Inc()
	s.log.Info("adoption deleted", zap.String("adoption_id", id))
	return nil
}

// ensureAdoptionRecord runs inside the caller's transaction when an animal is
// marked adopted directly. Without an active adoption it links the animal to
// the sentinel adopter.
func (s *AdoptionService) ensureAdoptionRecord(ctx context.Context, tx *repo.Store, animalID string) error {
	active, err := tx.Adoptions.FindActiveByAnimal(ctx, animalID)
	if err != nil {
		return errs.Persistence("lookup adoption failed", err)
	}
	if active != nil {
		return nil
	}
	ph, err := tx.Adopters.FindPlaceholder(ctx)
	if err != nil {
		return errs.Persistence("lookup placeholder adopter failed", err)
	}
	if ph == nil {
		ph = &domain.Adopter{
			ID:          utils.NewID(),
			Name:        domain.SentinelAdopterName,
			Notes:       domain.DefaultAdopterNotes,
			Placeholder: true,
		}
		if err := tx.Adopters.Create(ctx, ph); err != nil {
			return errs.Persistence("create placeholder adopter failed", err)
		}
	}
	ad := &domain.Adoption{
		ID:           utils.NewID(),
		AnimalID:     animalID,
		AdopterID:    ph.ID,
		AdoptionDate: s.now(),
		Status:       domain.AdoptionFinalized,
	}
	if err := tx.Adoptions.Create(ctx, ad); err != nil {
		return errs.Persistence("create placeholder adoption failed", err)
	}
	adoptionEvents.WithLabelValues("placeholder").Inc()
	s.log.Info("placeholder adoption created", zap.String("animal_id", animalID), zap.String("adoption_id", ad.ID))
	return nil
}
