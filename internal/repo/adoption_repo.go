package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type AdoptionRepo struct{ base[domain.Adoption] }

func NewAdoptionRepo(db *gorm.DB) *AdoptionRepo {
	return &AdoptionRepo{base[domain.Adoption]{
		db:      db,
		order:   "adoption_date DESC",
		search:  []string{"notes", "status"},
		preload: []string{"Animal", "Adopter"},
	}}
}

// FindActiveByAnimal 动物当前未退回的领养记录
func (r *AdoptionRepo) FindActiveByAnimal(ctx context.Context, animalID string) (*domain.Adoption, error) {
	var a domain.Adoption
	err := r.db.WithContext(ctx).
		Where("animal_id = ? AND status <> ?", animalID, domain.AdoptionReturned).
		Order("adoption_date DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdoptionRepo) CountByAdopter(ctx context.Context, adopterID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Adoption{}).Where("adopter_id = ?", adopterID).Count(&n).Error
	return n, err
}

func (r *AdoptionRepo) DeleteByAnimal(ctx context.Context, animalID string) error {
	return r.db.WithContext(ctx).Where("animal_id = ?", animalID).Delete(&domain.Adoption{}).Error
}

// Since 带 Animal，用于按物种统计
func (r *AdoptionRepo) Since(ctx context.Context, since time.Time) ([]domain.Adoption, error) {
	out := make([]domain.Adoption, 0)
	err := r.db.WithContext(ctx).
		Preload("Animal").
		Where("adoption_date >= ?", since).
		Find(&out).Error
	return out, err
}
