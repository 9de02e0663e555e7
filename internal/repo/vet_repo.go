package repo

import (
	"context"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type VetRecordRepo struct{ base[domain.VeterinaryRecord] }

func NewVetRecordRepo(db *gorm.DB) *VetRecordRepo {
	return &VetRecordRepo{base[domain.VeterinaryRecord]{
		db:      db,
		order:   "date DESC",
		search:  []string{"doctor", "illness"},
		preload: []string{"Animal"},
	}}
}

func (r *VetRecordRepo) ListByAnimal(ctx context.Context, animalID string) ([]domain.VeterinaryRecord, error) {
	out := make([]domain.VeterinaryRecord, 0)
	err := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Order("date DESC").Find(&out).Error
	return out, err
}

func (r *VetRecordRepo) DeleteByAnimal(ctx context.Context, animalID string) error {
	return r.db.WithContext(ctx).Where("animal_id = ?", animalID).Delete(&domain.VeterinaryRecord{}).Error
}
