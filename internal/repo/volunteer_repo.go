package repo

import (
	"context"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type VolunteerRepo struct{ base[domain.Volunteer] }

func NewVolunteerRepo(db *gorm.DB) *VolunteerRepo {
	return &VolunteerRepo{base[domain.Volunteer]{
		db:     db,
		order:  "entry_date DESC",
		search: []string{"name", "work_area"},
	}}
}

// RecentActive 最近加入的在职志愿者
func (r *VolunteerRepo) RecentActive(ctx context.Context, n int) ([]domain.Volunteer, error) {
	out := make([]domain.Volunteer, 0, n)
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("entry_date DESC").
		Limit(n).
		Find(&out).Error
	return out, err
}
