package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type AnimalRepo struct{ base[domain.Animal] }

func NewAnimalRepo(db *gorm.DB) *AnimalRepo {
	return &AnimalRepo{base[domain.Animal]{
		db:     db,
		order:  "created_at DESC",
		search: []string{"name", "species", "breed"},
	}}
}

// ListPublic 公开站点列表；species 为空不过滤
func (r *AnimalRepo) ListPublic(ctx context.Context, species string, status domain.AnimalStatus) ([]domain.Animal, error) {
	q := r.db.WithContext(ctx).Where("status = ?", status)
	if species != "" {
		q = q.Where("species = ?", species)
	}
	out := make([]domain.Animal, 0)
	err := q.Order("admission_date DESC").Find(&out).Error
	return out, err
}

// SetStatusUnless 条件更新：当前状态不等于 unless 时才写入，返回是否写入
func (r *AnimalRepo) SetStatusUnless(ctx context.Context, id string, to, unless domain.AnimalStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Animal{}).
		Where("id = ? AND status <> ?", id, unless).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *AnimalRepo) SetStatus(ctx context.Context, id string, to domain.AnimalStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Animal{}).Where("id = ?", id).Update("status", to).Error
}

func (r *AnimalRepo) AdmittedSince(ctx context.Context, since time.Time) ([]domain.Animal, error) {
	out := make([]domain.Animal, 0)
	err := r.db.WithContext(ctx).
		Select("id", "species", "admission_date").
		Where("admission_date >= ?", since).
		Find(&out).Error
	return out, err
}

func (r *AnimalRepo) CountByStatus(ctx context.Context, status domain.AnimalStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Animal{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
