package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type AdopterRepo struct{ base[domain.Adopter] }

func NewAdopterRepo(db *gorm.DB) *AdopterRepo {
	return &AdopterRepo{base[domain.Adopter]{
		db:     db,
		order:  "created_at DESC",
		search: []string{"name", "email", "phone", "city"},
	}}
}

func (r *AdopterRepo) FindByPhone(ctx context.Context, phone string) (*domain.Adopter, error) {
	return r.first(ctx, "phone = ? AND placeholder = ?", phone, false)
}

func (r *AdopterRepo) FindPlaceholder(ctx context.Context) (*domain.Adopter, error) {
	return r.first(ctx, "placeholder = ?", true)
}

// List 不展示占位领养人
func (r *AdopterRepo) List(ctx context.Context, p domain.ListParams) ([]domain.Adopter, int64, error) {
	return r.list(ctx, r.db.Where("placeholder = ?", false), p)
}

func (r *AdopterRepo) first(ctx context.Context, query string, args ...any) (*domain.Adopter, error) {
	var a domain.Adopter
	err := r.db.WithContext(ctx).Where(query, args...).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
