package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type UserRepo struct{ base[domain.User] }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{base[domain.User]{
		db:     db,
		order:  "created_at DESC",
		search: []string{"email", "name"},
	}}
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

// ListWithDeleted 包含软删
func (r *UserRepo) ListWithDeleted(ctx context.Context, p domain.ListParams) ([]domain.User, int64, error) {
	return r.list(ctx, r.db.Unscoped(), p)
}

// SoftDelete 封禁
func (r *UserRepo) SoftDelete(ctx context.Context, id string) (int64, error) {
	return r.Delete(ctx, id)
}
