package service

import (
	"context"

	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
)

type UserService struct {
	store *repo.Store
	log   *zap.Logger
}

func NewUserService(store *repo.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) List(ctx context.Context, p domain.ListParams, withDeleted bool) ([]domain.User, int64, error) {
	list := s.store.Users.List
	if withDeleted {
		list = s.store.Users.ListWithDeleted
	}
	items, total, err := list(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list users failed", err)
	}
	return items, total, nil
}

// Ban 软删；不能封禁自己
func (s *UserService) Ban(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return errs.Conflict("cannot ban yourself")
	}
	n, err := s.store.Users.SoftDelete(ctx, id)
	if err != nil {
		return errs.Persistence("ban user failed", err)
	}
	if n == 0 {
		return errs.NotFound("user not found")
	}
	s.log.Info("user banned", zap.String("user_id", id), zap.String("by", actorID))
	return nil
}
