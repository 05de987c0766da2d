package userservice

import (
	"context"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"go.uber.org/zap"
)

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Service backs the admin customer-management surface.
type Service struct {
	userRepo UserRepo
}

func New(userRepo UserRepo) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.User, int, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := s.userRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("customer %d not found", id)
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		zap.L().Error("can't delete customer", zap.Error(err))
		return err
	}
	if !deleted {
		return apperr.NotFound("customer %d not found", id)
	}
	return nil
}
