package statsservice

import (
	"context"

	"github.com/dsolovey/gomarket/internal/domain"
	"go.uber.org/zap"
)

type OrderRepo interface {
	AggregateByCustomer(ctx context.Context, customerID int) (*domain.UserStats, error)
}

type UserRepo interface {
	UpdateStats(ctx context.Context, userID int, stats *domain.UserStats) error
}

type Service struct {
	orderRepo OrderRepo
	userRepo  UserRepo
}

func New(orderRepo OrderRepo, userRepo UserRepo) *Service {
	return &Service{
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// Recompute re-derives the user's order statistics from their current order
// set and writes them onto the user row. With zero orders every field resets.
// Idempotent: the result depends only on the orders table.
func (s *Service) Recompute(ctx context.Context, userID int) (*domain.UserStats, error) {
	stats, err := s.orderRepo.AggregateByCustomer(ctx, userID)
	if err != nil {
		zap.L().Error("can't aggregate user orders", zap.Error(err))
		return nil, err
	}
	if err := s.userRepo.UpdateStats(ctx, userID, stats); err != nil {
		zap.L().Error("can't write user stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}
