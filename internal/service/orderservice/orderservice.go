package orderservice

import (
	"context"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"go.uber.org/zap"
)

type OrderRepo interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	FindByNumber(ctx context.Context, number int) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID int) ([]domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, number int, status string) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ProductRepo interface {
	FindByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}

type SequenceRepo interface {
	Next(ctx context.Context) (int, error)
}

type StatsService interface {
	Recompute(ctx context.Context, userID int) (*domain.UserStats, error)
}

type Service struct {
	orderRepo    OrderRepo
	productRepo  ProductRepo
	sequenceRepo SequenceRepo
	statsService StatsService
}

func New(orderRepo OrderRepo, productRepo ProductRepo, sequenceRepo SequenceRepo, statsService StatsService) *Service {
	return &Service{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		sequenceRepo: sequenceRepo,
		statsService: statsService,
	}
}

type CreateInput struct {
	ProductIDs []int
	Payment    string
	Address    string
	Phone      string
	Email      string
	Comment    string
	Total      float64
}

// Create runs the checkout pipeline as explicit sequenced steps: resolve
// items, check the declared total, assign the next order number, persist,
// then recompute the owner's statistics.
func (s *Service) Create(ctx context.Context, customerID int, in CreateInput) (*domain.Order, error) {
	if len(in.ProductIDs) == 0 {
		return nil, apperr.BadRequest("order has no items")
	}
	if !domain.ValidPayment(in.Payment) {
		return nil, apperr.BadRequest("invalid payment method: %s", in.Payment)
	}

	products, err := s.productRepo.FindByIDs(ctx, in.ProductIDs)
	if err != nil {
		zap.L().Error("can't resolve order items", zap.Error(err))
		return nil, err
	}
	byID := make(map[int]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var sum float64
	for _, id := range in.ProductIDs {
		product, ok := byID[id]
		if !ok {
			return nil, apperr.BadRequest("unknown product: %d", id)
		}
		if product.Price == nil {
			return nil, apperr.BadRequest("product not for sale: %d", id)
		}
		sum += *product.Price
	}

	// Server-side integrity check against the client-declared total.
	if sum != in.Total {
		return nil, apperr.BadRequest("invalid order total")
	}

	number, err := s.sequenceRepo.Next(ctx)
	if err != nil {
		zap.L().Error("can't assign order number", zap.Error(err))
		return nil, err
	}

	order := &domain.Order{
		Number:      number,
		CustomerID:  customerID,
		Status:      domain.NewOrderStatus,
		TotalAmount: sum,
		Payment:     in.Payment,
		Address:     in.Address,
		Phone:       in.Phone,
		Email:       in.Email,
		Comment:     in.Comment,
		ProductIDs:  in.ProductIDs,
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		zap.L().Error("can't save order: ", zap.Error(err))
		return nil, err
	}

	if _, err := s.statsService.Recompute(ctx, customerID); err != nil {
		zap.L().Error("can't recompute customer stats", zap.Error(err))
		return nil, err
	}

	zap.L().Info("order created", zap.Int("number", order.Number), zap.Int("customer_id", customerID))
	return order, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order %d not found", id)
	}
	return order, nil
}

func (s *Service) GetByCustomer(ctx context.Context, customerID int) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.Order, int, error) {
	total, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	orders, err := s.orderRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves the order with the given number to a new status. Status
// changes never touch the owner's statistics: existence, not status, drives
// the aggregate.
func (s *Service) UpdateStatus(ctx context.Context, number int, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperr.BadRequest("invalid order status: %s", status)
	}
	updated, err := s.orderRepo.UpdateStatus(ctx, number, status)
	if err != nil {
		zap.L().Error("can't update order status", zap.Error(err))
		return nil, err
	}
	if !updated {
		return nil, apperr.NotFound("order %d not found", number)
	}
	order, err := s.orderRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete permanently removes an order and recomputes the former owner's
// statistics.
func (s *Service) Delete(ctx context.Context, id int) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return apperr.NotFound("order %d not found", id)
	}

	if _, err := s.orderRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete order", zap.Error(err))
		return err
	}

	if _, err := s.statsService.Recompute(ctx, order.CustomerID); err != nil {
		zap.L().Error("can't recompute customer stats", zap.Error(err))
		return err
	}
	return nil
}

// OwnerOf reports the owning customer of an order, for the ownership guard.
func (s *Service) OwnerOf(ctx context.Context, id int) (int, bool, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if order == nil {
		return 0, false, nil
	}
	return order.CustomerID, true, nil
}
