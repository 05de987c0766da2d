package orderservice

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

func NewMock(t *testing.T) (*Service, *MockOrderRepo, *MockProductRepo, *MockSequenceRepo, *MockStatsService) {
	ctrl := gomock.NewController(t)
	orderRepo := NewMockOrderRepo(ctrl)
	productRepo := NewMockProductRepo(ctrl)
	sequenceRepo := NewMockSequenceRepo(ctrl)
	statsService := NewMockStatsService(ctrl)

	service := New(orderRepo, productRepo, sequenceRepo, statsService)
	defer ctrl.Finish()
	return service, orderRepo, productRepo, sequenceRepo, statsService
}

func price(v float64) *float64 { return &v }

func TestCreate(t *testing.T) {
	service, orderRepo, productRepo, sequenceRepo, statsService := NewMock(t)

	catalog := []domain.Product{
		{ID: 10, Title: "Keyboard", Price: price(10)},
		{ID: 20, Title: "Mouse", Price: price(20)},
		{ID: 30, Title: "Showcase item", Price: nil},
	}

	tests := []struct {
		name          string
		input         CreateInput
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Successful creation",
			input: CreateInput{
				ProductIDs: []int{10, 20},
				Payment:    domain.PaymentCard,
				Total:      30,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10, 20}).Return(catalog, nil)
				sequenceRepo.EXPECT().Next(context.Background()).Return(7, nil)
				orderRepo.EXPECT().Save(context.Background(), gomock.Any()).DoAndReturn(func(ctx context.Context, order *domain.Order) error {
					order.ID = 1
					return nil
				})
				statsService.EXPECT().Recompute(context.Background(), 5).Return(&domain.UserStats{}, nil)
			},
			expectedError: nil,
		},
		{
			name: "Repeated item counted per occurrence",
			input: CreateInput{
				ProductIDs: []int{10, 10, 20},
				Payment:    domain.PaymentOnline,
				Total:      40,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10, 10, 20}).Return(catalog, nil)
				sequenceRepo.EXPECT().Next(context.Background()).Return(8, nil)
				orderRepo.EXPECT().Save(context.Background(), gomock.Any()).Return(nil)
				statsService.EXPECT().Recompute(context.Background(), 5).Return(&domain.UserStats{}, nil)
			},
			expectedError: nil,
		},
		{
			name: "Empty order",
			input: CreateInput{
				ProductIDs: nil,
				Payment:    domain.PaymentCard,
			},
			prepareMock:   func() {},
			expectedError: apperr.BadRequest("order has no items"),
		},
		{
			name: "Invalid payment method",
			input: CreateInput{
				ProductIDs: []int{10},
				Payment:    "barter",
				Total:      10,
			},
			prepareMock:   func() {},
			expectedError: apperr.BadRequest("invalid payment method: barter"),
		},
		{
			name: "Unknown product",
			input: CreateInput{
				ProductIDs: []int{10, 999},
				Payment:    domain.PaymentCard,
				Total:      10,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10, 999}).Return(catalog, nil)
			},
			expectedError: apperr.BadRequest("unknown product: 999"),
		},
		{
			name: "Product not for sale",
			input: CreateInput{
				ProductIDs: []int{30},
				Payment:    domain.PaymentCard,
				Total:      0,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{30}).Return(catalog, nil)
			},
			expectedError: apperr.BadRequest("product not for sale: 30"),
		},
		{
			name: "Declared total below real sum",
			input: CreateInput{
				ProductIDs: []int{10, 20},
				Payment:    domain.PaymentCard,
				Total:      25,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10, 20}).Return(catalog, nil)
			},
			expectedError: apperr.BadRequest("invalid order total"),
		},
		{
			name: "Sequence failure",
			input: CreateInput{
				ProductIDs: []int{10},
				Payment:    domain.PaymentCard,
				Total:      10,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10}).Return(catalog, nil)
				sequenceRepo.EXPECT().Next(context.Background()).Return(0, errors.New("sequence error"))
			},
			expectedError: errors.New("sequence error"),
		},
		{
			name: "Save failure",
			input: CreateInput{
				ProductIDs: []int{10},
				Payment:    domain.PaymentCard,
				Total:      10,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10}).Return(catalog, nil)
				sequenceRepo.EXPECT().Next(context.Background()).Return(9, nil)
				orderRepo.EXPECT().Save(context.Background(), gomock.Any()).Return(errors.New("save failed"))
			},
			expectedError: errors.New("save failed"),
		},
		{
			name: "Stats recompute failure",
			input: CreateInput{
				ProductIDs: []int{10},
				Payment:    domain.PaymentCard,
				Total:      10,
			},
			prepareMock: func() {
				productRepo.EXPECT().FindByIDs(context.Background(), []int{10}).Return(catalog, nil)
				sequenceRepo.EXPECT().Next(context.Background()).Return(10, nil)
				orderRepo.EXPECT().Save(context.Background(), gomock.Any()).Return(nil)
				statsService.EXPECT().Recompute(context.Background(), 5).Return(nil, errors.New("stats error"))
			},
			expectedError: errors.New("stats error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			order, err := service.Create(context.Background(), 5, tt.input)
			if tt.expectedError != nil {
				assert.Nil(t, order)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.NewOrderStatus, order.Status)
				assert.Equal(t, 5, order.CustomerID)
				assert.Equal(t, tt.input.Total, order.TotalAmount)
				assert.NotZero(t, order.Number)
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	service, orderRepo, _, _, _ := NewMock(t)

	tests := []struct {
		name          string
		number        int
		status        string
		prepareMock   func()
		expectedError error
	}{
		{
			// Status changes never trigger a stats recompute, so the
			// stats mock has no expectation here.
			name:   "Successful status update",
			number: 7,
			status: domain.CompletedOrderStatus,
			prepareMock: func() {
				orderRepo.EXPECT().UpdateStatus(context.Background(), 7, domain.CompletedOrderStatus).Return(true, nil)
				orderRepo.EXPECT().FindByNumber(context.Background(), 7).Return(&domain.Order{Number: 7, Status: domain.CompletedOrderStatus}, nil)
			},
			expectedError: nil,
		},
		{
			name:          "Invalid status",
			number:        7,
			status:        "shipped-to-mars",
			prepareMock:   func() {},
			expectedError: apperr.BadRequest("invalid order status: shipped-to-mars"),
		},
		{
			name:   "Unknown order number",
			number: 404,
			status: domain.CancelledOrderStatus,
			prepareMock: func() {
				orderRepo.EXPECT().UpdateStatus(context.Background(), 404, domain.CancelledOrderStatus).Return(false, nil)
			},
			expectedError: apperr.NotFound("order 404 not found"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			order, err := service.UpdateStatus(context.Background(), tt.number, tt.status)
			if tt.expectedError != nil {
				assert.Nil(t, order)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.status, order.Status)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	service, orderRepo, _, _, statsService := NewMock(t)

	tests := []struct {
		name          string
		id            int
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Successful deletion recomputes owner stats",
			id:   1,
			prepareMock: func() {
				orderRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.Order{ID: 1, CustomerID: 5}, nil)
				orderRepo.EXPECT().Delete(context.Background(), 1).Return(true, nil)
				statsService.EXPECT().Recompute(context.Background(), 5).Return(&domain.UserStats{}, nil)
			},
			expectedError: nil,
		},
		{
			name: "Unknown order",
			id:   404,
			prepareMock: func() {
				orderRepo.EXPECT().FindByID(context.Background(), 404).Return(nil, nil)
			},
			expectedError: apperr.NotFound("order 404 not found"),
		},
		{
			name: "Delete failure",
			id:   1,
			prepareMock: func() {
				orderRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.Order{ID: 1, CustomerID: 5}, nil)
				orderRepo.EXPECT().Delete(context.Background(), 1).Return(false, errors.New("delete failed"))
			},
			expectedError: errors.New("delete failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Delete(context.Background(), tt.id)
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnerOf(t *testing.T) {
	service, orderRepo, _, _, _ := NewMock(t)

	orderRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.Order{ID: 1, CustomerID: 5}, nil)
	ownerID, found, err := service.OwnerOf(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 5, ownerID)

	orderRepo.EXPECT().FindByID(context.Background(), 404).Return(nil, nil)
	ownerID, found, err = service.OwnerOf(context.Background(), 404)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, ownerID)
}

// In-memory fakes for the concurrency test; gomock controllers are not
// meant to be shared across goroutines with unordered expectations.
type fakeSequence struct {
	mu    sync.Mutex
	value int
}

func (f *fakeSequence) Next(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value++
	return f.value, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (f *fakeOrders) Save(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrders) FindByID(context.Context, int) (*domain.Order, error)       { return nil, nil }
func (f *fakeOrders) FindByNumber(context.Context, int) (*domain.Order, error)   { return nil, nil }
func (f *fakeOrders) FindByCustomer(context.Context, int) ([]domain.Order, error) { return nil, nil }
func (f *fakeOrders) List(context.Context, int, int) ([]domain.Order, error)     { return nil, nil }
func (f *fakeOrders) Count(context.Context) (int, error)                         { return 0, nil }
func (f *fakeOrders) UpdateStatus(context.Context, int, string) (bool, error)    { return false, nil }
func (f *fakeOrders) Delete(context.Context, int) (bool, error)                  { return false, nil }

type fakeProducts struct{ catalog []domain.Product }

func (f *fakeProducts) FindByIDs(context.Context, []int) ([]domain.Product, error) {
	return f.catalog, nil
}

type fakeStats struct{}

func (fakeStats) Recompute(context.Context, int) (*domain.UserStats, error) {
	return &domain.UserStats{}, nil
}

func TestCreateConcurrentNumbers(t *testing.T) {
	const n = 50

	orders := &fakeOrders{}
	service := New(orders, &fakeProducts{catalog: []domain.Product{{ID: 10, Price: price(10)}}}, &fakeSequence{}, fakeStats{})

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		customerID := i + 1
		g.Go(func() error {
			_, err := service.Create(ctx, customerID, CreateInput{
				ProductIDs: []int{10},
				Payment:    domain.PaymentCard,
				Total:      10,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, orders.orders, n)
	numbers := make([]int, 0, n)
	for _, o := range orders.orders {
		numbers = append(numbers, o.Number)
	}
	sort.Ints(numbers)
	for i, num := range numbers {
		assert.Equal(t, i+1, num)
	}
}
