package dto

import (
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/utils"
)

type CreateOrderRequestDTO struct {
	Products []int   `json:"products" validate:"required,min=1"`
	Payment  string  `json:"payment" validate:"required,oneof=card online"`
	Address  string  `json:"address" validate:"required"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	Comment  string  `json:"comment"`
	Total    float64 `json:"total" validate:"required"`
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=new delivering completed cancelled"`
}

type OrderListResponseDTO struct {
	Orders     []domain.Order   `json:"orders"`
	Pagination utils.Pagination `json:"pagination"`
}
