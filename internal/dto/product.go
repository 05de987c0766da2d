package dto

import (
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/utils"
)

type ProductRequestDTO struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

type ProductListResponseDTO struct {
	Products   []domain.Product `json:"products"`
	Pagination utils.Pagination `json:"pagination"`
}
