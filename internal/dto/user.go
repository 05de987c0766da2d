package dto

import (
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/utils"
)

type UserListResponseDTO struct {
	Users      []domain.User    `json:"users"`
	Pagination utils.Pagination `json:"pagination"`
}
