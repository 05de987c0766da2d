package users

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/dto"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/dsolovey/gomarket/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	List(ctx context.Context, page, pageSize int) ([]domain.User, int, error)
	Get(ctx context.Context, id int) (*domain.User, error)
	Delete(ctx context.Context, id int) error
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Me godoc
//
//	@Summary		Current session user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.User
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// ListCustomers godoc
//
//	@Summary		List customers (staff)
//	@Tags			Users
//	@Produce		json
//	@Param			page		query	int	false	"Page"
//	@Param			pageSize	query	int	false	"Page size"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserListResponseDTO
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/customers [get]
func (h *UserHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := utils.PageParams(r)

	customers, total, err := h.userService.List(r.Context(), page, pageSize)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UserListResponseDTO{
		Users:      customers,
		Pagination: utils.NewPagination(total, page, pageSize),
	})
}

// GetCustomer godoc
//
//	@Summary		Get a customer (staff)
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	int	true	"Customer id"
//	@Security		BearerAuth
//	@Success		200	{object}	domain.User
//	@Failure		404	{object}	utils.Response	"Customer not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/customers/{id} [get]
func (h *UserHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	customer, err := h.userService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, customer)
}

// DeleteCustomer godoc
//
//	@Summary		Delete a customer (staff)
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	int	true	"Customer id"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response
//	@Failure		404	{object}	utils.Response	"Customer not found"
//	@Failure		409	{object}	utils.Response	"Customer still has orders"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/customers/{id} [delete]
func (h *UserHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Customer deleted"})
}
