package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/dto"
	"github.com/dsolovey/gomarket/internal/service/orderservice"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/dsolovey/gomarket/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	Create(ctx context.Context, customerID int, in orderservice.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id int) (*domain.Order, error)
	GetByCustomer(ctx context.Context, customerID int) ([]domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, number int, status string) (*domain.Order, error)
	Delete(ctx context.Context, id int) error
	OwnerOf(ctx context.Context, id int) (int, bool, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder godoc
//
//	@Summary		Create an order from the basket
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order body"
//	@Security		BearerAuth
//	@Success		201	{object}	domain.Order
//	@Failure		400	{object}	utils.Response	"Unknown product, unsellable product or wrong total"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.Create(r.Context(), user.ID, orderservice.CreateInput{
		ProductIDs: req.Products,
		Payment:    req.Payment,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
		Comment:    req.Comment,
		Total:      req.Total,
	})
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrders godoc
//
//	@Summary		List the caller's orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		domain.Order
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	orders, err := h.orderService.GetByCustomer(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder godoc
//
//	@Summary		Get a single order
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	domain.Order
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// ListOrders godoc
//
//	@Summary		List all orders (staff)
//	@Tags			Orders
//	@Produce		json
//	@Param			page		query	int	false	"Page"
//	@Param			pageSize	query	int	false	"Page size"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderListResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := utils.PageParams(r)

	orders, total, err := h.orderService.List(r.Context(), page, pageSize)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.OrderListResponseDTO{
		Orders:     orders,
		Pagination: utils.NewPagination(total, page, pageSize),
	})
}

// UpdateStatus godoc
//
//	@Summary		Update order status by number (staff)
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			number	path	int								true	"Order number"
//	@Param			request	body	dto.UpdateOrderStatusRequestDTO	true	"New status"
//	@Security		BearerAuth
//	@Success		200	{object}	domain.Order
//	@Failure		400	{object}	utils.Response	"Invalid status"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/orders/{number}/status [patch]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order number")
		return
	}
	var req dto.UpdateOrderStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := h.orderService.UpdateStatus(r.Context(), number, req.Status)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// DeleteOrder godoc
//
//	@Summary		Permanently delete an order (staff)
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.orderService.Delete(r.Context(), id); err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Order deleted"})
}
