package products

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/dto"
	productrepo "github.com/dsolovey/gomarket/internal/repo/product-repo"
	"github.com/dsolovey/gomarket/internal/service/productservice"
	"github.com/dsolovey/gomarket/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20 // 10 MiB

type Service interface {
	Create(ctx context.Context, in productservice.Input) (*domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
	List(ctx context.Context, filter productrepo.Filter, page, pageSize int) ([]domain.Product, int, error)
	Update(ctx context.Context, id int, in productservice.Input) (*domain.Product, error)
	AttachImage(ctx context.Context, id int, tempPath, originalName string) (*domain.Product, error)
	Delete(ctx context.Context, id int) error
}

type ProductHandler struct {
	productService Service
	uploadDir      string
}

func New(productService Service, uploadDir string) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		uploadDir:      uploadDir,
	}
}

// ListProducts godoc
//
//	@Summary		Browse the catalog
//	@Tags			Products
//	@Produce		json
//	@Param			search		query	string	false	"Title substring"
//	@Param			category	query	string	false	"Category"
//	@Param			page		query	int		false	"Page"
//	@Param			pageSize	query	int		false	"Page size"
//	@Success		200	{object}	dto.ProductListResponseDTO
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := utils.PageParams(r)
	filter := productrepo.Filter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	products, total, err := h.productService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ProductListResponseDTO{
		Products:   products,
		Pagination: utils.NewPagination(total, page, pageSize),
	})
}

// GetProduct godoc
//
//	@Summary		Get a product
//	@Tags			Products
//	@Produce		json
//	@Param			id	path	int	true	"Product id"
//	@Success		200	{object}	domain.Product
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct godoc
//
//	@Summary		Create a product (staff)
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.ProductRequestDTO	true	"Product body"
//	@Security		BearerAuth
//	@Success		201	{object}	domain.Product
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		409	{object}	utils.Response	"Title already exists"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product, err := h.productService.Create(r.Context(), productservice.Input{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct godoc
//
//	@Summary		Update a product (staff)
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int						true	"Product id"
//	@Param			request	body	dto.ProductRequestDTO	true	"Product body"
//	@Security		BearerAuth
//	@Success		200	{object}	domain.Product
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Failure		409	{object}	utils.Response	"Title already exists"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/products/{id} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req dto.ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product, err := h.productService.Update(r.Context(), id, productservice.Input{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// UploadImage godoc
//
//	@Summary		Upload a product image (staff)
//	@Tags			Products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		int		true	"Product id"
//	@Param			image	formData	file	true	"Image file"
//	@Security		BearerAuth
//	@Success		200	{object}	domain.Product
//	@Failure		400	{object}	utils.Response	"Missing file"
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/products/{id}/image [post]
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	tempPath, err := h.saveTemp(file)
	if err != nil {
		zap.L().Error("can't save uploaded file", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	product, err := h.productService.AttachImage(r.Context(), id, tempPath, header.Filename)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct godoc
//
//	@Summary		Delete a product and its image (staff)
//	@Tags			Products
//	@Produce		json
//	@Param			id	path	int	true	"Product id"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response
//	@Failure		404	{object}	utils.Response	"Product not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.productService.Delete(r.Context(), id); err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Product deleted"})
}

func (h *ProductHandler) saveTemp(file io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	tempPath := filepath.Join(h.uploadDir, uuid.NewString())
	out, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return tempPath, nil
}
