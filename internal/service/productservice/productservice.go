package productservice

import (
	"context"
	"path/filepath"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	productrepo "github.com/dsolovey/gomarket/internal/repo/product-repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductRepo interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	List(ctx context.Context, filter productrepo.Filter, limit, offset int) ([]domain.Product, error)
	Count(ctx context.Context, filter productrepo.Filter) (int, error)
	Update(ctx context.Context, product *domain.Product) error
	UpdateImage(ctx context.Context, id int, imageName, imageOriginal string) error
	Delete(ctx context.Context, id int) (bool, error)
}

// FileStore performs image side effects. Its operations do not fail the
// request: errors are logged inside the store.
type FileStore interface {
	Move(src, name string)
	Remove(name string)
}

type Service struct {
	productRepo ProductRepo
	files       FileStore
}

func New(productRepo ProductRepo, files FileStore) *Service {
	return &Service{
		productRepo: productRepo,
		files:       files,
	}
}

type Input struct {
	Title       string
	Category    string
	Description string
	Price       *float64
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	product := &domain.Product{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
	}
	created, err := s.productRepo.Create(ctx, product)
	if err != nil {
		zap.L().Error("can't create product", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound("product %d not found", id)
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, filter productrepo.Filter, page, pageSize int) ([]domain.Product, int, error) {
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	products, err := s.productRepo.List(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Service) Update(ctx context.Context, id int, in Input) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Title = in.Title
	product.Category = in.Category
	product.Description = in.Description
	product.Price = in.Price
	if err := s.productRepo.Update(ctx, product); err != nil {
		zap.L().Error("can't update product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

// AttachImage stores an uploaded file under a server-assigned name and wires
// it to the product. A replaced image is deleted from disk; file failures
// are logged by the store and never fail the request.
func (s *Service) AttachImage(ctx context.Context, id int, tempPath, originalName string) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	imageName := uuid.NewString() + filepath.Ext(originalName)
	s.files.Move(tempPath, imageName)

	oldImage := product.ImageName
	if err := s.productRepo.UpdateImage(ctx, id, imageName, originalName); err != nil {
		zap.L().Error("can't attach product image", zap.Error(err))
		return nil, err
	}
	if oldImage != "" {
		s.files.Remove(oldImage)
	}

	product.ImageName = imageName
	product.ImageOriginal = originalName
	return product, nil
}

// Delete removes the product and, as a side effect, its stored image.
func (s *Service) Delete(ctx context.Context, id int) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.productRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete product", zap.Error(err))
		return err
	}
	s.files.Remove(product.ImageName)
	return nil
}
