package service

import (
	"github.com/dsolovey/gomarket/internal/handlers/auth"
	"github.com/dsolovey/gomarket/internal/handlers/orders"
	"github.com/dsolovey/gomarket/internal/handlers/products"
	"github.com/dsolovey/gomarket/internal/handlers/users"

	pkgauth "github.com/dsolovey/gomarket/pkg/auth"

	"github.com/dsolovey/gomarket/internal/repo"
	authservice "github.com/dsolovey/gomarket/internal/service/authservice"
	orderservice "github.com/dsolovey/gomarket/internal/service/orderservice"
	productservice "github.com/dsolovey/gomarket/internal/service/productservice"
	statsservice "github.com/dsolovey/gomarket/internal/service/statsservice"
	userservice "github.com/dsolovey/gomarket/internal/service/userservice"
)

type Services struct {
	AuthService    auth.Service
	OrderService   orders.Service
	ProductService products.Service
	UserService    users.Service
	StatsService   *statsservice.Service
}

func New(repo *repo.Repositories, jwtService pkgauth.JWTServiceInterface, files productservice.FileStore) *Services {
	statsService := statsservice.New(repo.OrderRepo, repo.UserRepo)
	orderService := orderservice.New(repo.OrderRepo, repo.ProductRepo, repo.SequenceRepo, statsService)
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, jwtService)
	productService := productservice.New(repo.ProductRepo, files)
	userService := userservice.New(repo.UserRepo)

	return &Services{
		AuthService:    authService,
		OrderService:   orderService,
		ProductService: productService,
		UserService:    userService,
		StatsService:   statsService,
	}
}
