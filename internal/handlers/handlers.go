package handlers

import (
	"net/http"

	_ "github.com/dsolovey/gomarket/docs"
	"github.com/dsolovey/gomarket/internal/config"
	"github.com/dsolovey/gomarket/internal/domain"
	authhandlers "github.com/dsolovey/gomarket/internal/handlers/auth"
	ordershandlers "github.com/dsolovey/gomarket/internal/handlers/orders"
	productshandlers "github.com/dsolovey/gomarket/internal/handlers/products"
	usershandlers "github.com/dsolovey/gomarket/internal/handlers/users"
	"github.com/dsolovey/gomarket/internal/service"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	DeleteOrder(w http.ResponseWriter, r *http.Request)
}

type ProductHandler interface {
	ListProducts(w http.ResponseWriter, r *http.Request)
	GetProduct(w http.ResponseWriter, r *http.Request)
	CreateProduct(w http.ResponseWriter, r *http.Request)
	UpdateProduct(w http.ResponseWriter, r *http.Request)
	UploadImage(w http.ResponseWriter, r *http.Request)
	DeleteProduct(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	ListCustomers(w http.ResponseWriter, r *http.Request)
	GetCustomer(w http.ResponseWriter, r *http.Request)
	DeleteCustomer(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	ProductHandler ProductHandler
	UserHandler    UserHandler

	mw      *auth.Middleware
	ownerOf auth.OwnerFunc
}

func New(s *service.Services, mw *auth.Middleware, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService, cfg.RefreshTTL),
		OrderHandler:   ordershandlers.New(s.OrderService),
		ProductHandler: productshandlers.New(s.ProductService, cfg.UploadDir),
		UserHandler:    usershandlers.New(s.UserService),
		mw:             mw,
		ownerOf:        s.OrderService.OwnerOf,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
			r.Post("/refresh", h.AuthHandler.Refresh)
			r.Post("/logout", h.AuthHandler.Logout)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ProductHandler.ListProducts)
			r.Get("/{id}", h.ProductHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.mw.Authenticate)

			r.Get("/users/me", h.UserHandler.Me)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.CreateOrder)
				r.Get("/", h.OrderHandler.GetOrders)
				r.With(h.mw.RequireOwner("id", h.ownerOf)).
					Get("/{id}", h.OrderHandler.GetOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.mw.RequireRole(domain.RoleAdmin))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", h.OrderHandler.ListOrders)
					r.Patch("/{number}/status", h.OrderHandler.UpdateStatus)
					r.Delete("/{id}", h.OrderHandler.DeleteOrder)
				})
				r.Route("/products", func(r chi.Router) {
					r.Post("/", h.ProductHandler.CreateProduct)
					r.Put("/{id}", h.ProductHandler.UpdateProduct)
					r.Post("/{id}/image", h.ProductHandler.UploadImage)
					r.Delete("/{id}", h.ProductHandler.DeleteProduct)
				})
				r.Route("/customers", func(r chi.Router) {
					r.Get("/", h.UserHandler.ListCustomers)
					r.Get("/{id}", h.UserHandler.GetCustomer)
					r.Delete("/{id}", h.UserHandler.DeleteCustomer)
				})
			})
		})
	})

	return r
}
