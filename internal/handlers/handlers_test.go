package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/dsolovey/gomarket/docs"
	"github.com/dsolovey/gomarket/internal/config"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/pg"
	"github.com/dsolovey/gomarket/internal/repo"
	"github.com/dsolovey/gomarket/internal/service"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/dsolovey/gomarket/pkg/filestore"
	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()

	repos := repo.New(mockDB, pg.NewMockTXManager(ctrl))
	jwtService := auth.NewJWTService("access", "refresh", time.Hour, 24*time.Hour)
	files := filestore.New(t.TempDir())
	defer files.Close()

	services := service.New(repos, jwtService, files)
	mw := auth.NewMiddleware(jwtService, repos.UserRepo)

	h := New(services, mw, &config.Config{RefreshTTL: 24 * time.Hour, UploadDir: t.TempDir()})
	assert.NotNil(t, h, "Handlers should not be nil")
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockOrderHandler := NewMockOrderHandler(ctrl)
	mockProductHandler := NewMockProductHandler(ctrl)
	mockUserHandler := NewMockUserHandler(ctrl)

	mockAuthHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Refresh(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Logout(gomock.Any(), gomock.Any()).AnyTimes()
	mockProductHandler.EXPECT().ListProducts(gomock.Any(), gomock.Any()).AnyTimes()
	mockProductHandler.EXPECT().GetProduct(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().GetOrders(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().ListOrders(gomock.Any(), gomock.Any()).AnyTimes()
	mockUserHandler.EXPECT().Me(gomock.Any(), gomock.Any()).AnyTimes()

	jwtService := auth.NewMockJWTServiceInterface(ctrl)
	users := auth.NewMockUserLoader(ctrl)
	jwtService.EXPECT().ValidateAccessToken("customer-token").Return(&auth.AccessClaims{UserID: 2}, nil).AnyTimes()
	users.EXPECT().FindByID(gomock.Any(), 2).Return(&domain.User{ID: 2, Roles: []string{domain.RoleCustomer}}, nil).AnyTimes()

	h := &Handlers{
		AuthHandler:    mockAuthHandler,
		OrderHandler:   mockOrderHandler,
		ProductHandler: mockProductHandler,
		UserHandler:    mockUserHandler,
		mw:             auth.NewMiddleware(jwtService, users),
		ownerOf: func(context.Context, int) (int, bool, error) {
			return 2, true, nil
		},
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"POST", "/api/auth/register", "", http.StatusOK},
		{"POST", "/api/auth/login", "", http.StatusOK},
		{"GET", "/api/products/", "", http.StatusOK},
		{"GET", "/api/products/1", "", http.StatusOK},
		{"POST", "/api/orders/", "", http.StatusUnauthorized},
		{"GET", "/api/orders/", "", http.StatusUnauthorized},
		{"GET", "/api/users/me", "", http.StatusUnauthorized},
		{"GET", "/api/admin/orders/", "", http.StatusUnauthorized},
		{"POST", "/api/orders/", "customer-token", http.StatusOK},
		{"GET", "/api/users/me", "customer-token", http.StatusOK},
		{"GET", "/api/admin/orders/", "customer-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
