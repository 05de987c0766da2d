package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ContextKey string

const UserKey ContextKey = "user"

// UserLoader resolves the user behind a verified access token. Returns
// (nil, nil) when no such user exists.
type UserLoader interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// OwnerFunc resolves the owning user id of a resource. found is false when
// the resource does not exist.
type OwnerFunc func(ctx context.Context, id int) (ownerID int, found bool, err error)

type Middleware struct {
	jwtService JWTServiceInterface
	users      UserLoader
}

func NewMiddleware(jwtService JWTServiceInterface, users UserLoader) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		users:      users,
	}
}

// UserFromContext returns the authenticated user, nil outside a session.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

// Authenticate verifies the Bearer access token, loads the user and stores
// it in the request context. Any failure short-circuits with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.jwtService.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				utils.RespondWithError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			zap.L().Error("can't load session user", zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates the request on the session user holding at least one of
// the given roles.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !user.HasRole(roles...) {
				utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner gates the request on the session user owning the resource
// named by the url parameter. Admins bypass the check. A foreign resource
// yields 404, indistinguishable from a missing one.
func (m *Middleware) RequireOwner(param string, ownerOf OwnerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if user.HasRole(domain.RoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.Atoi(chi.URLParam(r, param))
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
				return
			}

			ownerID, found, err := ownerOf(r.Context(), id)
			if err != nil {
				zap.L().Error("can't resolve resource owner", zap.Error(err))
				utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !found || ownerID != user.ID {
				utils.RespondWithError(w, http.StatusNotFound, "Not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
