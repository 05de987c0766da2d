package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/dto"
	"github.com/dsolovey/gomarket/internal/service/authservice"
	"github.com/dsolovey/gomarket/pkg/utils"
)

const refreshCookie = "refreshToken"

type Service interface {
	Register(ctx context.Context, email, name, password string) (*domain.User, *authservice.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *authservice.TokenPair, error)
	Refresh(ctx context.Context, rawToken string) (*domain.User, *authservice.TokenPair, error)
	Logout(ctx context.Context, rawToken string) error
}

type AuthHandler struct {
	authService Service
	refreshTTL  time.Duration
}

func New(authService Service, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		refreshTTL:  refreshTTL,
	}
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create a customer account and start a session
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		409		{object}	utils.Response	"Email already registered"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, pair, err := h.authService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		AccessToken: pair.AccessToken,
		User:        user,
	})
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in and receive an access token plus a refresh cookie
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		AccessToken: pair.AccessToken,
		User:        user,
	})
}

// Refresh godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Exchange the refresh cookie for a new token pair
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	dto.AuthResponseDTO
//	@Failure		401	{object}	utils.Response	"Missing or invalid refresh token"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}
	user, pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	h.setRefreshCookie(w, pair.RefreshToken)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		AccessToken: pair.AccessToken,
		User:        user,
	})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Revoke the refresh token and clear the cookie
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	utils.Response
//	@Failure		401	{object}	utils.Response	"Missing or invalid refresh token"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}
	if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
		utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.UserMessage(err))
		return
	}
	h.clearRefreshCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Logged out"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
