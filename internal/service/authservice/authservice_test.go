package authservice

import (
	"context"
	"errors"
	"testing"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *auth.MockHashServiceInterface, *auth.MockJWTServiceInterface) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	hashService := auth.NewMockHashServiceInterface(ctrl)
	jwtService := auth.NewMockJWTServiceInterface(ctrl)

	service := New(userRepo, hashService, jwtService)
	defer ctrl.Finish()
	return service, userRepo, hashService, jwtService
}

func TestRegister(t *testing.T) {
	service, userRepo, hashService, jwtService := NewMock(t)

	tests := []struct {
		name          string
		email         string
		password      string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful registration",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				hashService.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				userRepo.EXPECT().Create(context.Background(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				jwtService.EXPECT().GenerateAccessToken(1, "user@example.com").Return("access", nil)
				jwtService.EXPECT().GenerateRefreshToken(1).Return("refresh", nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-1")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-1"}).Return(nil)
			},
			expectedUser: &domain.User{
				ID:            1,
				Email:         "user@example.com",
				Name:          "Test User",
				PasswordHash:  "hashedpassword",
				Roles:         []string{domain.RoleCustomer},
				RefreshTokens: []string{"fp-1"},
			},
			expectedError: nil,
		},
		{
			name:          "Invalid email format",
			email:         "not-an-email",
			password:      "testpassword",
			prepareMock:   func() {},
			expectedUser:  nil,
			expectedError: apperr.BadRequest("invalid email format"),
		},
		{
			name:     "Email already registered",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(&domain.User{Email: "user@example.com"}, nil)
			},
			expectedUser:  nil,
			expectedError: apperr.Conflict("email already registered"),
		},
		{
			name:     "Error finding user",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, errors.New("database error"))
			},
			expectedUser:  nil,
			expectedError: errors.New("database error"),
		},
		{
			name:     "Error hashing password",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				hashService.EXPECT().HashPassword("testpassword").Return("", errors.New("hashing error"))
			},
			expectedUser:  nil,
			expectedError: errors.New("hashing error"),
		},
		{
			name:     "Error creating user",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				hashService.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				userRepo.EXPECT().Create(context.Background(), gomock.Any()).Return(nil, errors.New("creation failed"))
			},
			expectedUser:  nil,
			expectedError: errors.New("creation failed"),
		},
		{
			name:     "Error persisting fingerprint",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				hashService.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				userRepo.EXPECT().Create(context.Background(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				jwtService.EXPECT().GenerateAccessToken(1, "user@example.com").Return("access", nil)
				jwtService.EXPECT().GenerateRefreshToken(1).Return("refresh", nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-1")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-1"}).Return(errors.New("update failed"))
			},
			expectedUser:  nil,
			expectedError: errors.New("update failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, pair, err := service.Register(context.Background(), tt.email, "Test User", tt.password)
			if tt.expectedError != nil {
				assert.Nil(t, user)
				assert.Nil(t, pair)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
				assert.Equal(t, &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	service, userRepo, hashService, jwtService := NewMock(t)

	tests := []struct {
		name          string
		email         string
		password      string
		prepareMock   func()
		expectedError error
	}{
		{
			name:     "Successful login",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(&domain.User{
					ID:           1,
					Email:        "user@example.com",
					PasswordHash: "hashedpassword",
				}, nil)
				hashService.EXPECT().ComparePassword("hashedpassword", "testpassword").Return(true)
				jwtService.EXPECT().GenerateAccessToken(1, "user@example.com").Return("access", nil)
				jwtService.EXPECT().GenerateRefreshToken(1).Return("refresh", nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-1")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-1"}).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "Unknown email",
			email:    "missing@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "missing@example.com").Return(nil, nil)
			},
			expectedError: apperr.Unauthorized("invalid credentials"),
		},
		{
			name:     "Wrong password",
			email:    "user@example.com",
			password: "wrongpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(&domain.User{
					ID:           1,
					Email:        "user@example.com",
					PasswordHash: "hashedpassword",
				}, nil)
				hashService.EXPECT().ComparePassword("hashedpassword", "wrongpassword").Return(false)
			},
			expectedError: apperr.Unauthorized("invalid credentials"),
		},
		{
			name:     "Repository error masked as unauthorized",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, errors.New("database error"))
			},
			expectedError: apperr.Unauthorized("invalid credentials"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, pair, err := service.Login(context.Background(), tt.email, tt.password)
			if tt.expectedError != nil {
				assert.Nil(t, user)
				assert.Nil(t, pair)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	service, userRepo, _, jwtService := NewMock(t)

	tests := []struct {
		name          string
		rawToken      string
		prepareMock   func()
		expectedError error
	}{
		{
			name:     "Successful rotation removes old fingerprint and appends new",
			rawToken: "old-refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("old-refresh").Return(&auth.RefreshClaims{UserID: 1}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.User{
					ID:            1,
					Email:         "user@example.com",
					RefreshTokens: []string{"fp-other", "fp-old"},
				}, nil)
				jwtService.EXPECT().Fingerprint("old-refresh").Return("fp-old")
				jwtService.EXPECT().GenerateAccessToken(1, "user@example.com").Return("access", nil)
				jwtService.EXPECT().GenerateRefreshToken(1).Return("new-refresh", nil)
				jwtService.EXPECT().Fingerprint("new-refresh").Return("fp-new")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-other", "fp-new"}).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "Missing token",
			rawToken:      "",
			prepareMock:   func() {},
			expectedError: apperr.Unauthorized("refresh token missing"),
		},
		{
			name:     "Invalid token",
			rawToken: "garbage",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("garbage").Return(nil, errors.New("token is malformed"))
			},
			expectedError: apperr.Unauthorized("invalid token"),
		},
		{
			name:     "Replayed token already rotated out",
			rawToken: "old-refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("old-refresh").Return(&auth.RefreshClaims{UserID: 1}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.User{
					ID:            1,
					Email:         "user@example.com",
					RefreshTokens: []string{"fp-other"},
				}, nil)
				jwtService.EXPECT().Fingerprint("old-refresh").Return("fp-old")
			},
			expectedError: apperr.Unauthorized("invalid token"),
		},
		{
			name:     "Token owner no longer exists",
			rawToken: "old-refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("old-refresh").Return(&auth.RefreshClaims{UserID: 42}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 42).Return(nil, nil)
			},
			expectedError: apperr.Unauthorized("unknown user"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, pair, err := service.Refresh(context.Background(), tt.rawToken)
			if tt.expectedError != nil {
				assert.Nil(t, user)
				assert.Nil(t, pair)
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, []string{"fp-other", "fp-new"}, user.RefreshTokens)
				assert.Equal(t, &TokenPair{AccessToken: "access", RefreshToken: "new-refresh"}, pair)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	service, userRepo, _, jwtService := NewMock(t)

	tests := []struct {
		name          string
		rawToken      string
		prepareMock   func()
		expectedError error
	}{
		{
			name:     "Successful logout revokes fingerprint",
			rawToken: "refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("refresh").Return(&auth.RefreshClaims{UserID: 1}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.User{
					ID:            1,
					RefreshTokens: []string{"fp-other", "fp-current"},
				}, nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-current")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-other"}).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "Logout with unknown fingerprint still succeeds",
			rawToken: "refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("refresh").Return(&auth.RefreshClaims{UserID: 1}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.User{
					ID:            1,
					RefreshTokens: []string{"fp-other"},
				}, nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-current")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{"fp-other"}).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "Missing token",
			rawToken:      "",
			prepareMock:   func() {},
			expectedError: apperr.Unauthorized("refresh token missing"),
		},
		{
			name:     "Persist failure",
			rawToken: "refresh",
			prepareMock: func() {
				jwtService.EXPECT().ValidateRefreshToken("refresh").Return(&auth.RefreshClaims{UserID: 1}, nil)
				userRepo.EXPECT().FindByID(context.Background(), 1).Return(&domain.User{
					ID:            1,
					RefreshTokens: []string{"fp-current"},
				}, nil)
				jwtService.EXPECT().Fingerprint("refresh").Return("fp-current")
				userRepo.EXPECT().UpdateRefreshTokens(context.Background(), 1, []string{}).Return(errors.New("update failed"))
			},
			expectedError: errors.New("update failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Logout(context.Background(), tt.rawToken)
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
