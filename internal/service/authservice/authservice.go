package authservice

import (
	"context"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/pkg/auth"
	"github.com/dsolovey/gomarket/pkg/validate"
	"go.uber.org/zap"
)

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRefreshTokens(ctx context.Context, userID int, tokens []string) error
}

// TokenPair is what a successful login/registration/refresh hands back: the
// access token goes into the response body, the refresh token into the
// HTTP-only cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	userRepo    UserRepo
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
}

func New(userRepo UserRepo, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:    userRepo,
		hashService: hashService,
		jwtService:  jwtService,
	}
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, *TokenPair, error) {
	if !validate.IsEmail(email) {
		return nil, nil, apperr.BadRequest("invalid email format")
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists, email: ", zap.String("email", email))
		return nil, nil, apperr.Conflict("email already registered")
	}

	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, nil, err
	}
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Roles:        []string{domain.RoleCustomer},
	}
	newUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		zap.L().Error("can't create user: ", zap.Error(err))
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, newUser)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email))
	return newUser, pair, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		zap.L().Error("invalid credentials", zap.Error(err))
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Error("invalid credentials", zap.String("email", email))
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("user successfully authenticated", zap.String("email", email))
	return user, pair, nil
}

// Refresh rotates the presented refresh token: the old fingerprint leaves
// the stored list, a fresh pair is minted and its fingerprint appended.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*domain.User, *TokenPair, error) {
	user, err := s.verifiedOwner(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}

	fingerprint := s.jwtService.Fingerprint(rawToken)
	remaining, removed := removeFingerprint(user.RefreshTokens, fingerprint)
	if !removed {
		zap.L().Info("refresh token not in user's token list", zap.Int("user_id", user.ID))
		return nil, nil, apperr.Unauthorized("invalid token")
	}
	user.RefreshTokens = remaining

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the presented refresh token by removing its fingerprint
// from the owner's stored list.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	user, err := s.verifiedOwner(ctx, rawToken)
	if err != nil {
		return err
	}

	fingerprint := s.jwtService.Fingerprint(rawToken)
	remaining, _ := removeFingerprint(user.RefreshTokens, fingerprint)
	if err := s.userRepo.UpdateRefreshTokens(ctx, user.ID, remaining); err != nil {
		zap.L().Error("can't persist token removal", zap.Error(err))
		return err
	}

	zap.L().Info("user logged out", zap.Int("user_id", user.ID))
	return nil
}

func (s *Service) verifiedOwner(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		return nil, apperr.Unauthorized("refresh token missing")
	}
	claims, err := s.jwtService.ValidateRefreshToken(rawToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		zap.L().Error("can't find token owner", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("unknown user")
	}
	return user, nil
}

// issuePair mints an access/refresh pair and persists the new refresh
// fingerprint. Only the fingerprint is ever stored.
func (s *Service) issuePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		zap.L().Error("can't generate access token: ", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		zap.L().Error("can't generate refresh token: ", zap.Error(err))
		return nil, err
	}

	user.RefreshTokens = append(user.RefreshTokens, s.jwtService.Fingerprint(refreshToken))
	if err := s.userRepo.UpdateRefreshTokens(ctx, user.ID, user.RefreshTokens); err != nil {
		zap.L().Error("can't persist refresh fingerprint", zap.Error(err))
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func removeFingerprint(tokens []string, fingerprint string) ([]string, bool) {
	remaining := make([]string, 0, len(tokens))
	removed := false
	for _, t := range tokens {
		if t == fingerprint {
			removed = true
			continue
		}
		remaining = append(remaining, t)
	}
	return remaining, removed
}
