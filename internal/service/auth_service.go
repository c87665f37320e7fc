package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"todoapp/internal/auth"
	"todoapp/internal/cache"
	"todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	// Login checks the credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	cache      *cache.Client
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	tokenTTL   time.Duration

	// dummyHash is verified against when the email is unknown, so that
	// branch costs as much as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service. Tokens it issues
// expire after tokenTTL. cache may be nil.
func NewAuthService(userRepo repository.UserRepository, cache *cache.Client, hasher *auth.PasswordHasher, jwtService *auth.JWTService, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		cache:      cache,
		hasher:     hasher,
		jwtService: jwtService,
		tokenTTL:   tokenTTL,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active user with a hashed password.
func (s *authService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", errors.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", errors.ErrValidation)
	}

	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrDuplicateEmail
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:           strings.TrimSpace(name),
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration won the unique index
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(email))
	return user, nil
}

// Login authenticates a user. Unknown email, wrong password and an inactive
// account all return errors.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			s.burnVerify(password)
			return "", errors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.HashedPassword, password)
	if err != nil {
		return "", fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !ok || !user.IsActive {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.Email, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return token, nil
}

// burnVerify runs one verification against a fixed hash and discards the result.
func (s *authService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}
