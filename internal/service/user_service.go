package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todoapp/internal/cache"
	"todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService looks users up for identity resolution. It satisfies
// auth.UserLookup.
type UserService interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache. A nil
// cache reads straight through to the repository.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userCacheKey(email string) string {
	return "user:email:" + email
}

// GetByEmail returns errors.ErrUserNotFound when no user has the email.
// Cached users carry no password hash.
func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = NormalizeEmail(email)

	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(email), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	_ = s.cache.SetJSON(ctx, userCacheKey(email), user, userCacheTTL)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}
