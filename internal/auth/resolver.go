package auth

import (
	"context"
	stderrors "errors"
	"fmt"

	"todoapp/internal/errors"
	"todoapp/internal/model"
)

// UserLookup finds users by email. It returns errors.ErrUserNotFound when
// no row matches.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Resolver maps a bearer token to the active user it was issued for.
type Resolver struct {
	tokens *JWTService
	users  UserLookup
}

// NewResolver creates an identity resolver.
func NewResolver(tokens *JWTService, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve verifies the token and loads its user. Authentication failures are
// *Failure values; a store error is returned wrapped and means a server fault.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}
	email, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}
