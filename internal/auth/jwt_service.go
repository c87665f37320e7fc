package auth

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultAccessTokenTTL applies when Issue is called without a positive ttl.
const DefaultAccessTokenTTL = 30 * time.Minute

// JWTService issues and verifies HS256 access tokens. The subject claim
// carries the user's email. Expiry is the only invalidation mechanism.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return NewJWTServiceWithClock(secret, time.Now)
}

// NewJWTServiceWithClock is NewJWTService with an injectable clock.
func NewJWTServiceWithClock(secret string, now func() time.Time) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    now,
	}
}

// Issue signs a token for subject that expires ttl from now.
func (s *JWTService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject. Failures are
// one of ErrTokenMalformed, ErrTokenBadSignature, ErrTokenExpired or
// ErrTokenMissingSubject.
func (s *JWTService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	// expiry is checked below against s.now rather than jwt.TimeFunc
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenMalformed) {
			return "", ErrTokenMalformed
		}
		return "", ErrTokenBadSignature
	}

	if claims.ExpiresAt == nil {
		return "", ErrTokenMalformed
	}
	if !s.now().Before(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	if claims.Subject == "" {
		return "", ErrTokenMissingSubject
	}
	return claims.Subject, nil
}
